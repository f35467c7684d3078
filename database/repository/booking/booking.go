package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dialoguecafe/database"
	"dialoguecafe/models"
)

const collectionName = "bookings"

var (
	// ErrNotFound is returned when no booking matches the query.
	ErrNotFound = errors.New("booking not found")
	// ErrDuplicateSlot is returned when an insert loses the race for a slot
	// already held by another booking.
	ErrDuplicateSlot = errors.New("timeslot already booked")
)

// Repository defines booking data access.
type Repository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	FindBySlots(ctx context.Context, slots []string) ([]models.Booking, error)
	MarkReminded(ctx context.Context, id string) error
}

// MongoBookingRepo implements Repository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo returns a repository over the bookings collection.
func NewMongoBookingRepo() *MongoBookingRepo {
	return &MongoBookingRepo{coll: database.Collection(collectionName)}
}

// EnsureIndexes creates the indexes the repository relies on: a unique id,
// and a unique multikey index over the booked slot identifiers so two
// concurrent inserts for the same slot cannot both land.
func (r *MongoBookingRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "timeslots", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "date", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateSlot
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &booking, nil
}

// FindBySlots returns bookings holding any of the given slot identifiers.
func (r *MongoBookingRepo) FindBySlots(ctx context.Context, slots []string) ([]models.Booking, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"timeslots": bson.M{"$in": slots}})
	if err != nil {
		return nil, fmt.Errorf("failed to query bookings by slots: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []models.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *MongoBookingRepo) MarkReminded(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"reminded": true}})
	if err != nil {
		return fmt.Errorf("failed to mark booking %s reminded: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
