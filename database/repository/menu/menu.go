package menu

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dialoguecafe/database"
	"dialoguecafe/models"
)

const collectionName = "menu_items"

// Repository defines read access to the cafe menu.
type Repository interface {
	List(ctx context.Context, category string) ([]models.MenuItem, error)
	ListPopular(ctx context.Context) ([]models.MenuItem, error)
}

// MongoMenuRepo implements Repository using MongoDB.
type MongoMenuRepo struct {
	coll *mongo.Collection
}

func NewMongoMenuRepo() *MongoMenuRepo {
	return &MongoMenuRepo{coll: database.Collection(collectionName)}
}

// List returns menu items, optionally filtered by category, sorted by name.
func (r *MongoMenuRepo) List(ctx context.Context, category string) ([]models.MenuItem, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	return r.find(ctx, filter)
}

// ListPopular returns the items featured on the home page.
func (r *MongoMenuRepo) ListPopular(ctx context.Context) ([]models.MenuItem, error) {
	return r.find(ctx, bson.M{"popular": true})
}

func (r *MongoMenuRepo) find(ctx context.Context, filter bson.M) ([]models.MenuItem, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer cursor.Close(ctx)

	var items []models.MenuItem
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode menu items: %w", err)
	}
	return items, nil
}
