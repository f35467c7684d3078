package cron

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	bookingRepo "dialoguecafe/database/repository/booking"
	"dialoguecafe/models"
	"dialoguecafe/services/notification"
	"dialoguecafe/services/tasks"
)

// InitEmailWorker runs the async email worker in the background.
func InitEmailWorker(redisOpt asynq.RedisClientOpt, sender notification.EmailSender, repo bookingRepo.Repository, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingEmail, handleBookingEmail(sender, repo, logger))

	go func() {
		logger.Info("starting booking email worker")
		if err := srv.Run(mux); err != nil {
			logger.Fatal("booking email worker failed to start", zap.Error(err))
		}
	}()

	return srv
}

func handleBookingEmail(sender notification.EmailSender, repo bookingRepo.Repository, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("invalid booking email payload", zap.Error(err))
			return err
		}

		// A reminder for a booking that has been cancelled or lost is
		// dropped silently.
		if p.Kind == tasks.KindReminder {
			if _, err := repo.GetByID(ctx, p.BookingID); err != nil {
				logger.Warn("skipping reminder for missing booking",
					zap.String("bookingId", p.BookingID), zap.Error(err))
				return nil
			}
		}

		subject, body := tasks.ComposeEmail(p)
		if err := sender.Send(ctx, notification.EmailMessage{
			To:      p.Email,
			ToName:  p.FullName,
			Subject: subject,
			Body:    body,
		}); err != nil {
			return err
		}

		if p.Kind == tasks.KindReminder {
			if err := repo.MarkReminded(ctx, p.BookingID); err != nil {
				logger.Warn("failed to mark booking reminded",
					zap.String("bookingId", p.BookingID), zap.Error(err))
			}
		}
		return nil
	}
}
