package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"autohaven/internal/domain/model"
	"autohaven/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

// ContactWorker drains the contact queue into the ContactRepository.
type ContactWorker struct {
	rdb         *redis.Client
	contactRepo repository.ContactRepository
	queueName   string

	// PollTimeout bounds each BRPOP so shutdown is noticed promptly.
	PollTimeout time.Duration
	// RetryDelay is the pause after a redis or store failure.
	RetryDelay time.Duration
}

func NewContactWorker(rdb *redis.Client, contactRepo repository.ContactRepository, queueName string) *ContactWorker {
	return &ContactWorker{
		rdb:         rdb,
		contactRepo: contactRepo,
		queueName:   queueName,
		PollTimeout: 5 * time.Second,
		RetryDelay:  2 * time.Second,
	}
}

// Start blocks until ctx is cancelled.
func (w *ContactWorker) Start(ctx context.Context) {
	log.Println("INFO: Contact worker started, listening to queue:", w.queueName)
	for {
		if ctx.Err() != nil {
			log.Println("INFO: Contact worker stopping...")
			return
		}

		// result is [queueName, value]
		result, err := w.rdb.BRPop(ctx, w.PollTimeout, w.queueName).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			log.Printf("ERROR: Failed to BRPop from Redis queue '%s': %v", w.queueName, err)
			w.sleep(ctx)
			continue
		}
		if len(result) < 2 || result[1] == "" {
			log.Println("WARN: BRPop returned an empty contact payload")
			continue
		}

		if err := w.process(ctx, result[1]); err != nil {
			log.Printf("ERROR: Failed to store contact message, re-queueing: %v", err)
			if err := w.rdb.RPush(context.WithoutCancel(ctx), w.queueName, result[1]).Err(); err != nil {
				log.Printf("ERROR: Failed to re-queue contact message, dropping it: %v", err)
			}
			w.sleep(ctx)
		}
	}
}

func (w *ContactWorker) process(ctx context.Context, payload string) error {
	var msg model.ContactMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil || msg.ID == "" {
		log.Printf("WARN: Dropping malformed contact payload: %q", payload)
		return nil
	}
	if err := w.contactRepo.Create(ctx, &msg); err != nil {
		return err
	}
	log.Printf("INFO: Stored contact message %s from %s", msg.ID, msg.Email)
	return nil
}

func (w *ContactWorker) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(w.RetryDelay):
	}
}
