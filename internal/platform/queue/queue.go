// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

/*
Package queue provides the producer side of the background job queue.

Jobs are serialized JSON envelopes pushed onto a Redis list; a separate
worker process pops and executes them at an arbitrary later time. Because
execution happens in a different process, every payload must be fully
self-contained and replayable: primitive identifiers and plain data only,
never live handles to in-request state.

The consumer/worker is not part of this service.
*/
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/openpress/scholar/internal/platform/constants"
)

// Pusher is the subset of the Redis API the producer needs.
// *redis.Client satisfies it; tests substitute a recording fake.
type Pusher interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// Job is the serialized envelope a worker consumes.
//
// ID is a UUIDv7 assigned at enqueue time for idempotency tracking on the
// consumer side. Payload is an opaque JSON document owned by the job type.
type Job struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
}

// Producer enqueues jobs onto the shared Redis-backed queue.
type Producer struct {
	redis  Pusher
	logger *slog.Logger
}

// NewProducer creates a queue producer over the given Redis client.
func NewProducer(redis Pusher, logger *slog.Logger) *Producer {
	return &Producer{redis: redis, logger: logger}
}

// Enqueue serializes the payload and pushes a job envelope onto the queue.
//
// The payload must marshal cleanly to JSON; passing anything holding live
// state (connections, channels, contexts) is a programming error.
func (producer *Producer) Enqueue(ctx context.Context, jobType string, payload any) error {
	rawPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("queue: payload for %q is not serializable: %w", jobType, err)
	}

	job := Job{
		ID:         newJobID(),
		Type:       jobType,
		Payload:    rawPayload,
		EnqueuedAt: time.Now().UTC(),
	}

	envelope, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("queue: failed to marshal job envelope: %w", err)
	}

	if err := producer.redis.LPush(ctx, constants.RedisKeyJobQueue, envelope).Err(); err != nil {
		return fmt.Errorf("queue: failed to enqueue %q: %w", jobType, err)
	}

	producer.logger.Info("job_enqueued",
		slog.String("job_id", job.ID),
		slog.String("job_type", jobType),
	)

	return nil
}

// newJobID returns a UUIDv7 string, falling back to UUIDv4 if the clock
// source is unavailable.
func newJobID() string {
	uuidV7, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return uuidV7.String()
}
