// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package queue_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpress/scholar/internal/platform/constants"
	"github.com/openpress/scholar/internal/platform/queue"
)

// recordingPusher captures LPush calls without a live Redis connection.
type recordingPusher struct {
	key    string
	values []interface{}
	err    error
}

func (p *recordingPusher) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	p.key = key
	p.values = append(p.values, values...)
	return redis.NewIntResult(int64(len(values)), p.err)
}

/*
TestProducer_Enqueue verifies the job envelope pushed onto the queue is a
self-contained, replayable JSON document.
*/
func TestProducer_Enqueue(t *testing.T) {
	pusher := &recordingPusher{}
	producer := queue.NewProducer(pusher, slog.Default())

	payload := map[string]any{
		"publication_id": 42,
		"imported":       3,
	}

	err := producer.Enqueue(context.Background(), "citations.imported", payload)
	require.NoError(t, err)

	assert.Equal(t, constants.RedisKeyJobQueue, pusher.key)
	require.Len(t, pusher.values, 1)

	// The pushed value must decode back into a complete envelope.
	raw, ok := pusher.values[0].([]byte)
	require.True(t, ok)

	var job queue.Job
	require.NoError(t, json.Unmarshal(raw, &job))

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, "citations.imported", job.Type)
	assert.False(t, job.EnqueuedAt.IsZero())

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(job.Payload, &decoded))
	assert.EqualValues(t, 42, decoded["publication_id"])
	assert.EqualValues(t, 3, decoded["imported"])
}

/*
TestProducer_Enqueue_RejectsUnserializable verifies that payloads holding
live state fail fast instead of being half-enqueued.
*/
func TestProducer_Enqueue_RejectsUnserializable(t *testing.T) {
	pusher := &recordingPusher{}
	producer := queue.NewProducer(pusher, slog.Default())

	// Channels cannot marshal to JSON.
	err := producer.Enqueue(context.Background(), "bad.job", map[string]any{"ch": make(chan int)})

	require.Error(t, err)
	assert.Empty(t, pusher.values)
}
