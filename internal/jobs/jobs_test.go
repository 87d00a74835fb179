// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package jobs_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpress/scholar/internal/core/citation"
	"github.com/openpress/scholar/internal/core/ror"
	"github.com/openpress/scholar/internal/jobs"
)

// recordingEnqueuer captures enqueued jobs without a queue backend.
type recordingEnqueuer struct {
	types    []string
	payloads []any
	err      error
}

func (e *recordingEnqueuer) Enqueue(_ context.Context, jobType string, payload any) error {
	if e.err != nil {
		return e.err
	}
	e.types = append(e.types, jobType)
	e.payloads = append(e.payloads, payload)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

/*
TestCitationImportNotifier verifies the enqueued payload is self-contained:
raw citation strings, not row IDs that no longer resolve by the time a
worker runs.
*/
func TestCitationImportNotifier(t *testing.T) {
	enqueuer := &recordingEnqueuer{}
	notifier := jobs.NewCitationImportNotifier(enqueuer, discardLogger())

	notifier.CitationsImported(context.Background(), citation.ImportResult{
		PublicationID: 42,
		Before: []*citation.Citation{
			{ID: 1, PublicationID: 42, RawCitation: "Old reference.", Seq: 1},
		},
		After: []*citation.Citation{
			{ID: 2, PublicationID: 42, RawCitation: "New reference A.", Seq: 1},
			{ID: 3, PublicationID: 42, RawCitation: "New reference B.", Seq: 2},
		},
	})

	require.Equal(t, []string{jobs.TypeCitationsImported}, enqueuer.types)

	payload, ok := enqueuer.payloads[0].(jobs.CitationsImportedPayload)
	require.True(t, ok)
	assert.Equal(t, int64(42), payload.PublicationID)
	assert.Equal(t, []string{"Old reference."}, payload.Before)
	assert.Equal(t, []string{"New reference A.", "New reference B."}, payload.After)

	// The payload must survive a JSON round trip unchanged.
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	var decoded jobs.CitationsImportedPayload
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, payload, decoded)
}

/*
TestCitationImportNotifier_EnqueueFailureIsLogged drops a failed enqueue
without surfacing it to the caller, but leaves a record in the log.
*/
func TestCitationImportNotifier_EnqueueFailureIsLogged(t *testing.T) {
	enqueuer := &recordingEnqueuer{err: errors.New("queue down")}
	var buf bytes.Buffer
	notifier := jobs.NewCitationImportNotifier(enqueuer, slog.New(slog.NewTextHandler(&buf, nil)))

	// Must not panic; the import has already committed.
	notifier.CitationsImported(context.Background(), citation.ImportResult{PublicationID: 7})

	assert.Empty(t, enqueuer.types)
	assert.Contains(t, buf.String(), "job_enqueue_failed")
	assert.Contains(t, buf.String(), "queue down")
}

func TestRegistrySyncNotifier(t *testing.T) {
	enqueuer := &recordingEnqueuer{}
	notifier := jobs.NewRegistrySyncNotifier(enqueuer, discardLogger())

	notifier.RegistrySynced(context.Background(), ror.SyncReport{
		Processed: 10,
		Inserted:  6,
		Updated:   3,
		Skipped:   1,
	})

	require.Equal(t, []string{jobs.TypeRegistrySynced}, enqueuer.types)

	payload, ok := enqueuer.payloads[0].(jobs.RegistrySyncedPayload)
	require.True(t, ok)
	assert.Equal(t, jobs.RegistrySyncedPayload{Processed: 10, Inserted: 6, Updated: 3, Skipped: 1}, payload)
}

func TestRegistrySyncNotifier_EnqueueFailureIsLogged(t *testing.T) {
	enqueuer := &recordingEnqueuer{err: errors.New("queue down")}
	var buf bytes.Buffer
	notifier := jobs.NewRegistrySyncNotifier(enqueuer, slog.New(slog.NewTextHandler(&buf, nil)))

	notifier.RegistrySynced(context.Background(), ror.SyncReport{Processed: 1})

	assert.Empty(t, enqueuer.types)
	assert.Contains(t, buf.String(), "job_enqueue_failed")
}
