// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

/*
Package jobs defines the background job payloads this service produces and
the domain observers that enqueue them.

Each payload is fully self-contained: primitive identifiers and plain data
only, because the consuming worker runs in a separate process at an
arbitrary later time and cannot reach back into request state.

The worker itself is not part of this service.
*/
package jobs

import (
	"context"
	"log/slog"

	"github.com/openpress/scholar/internal/core/citation"
	"github.com/openpress/scholar/internal/core/ror"
)

// Job type identifiers, matched by the worker's dispatch table.
const (
	TypeCitationsImported = "citations.imported"
	TypeRegistrySynced    = "ror.registry_synced"
)

// Enqueuer is the producer-side queue contract.
// [queue.Producer] satisfies it; tests substitute a recording fake.
type Enqueuer interface {
	Enqueue(ctx context.Context, jobType string, payload any) error
}

// # Payloads

// CitationsImportedPayload notifies downstream consumers (e.g. reviewer
// notification fan-out) that a publication's reference list was replaced.
// The before/after lists carry the raw citation strings, not row IDs,
// because the old rows no longer exist by the time a worker runs.
type CitationsImportedPayload struct {
	PublicationID int64    `json:"publication_id"`
	Before        []string `json:"before"`
	After         []string `json:"after"`
}

// RegistrySyncedPayload carries the outcome counts of one ROR registry
// dump import.
type RegistrySyncedPayload struct {
	Processed int `json:"processed"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
}

// # Observer Adapters

// CitationImportNotifier enqueues a [TypeCitationsImported] job after each
// completed reference list import.
type CitationImportNotifier struct {
	citation.NopObserver
	producer Enqueuer
	logger   *slog.Logger
}

// NewCitationImportNotifier wires a queue producer into the citation domain.
func NewCitationImportNotifier(producer Enqueuer, logger *slog.Logger) *CitationImportNotifier {
	return &CitationImportNotifier{producer: producer, logger: logger}
}

// CitationsImported implements [citation.Observer]. Enqueue failures are
// logged and dropped: the import itself has already committed and must not
// be reported as failed over a lost notification.
func (notifier *CitationImportNotifier) CitationsImported(ctx context.Context, result citation.ImportResult) {
	payload := CitationsImportedPayload{
		PublicationID: result.PublicationID,
		Before:        rawCitations(result.Before),
		After:         rawCitations(result.After),
	}
	if err := notifier.producer.Enqueue(ctx, TypeCitationsImported, payload); err != nil {
		notifier.logger.Error("job_enqueue_failed",
			slog.String("job_type", TypeCitationsImported),
			slog.Int64("publication_id", result.PublicationID),
			slog.Any("error", err),
		)
	}
}

// RegistrySyncNotifier enqueues a [TypeRegistrySynced] job after each ROR
// registry dump import.
type RegistrySyncNotifier struct {
	ror.NopObserver
	producer Enqueuer
	logger   *slog.Logger
}

// NewRegistrySyncNotifier wires a queue producer into the ROR domain.
func NewRegistrySyncNotifier(producer Enqueuer, logger *slog.Logger) *RegistrySyncNotifier {
	return &RegistrySyncNotifier{producer: producer, logger: logger}
}

// RegistrySynced implements [ror.Observer]. Enqueue failures are logged
// and dropped, as with citation imports.
func (notifier *RegistrySyncNotifier) RegistrySynced(ctx context.Context, report ror.SyncReport) {
	payload := RegistrySyncedPayload{
		Processed: report.Processed,
		Inserted:  report.Inserted,
		Updated:   report.Updated,
		Skipped:   report.Skipped,
	}
	if err := notifier.producer.Enqueue(ctx, TypeRegistrySynced, payload); err != nil {
		notifier.logger.Error("job_enqueue_failed",
			slog.String("job_type", TypeRegistrySynced),
			slog.Any("error", err),
		)
	}
}

// rawCitations flattens records to their raw strings, in list order.
func rawCitations(records []*citation.Citation) []string {
	out := make([]string, 0, len(records))
	for _, record := range records {
		out = append(out, record.RawCitation)
	}
	return out
}
