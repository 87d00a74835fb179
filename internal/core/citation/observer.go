// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package citation

import "context"

// ImportResult describes one completed reference list import.
type ImportResult struct {
	PublicationID int64       `json:"publication_id"`
	Before        []*Citation `json:"before"`
	After         []*Citation `json:"after"`
}

// Observer receives lifecycle notifications for citations.
//
// Observers are registered explicitly on the [Service].
// CitationDeleting may veto the delete by returning an error.
type Observer interface {
	CitationAdded(ctx context.Context, record *Citation)
	CitationEdited(ctx context.Context, record *Citation)
	CitationDeleting(ctx context.Context, record *Citation) error
	CitationDeleted(ctx context.Context, record *Citation)
	// CitationsImported fires once per import, after the transaction commits.
	CitationsImported(ctx context.Context, result ImportResult)
}

// NopObserver implements [Observer] with no-ops. Embed it to observe a
// subset of events.
type NopObserver struct{}

func (NopObserver) CitationAdded(context.Context, *Citation)          {}
func (NopObserver) CitationEdited(context.Context, *Citation)         {}
func (NopObserver) CitationDeleting(context.Context, *Citation) error { return nil }
func (NopObserver) CitationDeleted(context.Context, *Citation)        {}
func (NopObserver) CitationsImported(context.Context, ImportResult)   {}
