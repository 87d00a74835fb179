// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package affiliation

import "context"

// Observer receives lifecycle notifications for affiliations.
//
// Observers are registered explicitly on the [Service]; there is no global
// dispatcher. AffiliationDeleting may veto the delete by returning an error.
type Observer interface {
	AffiliationAdded(ctx context.Context, a *Affiliation)
	AffiliationEdited(ctx context.Context, a *Affiliation)
	AffiliationDeleting(ctx context.Context, a *Affiliation) error
	AffiliationDeleted(ctx context.Context, a *Affiliation)
}

// NopObserver implements [Observer] with no-ops. Embed it to observe a
// subset of events.
type NopObserver struct{}

func (NopObserver) AffiliationAdded(context.Context, *Affiliation)          {}
func (NopObserver) AffiliationEdited(context.Context, *Affiliation)         {}
func (NopObserver) AffiliationDeleting(context.Context, *Affiliation) error { return nil }
func (NopObserver) AffiliationDeleted(context.Context, *Affiliation)        {}
