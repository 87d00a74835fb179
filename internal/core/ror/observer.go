// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package ror

import "context"

// SyncReport summarises one registry dump import.
type SyncReport struct {
	Processed int `json:"processed"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
}

// Observer receives lifecycle notifications for registry cache records.
//
// Observers are registered explicitly on the [Service]; there is no global
// dispatcher. RorDeleting may veto the delete by returning an error.
type Observer interface {
	RorAdded(ctx context.Context, r *Ror)
	RorEdited(ctx context.Context, r *Ror)
	RorDeleting(ctx context.Context, r *Ror) error
	RorDeleted(ctx context.Context, r *Ror)
	RegistrySynced(ctx context.Context, report SyncReport)
}

// NopObserver implements [Observer] with no-ops. Embed it to observe a
// subset of events.
type NopObserver struct{}

func (NopObserver) RorAdded(context.Context, *Ror)            {}
func (NopObserver) RorEdited(context.Context, *Ror)           {}
func (NopObserver) RorDeleting(context.Context, *Ror) error   { return nil }
func (NopObserver) RorDeleted(context.Context, *Ror)          {}
func (NopObserver) RegistrySynced(context.Context, SyncReport) {}
