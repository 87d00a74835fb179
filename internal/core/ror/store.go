// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package ror

import (
	"context"
	"iter"
)

// Store is the table mapper for the ROR registry cache.
//
// Get returns (nil, nil) when the record does not exist: absence is a
// normal outcome, not an error. Insert assigns the surrogate ID on the
// passed entity exactly once.
type Store interface {
	Exists(ctx context.Context, id int64) (bool, error)
	Get(ctx context.Context, id int64) (*Ror, error)
	GetByROR(ctx context.Context, rorURI string) (*Ror, error)

	Count(ctx context.Context, c Collector) (int, error)
	IDs(ctx context.Context, c Collector) ([]int64, error)
	// Many executes the collector and yields hydrated records lazily.
	// The sequence is single-pass; re-iterating requires calling Many again.
	Many(ctx context.Context, c Collector) iter.Seq2[*Ror, error]

	Insert(ctx context.Context, r *Ror) (int64, error)
	Update(ctx context.Context, r *Ror) error
	Delete(ctx context.Context, r *Ror) error
	// UpdateOrInsert dispatches on ID: zero inserts, non-zero updates.
	UpdateOrInsert(ctx context.Context, r *Ror) error

	// InTx runs fn against a transactional view of the store.
	InTx(ctx context.Context, fn func(Store) error) error
}
