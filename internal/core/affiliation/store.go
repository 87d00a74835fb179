// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package affiliation

import (
	"context"
	"iter"
)

// Store is the table mapper for author affiliations.
//
// Get returns (nil, nil) when the record does not exist: absence is a
// normal outcome, not an error. Insert assigns the surrogate ID on the
// passed entity exactly once.
type Store interface {
	Exists(ctx context.Context, id int64) (bool, error)
	Get(ctx context.Context, id int64) (*Affiliation, error)

	Count(ctx context.Context, c Collector) (int, error)
	IDs(ctx context.Context, c Collector) ([]int64, error)
	// Many executes the collector and yields hydrated records lazily.
	// The sequence is single-pass; re-iterating requires calling Many again.
	Many(ctx context.Context, c Collector) iter.Seq2[*Affiliation, error]

	Insert(ctx context.Context, a *Affiliation) (int64, error)
	Update(ctx context.Context, a *Affiliation) error
	Delete(ctx context.Context, a *Affiliation) error
	// UpdateOrInsert dispatches on ID: zero inserts, non-zero updates.
	UpdateOrInsert(ctx context.Context, a *Affiliation) error
	// DeleteByAuthorID removes every affiliation owned by the author,
	// settings rows included.
	DeleteByAuthorID(ctx context.Context, authorID int64) error

	// InTx runs fn against a transactional view of the store.
	InTx(ctx context.Context, fn func(Store) error) error
}
