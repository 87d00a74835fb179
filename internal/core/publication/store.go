// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package publication

import (
	"context"
	"iter"
)

// Store is the table mapper for publications.
//
// Get returns (nil, nil) when the record does not exist. Insert assigns
// the surrogate ID on the passed entity exactly once.
type Store interface {
	Exists(ctx context.Context, id int64) (bool, error)
	Get(ctx context.Context, id int64) (*Publication, error)

	Count(ctx context.Context, c Collector) (int, error)
	IDs(ctx context.Context, c Collector) ([]int64, error)
	// Many executes the collector and yields hydrated records lazily.
	// The sequence is single-pass; re-iterating requires calling Many again.
	Many(ctx context.Context, c Collector) iter.Seq2[*Publication, error]

	Insert(ctx context.Context, p *Publication) (int64, error)
	Update(ctx context.Context, p *Publication) error
	Delete(ctx context.Context, p *Publication) error

	// InTx runs fn against a transactional view of the store.
	InTx(ctx context.Context, fn func(Store) error) error
}
