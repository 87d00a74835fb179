// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package recommendation

import (
	"context"
	"iter"
)

// Store is the table mapper for reviewer recommendations.
//
// Get returns (nil, nil) when the record does not exist. Insert assigns
// the surrogate ID exactly once; a candidate with Value <= 0 receives the
// context's MAX(value)+1. The derived Removable field is never read or
// written here — it belongs to the service layer.
type Store interface {
	Exists(ctx context.Context, id int64) (bool, error)
	Get(ctx context.Context, id int64) (*Recommendation, error)

	Count(ctx context.Context, c Collector) (int, error)
	IDs(ctx context.Context, c Collector) ([]int64, error)
	// Many executes the collector and yields hydrated records lazily,
	// ordered by (context, value). The sequence is single-pass.
	Many(ctx context.Context, c Collector) iter.Seq2[*Recommendation, error]

	Insert(ctx context.Context, r *Recommendation) (int64, error)
	Update(ctx context.Context, r *Recommendation) error
	Delete(ctx context.Context, r *Recommendation) error

	// InTx runs fn against a transactional view of the store.
	InTx(ctx context.Context, fn func(Store) error) error
}

// AssignmentCounter reports how many review assignments in a context have
// submitted a given recommendation value. Backed by the review_assignments
// table; injected into the service to derive removability.
type AssignmentCounter interface {
	CountByRecommendation(ctx context.Context, contextID int64, value int) (int, error)
}
