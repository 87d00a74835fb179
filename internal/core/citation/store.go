// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package citation

import (
	"context"
	"iter"
)

// Store is the table mapper for citations.
//
// Get returns (nil, nil) when the record does not exist. Insert assigns the
// surrogate ID exactly once; a candidate with Seq <= 0 is appended after
// the publication's current MAX(seq).
type Store interface {
	Exists(ctx context.Context, id int64) (bool, error)
	Get(ctx context.Context, id int64) (*Citation, error)

	Count(ctx context.Context, c Collector) (int, error)
	IDs(ctx context.Context, c Collector) ([]int64, error)
	// Many executes the collector and yields records lazily, ordered by
	// (publication, seq). The sequence is single-pass.
	Many(ctx context.Context, c Collector) iter.Seq2[*Citation, error]

	Insert(ctx context.Context, record *Citation) (int64, error)
	Update(ctx context.Context, record *Citation) error
	Delete(ctx context.Context, record *Citation) error
	// DeleteByPublicationID removes every citation of the publication.
	DeleteByPublicationID(ctx context.Context, publicationID int64) error

	// InTx runs fn against a transactional view of the store.
	InTx(ctx context.Context, fn func(Store) error) error
}
