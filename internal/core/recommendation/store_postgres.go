// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package recommendation

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openpress/scholar/internal/platform/database/schema"
	"github.com/openpress/scholar/internal/platform/database/settings"
	"github.com/openpress/scholar/internal/platform/dberr"
)

type PostgresStore struct {
	db settings.Querier
	// pool is nil when this store is already scoped to a transaction.
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: pool, pool: pool}
}

func (store *PostgresStore) Exists(ctx context.Context, id int64) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`,
		schema.RefRecommendation.Table, schema.RefRecommendation.ID,
	)

	var exists bool
	if err := store.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "recommendation_exists")
	}
	return exists, nil
}

func (store *PostgresStore) Get(ctx context.Context, id int64) (*Recommendation, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s, %s FROM %s WHERE %s = $1`,
		schema.RefRecommendation.ID, schema.RefRecommendation.ContextID,
		schema.RefRecommendation.Value, schema.RefRecommendation.Status,
		schema.RefRecommendation.Removable,
		schema.RefRecommendation.Table, schema.RefRecommendation.ID,
	)

	r := &Recommendation{}
	err := store.db.QueryRow(ctx, query, id).Scan(
		&r.ID, &r.ContextID, &r.Value, &r.Status, &r.RemovableBase)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get_recommendation")
	}

	if err := store.hydrate(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (store *PostgresStore) Count(ctx context.Context, c Collector) (int, error) {
	q := c.Compile()
	query := fmt.Sprintf(`SELECT count(*) FROM %s rr`, schema.RefRecommendation.Table) + q.WhereSQL()

	var total int
	if err := store.db.QueryRow(ctx, query, q.Args...).Scan(&total); err != nil {
		return 0, dberr.Wrap(err, "count_recommendations")
	}
	return total, nil
}

func (store *PostgresStore) IDs(ctx context.Context, c Collector) ([]int64, error) {
	q := c.Compile()
	query := fmt.Sprintf(`SELECT rr.%s FROM %s rr`,
		schema.RefRecommendation.ID, schema.RefRecommendation.Table,
	) + q.WhereSQL() + store.orderSQL() + q.PagingSQL()

	rows, err := store.db.Query(ctx, query, q.Args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_recommendation_ids")
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, dberr.Wrap(err, "scan_recommendation_id")
		}
		ids = append(ids, id)
	}
	return ids, dberr.Wrap(rows.Err(), "list_recommendation_ids")
}

func (store *PostgresStore) Many(ctx context.Context, c Collector) iter.Seq2[*Recommendation, error] {
	return func(yield func(*Recommendation, error) bool) {
		q := c.Compile()
		query := fmt.Sprintf(`SELECT rr.%s, rr.%s, rr.%s, rr.%s, rr.%s FROM %s rr`,
			schema.RefRecommendation.ID, schema.RefRecommendation.ContextID,
			schema.RefRecommendation.Value, schema.RefRecommendation.Status,
			schema.RefRecommendation.Removable,
			schema.RefRecommendation.Table,
		) + q.WhereSQL() + store.orderSQL() + q.PagingSQL()

		rows, err := store.db.Query(ctx, query, q.Args...)
		if err != nil {
			yield(nil, dberr.Wrap(err, "list_recommendations"))
			return
		}

		// Materialize primary rows first so settings hydration does not
		// interleave queries with an open result set.
		var records []*Recommendation
		for rows.Next() {
			r := &Recommendation{}
			if err := rows.Scan(&r.ID, &r.ContextID, &r.Value, &r.Status, &r.RemovableBase); err != nil {
				rows.Close()
				yield(nil, dberr.Wrap(err, "scan_recommendation"))
				return
			}
			records = append(records, r)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			yield(nil, dberr.Wrap(err, "list_recommendations"))
			return
		}

		for _, r := range records {
			if err := store.hydrate(ctx, r); err != nil {
				yield(nil, err)
				return
			}
			if !yield(r, nil) {
				return
			}
		}
	}
}

func (store *PostgresStore) Insert(ctx context.Context, r *Recommendation) (int64, error) {
	// Value <= 0 receives the context's next free code.
	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s)
		 VALUES ($1, CASE WHEN $2 > 0 THEN $2
		   ELSE (SELECT COALESCE(MAX(%s), 0) + 1 FROM %s WHERE %s = $1) END, $3, $4)
		 RETURNING %s, %s`,
		schema.RefRecommendation.Table,
		schema.RefRecommendation.ContextID, schema.RefRecommendation.Value,
		schema.RefRecommendation.Status, schema.RefRecommendation.Removable,
		schema.RefRecommendation.Value, schema.RefRecommendation.Table, schema.RefRecommendation.ContextID,
		schema.RefRecommendation.ID, schema.RefRecommendation.Value,
	)

	err := store.db.QueryRow(ctx, query, r.ContextID, r.Value, r.Status, r.RemovableBase).
		Scan(&r.ID, &r.Value)
	if err != nil {
		return 0, dberr.Wrap(err, "insert_recommendation")
	}

	if err := settings.Insert(ctx, store.db, schema.RefRecommendationSettings, r.ID, settings.Localized("title", r.Title)); err != nil {
		return 0, dberr.Wrap(err, "insert_recommendation_settings")
	}

	return r.ID, nil
}

func (store *PostgresStore) Update(ctx context.Context, r *Recommendation) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4, %s = $5 WHERE %s = $1`,
		schema.RefRecommendation.Table,
		schema.RefRecommendation.ContextID, schema.RefRecommendation.Value,
		schema.RefRecommendation.Status, schema.RefRecommendation.Removable,
		schema.RefRecommendation.ID,
	)

	cmd, err := store.db.Exec(ctx, query, r.ID, r.ContextID, r.Value, r.Status, r.RemovableBase)
	if err != nil {
		return dberr.Wrap(err, "update_recommendation")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	err = settings.Replace(ctx, store.db, schema.RefRecommendationSettings, r.ID, settings.Localized("title", r.Title))
	return dberr.Wrap(err, "replace_recommendation_settings")
}

func (store *PostgresStore) Delete(ctx context.Context, r *Recommendation) error {
	if err := settings.DeleteFor(ctx, store.db, schema.RefRecommendationSettings, r.ID); err != nil {
		return dberr.Wrap(err, "delete_recommendation_settings")
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.RefRecommendation.Table, schema.RefRecommendation.ID)
	cmd, err := store.db.Exec(ctx, query, r.ID)
	if err != nil {
		return dberr.Wrap(err, "delete_recommendation")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (store *PostgresStore) InTx(ctx context.Context, fn func(Store) error) error {
	if store.pool == nil {
		return fn(store)
	}
	return pgx.BeginFunc(ctx, store.pool, func(tx pgx.Tx) error {
		return fn(&PostgresStore{db: tx})
	})
}

func (store *PostgresStore) orderSQL() string {
	return fmt.Sprintf(` ORDER BY rr.%s ASC, rr.%s ASC`,
		schema.RefRecommendation.ContextID, schema.RefRecommendation.Value)
}

// hydrate merges the settings rows into the record's locale-scoped fields.
func (store *PostgresStore) hydrate(ctx context.Context, r *Recommendation) error {
	byName, err := settings.Load(ctx, store.db, schema.RefRecommendationSettings, r.ID)
	if err != nil {
		return dberr.Wrap(err, "load_recommendation_settings")
	}
	r.Title = byName["title"]
	return nil
}

// # Assignment Counter

// PostgresAssignmentCounter derives recommendation usage from the
// review_assignments table.
type PostgresAssignmentCounter struct {
	db settings.Querier
}

func NewPostgresAssignmentCounter(pool *pgxpool.Pool) *PostgresAssignmentCounter {
	return &PostgresAssignmentCounter{db: pool}
}

func (counter *PostgresAssignmentCounter) CountByRecommendation(ctx context.Context, contextID int64, value int) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = $1 AND %s = $2`,
		schema.RefReviewAssignment.Table,
		schema.RefReviewAssignment.ContextID, schema.RefReviewAssignment.Recommendation,
	)

	var total int
	if err := counter.db.QueryRow(ctx, query, contextID, value).Scan(&total); err != nil {
		return 0, dberr.Wrap(err, "count_assignments_by_recommendation")
	}
	return total, nil
}
