// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package citation

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
		schema.RefCitation.Table, schema.RefCitation.ID,
	)

	var exists bool
	if err := store.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "citation_exists")
	}
	return exists, nil
}

func (store *PostgresStore) Get(ctx context.Context, id int64) (*Citation, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1`,
		schema.RefCitation.ID, schema.RefCitation.PublicationID,
		schema.RefCitation.RawCitation, schema.RefCitation.Seq,
		schema.RefCitation.Table, schema.RefCitation.ID,
	)

	record := &Citation{}
	err := store.db.QueryRow(ctx, query, id).Scan(
		&record.ID, &record.PublicationID, &record.RawCitation, &record.Seq)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get_citation")
	}
	return record, nil
}

func (store *PostgresStore) Count(ctx context.Context, c Collector) (int, error) {
	q := c.Compile()
	query := fmt.Sprintf(`SELECT count(*) FROM %s c`, schema.RefCitation.Table) + q.WhereSQL()

	var total int
	if err := store.db.QueryRow(ctx, query, q.Args...).Scan(&total); err != nil {
		return 0, dberr.Wrap(err, "count_citations")
	}
	return total, nil
}

func (store *PostgresStore) IDs(ctx context.Context, c Collector) ([]int64, error) {
	q := c.Compile()
	query := fmt.Sprintf(`SELECT c.%s FROM %s c`, schema.RefCitation.ID, schema.RefCitation.Table) +
		q.WhereSQL() + store.orderSQL() + q.PagingSQL()

	rows, err := store.db.Query(ctx, query, q.Args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_citation_ids")
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, dberr.Wrap(err, "scan_citation_id")
		}
		ids = append(ids, id)
	}
	return ids, dberr.Wrap(rows.Err(), "list_citation_ids")
}

func (store *PostgresStore) Many(ctx context.Context, c Collector) iter.Seq2[*Citation, error] {
	return func(yield func(*Citation, error) bool) {
		q := c.Compile()
		query := fmt.Sprintf(`SELECT c.%s, c.%s, c.%s, c.%s FROM %s c`,
			schema.RefCitation.ID, schema.RefCitation.PublicationID,
			schema.RefCitation.RawCitation, schema.RefCitation.Seq,
			schema.RefCitation.Table,
		) + q.WhereSQL() + store.orderSQL() + q.PagingSQL()

		rows, err := store.db.Query(ctx, query, q.Args...)
		if err != nil {
			yield(nil, dberr.Wrap(err, "list_citations"))
			return
		}
		defer rows.Close()

		for rows.Next() {
			record := &Citation{}
			if err := rows.Scan(&record.ID, &record.PublicationID, &record.RawCitation, &record.Seq); err != nil {
				yield(nil, dberr.Wrap(err, "scan_citation"))
				return
			}
			if !yield(record, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, dberr.Wrap(err, "list_citations"))
		}
	}
}

func (store *PostgresStore) Insert(ctx context.Context, record *Citation) (int64, error) {
	// Seq <= 0 appends after the publication's current maximum.
	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s)
		 VALUES ($1, $2, CASE WHEN $3 > 0 THEN $3
		   ELSE (SELECT COALESCE(MAX(%s), 0) + 1 FROM %s WHERE %s = $1) END)
		 RETURNING %s, %s`,
		schema.RefCitation.Table,
		schema.RefCitation.PublicationID, schema.RefCitation.RawCitation, schema.RefCitation.Seq,
		schema.RefCitation.Seq, schema.RefCitation.Table, schema.RefCitation.PublicationID,
		schema.RefCitation.ID, schema.RefCitation.Seq,
	)

	err := store.db.QueryRow(ctx, query, record.PublicationID, record.RawCitation, record.Seq).
		Scan(&record.ID, &record.Seq)
	if err != nil {
		return 0, dberr.Wrap(err, "insert_citation")
	}
	return record.ID, nil
}

func (store *PostgresStore) Update(ctx context.Context, record *Citation) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4 WHERE %s = $1`,
		schema.RefCitation.Table,
		schema.RefCitation.PublicationID, schema.RefCitation.RawCitation, schema.RefCitation.Seq,
		schema.RefCitation.ID,
	)

	cmd, err := store.db.Exec(ctx, query, record.ID, record.PublicationID, record.RawCitation, record.Seq)
	if err != nil {
		return dberr.Wrap(err, "update_citation")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (store *PostgresStore) Delete(ctx context.Context, record *Citation) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.RefCitation.Table, schema.RefCitation.ID)

	cmd, err := store.db.Exec(ctx, query, record.ID)
	if err != nil {
		return dberr.Wrap(err, "delete_citation")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (store *PostgresStore) DeleteByPublicationID(ctx context.Context, publicationID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.RefCitation.Table, schema.RefCitation.PublicationID,
	)
	_, err := store.db.Exec(ctx, query, publicationID)
	return dberr.Wrap(err, "delete_citations_by_publication")
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
	return fmt.Sprintf(` ORDER BY c.%s ASC, c.%s ASC`,
		schema.RefCitation.PublicationID, schema.RefCitation.Seq)
}
