// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package publication

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
		schema.RefPublication.Table, schema.RefPublication.ID,
	)

	var exists bool
	if err := store.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "publication_exists")
	}
	return exists, nil
}

func (store *PostgresStore) Get(ctx context.Context, id int64) (*Publication, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1`,
		schema.RefPublication.ID, schema.RefPublication.Status,
		schema.RefPublication.Table, schema.RefPublication.ID,
	)

	p := &Publication{}
	err := store.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get_publication")
	}

	if err := store.hydrate(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (store *PostgresStore) Count(ctx context.Context, c Collector) (int, error) {
	q := c.Compile()
	query := fmt.Sprintf(`SELECT count(*) FROM %s p`, schema.RefPublication.Table) + q.WhereSQL()

	var total int
	if err := store.db.QueryRow(ctx, query, q.Args...).Scan(&total); err != nil {
		return 0, dberr.Wrap(err, "count_publications")
	}
	return total, nil
}

func (store *PostgresStore) IDs(ctx context.Context, c Collector) ([]int64, error) {
	q := c.Compile()
	query := fmt.Sprintf(`SELECT p.%s FROM %s p`, schema.RefPublication.ID, schema.RefPublication.Table) +
		q.WhereSQL() + fmt.Sprintf(` ORDER BY p.%s ASC`, schema.RefPublication.ID) + q.PagingSQL()

	rows, err := store.db.Query(ctx, query, q.Args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_publication_ids")
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, dberr.Wrap(err, "scan_publication_id")
		}
		ids = append(ids, id)
	}
	return ids, dberr.Wrap(rows.Err(), "list_publication_ids")
}

func (store *PostgresStore) Many(ctx context.Context, c Collector) iter.Seq2[*Publication, error] {
	return func(yield func(*Publication, error) bool) {
		q := c.Compile()
		query := fmt.Sprintf(`SELECT p.%s, p.%s FROM %s p`,
			schema.RefPublication.ID, schema.RefPublication.Status,
			schema.RefPublication.Table,
		) + q.WhereSQL() + fmt.Sprintf(` ORDER BY p.%s ASC`, schema.RefPublication.ID) + q.PagingSQL()

		rows, err := store.db.Query(ctx, query, q.Args...)
		if err != nil {
			yield(nil, dberr.Wrap(err, "list_publications"))
			return
		}

		// Materialize primary rows first so settings hydration does not
		// interleave queries with an open result set.
		var records []*Publication
		for rows.Next() {
			p := &Publication{}
			if err := rows.Scan(&p.ID, &p.Status); err != nil {
				rows.Close()
				yield(nil, dberr.Wrap(err, "scan_publication"))
				return
			}
			records = append(records, p)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			yield(nil, dberr.Wrap(err, "list_publications"))
			return
		}

		for _, p := range records {
			if err := store.hydrate(ctx, p); err != nil {
				yield(nil, err)
				return
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

func (store *PostgresStore) Insert(ctx context.Context, p *Publication) (int64, error) {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1) RETURNING %s`,
		schema.RefPublication.Table, schema.RefPublication.Status, schema.RefPublication.ID,
	)

	if err := store.db.QueryRow(ctx, query, p.Status).Scan(&p.ID); err != nil {
		return 0, dberr.Wrap(err, "insert_publication")
	}

	if err := settings.Insert(ctx, store.db, schema.RefPublicationSettings, p.ID, settings.Localized("title", p.Title)); err != nil {
		return 0, dberr.Wrap(err, "insert_publication_settings")
	}

	return p.ID, nil
}

func (store *PostgresStore) Update(ctx context.Context, p *Publication) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE %s = $1`,
		schema.RefPublication.Table, schema.RefPublication.Status, schema.RefPublication.ID,
	)

	cmd, err := store.db.Exec(ctx, query, p.ID, p.Status)
	if err != nil {
		return dberr.Wrap(err, "update_publication")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	err = settings.Replace(ctx, store.db, schema.RefPublicationSettings, p.ID, settings.Localized("title", p.Title))
	return dberr.Wrap(err, "replace_publication_settings")
}

func (store *PostgresStore) Delete(ctx context.Context, p *Publication) error {
	if err := settings.DeleteFor(ctx, store.db, schema.RefPublicationSettings, p.ID); err != nil {
		return dberr.Wrap(err, "delete_publication_settings")
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.RefPublication.Table, schema.RefPublication.ID)
	cmd, err := store.db.Exec(ctx, query, p.ID)
	if err != nil {
		return dberr.Wrap(err, "delete_publication")
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

// hydrate merges the settings rows into the record's locale-scoped fields.
func (store *PostgresStore) hydrate(ctx context.Context, p *Publication) error {
	byName, err := settings.Load(ctx, store.db, schema.RefPublicationSettings, p.ID)
	if err != nil {
		return dberr.Wrap(err, "load_publication_settings")
	}
	p.Title = byName["title"]
	return nil
}
