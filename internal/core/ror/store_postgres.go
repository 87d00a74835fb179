// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package ror

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
		schema.RefRor.Table, schema.RefRor.ID,
	)

	var exists bool
	if err := store.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "ror_exists")
	}
	return exists, nil
}

func (store *PostgresStore) Get(ctx context.Context, id int64) (*Ror, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1`,
		schema.RefRor.ID, schema.RefRor.ROR, schema.RefRor.DisplayLocale, schema.RefRor.Status,
		schema.RefRor.Table, schema.RefRor.ID,
	)

	return store.getOne(ctx, query, id)
}

func (store *PostgresStore) GetByROR(ctx context.Context, rorURI string) (*Ror, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1`,
		schema.RefRor.ID, schema.RefRor.ROR, schema.RefRor.DisplayLocale, schema.RefRor.Status,
		schema.RefRor.Table, schema.RefRor.ROR,
	)

	return store.getOne(ctx, query, rorURI)
}

// getOne loads a single primary row and hydrates its settings.
// Absence is reported as (nil, nil), never as an error.
func (store *PostgresStore) getOne(ctx context.Context, query string, arg any) (*Ror, error) {
	r := &Ror{}
	err := store.db.QueryRow(ctx, query, arg).Scan(&r.ID, &r.ROR, &r.DisplayLocale, &r.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get_ror")
	}

	if err := store.hydrate(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (store *PostgresStore) Count(ctx context.Context, c Collector) (int, error) {
	q := c.Compile()
	query := fmt.Sprintf(`SELECT count(*) FROM %s r`, schema.RefRor.Table) + q.WhereSQL()

	var total int
	if err := store.db.QueryRow(ctx, query, q.Args...).Scan(&total); err != nil {
		return 0, dberr.Wrap(err, "count_rors")
	}
	return total, nil
}

func (store *PostgresStore) IDs(ctx context.Context, c Collector) ([]int64, error) {
	q := c.Compile()
	query := fmt.Sprintf(`SELECT r.%s FROM %s r`, schema.RefRor.ID, schema.RefRor.Table) +
		q.WhereSQL() + fmt.Sprintf(` ORDER BY r.%s ASC`, schema.RefRor.ID) + q.PagingSQL()

	rows, err := store.db.Query(ctx, query, q.Args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_ror_ids")
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, dberr.Wrap(err, "scan_ror_id")
		}
		ids = append(ids, id)
	}
	return ids, dberr.Wrap(rows.Err(), "list_ror_ids")
}

func (store *PostgresStore) Many(ctx context.Context, c Collector) iter.Seq2[*Ror, error] {
	return func(yield func(*Ror, error) bool) {
		q := c.Compile()
		query := fmt.Sprintf(`SELECT r.%s, r.%s, r.%s, r.%s FROM %s r`,
			schema.RefRor.ID, schema.RefRor.ROR, schema.RefRor.DisplayLocale, schema.RefRor.Status,
			schema.RefRor.Table,
		) + q.WhereSQL() + fmt.Sprintf(` ORDER BY r.%s ASC`, schema.RefRor.ID) + q.PagingSQL()

		rows, err := store.db.Query(ctx, query, q.Args...)
		if err != nil {
			yield(nil, dberr.Wrap(err, "list_rors"))
			return
		}

		// Materialize primary rows first so settings hydration does not
		// interleave queries with an open result set.
		var records []*Ror
		for rows.Next() {
			r := &Ror{}
			if err := rows.Scan(&r.ID, &r.ROR, &r.DisplayLocale, &r.Status); err != nil {
				rows.Close()
				yield(nil, dberr.Wrap(err, "scan_ror"))
				return
			}
			records = append(records, r)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			yield(nil, dberr.Wrap(err, "list_rors"))
			return
		}

		// Hydrate lazily, one record per step of the sequence.
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

func (store *PostgresStore) Insert(ctx context.Context, r *Ror) (int64, error) {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3) RETURNING %s`,
		schema.RefRor.Table, schema.RefRor.ROR, schema.RefRor.DisplayLocale, schema.RefRor.Status,
		schema.RefRor.ID,
	)

	if err := store.db.QueryRow(ctx, query, r.ROR, r.DisplayLocale, r.Status).Scan(&r.ID); err != nil {
		return 0, dberr.Wrap(err, "insert_ror")
	}

	if err := settings.Insert(ctx, store.db, schema.RefRorSettings, r.ID, settings.Localized("name", r.Name)); err != nil {
		return 0, dberr.Wrap(err, "insert_ror_settings")
	}

	return r.ID, nil
}

func (store *PostgresStore) Update(ctx context.Context, r *Ror) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4 WHERE %s = $1`,
		schema.RefRor.Table, schema.RefRor.ROR, schema.RefRor.DisplayLocale, schema.RefRor.Status,
		schema.RefRor.ID,
	)

	cmd, err := store.db.Exec(ctx, query, r.ID, r.ROR, r.DisplayLocale, r.Status)
	if err != nil {
		return dberr.Wrap(err, "update_ror")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	// Settings are fully replaced to keep partial-merge bugs out of the
	// write path, at the cost of rewriting unchanged rows.
	err = settings.Replace(ctx, store.db, schema.RefRorSettings, r.ID, settings.Localized("name", r.Name))
	return dberr.Wrap(err, "replace_ror_settings")
}

func (store *PostgresStore) Delete(ctx context.Context, r *Ror) error {
	// Settings first: referential integrity must not depend on the FK
	// cascade alone.
	if err := settings.DeleteFor(ctx, store.db, schema.RefRorSettings, r.ID); err != nil {
		return dberr.Wrap(err, "delete_ror_settings")
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.RefRor.Table, schema.RefRor.ID)
	cmd, err := store.db.Exec(ctx, query, r.ID)
	if err != nil {
		return dberr.Wrap(err, "delete_ror")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (store *PostgresStore) UpdateOrInsert(ctx context.Context, r *Ror) error {
	if r.ID == 0 {
		_, err := store.Insert(ctx, r)
		return err
	}
	return store.Update(ctx, r)
}

func (store *PostgresStore) InTx(ctx context.Context, fn func(Store) error) error {
	if store.pool == nil {
		// Already transactional; run against the same scope.
		return fn(store)
	}
	return pgx.BeginFunc(ctx, store.pool, func(tx pgx.Tx) error {
		return fn(&PostgresStore{db: tx})
	})
}

// hydrate merges the settings rows into the record's locale-scoped fields.
func (store *PostgresStore) hydrate(ctx context.Context, r *Ror) error {
	byName, err := settings.Load(ctx, store.db, schema.RefRorSettings, r.ID)
	if err != nil {
		return dberr.Wrap(err, "load_ror_settings")
	}
	r.Name = byName["name"]
	return nil
}
