// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package affiliation

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
		schema.RefAffiliation.Table, schema.RefAffiliation.ID,
	)

	var exists bool
	if err := store.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "affiliation_exists")
	}
	return exists, nil
}

func (store *PostgresStore) Get(ctx context.Context, id int64) (*Affiliation, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s FROM %s WHERE %s = $1`,
		schema.RefAffiliation.ID, schema.RefAffiliation.AuthorID, schema.RefAffiliation.ROR,
		schema.RefAffiliation.Table, schema.RefAffiliation.ID,
	)

	a := &Affiliation{}
	err := store.db.QueryRow(ctx, query, id).Scan(&a.ID, &a.AuthorID, &a.ROR)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get_affiliation")
	}

	if err := store.hydrate(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (store *PostgresStore) Count(ctx context.Context, c Collector) (int, error) {
	q := c.Compile()
	query := fmt.Sprintf(`SELECT count(*) FROM %s a`, schema.RefAffiliation.Table) + q.WhereSQL()

	var total int
	if err := store.db.QueryRow(ctx, query, q.Args...).Scan(&total); err != nil {
		return 0, dberr.Wrap(err, "count_affiliations")
	}
	return total, nil
}

func (store *PostgresStore) IDs(ctx context.Context, c Collector) ([]int64, error) {
	q := c.Compile()
	query := fmt.Sprintf(`SELECT a.%s FROM %s a`, schema.RefAffiliation.ID, schema.RefAffiliation.Table) +
		q.WhereSQL() + fmt.Sprintf(` ORDER BY a.%s ASC`, schema.RefAffiliation.ID) + q.PagingSQL()

	rows, err := store.db.Query(ctx, query, q.Args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_affiliation_ids")
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, dberr.Wrap(err, "scan_affiliation_id")
		}
		ids = append(ids, id)
	}
	return ids, dberr.Wrap(rows.Err(), "list_affiliation_ids")
}

func (store *PostgresStore) Many(ctx context.Context, c Collector) iter.Seq2[*Affiliation, error] {
	return func(yield func(*Affiliation, error) bool) {
		q := c.Compile()
		query := fmt.Sprintf(`SELECT a.%s, a.%s, a.%s FROM %s a`,
			schema.RefAffiliation.ID, schema.RefAffiliation.AuthorID, schema.RefAffiliation.ROR,
			schema.RefAffiliation.Table,
		) + q.WhereSQL() + fmt.Sprintf(` ORDER BY a.%s ASC`, schema.RefAffiliation.ID) + q.PagingSQL()

		rows, err := store.db.Query(ctx, query, q.Args...)
		if err != nil {
			yield(nil, dberr.Wrap(err, "list_affiliations"))
			return
		}

		// Materialize primary rows first so settings hydration does not
		// interleave queries with an open result set.
		var records []*Affiliation
		for rows.Next() {
			a := &Affiliation{}
			if err := rows.Scan(&a.ID, &a.AuthorID, &a.ROR); err != nil {
				rows.Close()
				yield(nil, dberr.Wrap(err, "scan_affiliation"))
				return
			}
			records = append(records, a)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			yield(nil, dberr.Wrap(err, "list_affiliations"))
			return
		}

		for _, a := range records {
			if err := store.hydrate(ctx, a); err != nil {
				yield(nil, err)
				return
			}
			if !yield(a, nil) {
				return
			}
		}
	}
}

func (store *PostgresStore) Insert(ctx context.Context, a *Affiliation) (int64, error) {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2) RETURNING %s`,
		schema.RefAffiliation.Table, schema.RefAffiliation.AuthorID, schema.RefAffiliation.ROR,
		schema.RefAffiliation.ID,
	)

	if err := store.db.QueryRow(ctx, query, a.AuthorID, a.ROR).Scan(&a.ID); err != nil {
		return 0, dberr.Wrap(err, "insert_affiliation")
	}

	if err := settings.Insert(ctx, store.db, schema.RefAffiliationSettings, a.ID, settings.Localized("name", a.Name)); err != nil {
		return 0, dberr.Wrap(err, "insert_affiliation_settings")
	}

	return a.ID, nil
}

func (store *PostgresStore) Update(ctx context.Context, a *Affiliation) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1`,
		schema.RefAffiliation.Table, schema.RefAffiliation.AuthorID, schema.RefAffiliation.ROR,
		schema.RefAffiliation.ID,
	)

	cmd, err := store.db.Exec(ctx, query, a.ID, a.AuthorID, a.ROR)
	if err != nil {
		return dberr.Wrap(err, "update_affiliation")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	err = settings.Replace(ctx, store.db, schema.RefAffiliationSettings, a.ID, settings.Localized("name", a.Name))
	return dberr.Wrap(err, "replace_affiliation_settings")
}

func (store *PostgresStore) Delete(ctx context.Context, a *Affiliation) error {
	if err := settings.DeleteFor(ctx, store.db, schema.RefAffiliationSettings, a.ID); err != nil {
		return dberr.Wrap(err, "delete_affiliation_settings")
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.RefAffiliation.Table, schema.RefAffiliation.ID)
	cmd, err := store.db.Exec(ctx, query, a.ID)
	if err != nil {
		return dberr.Wrap(err, "delete_affiliation")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (store *PostgresStore) UpdateOrInsert(ctx context.Context, a *Affiliation) error {
	if a.ID == 0 {
		_, err := store.Insert(ctx, a)
		return err
	}
	return store.Update(ctx, a)
}

func (store *PostgresStore) DeleteByAuthorID(ctx context.Context, authorID int64) error {
	// Settings rows first, keyed through the primary table.
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s IN (SELECT %s FROM %s WHERE %s = $1)`,
		schema.RefAffiliationSettings.Table, schema.RefAffiliationSettings.FK,
		schema.RefAffiliation.ID, schema.RefAffiliation.Table, schema.RefAffiliation.AuthorID,
	)
	if _, err := store.db.Exec(ctx, query, authorID); err != nil {
		return dberr.Wrap(err, "delete_affiliation_settings_by_author")
	}

	query = fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.RefAffiliation.Table, schema.RefAffiliation.AuthorID,
	)
	_, err := store.db.Exec(ctx, query, authorID)
	return dberr.Wrap(err, "delete_affiliations_by_author")
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
func (store *PostgresStore) hydrate(ctx context.Context, a *Affiliation) error {
	byName, err := settings.Load(ctx, store.db, schema.RefAffiliationSettings, a.ID)
	if err != nil {
		return dberr.Wrap(err, "load_affiliation_settings")
	}
	a.Name = byName["name"]
	return nil
}
