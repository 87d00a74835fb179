// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package author

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
		schema.RefAuthor.Table, schema.RefAuthor.ID,
	)

	var exists bool
	if err := store.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, dberr.Wrap(err, "author_exists")
	}
	return exists, nil
}

func (store *PostgresStore) Get(ctx context.Context, id int64) (*Author, error) {
	query := fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s WHERE %s = $1`,
		schema.RefAuthor.ID, schema.RefAuthor.PublicationID,
		schema.RefAuthor.Email, schema.RefAuthor.Seq,
		schema.RefAuthor.Table, schema.RefAuthor.ID,
	)

	a := &Author{}
	err := store.db.QueryRow(ctx, query, id).Scan(&a.ID, &a.PublicationID, &a.Email, &a.Seq)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, dberr.Wrap(err, "get_author")
	}

	if err := store.hydrate(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (store *PostgresStore) Count(ctx context.Context, c Collector) (int, error) {
	q := c.Compile()
	query := fmt.Sprintf(`SELECT count(*) FROM %s au`, schema.RefAuthor.Table) + q.WhereSQL()

	var total int
	if err := store.db.QueryRow(ctx, query, q.Args...).Scan(&total); err != nil {
		return 0, dberr.Wrap(err, "count_authors")
	}
	return total, nil
}

func (store *PostgresStore) IDs(ctx context.Context, c Collector) ([]int64, error) {
	q := c.Compile()
	query := fmt.Sprintf(`SELECT au.%s FROM %s au`, schema.RefAuthor.ID, schema.RefAuthor.Table) +
		q.WhereSQL() + store.orderSQL() + q.PagingSQL()

	rows, err := store.db.Query(ctx, query, q.Args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_author_ids")
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, dberr.Wrap(err, "scan_author_id")
		}
		ids = append(ids, id)
	}
	return ids, dberr.Wrap(rows.Err(), "list_author_ids")
}

func (store *PostgresStore) Many(ctx context.Context, c Collector) iter.Seq2[*Author, error] {
	return func(yield func(*Author, error) bool) {
		q := c.Compile()
		query := fmt.Sprintf(`SELECT au.%s, au.%s, au.%s, au.%s FROM %s au`,
			schema.RefAuthor.ID, schema.RefAuthor.PublicationID,
			schema.RefAuthor.Email, schema.RefAuthor.Seq,
			schema.RefAuthor.Table,
		) + q.WhereSQL() + store.orderSQL() + q.PagingSQL()

		rows, err := store.db.Query(ctx, query, q.Args...)
		if err != nil {
			yield(nil, dberr.Wrap(err, "list_authors"))
			return
		}

		// Materialize primary rows first so settings hydration does not
		// interleave queries with an open result set.
		var records []*Author
		for rows.Next() {
			a := &Author{}
			if err := rows.Scan(&a.ID, &a.PublicationID, &a.Email, &a.Seq); err != nil {
				rows.Close()
				yield(nil, dberr.Wrap(err, "scan_author"))
				return
			}
			records = append(records, a)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			yield(nil, dberr.Wrap(err, "list_authors"))
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

func (store *PostgresStore) Insert(ctx context.Context, a *Author) (int64, error) {
	// Seq <= 0 appends after the publication's current byline.
	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s)
		 VALUES ($1, $2, CASE WHEN $3 > 0 THEN $3
		   ELSE (SELECT COALESCE(MAX(%s), 0) + 1 FROM %s WHERE %s = $1) END)
		 RETURNING %s, %s`,
		schema.RefAuthor.Table,
		schema.RefAuthor.PublicationID, schema.RefAuthor.Email, schema.RefAuthor.Seq,
		schema.RefAuthor.Seq, schema.RefAuthor.Table, schema.RefAuthor.PublicationID,
		schema.RefAuthor.ID, schema.RefAuthor.Seq,
	)

	err := store.db.QueryRow(ctx, query, a.PublicationID, a.Email, a.Seq).Scan(&a.ID, &a.Seq)
	if err != nil {
		return 0, dberr.Wrap(err, "insert_author")
	}

	if err := settings.Insert(ctx, store.db, schema.RefAuthorSettings, a.ID, store.settingRows(a)); err != nil {
		return 0, dberr.Wrap(err, "insert_author_settings")
	}

	return a.ID, nil
}

func (store *PostgresStore) Update(ctx context.Context, a *Author) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $2, %s = $3, %s = $4 WHERE %s = $1`,
		schema.RefAuthor.Table,
		schema.RefAuthor.PublicationID, schema.RefAuthor.Email, schema.RefAuthor.Seq,
		schema.RefAuthor.ID,
	)

	cmd, err := store.db.Exec(ctx, query, a.ID, a.PublicationID, a.Email, a.Seq)
	if err != nil {
		return dberr.Wrap(err, "update_author")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	err = settings.Replace(ctx, store.db, schema.RefAuthorSettings, a.ID, store.settingRows(a))
	return dberr.Wrap(err, "replace_author_settings")
}

func (store *PostgresStore) Delete(ctx context.Context, a *Author) error {
	if err := settings.DeleteFor(ctx, store.db, schema.RefAuthorSettings, a.ID); err != nil {
		return dberr.Wrap(err, "delete_author_settings")
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.RefAuthor.Table, schema.RefAuthor.ID)
	cmd, err := store.db.Exec(ctx, query, a.ID)
	if err != nil {
		return dberr.Wrap(err, "delete_author")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (store *PostgresStore) DeleteByPublicationID(ctx context.Context, publicationID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s IN (SELECT %s FROM %s WHERE %s = $1)`,
		schema.RefAuthorSettings.Table, schema.RefAuthorSettings.FK,
		schema.RefAuthor.ID, schema.RefAuthor.Table, schema.RefAuthor.PublicationID,
	)
	if _, err := store.db.Exec(ctx, query, publicationID); err != nil {
		return dberr.Wrap(err, "delete_author_settings_by_publication")
	}

	query = fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.RefAuthor.Table, schema.RefAuthor.PublicationID,
	)
	_, err := store.db.Exec(ctx, query, publicationID)
	return dberr.Wrap(err, "delete_authors_by_publication")
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
	return fmt.Sprintf(` ORDER BY au.%s ASC, au.%s ASC`,
		schema.RefAuthor.PublicationID, schema.RefAuthor.Seq)
}

func (store *PostgresStore) settingRows(a *Author) []settings.Row {
	rows := settings.Localized("given_name", a.GivenName)
	return append(rows, settings.Localized("family_name", a.FamilyName)...)
}

// hydrate merges the settings rows into the record's locale-scoped fields.
func (store *PostgresStore) hydrate(ctx context.Context, a *Author) error {
	byName, err := settings.Load(ctx, store.db, schema.RefAuthorSettings, a.ID)
	if err != nil {
		return dberr.Wrap(err, "load_author_settings")
	}
	a.GivenName = byName["given_name"]
	a.FamilyName = byName["family_name"]
	return nil
}
