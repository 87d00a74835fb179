// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

/*
Package settings implements the shared table-mapping machinery for
per-locale key/value settings tables.

# Storage model

Every localizable entity pairs its primary table with a settings table:
one row per (entity, locale, setting_name), unique on that triple, with the
empty-string locale reserved for non-localized settings. This package owns
the read and write paths for those rows so each entity store only maps its
own primary columns.

# Write semantics

Writes are full replacement: delete every settings row for the entity, then
re-insert the current state. Empty values are omitted rather than stored as
empty rows, so reloading an entity never resurrects blank locale entries.
The trade-off is write amplification for settings that did not change.
*/
package settings

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/openpress/scholar/internal/platform/database/schema"
)

// Querier is the subset of pgx operations the settings mapper needs.
// Both *pgxpool.Pool and pgx.Tx satisfy it, so the same code serves
// single-statement calls and transactional reconciliation.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Row is one settings-table row for an entity.
type Row struct {
	Locale string
	Name   string
	Value  string
}

// Localized flattens a locale-keyed value map into settings rows for one
// setting name. Empty and whitespace-free blank values are skipped.
func Localized(name string, values map[string]string) []Row {
	rows := make([]Row, 0, len(values))
	for locale, value := range values {
		if value == "" {
			continue
		}
		rows = append(rows, Row{Locale: locale, Name: name, Value: value})
	}
	return rows
}

// Load reads every settings row for one entity and groups the values by
// setting name, then by locale.
func Load(ctx context.Context, db Querier, ref schema.RefSettingsTable, entityID int64) (map[string]map[string]string, error) {
	query := fmt.Sprintf(
		`SELECT %s, %s, %s FROM %s WHERE %s = $1`,
		ref.Locale, ref.SettingName, ref.SettingValue, ref.Table, ref.FK,
	)

	rows, err := db.Query(ctx, query, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byName := make(map[string]map[string]string)
	for rows.Next() {
		var locale, name, value string
		if err := rows.Scan(&locale, &name, &value); err != nil {
			return nil, err
		}
		if byName[name] == nil {
			byName[name] = make(map[string]string)
		}
		byName[name][locale] = value
	}

	return byName, rows.Err()
}

// Replace deletes all settings rows for the entity and re-inserts the given
// set. Rows with empty values are never written.
func Replace(ctx context.Context, db Querier, ref schema.RefSettingsTable, entityID int64, settingRows []Row) error {
	if err := DeleteFor(ctx, db, ref, entityID); err != nil {
		return err
	}
	return Insert(ctx, db, ref, entityID, settingRows)
}

// Insert writes the given settings rows for the entity. Empty values are
// skipped, not stored as empty rows.
func Insert(ctx context.Context, db Querier, ref schema.RefSettingsTable, entityID int64, settingRows []Row) error {
	query := fmt.Sprintf(
		`INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4)`,
		ref.Table, ref.FK, ref.Locale, ref.SettingName, ref.SettingValue,
	)

	for _, row := range settingRows {
		if row.Value == "" {
			continue
		}
		if _, err := db.Exec(ctx, query, entityID, row.Locale, row.Name, row.Value); err != nil {
			return err
		}
	}

	return nil
}

// DeleteFor removes every settings row belonging to the entity.
func DeleteFor(ctx context.Context, db Querier, ref schema.RefSettingsTable, entityID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, ref.Table, ref.FK)
	_, err := db.Exec(ctx, query, entityID)
	return err
}
