// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

/*
Package schema declares table and column names for the relational model.

Every entity family follows the same two-table scheme: a primary table with
the surrogate key, parent foreign key, and scalar columns, plus a settings
table holding one row per (entity, locale, setting_name) for locale-scoped
attributes. Settings tables are uniform, so they share a single ref type.

Keeping identifiers here (instead of string literals in SQL) makes renames
mechanical and lets stores build column lists programmatically.
*/
package schema

// RefSettingsTable describes a per-locale key/value settings table.
//
// Locale is the empty string for non-localized settings. Rows are unique on
// (FK, Locale, SettingName).
type RefSettingsTable struct {
	Table        string
	ID           string
	FK           string
	Locale       string
	SettingName  string
	SettingValue string
}
