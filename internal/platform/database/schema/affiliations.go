package schema

// RefAffiliationTable represents the 'author_affiliations' table
type RefAffiliationTable struct {
	Table    string
	ID       string
	AuthorID string
	ROR      string
}

// RefAffiliation is the schema definition for author_affiliations
var RefAffiliation = RefAffiliationTable{
	Table:    "author_affiliations",
	ID:       "author_affiliation_id",
	AuthorID: "author_id",
	ROR:      "ror",
}

func (t RefAffiliationTable) Columns() []string {
	return []string{t.ID, t.AuthorID, t.ROR}
}

// RefAffiliationSettings is the schema definition for author_affiliation_settings
var RefAffiliationSettings = RefSettingsTable{
	Table:        "author_affiliation_settings",
	ID:           "author_affiliation_setting_id",
	FK:           "author_affiliation_id",
	Locale:       "locale",
	SettingName:  "setting_name",
	SettingValue: "setting_value",
}
