package schema

// RefAuthorTable represents the 'authors' table
type RefAuthorTable struct {
	Table         string
	ID            string
	PublicationID string
	Email         string
	Seq           string
}

// RefAuthor is the schema definition for authors
var RefAuthor = RefAuthorTable{
	Table:         "authors",
	ID:            "author_id",
	PublicationID: "publication_id",
	Email:         "email",
	Seq:           "seq",
}

func (t RefAuthorTable) Columns() []string {
	return []string{t.ID, t.PublicationID, t.Email, t.Seq}
}

// RefAuthorSettings is the schema definition for author_settings
var RefAuthorSettings = RefSettingsTable{
	Table:        "author_settings",
	ID:           "author_setting_id",
	FK:           "author_id",
	Locale:       "locale",
	SettingName:  "setting_name",
	SettingValue: "setting_value",
}
