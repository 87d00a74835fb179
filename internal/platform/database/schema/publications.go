package schema

// RefPublicationTable represents the 'publications' table
type RefPublicationTable struct {
	Table  string
	ID     string
	Status string
}

// RefPublication is the schema definition for publications
var RefPublication = RefPublicationTable{
	Table:  "publications",
	ID:     "publication_id",
	Status: "status",
}

func (t RefPublicationTable) Columns() []string {
	return []string{t.ID, t.Status}
}

// RefPublicationSettings is the schema definition for publication_settings
var RefPublicationSettings = RefSettingsTable{
	Table:        "publication_settings",
	ID:           "publication_setting_id",
	FK:           "publication_id",
	Locale:       "locale",
	SettingName:  "setting_name",
	SettingValue: "setting_value",
}
