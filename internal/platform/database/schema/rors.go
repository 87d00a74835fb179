package schema

// RefRorTable represents the 'rors' registry cache table
type RefRorTable struct {
	Table         string
	ID            string
	ROR           string
	DisplayLocale string
	Status        string
}

// RefRor is the schema definition for rors
var RefRor = RefRorTable{
	Table:         "rors",
	ID:            "ror_id",
	ROR:           "ror",
	DisplayLocale: "display_locale",
	Status:        "status",
}

func (t RefRorTable) Columns() []string {
	return []string{t.ID, t.ROR, t.DisplayLocale, t.Status}
}

// RefRorSettings is the schema definition for ror_settings
var RefRorSettings = RefSettingsTable{
	Table:        "ror_settings",
	ID:           "ror_setting_id",
	FK:           "ror_id",
	Locale:       "locale",
	SettingName:  "setting_name",
	SettingValue: "setting_value",
}
