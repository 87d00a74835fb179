package schema

// RefRecommendationTable represents the 'reviewer_recommendations' table
type RefRecommendationTable struct {
	Table     string
	ID        string
	ContextID string
	Value     string
	Status    string
	Removable string
}

// RefRecommendation is the schema definition for reviewer_recommendations
var RefRecommendation = RefRecommendationTable{
	Table:     "reviewer_recommendations",
	ID:        "recommendation_id",
	ContextID: "context_id",
	Value:     "value",
	Status:    "status",
	Removable: "removable",
}

func (t RefRecommendationTable) Columns() []string {
	return []string{t.ID, t.ContextID, t.Value, t.Status, t.Removable}
}

// RefRecommendationSettings is the schema definition for reviewer_recommendation_settings
var RefRecommendationSettings = RefSettingsTable{
	Table:        "reviewer_recommendation_settings",
	ID:           "reviewer_recommendation_setting_id",
	FK:           "recommendation_id",
	Locale:       "locale",
	SettingName:  "setting_name",
	SettingValue: "setting_value",
}

// RefReviewAssignmentTable represents the 'review_assignments' table.
// Only the columns needed to derive recommendation removability are declared.
type RefReviewAssignmentTable struct {
	Table          string
	ID             string
	ContextID      string
	Recommendation string
}

// RefReviewAssignment is the schema definition for review_assignments
var RefReviewAssignment = RefReviewAssignmentTable{
	Table:          "review_assignments",
	ID:             "review_assignment_id",
	ContextID:      "context_id",
	Recommendation: "recommendation",
}
