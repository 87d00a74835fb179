// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package recommendation

// Reviewer recommendation statuses.
const (
	StatusInactive = 0
	StatusActive   = 1
)

// Recommendation is one reviewer recommendation option of a review context.
//
// Value is the numeric code reviewers submit and is unique per context;
// zero means "assign the next free code on insert". RemovableBase is the
// persisted flag: built-in options ship with it false and can never be
// deleted. Removable is the derived, read-side answer: false when the base
// flag is false, otherwise true iff no review assignment in the context
// references the value. The derived field is computed on access and never
// written back.
type Recommendation struct {
	ID            int64 `json:"id"`
	ContextID     int64 `json:"context_id"`
	Value         int   `json:"value"`
	Status        int   `json:"status"`
	RemovableBase bool  `json:"-"`

	Removable bool `json:"removable"`

	// Title holds the option label per locale, stored in the settings table.
	Title map[string]string `json:"title"`
}

// IsActive reports whether the option is offered to reviewers.
func (r *Recommendation) IsActive() bool {
	return r.Status == StatusActive
}

// TitleFor returns the label in the given locale, falling back to any
// available locale when that locale has no entry.
func (r *Recommendation) TitleFor(locale string) string {
	if title := r.Title[locale]; title != "" {
		return title
	}
	for _, title := range r.Title {
		if title != "" {
			return title
		}
	}
	return ""
}

// Global field names for validation
const (
	FieldContextID = "context_id"
	FieldValue     = "value"
	FieldStatus    = "status"
	FieldTitle     = "title"
)
