// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package ror

// Registry organization statuses mirrored from the upstream ROR data dump.
const (
	StatusInactive = 0
	StatusActive   = 1
)

// Ror is one cached record of the Research Organization Registry.
//
// The cache is synced from registry dumps; records are never authored
// locally. ROR holds the canonical https://ror.org/... identifier and is
// unique across the table.
type Ror struct {
	ID            int64  `json:"id"`
	ROR           string `json:"ror"`
	DisplayLocale string `json:"display_locale"`
	Status        int    `json:"status"`

	// Name holds the organization name per locale, stored in the settings table.
	Name map[string]string `json:"name"`
}

// IsActive reports whether the registry still lists this organization.
func (r *Ror) IsActive() bool {
	return r.Status == StatusActive
}

// DisplayName returns the name in the registry's display locale, falling
// back to any available locale when the display locale has no entry.
func (r *Ror) DisplayName() string {
	if name := r.Name[r.DisplayLocale]; name != "" {
		return name
	}
	for _, name := range r.Name {
		if name != "" {
			return name
		}
	}
	return ""
}

// Global field names for validation
const (
	FieldROR           = "ror"
	FieldDisplayLocale = "display_locale"
	FieldStatus        = "status"
	FieldName          = "name"
)
