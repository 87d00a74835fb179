// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package affiliation

// Affiliation links an author to an organization.
//
// The link is either free-text (localized Name, no registry backing) or
// registry-backed (ROR set, Name mirrored from the registry cache at write
// time). ROR is nullable in storage; nil means free-text.
type Affiliation struct {
	ID       int64   `json:"id"`
	AuthorID int64   `json:"author_id"`
	ROR      *string `json:"ror"`

	// Name holds the organization name per locale, stored in the settings table.
	Name map[string]string `json:"name"`
}

// HasROR reports whether the affiliation is backed by a registry record.
func (a *Affiliation) HasROR() bool {
	return a.ROR != nil && *a.ROR != ""
}

// NameFor returns the name in the given locale, falling back to any
// available locale when that locale has no entry.
func (a *Affiliation) NameFor(locale string) string {
	if name := a.Name[locale]; name != "" {
		return name
	}
	for _, name := range a.Name {
		if name != "" {
			return name
		}
	}
	return ""
}

// Global field names for validation
const (
	FieldAuthorID = "author_id"
	FieldROR      = "ror"
	FieldName     = "name"
)
