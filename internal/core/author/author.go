// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package author

import (
	"context"

	"github.com/openpress/scholar/internal/core/affiliation"
)

// AffiliationLoader fetches an author's affiliations on demand.
type AffiliationLoader interface {
	ListForAuthor(ctx context.Context, authorID int64) ([]*affiliation.Affiliation, error)
}

// Author is one contributor of a publication.
//
// Seq is the position in the publication's byline. Given and family names
// are locale-scoped and stored in the settings table.
type Author struct {
	ID            int64  `json:"id"`
	PublicationID int64  `json:"publication_id"`
	Email         string `json:"email"`
	Seq           int    `json:"seq"`

	// GivenName and FamilyName hold the name parts per locale.
	GivenName  map[string]string `json:"given_name"`
	FamilyName map[string]string `json:"family_name"`

	// affiliations memoizes the lazily fetched affiliation set for this
	// in-memory value's lifetime. Mutations through the service invalidate it.
	affiliations       []*affiliation.Affiliation
	affiliationsLoaded bool
}

// Affiliations returns the author's affiliations, fetching them through
// the loader on first call and memoizing the result. The memo lives as
// long as this value; reloading requires [Author.InvalidateAffiliations].
func (a *Author) Affiliations(ctx context.Context, loader AffiliationLoader) ([]*affiliation.Affiliation, error) {
	if a.affiliationsLoaded {
		return a.affiliations, nil
	}

	records, err := loader.ListForAuthor(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.affiliations = records
	a.affiliationsLoaded = true
	return a.affiliations, nil
}

// InvalidateAffiliations drops the memoized affiliation set, forcing the
// next [Author.Affiliations] call to fetch fresh data.
func (a *Author) InvalidateAffiliations() {
	a.affiliations = nil
	a.affiliationsLoaded = false
}

// FullNameFor renders "given family" in the given locale, falling back
// per name part to any available locale.
func (a *Author) FullNameFor(locale string) string {
	given := localized(a.GivenName, locale)
	family := localized(a.FamilyName, locale)
	switch {
	case given == "":
		return family
	case family == "":
		return given
	}
	return given + " " + family
}

func localized(values map[string]string, locale string) string {
	if v := values[locale]; v != "" {
		return v
	}
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Global field names for validation
const (
	FieldPublicationID = "publication_id"
	FieldEmail         = "email"
	FieldSeq           = "seq"
	FieldGivenName     = "given_name"
	FieldFamilyName    = "family_name"
)
