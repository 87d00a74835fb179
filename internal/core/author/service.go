// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package author

import (
	"context"
	"log/slog"
	"strings"

	"github.com/openpress/scholar/internal/core/affiliation"
	"github.com/openpress/scholar/internal/platform/apperr"
	"github.com/openpress/scholar/internal/platform/validate"
)

// # Collaborator Contracts

// AffiliationManager is the slice of the affiliation service the author
// aggregate drives: lazy reads, full-set reconciliation, and the cascade
// on author deletion. Satisfied by *affiliation.Service.
type AffiliationManager interface {
	ListForAuthor(ctx context.Context, authorID int64) ([]*affiliation.Affiliation, error)
	SyncForAuthor(ctx context.Context, authorID int64, desired []*affiliation.Affiliation, allowedLocales []string, primaryLocale string) error
	DeleteByAuthorID(ctx context.Context, authorID int64) error
}

// PublicationDirectory answers existence checks for publications.
type PublicationDirectory interface {
	PublicationExists(ctx context.Context, publicationID int64) (bool, error)
}

// Directory adapts a [Store] to the existence checks other domains need,
// without handing them the full service.
type Directory struct {
	store Store
}

func NewDirectory(store Store) *Directory {
	return &Directory{store: store}
}

func (d *Directory) AuthorExists(ctx context.Context, authorID int64) (bool, error) {
	return d.store.Exists(ctx, authorID)
}

// # Service Layer

// Service orchestrates business logic for publication contributors.
type Service struct {
	store        Store
	affiliations AffiliationManager
	publications PublicationDirectory
	logger       *slog.Logger
}

// NewService constructs a new [Service] with its store and collaborators.
func NewService(store Store, affiliations AffiliationManager, publications PublicationDirectory, logger *slog.Logger) *Service {
	return &Service{
		store:        store,
		affiliations: affiliations,
		publications: publications,
		logger:       logger,
	}
}

// Patch carries a partial edit. Nil fields are left unchanged.
type Patch struct {
	Email      *string           `json:"email"`
	Seq        *int              `json:"seq"`
	GivenName  map[string]string `json:"given_name"`
	FamilyName map[string]string `json:"family_name"`
}

// # Validation

/*
Validate checks a candidate author and returns the rule failures as data.
An empty slice means the candidate is valid.

Parameters:
  - existing: *Author (current persisted state, nil for adds)
  - candidate: *Author (the full intended state)
  - allowedLocales: []string (site locale whitelist for the name maps)
  - primaryLocale: string

Returns:
  - []apperr.FieldError: One entry per failed rule
*/
func (service *Service) Validate(ctx context.Context, existing, candidate *Author, allowedLocales []string, primaryLocale string) []apperr.FieldError {
	v := &validate.Validator{}

	v.Positive(FieldPublicationID, candidate.PublicationID)

	v.Required(FieldEmail, candidate.Email)
	v.Custom(FieldEmail, candidate.Email != "" && !strings.Contains(candidate.Email, "@"),
		"Must be a valid email address")
	v.MaxLen(FieldEmail, candidate.Email, 255)

	v.RequiredPrimary(FieldGivenName, candidate.GivenName, primaryLocale)
	v.AllowedLocales(FieldGivenName, candidate.GivenName, allowedLocales)
	v.MaxLenPerLocale(FieldGivenName, candidate.GivenName, 255)

	v.AllowedLocales(FieldFamilyName, candidate.FamilyName, allowedLocales)
	v.MaxLenPerLocale(FieldFamilyName, candidate.FamilyName, 255)

	// Seq <= 0 is an append request on insert, but a persisted record
	// must always hold a real byline position.
	if existing != nil {
		v.Custom(FieldSeq, candidate.Seq < 1, "Must be 1 or greater")
	}

	publicationChanged := existing == nil || existing.PublicationID != candidate.PublicationID
	if candidate.PublicationID > 0 && publicationChanged {
		exists, err := service.publications.PublicationExists(ctx, candidate.PublicationID)
		v.Custom(FieldPublicationID, err != nil, "Publication lookup failed")
		v.Custom(FieldPublicationID, err == nil && !exists, "Publication does not exist")
	}

	return v.Errors()
}

// # Read Operations

/*
Get retrieves a single author by its surrogate ID.

Returns:
  - *Author: The hydrated record
  - error: NOT_FOUND when the ID is unknown
*/
func (service *Service) Get(ctx context.Context, id int64) (*Author, error) {
	a, err := service.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound("Author")
	}
	return a, nil
}

/*
List retrieves the authors matched by the collector, plus the unpaged
total for pagination metadata.
*/
func (service *Service) List(ctx context.Context, c Collector) ([]*Author, int, error) {
	total, err := service.store.Count(ctx, c.Limit(nil).Offset(nil))
	if err != nil {
		return nil, 0, err
	}

	var records []*Author
	for a, err := range service.store.Many(ctx, c) {
		if err != nil {
			return nil, 0, err
		}
		records = append(records, a)
	}
	return records, total, nil
}

/*
GetAffiliations returns an author's affiliations through the entity memo:
the first call per in-memory author fetches, later calls reuse.
*/
func (service *Service) GetAffiliations(ctx context.Context, a *Author) ([]*affiliation.Affiliation, error) {
	return a.Affiliations(ctx, service.affiliations)
}

// # Write Operations

/*
Add validates and persists a new author. A candidate with Seq <= 0 is
appended to the publication's byline.

Returns:
  - error: VALIDATION_ERROR, or storage errors
*/
func (service *Service) Add(ctx context.Context, a *Author, allowedLocales []string, primaryLocale string) error {
	if errs := service.Validate(ctx, nil, a, allowedLocales, primaryLocale); len(errs) > 0 {
		return apperr.ValidationError("Validation failed", errs...)
	}

	if _, err := service.store.Insert(ctx, a); err != nil {
		return err
	}

	service.logger.Info("author_added",
		slog.Int64("author_id", a.ID),
		slog.Int64("publication_id", a.PublicationID),
	)
	return nil
}

/*
Edit applies a patch to an existing author and persists the result.

Description: The stored record is never mutated in place. The patch is
applied to a copy, the copy is validated and written, and the copy is
returned.

Returns:
  - *Author: The new persisted state
  - error: NOT_FOUND or VALIDATION_ERROR
*/
func (service *Service) Edit(ctx context.Context, id int64, patch Patch, allowedLocales []string, primaryLocale string) (*Author, error) {
	original, err := service.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	edited := applyPatch(original, patch)
	if errs := service.Validate(ctx, original, edited, allowedLocales, primaryLocale); len(errs) > 0 {
		return nil, apperr.ValidationError("Validation failed", errs...)
	}

	if err := service.store.Update(ctx, edited); err != nil {
		return nil, err
	}

	service.logger.Info("author_edited", slog.Int64("author_id", edited.ID))
	return edited, nil
}

/*
Delete removes an author and cascades to their affiliations through the
affiliation service, so the settings rows go with them.

Returns:
  - error: NOT_FOUND, or storage errors
*/
func (service *Service) Delete(ctx context.Context, id int64) error {
	a, err := service.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := service.affiliations.DeleteByAuthorID(ctx, id); err != nil {
		return err
	}
	if err := service.store.Delete(ctx, a); err != nil {
		return err
	}

	service.logger.Info("author_deleted", slog.Int64("author_id", id))
	return nil
}

/*
DeleteByPublicationID removes every contributor of a publication, cascading
each author's affiliations first. Used by cascading publication deletion.
*/
func (service *Service) DeleteByPublicationID(ctx context.Context, publicationID int64) error {
	ids, err := service.store.IDs(ctx, NewCollector().FilterByPublicationIDs([]int64{publicationID}))
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := service.affiliations.DeleteByAuthorID(ctx, id); err != nil {
			return err
		}
	}

	if err := service.store.DeleteByPublicationID(ctx, publicationID); err != nil {
		return err
	}

	service.logger.Info("authors_deleted_by_publication",
		slog.Int64("publication_id", publicationID),
		slog.Int("count", len(ids)),
	)
	return nil
}

/*
SaveAffiliations reconciles an author's affiliations against the desired
full set and invalidates the author's memoized affiliation list.

Parameters:
  - a: *Author (persisted author; its memo is invalidated on success)
  - desired: []*affiliation.Affiliation (the complete intended set)
  - allowedLocales: []string
  - primaryLocale: string

Returns:
  - error: VALIDATION_ERROR, or storage errors
*/
func (service *Service) SaveAffiliations(ctx context.Context, a *Author, desired []*affiliation.Affiliation, allowedLocales []string, primaryLocale string) error {
	if err := service.affiliations.SyncForAuthor(ctx, a.ID, desired, allowedLocales, primaryLocale); err != nil {
		return err
	}

	a.InvalidateAffiliations()

	service.logger.Info("author_affiliations_saved",
		slog.Int64("author_id", a.ID),
		slog.Int("count", len(desired)),
	)
	return nil
}

// # Internal Helpers

// applyPatch produces a new record with the patch applied over the
// original. The original (and its memo) is left untouched.
func applyPatch(original *Author, patch Patch) *Author {
	edited := &Author{
		ID:            original.ID,
		PublicationID: original.PublicationID,
		Email:         original.Email,
		Seq:           original.Seq,
		GivenName:     make(map[string]string, len(original.GivenName)),
		FamilyName:    make(map[string]string, len(original.FamilyName)),
	}
	for locale, name := range original.GivenName {
		edited.GivenName[locale] = name
	}
	for locale, name := range original.FamilyName {
		edited.FamilyName[locale] = name
	}

	if patch.Email != nil {
		edited.Email = *patch.Email
	}
	if patch.Seq != nil {
		edited.Seq = *patch.Seq
	}
	if patch.GivenName != nil {
		edited.GivenName = patch.GivenName
	}
	if patch.FamilyName != nil {
		edited.FamilyName = patch.FamilyName
	}
	return edited
}
