// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package affiliation

import (
	"context"
	"log/slog"

	"github.com/openpress/scholar/internal/platform/apperr"
	"github.com/openpress/scholar/internal/platform/validate"
)

// # Collaborator Contracts

// AuthorDirectory answers existence checks for authors. Implemented by the
// author service; declared here to keep the dependency pointing inward.
type AuthorDirectory interface {
	AuthorExists(ctx context.Context, authorID int64) (bool, error)
}

// RorRegistry resolves registry identifiers to their cached localized names.
// A nil name map means the identifier is not cached.
type RorRegistry interface {
	LookupNames(ctx context.Context, rorURI string) (map[string]string, error)
}

// # Service Layer

// Service orchestrates business logic for author affiliations.
type Service struct {
	store     Store
	authors   AuthorDirectory
	registry  RorRegistry
	logger    *slog.Logger
	observers []Observer
}

// NewService constructs a new [Service] with its store and collaborators.
func NewService(store Store, authors AuthorDirectory, registry RorRegistry, logger *slog.Logger, observers ...Observer) *Service {
	return &Service{
		store:     store,
		authors:   authors,
		registry:  registry,
		logger:    logger,
		observers: observers,
	}
}

// Patch carries a partial edit. Nil fields are left unchanged; a non-nil
// empty ROR clears the registry link.
type Patch struct {
	ROR  *string           `json:"ror"`
	Name map[string]string `json:"name"`
}

// # Validation

/*
Validate checks a candidate affiliation and returns the rule failures as
data. An empty slice means the candidate is valid.

Description: A candidate must name its organization one way or another: a
registry identifier, a localized name, or both. Free-text names require an
entry in the primary locale; names keyed by a locale outside the allowed
set are rejected. For new records (existing == nil) the owning author must
exist.

Parameters:
  - existing: *Affiliation (current persisted state, nil for adds)
  - candidate: *Affiliation (the full intended state)
  - allowedLocales: []string (site locale whitelist for the name map)
  - primaryLocale: string

Returns:
  - []apperr.FieldError: One entry per failed rule
*/
func (service *Service) Validate(ctx context.Context, existing, candidate *Affiliation, allowedLocales []string, primaryLocale string) []apperr.FieldError {
	v := &validate.Validator{}

	v.Positive(FieldAuthorID, candidate.AuthorID)

	v.Custom(FieldROR, !candidate.HasROR() && len(candidate.Name) == 0,
		"Either a ROR identifier or an organization name is required")

	if candidate.HasROR() {
		v.ROR(FieldROR, *candidate.ROR)
	} else if len(candidate.Name) > 0 {
		v.RequiredPrimary(FieldName, candidate.Name, primaryLocale)
	}

	// Registry-backed names mirror the registry's own locales, which are
	// not bound by the site whitelist.
	if !candidate.HasROR() {
		v.AllowedLocales(FieldName, candidate.Name, allowedLocales)
	}
	v.MaxLenPerLocale(FieldName, candidate.Name, 255)

	authorChanged := existing == nil || existing.AuthorID != candidate.AuthorID
	if candidate.AuthorID > 0 && authorChanged {
		exists, err := service.authors.AuthorExists(ctx, candidate.AuthorID)
		v.Custom(FieldAuthorID, err != nil, "Author lookup failed")
		v.Custom(FieldAuthorID, err == nil && !exists, "Author does not exist")
	}

	return v.Errors()
}

// # Read Operations

/*
Get retrieves a single affiliation by its surrogate ID.

Returns:
  - *Affiliation: The hydrated record
  - error: NOT_FOUND when the ID is unknown
*/
func (service *Service) Get(ctx context.Context, id int64) (*Affiliation, error) {
	a, err := service.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apperr.NotFound("Affiliation")
	}
	return a, nil
}

/*
List retrieves the affiliations matched by the collector, plus the unpaged
total for pagination metadata.
*/
func (service *Service) List(ctx context.Context, c Collector) ([]*Affiliation, int, error) {
	total, err := service.store.Count(ctx, c.Limit(nil).Offset(nil))
	if err != nil {
		return nil, 0, err
	}

	var records []*Affiliation
	for a, err := range service.store.Many(ctx, c) {
		if err != nil {
			return nil, 0, err
		}
		records = append(records, a)
	}
	return records, total, nil
}

/*
ListForAuthor retrieves all affiliations of one author, in stable ID order.
*/
func (service *Service) ListForAuthor(ctx context.Context, authorID int64) ([]*Affiliation, error) {
	records, _, err := service.List(ctx, NewCollector().FilterByAuthorIDs([]int64{authorID}))
	return records, err
}

// # Write Operations

/*
Add validates and persists a new affiliation.

Description: When the candidate carries a registry identifier and no name,
the localized names are inferred from the registry cache before
validation, so registry-backed affiliations display correctly without the
caller re-typing the organization name.

Parameters:
  - a: *Affiliation (new record, ID must be zero)
  - allowedLocales: []string
  - primaryLocale: string

Returns:
  - error: VALIDATION_ERROR, or storage errors
*/
func (service *Service) Add(ctx context.Context, a *Affiliation, allowedLocales []string, primaryLocale string) error {
	if err := service.inferNames(ctx, a); err != nil {
		return err
	}

	if errs := service.Validate(ctx, nil, a, allowedLocales, primaryLocale); len(errs) > 0 {
		return apperr.ValidationError("Validation failed", errs...)
	}

	if _, err := service.store.Insert(ctx, a); err != nil {
		return err
	}

	for _, observer := range service.observers {
		observer.AffiliationAdded(ctx, a)
	}

	service.logger.Info("affiliation_added",
		slog.Int64("affiliation_id", a.ID),
		slog.Int64("author_id", a.AuthorID),
	)
	return nil
}

/*
Edit applies a patch to an existing affiliation and persists the result.

Description: The stored record is never mutated in place. The patch is
applied to a copy, the copy is validated and written, and the copy is
returned.

Returns:
  - *Affiliation: The new persisted state
  - error: NOT_FOUND or VALIDATION_ERROR
*/
func (service *Service) Edit(ctx context.Context, id int64, patch Patch, allowedLocales []string, primaryLocale string) (*Affiliation, error) {
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

	for _, observer := range service.observers {
		observer.AffiliationEdited(ctx, edited)
	}

	service.logger.Info("affiliation_edited", slog.Int64("affiliation_id", edited.ID))
	return edited, nil
}

/*
Delete removes one affiliation. Pre-delete observers may veto.

Returns:
  - error: NOT_FOUND, or the vetoing observer's error
*/
func (service *Service) Delete(ctx context.Context, id int64) error {
	a, err := service.Get(ctx, id)
	if err != nil {
		return err
	}
	return service.deleteRecord(ctx, service.store, a)
}

/*
DeleteMany removes every affiliation matched by the collector, one at a
time so each delete carries its observer notifications. The first failure
aborts the remainder.
*/
func (service *Service) DeleteMany(ctx context.Context, c Collector) error {
	for a, err := range service.store.Many(ctx, c) {
		if err != nil {
			return err
		}
		if err := service.deleteRecord(ctx, service.store, a); err != nil {
			return err
		}
	}
	return nil
}

// # Aggregate Reconciliation

/*
SyncForAuthor reconciles an author's affiliations against a desired set.

Description: Children are compared by surrogate ID. The delete pass runs
strictly before the upsert pass, inside one transaction: persisted
affiliations whose IDs are absent from the desired set are deleted, then
every desired child is written (inserting when ID is zero, updating
otherwise), with the owning author assigned when missing. An empty desired
set clears the author's affiliations entirely.

Parameters:
  - authorID: int64
  - desired: []*Affiliation (the complete intended set)
  - allowedLocales: []string
  - primaryLocale: string

Returns:
  - error: VALIDATION_ERROR (first offending child), or storage errors;
    any error rolls the whole reconciliation back
*/
func (service *Service) SyncForAuthor(ctx context.Context, authorID int64, desired []*Affiliation, allowedLocales []string, primaryLocale string) error {
	// Validate the whole desired set up front so a late failure cannot
	// leave a half-synced transaction to roll back.
	for _, a := range desired {
		if a.AuthorID == 0 {
			a.AuthorID = authorID
		}
		if errs := service.Validate(ctx, nil, a, allowedLocales, primaryLocale); len(errs) > 0 {
			return apperr.ValidationError("Validation failed", errs...)
		}
	}

	err := service.store.InTx(ctx, func(tx Store) error {
		currentIDs, err := tx.IDs(ctx, NewCollector().FilterByAuthorIDs([]int64{authorID}))
		if err != nil {
			return err
		}

		keep := make(map[int64]bool, len(desired))
		for _, a := range desired {
			if a.ID != 0 {
				keep[a.ID] = true
			}
		}

		// Delete pass: stale children go first.
		for _, id := range currentIDs {
			if keep[id] {
				continue
			}
			stale, err := tx.Get(ctx, id)
			if err != nil {
				return err
			}
			if stale == nil {
				continue
			}
			if err := service.deleteRecord(ctx, tx, stale); err != nil {
				return err
			}
		}

		// Upsert pass.
		for _, a := range desired {
			isNew := a.ID == 0
			if err := tx.UpdateOrInsert(ctx, a); err != nil {
				return err
			}
			for _, observer := range service.observers {
				if isNew {
					observer.AffiliationAdded(ctx, a)
				} else {
					observer.AffiliationEdited(ctx, a)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	service.logger.Info("affiliations_synced",
		slog.Int64("author_id", authorID),
		slog.Int("count", len(desired)),
	)
	return nil
}

/*
DeleteByAuthorID removes every affiliation of an author in one statement,
bypassing per-record observers. Used by cascading author deletion, where
the author-level notification already covers the change.
*/
func (service *Service) DeleteByAuthorID(ctx context.Context, authorID int64) error {
	if err := service.store.DeleteByAuthorID(ctx, authorID); err != nil {
		return err
	}
	service.logger.Info("affiliations_deleted_by_author", slog.Int64("author_id", authorID))
	return nil
}

// # Internal Helpers

// deleteRecord runs the veto/delete/notify sequence against the given
// store view, which may be transactional.
func (service *Service) deleteRecord(ctx context.Context, store Store, a *Affiliation) error {
	for _, observer := range service.observers {
		if err := observer.AffiliationDeleting(ctx, a); err != nil {
			return err
		}
	}

	if err := store.Delete(ctx, a); err != nil {
		return err
	}

	for _, observer := range service.observers {
		observer.AffiliationDeleted(ctx, a)
	}

	service.logger.Info("affiliation_deleted", slog.Int64("affiliation_id", a.ID))
	return nil
}

// inferNames fills the name map from the registry cache when the candidate
// is registry-backed and carries no name of its own.
func (service *Service) inferNames(ctx context.Context, a *Affiliation) error {
	if !a.HasROR() || len(a.Name) > 0 || service.registry == nil {
		return nil
	}

	names, err := service.registry.LookupNames(ctx, *a.ROR)
	if err != nil {
		return err
	}
	a.Name = names
	return nil
}

// applyPatch produces a new record with the patch applied over the
// original. The original is left untouched.
func applyPatch(original *Affiliation, patch Patch) *Affiliation {
	edited := &Affiliation{
		ID:       original.ID,
		AuthorID: original.AuthorID,
		Name:     make(map[string]string, len(original.Name)),
	}
	if original.ROR != nil {
		ror := *original.ROR
		edited.ROR = &ror
	}
	for locale, name := range original.Name {
		edited.Name[locale] = name
	}

	if patch.ROR != nil {
		if *patch.ROR == "" {
			edited.ROR = nil
		} else {
			ror := *patch.ROR
			edited.ROR = &ror
		}
	}
	if patch.Name != nil {
		edited.Name = patch.Name
	}
	return edited
}
