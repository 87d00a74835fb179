// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package publication

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/openpress/scholar/internal/platform/apperr"
	"github.com/openpress/scholar/internal/platform/validate"
)

// # Collaborator Contracts

// CitationManager removes a publication's citation list during cascade
// deletion. Satisfied by the citation service.
type CitationManager interface {
	DeleteByPublicationID(ctx context.Context, publicationID int64) error
}

// AuthorManager removes a publication's contributor list (and each
// contributor's affiliations) during cascade deletion. Satisfied by the
// author service.
type AuthorManager interface {
	DeleteByPublicationID(ctx context.Context, publicationID int64) error
}

// # Service Layer

// Service orchestrates business logic for publications, the parent
// aggregate of authors and citations.
type Service struct {
	store     Store
	citations CitationManager
	authors   AuthorManager
	logger    *slog.Logger
}

// NewService constructs a new [Service] with its store and the child-domain
// managers it cascades deletes through.
func NewService(store Store, citations CitationManager, authors AuthorManager, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		citations: citations,
		authors:   authors,
		logger:    logger,
	}
}

// Patch carries a partial edit. Nil fields are left unchanged.
type Patch struct {
	Status *int              `json:"status"`
	Title  map[string]string `json:"title"`
}

// # Validation

/*
Validate checks a candidate record and returns the rule failures as data.

An empty slice means the candidate is valid.

Parameters:
  - candidate: *Publication (the full intended state)
  - allowedLocales: []string (the site's supported locale codes)
  - primaryLocale: string (the locale the title is mandatory in)

Returns:
  - []apperr.FieldError: One entry per failed rule
*/
func (service *Service) Validate(candidate *Publication, allowedLocales []string, primaryLocale string) []apperr.FieldError {
	v := &validate.Validator{}

	v.OneOf(FieldStatus, strconv.Itoa(candidate.Status),
		strconv.Itoa(StatusQueued), strconv.Itoa(StatusPublished),
		strconv.Itoa(StatusDeclined), strconv.Itoa(StatusScheduled))

	v.RequiredPrimary(FieldTitle, candidate.Title, primaryLocale)
	v.AllowedLocales(FieldTitle, candidate.Title, allowedLocales)
	v.MaxLenPerLocale(FieldTitle, candidate.Title, 255)

	return v.Errors()
}

// # Read Operations

/*
Get retrieves a single publication by its surrogate ID.

Returns:
  - *Publication: The hydrated record
  - error: NOT_FOUND when the ID is unknown
*/
func (service *Service) Get(ctx context.Context, id int64) (*Publication, error) {
	p, err := service.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("Publication")
	}
	return p, nil
}

/*
List retrieves the records matched by the collector, plus the unpaged total.

The total is computed from the collector without its paging bounds applied,
so callers can render pagination metadata.
*/
func (service *Service) List(ctx context.Context, c Collector) ([]*Publication, int, error) {
	total, err := service.store.Count(ctx, c.Limit(nil).Offset(nil))
	if err != nil {
		return nil, 0, err
	}

	var records []*Publication
	for p, err := range service.store.Many(ctx, c) {
		if err != nil {
			return nil, 0, err
		}
		records = append(records, p)
	}
	return records, total, nil
}

// # Write Operations

/*
Add validates and persists a new publication.

Returns:
  - error: VALIDATION_ERROR on rule failures
*/
func (service *Service) Add(ctx context.Context, p *Publication, allowedLocales []string, primaryLocale string) error {
	if errs := service.Validate(p, allowedLocales, primaryLocale); len(errs) > 0 {
		return apperr.ValidationError("Validation failed", errs...)
	}

	if _, err := service.store.Insert(ctx, p); err != nil {
		return err
	}

	service.logger.Info("publication_added",
		slog.Int64("publication_id", p.ID),
		slog.Int("status", p.Status),
	)
	return nil
}

/*
Edit applies a patch to an existing publication and persists the result.

Description: The stored record is never mutated in place. The patch is
applied to a copy, the copy is validated and written, and the copy is
returned. A nil patch field leaves the current value unchanged.

Returns:
  - *Publication: The new persisted state
  - error: NOT_FOUND or VALIDATION_ERROR
*/
func (service *Service) Edit(ctx context.Context, id int64, patch Patch, allowedLocales []string, primaryLocale string) (*Publication, error) {
	original, err := service.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	edited := applyPatch(original, patch)
	if errs := service.Validate(edited, allowedLocales, primaryLocale); len(errs) > 0 {
		return nil, apperr.ValidationError("Validation failed", errs...)
	}

	if err := service.store.Update(ctx, edited); err != nil {
		return nil, err
	}

	service.logger.Info("publication_edited", slog.Int64("publication_id", edited.ID))
	return edited, nil
}

/*
Delete removes a publication together with its dependents.

Description: Citations go first, then contributors (which cascade their own
affiliations), then the publication row itself. Child removal runs through
the child domains' bulk operations rather than row-by-row service deletes.

Returns:
  - error: NOT_FOUND or storage errors
*/
func (service *Service) Delete(ctx context.Context, id int64) error {
	p, err := service.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := service.citations.DeleteByPublicationID(ctx, p.ID); err != nil {
		return err
	}
	if err := service.authors.DeleteByPublicationID(ctx, p.ID); err != nil {
		return err
	}
	if err := service.store.Delete(ctx, p); err != nil {
		return err
	}

	service.logger.Info("publication_deleted", slog.Int64("publication_id", id))
	return nil
}

// # Directory Adapter

// Directory adapts a publication store to the existence checks the author
// and citation domains declare, without handing them the whole store.
type Directory struct {
	store Store
}

// NewDirectory wraps the store for collaborator wiring.
func NewDirectory(store Store) *Directory {
	return &Directory{store: store}
}

// PublicationExists reports whether a publication row exists.
func (d *Directory) PublicationExists(ctx context.Context, id int64) (bool, error) {
	return d.store.Exists(ctx, id)
}

// # Internal Helpers

// applyPatch produces a new record with the patch applied over the original.
// The original is left untouched.
func applyPatch(original *Publication, patch Patch) *Publication {
	edited := &Publication{
		ID:     original.ID,
		Status: original.Status,
		Title:  make(map[string]string, len(original.Title)),
	}
	for locale, title := range original.Title {
		edited.Title[locale] = title
	}

	if patch.Status != nil {
		edited.Status = *patch.Status
	}
	if patch.Title != nil {
		edited.Title = patch.Title
	}
	return edited
}
