// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package citation

import (
	"context"
	"log/slog"

	"github.com/openpress/scholar/internal/platform/apperr"
	"github.com/openpress/scholar/internal/platform/validate"
)

// # Collaborator Contracts

// PublicationDirectory answers existence checks for publications.
// Implemented by the publication service; declared here to keep the
// dependency pointing inward.
type PublicationDirectory interface {
	PublicationExists(ctx context.Context, publicationID int64) (bool, error)
}

// # Service Layer

// Service orchestrates business logic for citations.
type Service struct {
	store        Store
	publications PublicationDirectory
	logger       *slog.Logger
	observers    []Observer
}

// NewService constructs a new [Service] with its store and collaborators.
func NewService(store Store, publications PublicationDirectory, logger *slog.Logger, observers ...Observer) *Service {
	return &Service{
		store:        store,
		publications: publications,
		logger:       logger,
		observers:    observers,
	}
}

// Patch carries a partial edit. Nil fields are left unchanged.
type Patch struct {
	RawCitation *string `json:"raw_citation"`
	Seq         *int    `json:"seq"`
}

// # Validation

/*
Validate checks a candidate citation and returns the rule failures as data.
An empty slice means the candidate is valid.

Parameters:
  - existing: *Citation (current persisted state, nil for adds)
  - candidate: *Citation (the full intended state)

Returns:
  - []apperr.FieldError: One entry per failed rule
*/
func (service *Service) Validate(ctx context.Context, existing, candidate *Citation) []apperr.FieldError {
	v := &validate.Validator{}

	v.Positive(FieldPublicationID, candidate.PublicationID)
	v.Required(FieldRawCitation, candidate.RawCitation)
	v.MaxLen(FieldRawCitation, candidate.RawCitation, 65535)

	// Seq <= 0 is an append request on insert, but a persisted record
	// must always hold a real position.
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
Get retrieves a single citation by its surrogate ID.

Returns:
  - *Citation: The record
  - error: NOT_FOUND when the ID is unknown
*/
func (service *Service) Get(ctx context.Context, id int64) (*Citation, error) {
	record, err := service.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, apperr.NotFound("Citation")
	}
	return record, nil
}

/*
List retrieves the citations matched by the collector, plus the unpaged
total for pagination metadata.
*/
func (service *Service) List(ctx context.Context, c Collector) ([]*Citation, int, error) {
	total, err := service.store.Count(ctx, c.Limit(nil).Offset(nil))
	if err != nil {
		return nil, 0, err
	}

	var records []*Citation
	for record, err := range service.store.Many(ctx, c) {
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}
	return records, total, nil
}

/*
ListForPublication retrieves a publication's reference list in seq order.
*/
func (service *Service) ListForPublication(ctx context.Context, publicationID int64) ([]*Citation, error) {
	records, _, err := service.List(ctx, NewCollector().FilterByPublicationIDs([]int64{publicationID}))
	return records, err
}

// # Write Operations

/*
Add validates and persists a new citation. A candidate with Seq <= 0 is
appended after the publication's current last position.

Returns:
  - error: VALIDATION_ERROR, CONFLICT on a taken (publication, seq) slot
*/
func (service *Service) Add(ctx context.Context, record *Citation) error {
	if errs := service.Validate(ctx, nil, record); len(errs) > 0 {
		return apperr.ValidationError("Validation failed", errs...)
	}

	if _, err := service.store.Insert(ctx, record); err != nil {
		return err
	}

	for _, observer := range service.observers {
		observer.CitationAdded(ctx, record)
	}

	service.logger.Info("citation_added",
		slog.Int64("citation_id", record.ID),
		slog.Int64("publication_id", record.PublicationID),
		slog.Int("seq", record.Seq),
	)
	return nil
}

/*
Edit applies a patch to an existing citation and persists the result.

Description: The stored record is never mutated in place. The patch is
applied to a copy, the copy is validated and written, and the copy is
returned.

Returns:
  - *Citation: The new persisted state
  - error: NOT_FOUND, VALIDATION_ERROR or CONFLICT
*/
func (service *Service) Edit(ctx context.Context, id int64, patch Patch) (*Citation, error) {
	original, err := service.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	edited := applyPatch(original, patch)
	if errs := service.Validate(ctx, original, edited); len(errs) > 0 {
		return nil, apperr.ValidationError("Validation failed", errs...)
	}

	if err := service.store.Update(ctx, edited); err != nil {
		return nil, err
	}

	for _, observer := range service.observers {
		observer.CitationEdited(ctx, edited)
	}

	service.logger.Info("citation_edited", slog.Int64("citation_id", edited.ID))
	return edited, nil
}

/*
Delete removes one citation. Pre-delete observers may veto.

Returns:
  - error: NOT_FOUND, or the vetoing observer's error
*/
func (service *Service) Delete(ctx context.Context, id int64) error {
	record, err := service.Get(ctx, id)
	if err != nil {
		return err
	}
	return service.deleteRecord(ctx, record)
}

/*
DeleteMany removes every citation matched by the collector, one at a time
so each delete carries its observer notifications. The first failure
aborts the remainder.
*/
func (service *Service) DeleteMany(ctx context.Context, c Collector) error {
	for record, err := range service.store.Many(ctx, c) {
		if err != nil {
			return err
		}
		if err := service.deleteRecord(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func (service *Service) deleteRecord(ctx context.Context, record *Citation) error {
	for _, observer := range service.observers {
		if err := observer.CitationDeleting(ctx, record); err != nil {
			return err
		}
	}

	if err := service.store.Delete(ctx, record); err != nil {
		return err
	}

	for _, observer := range service.observers {
		observer.CitationDeleted(ctx, record)
	}

	service.logger.Info("citation_deleted", slog.Int64("citation_id", record.ID))
	return nil
}

/*
DeleteByPublicationID removes a publication's entire reference list in one
statement, bypassing per-record observers. Used by cascading publication
deletion.
*/
func (service *Service) DeleteByPublicationID(ctx context.Context, publicationID int64) error {
	if err := service.store.DeleteByPublicationID(ctx, publicationID); err != nil {
		return err
	}
	service.logger.Info("citations_deleted_by_publication", slog.Int64("publication_id", publicationID))
	return nil
}

// # Import

/*
ImportFromRawList replaces a publication's reference list with the parsed
content of a raw blob.

Description: The blob is tokenized on semicolons and line breaks; trimmed,
non-empty segments become citations with seq 1..n in source order. The
existing list is deleted and the new one inserted inside one transaction,
so readers never observe a partial list. One post-import notification
fires after commit, carrying the before and after sets.

An empty or all-whitespace blob clears the reference list.

Parameters:
  - publicationID: int64
  - rawList: string (Semicolon/newline separated references)

Returns:
  - ImportResult: Before/after sets
  - error: VALIDATION_ERROR when the publication is unknown; storage
    errors roll the whole import back
*/
func (service *Service) ImportFromRawList(ctx context.Context, publicationID int64, rawList string) (ImportResult, error) {
	exists, err := service.publications.PublicationExists(ctx, publicationID)
	if err != nil {
		return ImportResult{}, err
	}
	if !exists {
		return ImportResult{}, apperr.ValidationError("Validation failed", apperr.FieldError{
			Field:   FieldPublicationID,
			Message: "Publication does not exist",
		})
	}

	before, err := service.ListForPublication(ctx, publicationID)
	if err != nil {
		return ImportResult{}, err
	}

	tokens := Tokenize(rawList)
	after := make([]*Citation, 0, len(tokens))

	err = service.store.InTx(ctx, func(tx Store) error {
		if err := tx.DeleteByPublicationID(ctx, publicationID); err != nil {
			return err
		}
		for i, token := range tokens {
			record := &Citation{
				PublicationID: publicationID,
				RawCitation:   token,
				Seq:           i + 1,
			}
			if _, err := tx.Insert(ctx, record); err != nil {
				return err
			}
			after = append(after, record)
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	result := ImportResult{PublicationID: publicationID, Before: before, After: after}
	for _, observer := range service.observers {
		observer.CitationsImported(ctx, result)
	}

	service.logger.Info("citations_imported",
		slog.Int64("publication_id", publicationID),
		slog.Int("replaced", len(before)),
		slog.Int("imported", len(after)),
	)
	return result, nil
}

// # Internal Helpers

// applyPatch produces a new record with the patch applied over the
// original. The original is left untouched.
func applyPatch(original *Citation, patch Patch) *Citation {
	edited := *original
	if patch.RawCitation != nil {
		edited.RawCitation = *patch.RawCitation
	}
	if patch.Seq != nil {
		edited.Seq = *patch.Seq
	}
	return &edited
}
