// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package recommendation

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/openpress/scholar/internal/platform/apperr"
	"github.com/openpress/scholar/internal/platform/validate"
)

// # Service Layer

// Service orchestrates business logic for reviewer recommendations.
//
// Every record leaving this service carries the derived Removable field:
// false when the persisted base flag is false, otherwise true iff no
// review assignment in the context has submitted the option's value.
type Service struct {
	store       Store
	assignments AssignmentCounter
	logger      *slog.Logger
}

// NewService constructs a new [Service] with its store and the assignment
// counter used to derive removability.
func NewService(store Store, assignments AssignmentCounter, logger *slog.Logger) *Service {
	return &Service{
		store:       store,
		assignments: assignments,
		logger:      logger,
	}
}

// Patch carries a partial edit. Nil fields are left unchanged. The value
// and base flag of an option are fixed at creation and not patchable.
type Patch struct {
	Status *int              `json:"status"`
	Title  map[string]string `json:"title"`
}

// # Validation

/*
Validate checks a candidate recommendation and returns the rule failures
as data. An empty slice means the candidate is valid.

Parameters:
  - existing: *Recommendation (current persisted state, nil for adds)
  - candidate: *Recommendation (the full intended state)
  - allowedLocales: []string (site locale whitelist for the title map)
  - primaryLocale: string

Returns:
  - []apperr.FieldError: One entry per failed rule
*/
func (service *Service) Validate(existing, candidate *Recommendation, allowedLocales []string, primaryLocale string) []apperr.FieldError {
	v := &validate.Validator{}

	v.Positive(FieldContextID, candidate.ContextID)
	v.OneOf(FieldStatus, strconv.Itoa(candidate.Status),
		strconv.Itoa(StatusInactive), strconv.Itoa(StatusActive))

	v.RequiredPrimary(FieldTitle, candidate.Title, primaryLocale)
	v.AllowedLocales(FieldTitle, candidate.Title, allowedLocales)
	v.MaxLenPerLocale(FieldTitle, candidate.Title, 255)

	// Value <= 0 is an auto-assign request on insert, but a persisted
	// record must always hold a real code.
	if existing != nil {
		v.Custom(FieldValue, candidate.Value < 1, "Must be 1 or greater")
	} else {
		v.Custom(FieldValue, candidate.Value < 0, "Must not be negative")
	}

	return v.Errors()
}

// # Read Operations

/*
Get retrieves a single recommendation with its derived removability.

Returns:
  - *Recommendation: The hydrated record
  - error: NOT_FOUND when the ID is unknown
*/
func (service *Service) Get(ctx context.Context, id int64) (*Recommendation, error) {
	r, err := service.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apperr.NotFound("Recommendation")
	}
	if err := service.deriveRemovable(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

/*
List retrieves the recommendations matched by the collector, each with its
derived removability, plus the unpaged total.
*/
func (service *Service) List(ctx context.Context, c Collector) ([]*Recommendation, int, error) {
	total, err := service.store.Count(ctx, c.Limit(nil).Offset(nil))
	if err != nil {
		return nil, 0, err
	}

	var records []*Recommendation
	for r, err := range service.store.Many(ctx, c) {
		if err != nil {
			return nil, 0, err
		}
		if err := service.deriveRemovable(ctx, r); err != nil {
			return nil, 0, err
		}
		records = append(records, r)
	}
	return records, total, nil
}

/*
ListForContext retrieves a review context's options in value order.
*/
func (service *Service) ListForContext(ctx context.Context, contextID int64) ([]*Recommendation, error) {
	records, _, err := service.List(ctx, NewCollector().FilterByContextIDs([]int64{contextID}))
	return records, err
}

// # Write Operations

/*
Add validates and persists a new recommendation option.

Description: A candidate with Value zero receives the context's next free
code (MAX(value)+1). An explicit value that collides with an existing
option in the same context surfaces as a conflict.

Returns:
  - error: VALIDATION_ERROR, CONFLICT on a duplicate (context, value)
*/
func (service *Service) Add(ctx context.Context, r *Recommendation, allowedLocales []string, primaryLocale string) error {
	if errs := service.Validate(nil, r, allowedLocales, primaryLocale); len(errs) > 0 {
		return apperr.ValidationError("Validation failed", errs...)
	}

	if _, err := service.store.Insert(ctx, r); err != nil {
		return err
	}
	if err := service.deriveRemovable(ctx, r); err != nil {
		return err
	}

	service.logger.Info("recommendation_added",
		slog.Int64("recommendation_id", r.ID),
		slog.Int64("context_id", r.ContextID),
		slog.Int("value", r.Value),
	)
	return nil
}

/*
Edit applies a patch to an existing recommendation and persists the
result. Only status and title are patchable; value and the base flag are
fixed at creation.

Returns:
  - *Recommendation: The new persisted state, removability derived
  - error: NOT_FOUND or VALIDATION_ERROR
*/
func (service *Service) Edit(ctx context.Context, id int64, patch Patch, allowedLocales []string, primaryLocale string) (*Recommendation, error) {
	original, err := service.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	edited := applyPatch(original, patch)
	if errs := service.Validate(original, edited, allowedLocales, primaryLocale); len(errs) > 0 {
		return nil, apperr.ValidationError("Validation failed", errs...)
	}

	if err := service.store.Update(ctx, edited); err != nil {
		return nil, err
	}
	if err := service.deriveRemovable(ctx, edited); err != nil {
		return nil, err
	}

	service.logger.Info("recommendation_edited", slog.Int64("recommendation_id", edited.ID))
	return edited, nil
}

/*
Delete removes a recommendation option.

Description: Non-removable options are protected: built-in options (base
flag false) and options already referenced by a review assignment refuse
deletion with a NOT_REMOVABLE condition.

Returns:
  - error: NOT_FOUND, or NOT_REMOVABLE (HTTP 406)
*/
func (service *Service) Delete(ctx context.Context, id int64) error {
	r, err := service.Get(ctx, id)
	if err != nil {
		return err
	}
	return service.deleteRecord(ctx, r)
}

/*
DeleteMany removes every recommendation matched by the collector, one at a
time. The removability guard applies per record, so the first
non-removable match aborts the remainder with NOT_REMOVABLE.
*/
func (service *Service) DeleteMany(ctx context.Context, c Collector) error {
	for r, err := range service.store.Many(ctx, c) {
		if err != nil {
			return err
		}
		if err := service.deriveRemovable(ctx, r); err != nil {
			return err
		}
		if err := service.deleteRecord(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (service *Service) deleteRecord(ctx context.Context, r *Recommendation) error {
	if !r.Removable {
		return apperr.NotRemovable("Recommendation")
	}

	if err := service.store.Delete(ctx, r); err != nil {
		return err
	}

	service.logger.Info("recommendation_deleted", slog.Int64("recommendation_id", r.ID))
	return nil
}

// # Internal Helpers

// deriveRemovable computes the read-side Removable field. The result is
// never persisted.
func (service *Service) deriveRemovable(ctx context.Context, r *Recommendation) error {
	if !r.RemovableBase {
		r.Removable = false
		return nil
	}

	used, err := service.assignments.CountByRecommendation(ctx, r.ContextID, r.Value)
	if err != nil {
		return err
	}
	r.Removable = used == 0
	return nil
}

// applyPatch produces a new record with the patch applied over the
// original. The original is left untouched.
func applyPatch(original *Recommendation, patch Patch) *Recommendation {
	edited := *original
	edited.Title = make(map[string]string, len(original.Title))
	for locale, title := range original.Title {
		edited.Title[locale] = title
	}

	if patch.Status != nil {
		edited.Status = *patch.Status
	}
	if patch.Title != nil {
		edited.Title = patch.Title
	}
	return &edited
}
