// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package ror

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/openpress/scholar/internal/platform/apperr"
	"github.com/openpress/scholar/internal/platform/validate"
)

// # Service Layer

// Service orchestrates business logic for the ROR registry cache.
//
// Records originate from upstream registry dumps, never from local authoring,
// so the service validates locale codes for well-formedness only: the registry
// carries locales a journal site would not.
type Service struct {
	store     Store
	logger    *slog.Logger
	observers []Observer
}

// NewService constructs a new [Service] with its store and observers.
func NewService(store Store, logger *slog.Logger, observers ...Observer) *Service {
	return &Service{
		store:     store,
		logger:    logger,
		observers: observers,
	}
}

// Patch carries a partial edit. Nil fields are left unchanged.
type Patch struct {
	ROR           *string           `json:"ror"`
	DisplayLocale *string           `json:"display_locale"`
	Status        *int              `json:"status"`
	Name          map[string]string `json:"name"`
}

// # Validation

/*
Validate checks a candidate record and returns the rule failures as data.

An empty slice means the candidate is valid. Callers that need a transport
error wrap the slice via [apperr.ValidationError] themselves.

Parameters:
  - candidate: *Ror (the full intended state, after any patch is applied)

Returns:
  - []apperr.FieldError: One entry per failed rule
*/
func (service *Service) Validate(candidate *Ror) []apperr.FieldError {
	v := &validate.Validator{}

	v.Required(FieldROR, candidate.ROR)
	if candidate.ROR != "" {
		v.ROR(FieldROR, candidate.ROR)
	}
	v.OneOf(FieldStatus, strconv.Itoa(candidate.Status),
		strconv.Itoa(StatusInactive), strconv.Itoa(StatusActive))
	v.Locale(FieldDisplayLocale, candidate.DisplayLocale)

	for locale := range candidate.Name {
		v.Custom(FieldName, !validate.IsWellFormedLocale(locale),
			"Name is keyed by a malformed locale code: "+locale)
	}
	v.RequiredPrimary(FieldName, candidate.Name, candidate.DisplayLocale)
	v.MaxLenPerLocale(FieldName, candidate.Name, 255)

	return v.Errors()
}

// # Read Operations

/*
Get retrieves a single cached record by its surrogate ID.

Returns:
  - *Ror: The hydrated record
  - error: NOT_FOUND when the ID is unknown
*/
func (service *Service) Get(ctx context.Context, id int64) (*Ror, error) {
	r, err := service.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apperr.NotFound("Organization")
	}
	return r, nil
}

/*
GetByROR retrieves a cached record by its canonical registry URI.

Returns:
  - *Ror: The hydrated record
  - error: NOT_FOUND when the URI is not cached
*/
func (service *Service) GetByROR(ctx context.Context, rorURI string) (*Ror, error) {
	r, err := service.store.GetByROR(ctx, rorURI)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apperr.NotFound("Organization")
	}
	return r, nil
}

/*
LookupNames resolves a registry URI to its cached localized names.

Description: Collaborator entry point (affiliation name inference). An
uncached URI returns a nil map, not an error, so callers can fall back to
free-text entry.
*/
func (service *Service) LookupNames(ctx context.Context, rorURI string) (map[string]string, error) {
	r, err := service.store.GetByROR(ctx, rorURI)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil
	}
	return r.Name, nil
}

/*
List retrieves the records matched by the collector, plus the unpaged total.

The total is computed from the collector without its paging bounds applied,
so callers can render pagination metadata.
*/
func (service *Service) List(ctx context.Context, c Collector) ([]*Ror, int, error) {
	total, err := service.store.Count(ctx, c.Limit(nil).Offset(nil))
	if err != nil {
		return nil, 0, err
	}

	var records []*Ror
	for r, err := range service.store.Many(ctx, c) {
		if err != nil {
			return nil, 0, err
		}
		records = append(records, r)
	}
	return records, total, nil
}

// # Write Operations

/*
Add validates and persists a new cache record.

Returns:
  - error: VALIDATION_ERROR on rule failures, CONFLICT when the registry
    URI is already cached
*/
func (service *Service) Add(ctx context.Context, r *Ror) error {
	if errs := service.Validate(r); len(errs) > 0 {
		return apperr.ValidationError("Validation failed", errs...)
	}

	if _, err := service.store.Insert(ctx, r); err != nil {
		return err
	}

	for _, observer := range service.observers {
		observer.RorAdded(ctx, r)
	}

	service.logger.Info("ror_added",
		slog.Int64("ror_id", r.ID),
		slog.String("ror", r.ROR),
	)
	return nil
}

/*
Edit applies a patch to an existing record and persists the result.

Description: The stored record is never mutated in place. The patch is
applied to a copy, the copy is validated and written, and the copy is
returned. A nil patch field leaves the current value unchanged.

Returns:
  - *Ror: The new persisted state
  - error: NOT_FOUND, VALIDATION_ERROR or CONFLICT
*/
func (service *Service) Edit(ctx context.Context, id int64, patch Patch) (*Ror, error) {
	original, err := service.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	edited := applyPatch(original, patch)
	if errs := service.Validate(edited); len(errs) > 0 {
		return nil, apperr.ValidationError("Validation failed", errs...)
	}

	if err := service.store.Update(ctx, edited); err != nil {
		return nil, err
	}

	for _, observer := range service.observers {
		observer.RorEdited(ctx, edited)
	}

	service.logger.Info("ror_edited", slog.Int64("ror_id", edited.ID))
	return edited, nil
}

/*
Delete removes a cached record.

Description: Pre-delete observers run first and may veto the removal by
returning an error; a veto aborts before any row is touched.

Returns:
  - error: NOT_FOUND, or the vetoing observer's error
*/
func (service *Service) Delete(ctx context.Context, id int64) error {
	r, err := service.Get(ctx, id)
	if err != nil {
		return err
	}
	return service.deleteRecord(ctx, r)
}

/*
DeleteMany removes every cached record matched by the collector, one at a
time so each delete carries its observer notifications. The first failure
aborts the remainder.
*/
func (service *Service) DeleteMany(ctx context.Context, c Collector) error {
	for r, err := range service.store.Many(ctx, c) {
		if err != nil {
			return err
		}
		if err := service.deleteRecord(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (service *Service) deleteRecord(ctx context.Context, r *Ror) error {
	for _, observer := range service.observers {
		if err := observer.RorDeleting(ctx, r); err != nil {
			return err
		}
	}

	if err := service.store.Delete(ctx, r); err != nil {
		return err
	}

	for _, observer := range service.observers {
		observer.RorDeleted(ctx, r)
	}

	service.logger.Info("ror_deleted", slog.Int64("ror_id", r.ID))
	return nil
}

/*
UpdateOrInsertByROR persists a record keyed on its unique registry URI.

Description: Registry dump sync entry point. When the URI is already
cached the existing row is overwritten in place (keeping its surrogate
ID); otherwise a new row is inserted.

Returns:
  - bool: true when the call inserted a new row
  - error: VALIDATION_ERROR or storage errors
*/
func (service *Service) UpdateOrInsertByROR(ctx context.Context, r *Ror) (bool, error) {
	if errs := service.Validate(r); len(errs) > 0 {
		return false, apperr.ValidationError("Validation failed", errs...)
	}

	existing, err := service.store.GetByROR(ctx, r.ROR)
	if err != nil {
		return false, err
	}
	if existing != nil {
		r.ID = existing.ID
	}

	inserted := r.ID == 0
	if err := service.store.UpdateOrInsert(ctx, r); err != nil {
		return false, err
	}
	return inserted, nil
}

// # Registry Import

/*
ImportRegistryCSV ingests a registry dump in CSV form.

Description: The expected header is "ror,display_locale,status,locale,name",
one row per (organization, locale); consecutive rows sharing a registry URI
merge into a single record's name map. The whole import runs in one
transaction. Rows that fail validation are counted as skipped, not fatal.

Parameters:
  - reader: io.Reader (CSV stream, header row required)

Returns:
  - SyncReport: Processed/inserted/updated/skipped counts
  - error: Malformed CSV or storage errors (the transaction rolls back)
*/
func (service *Service) ImportRegistryCSV(ctx context.Context, reader io.Reader) (SyncReport, error) {
	records, skippedRows, err := parseRegistryCSV(reader)
	if err != nil {
		return SyncReport{}, err
	}

	report := SyncReport{Skipped: skippedRows}

	err = service.store.InTx(ctx, func(tx Store) error {
		txService := NewService(tx, service.logger)
		for _, r := range records {
			report.Processed++
			inserted, err := txService.UpdateOrInsertByROR(ctx, r)
			if apperr.IsValidation(err) {
				// Bad registry row; keep the rest of the dump. Anything
				// else aborts and rolls the whole import back.
				report.Skipped++
				report.Processed--
				continue
			}
			if err != nil {
				return err
			}
			if inserted {
				report.Inserted++
			} else {
				report.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return SyncReport{}, err
	}

	for _, observer := range service.observers {
		observer.RegistrySynced(ctx, report)
	}

	service.logger.Info("ror_registry_synced",
		slog.Int("processed", report.Processed),
		slog.Int("inserted", report.Inserted),
		slog.Int("updated", report.Updated),
		slog.Int("skipped", report.Skipped),
	)
	return report, nil
}

// # Internal Helpers

// applyPatch produces a new record with the patch applied over the original.
// The original is left untouched.
func applyPatch(original *Ror, patch Patch) *Ror {
	edited := &Ror{
		ID:            original.ID,
		ROR:           original.ROR,
		DisplayLocale: original.DisplayLocale,
		Status:        original.Status,
		Name:          make(map[string]string, len(original.Name)),
	}
	for locale, name := range original.Name {
		edited.Name[locale] = name
	}

	if patch.ROR != nil {
		edited.ROR = *patch.ROR
	}
	if patch.DisplayLocale != nil {
		edited.DisplayLocale = *patch.DisplayLocale
	}
	if patch.Status != nil {
		edited.Status = *patch.Status
	}
	if patch.Name != nil {
		edited.Name = patch.Name
	}
	return edited
}

// parseRegistryCSV decodes the dump format into merged records, reporting
// how many raw rows were dropped as malformed.
func parseRegistryCSV(reader io.Reader) ([]*Ror, int, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = 5

	header, err := csvReader.Read()
	if err != nil {
		return nil, 0, apperr.Unprocessable("Malformed registry dump: missing header row")
	}
	if len(header) != 5 || strings.TrimSpace(header[0]) != "ror" {
		return nil, 0, apperr.Unprocessable("Unrecognized registry dump header")
	}

	var (
		ordered []*Ror
		byURI   = map[string]*Ror{}
		skipped int
	)

	for {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		uri := strings.TrimSpace(row[0])
		status, statusErr := strconv.Atoi(strings.TrimSpace(row[2]))
		if uri == "" || statusErr != nil {
			skipped++
			continue
		}

		r, ok := byURI[uri]
		if !ok {
			r = &Ror{
				ROR:           uri,
				DisplayLocale: strings.TrimSpace(row[1]),
				Status:        status,
				Name:          map[string]string{},
			}
			byURI[uri] = r
			ordered = append(ordered, r)
		}
		if locale := strings.TrimSpace(row[3]); locale != "" {
			r.Name[locale] = strings.TrimSpace(row[4])
		}
	}

	return ordered, skipped, nil
}
