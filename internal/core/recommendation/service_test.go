// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package recommendation

import (
	"context"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpress/scholar/internal/platform/apperr"
)

// # Test Doubles

// fakeStore is an in-memory Store honouring the auto-value and
// per-context uniqueness contracts.
type fakeStore struct {
	records map[int64]*Recommendation
	nextID  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[int64]*Recommendation{}}
}

func (s *fakeStore) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := s.records[id]
	return ok, nil
}

func (s *fakeStore) Get(_ context.Context, id int64) (*Recommendation, error) {
	r, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return copyRecommendation(r), nil
}

func (s *fakeStore) matched(c Collector) []*Recommendation {
	var out []*Recommendation
	for _, r := range s.records {
		if len(c.contextIDs) > 0 {
			found := false
			for _, id := range c.contextIDs {
				if r.ContextID == id {
					found = true
				}
			}
			if !found {
				continue
			}
		}
		if c.status != nil && r.Status != *c.status {
			continue
		}
		out = append(out, copyRecommendation(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ContextID != out[j].ContextID {
			return out[i].ContextID < out[j].ContextID
		}
		return out[i].Value < out[j].Value
	})
	return out
}

func (s *fakeStore) Count(_ context.Context, c Collector) (int, error) {
	return len(s.matched(c)), nil
}

func (s *fakeStore) IDs(_ context.Context, c Collector) ([]int64, error) {
	var ids []int64
	for _, r := range s.matched(c) {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (s *fakeStore) Many(_ context.Context, c Collector) iter.Seq2[*Recommendation, error] {
	return func(yield func(*Recommendation, error) bool) {
		for _, r := range s.matched(c) {
			if !yield(r, nil) {
				return
			}
		}
	}
}

func (s *fakeStore) Insert(_ context.Context, r *Recommendation) (int64, error) {
	if r.Value <= 0 {
		maxValue := 0
		for _, existing := range s.records {
			if existing.ContextID == r.ContextID && existing.Value > maxValue {
				maxValue = existing.Value
			}
		}
		r.Value = maxValue + 1
	}
	for _, existing := range s.records {
		if existing.ContextID == r.ContextID && existing.Value == r.Value {
			return 0, apperr.Conflict("A record with the same unique value already exists")
		}
	}
	s.nextID++
	r.ID = s.nextID
	s.records[r.ID] = copyRecommendation(r)
	return r.ID, nil
}

func (s *fakeStore) Update(_ context.Context, r *Recommendation) error {
	if _, ok := s.records[r.ID]; !ok {
		return apperr.NotFound("Recommendation")
	}
	s.records[r.ID] = copyRecommendation(r)
	return nil
}

func (s *fakeStore) Delete(_ context.Context, r *Recommendation) error {
	if _, ok := s.records[r.ID]; !ok {
		return apperr.NotFound("Recommendation")
	}
	delete(s.records, r.ID)
	return nil
}

func (s *fakeStore) InTx(_ context.Context, fn func(Store) error) error {
	return fn(s)
}

func copyRecommendation(r *Recommendation) *Recommendation {
	clone := *r
	clone.Title = make(map[string]string, len(r.Title))
	for locale, title := range r.Title {
		clone.Title[locale] = title
	}
	return &clone
}

// fakeAssignments maps (contextID, value) to a usage count.
type fakeAssignments struct {
	counts map[int64]map[int]int
}

func (f *fakeAssignments) CountByRecommendation(_ context.Context, contextID int64, value int) (int, error) {
	return f.counts[contextID][value], nil
}

var (
	testLocales = []string{"en", "fr"}
	testPrimary = "en"
)

func newTestService(store Store, assignments AssignmentCounter) *Service {
	if assignments == nil {
		assignments = &fakeAssignments{}
	}
	return NewService(store, assignments, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func customOption(contextID int64, title string) *Recommendation {
	return &Recommendation{
		ContextID:     contextID,
		Status:        StatusActive,
		RemovableBase: true,
		Title:         map[string]string{"en": title},
	}
}

// # Validation

/*
TestService_Validate covers the context, title and value rules.
*/
func TestService_Validate(t *testing.T) {
	service := newTestService(newFakeStore(), nil)

	tests := []struct {
		name      string
		existing  *Recommendation
		candidate *Recommendation
		wantField string
	}{
		{
			name:      "valid auto value candidate passes",
			candidate: customOption(1, "Accept"),
			wantField: "",
		},
		{
			name: "missing primary locale title",
			candidate: &Recommendation{
				ContextID:     1,
				Status:        StatusActive,
				RemovableBase: true,
				Title:         map[string]string{"fr": "Accepter"},
			},
			wantField: FieldTitle,
		},
		{
			name: "title keyed by disallowed locale",
			candidate: &Recommendation{
				ContextID:     1,
				Status:        StatusActive,
				RemovableBase: true,
				Title:         map[string]string{"en": "Accept", "de": "Annehmen"},
			},
			wantField: FieldTitle,
		},
		{
			name: "missing context",
			candidate: &Recommendation{
				Status: StatusActive,
				Title:  map[string]string{"en": "Accept"},
			},
			wantField: FieldContextID,
		},
		{
			name:      "persisted record cannot hold value zero",
			existing:  &Recommendation{ID: 1, ContextID: 1, Value: 1, Title: map[string]string{"en": "X"}},
			candidate: &Recommendation{ID: 1, ContextID: 1, Value: 0, Title: map[string]string{"en": "X"}},
			wantField: FieldValue,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			errs := service.Validate(test.existing, test.candidate, testLocales, testPrimary)

			if test.wantField == "" {
				assert.Empty(t, errs)
				return
			}

			require.NotEmpty(t, errs)
			assert.Equal(t, test.wantField, errs[0].Field)
		})
	}
}

// # Lifecycle

/*
TestService_Add_AutoAssignsValue assigns MAX(value)+1 per context when the
candidate arrives with value zero.
*/
func TestService_Add_AutoAssignsValue(t *testing.T) {
	service := newTestService(newFakeStore(), nil)
	ctx := context.Background()

	first := customOption(1, "Accept")
	second := customOption(1, "Decline")
	otherContext := customOption(2, "Accept")

	require.NoError(t, service.Add(ctx, first, testLocales, testPrimary))
	require.NoError(t, service.Add(ctx, second, testLocales, testPrimary))
	require.NoError(t, service.Add(ctx, otherContext, testLocales, testPrimary))

	assert.Equal(t, 1, first.Value)
	assert.Equal(t, 2, second.Value)
	assert.Equal(t, 1, otherContext.Value)
}

/*
TestService_Add_DuplicateValue surfaces an explicit duplicate
(context, value) pair as a conflict.
*/
func TestService_Add_DuplicateValue(t *testing.T) {
	service := newTestService(newFakeStore(), nil)
	ctx := context.Background()

	taken := customOption(1, "Accept")
	taken.Value = 5
	require.NoError(t, service.Add(ctx, taken, testLocales, testPrimary))

	duplicate := customOption(1, "Decline")
	duplicate.Value = 5
	err := service.Add(ctx, duplicate, testLocales, testPrimary)

	assert.True(t, apperr.IsConflict(err))
}

// # Removability

/*
TestService_Removable_Derived verifies removability is computed on read
from the base flag and assignment usage, and never stored.
*/
func TestService_Removable_Derived(t *testing.T) {
	store := newFakeStore()
	assignments := &fakeAssignments{counts: map[int64]map[int]int{}}
	service := newTestService(store, assignments)
	ctx := context.Background()

	option := customOption(1, "Accept")
	require.NoError(t, service.Add(ctx, option, testLocales, testPrimary))

	// 1. Unused custom option reads as removable
	got, err := service.Get(ctx, option.ID)
	require.NoError(t, err)
	assert.True(t, got.Removable)

	// 2. Usage appears; the same row now reads as not removable,
	//    with no write in between
	assignments.counts[1] = map[int]int{option.Value: 3}
	got, err = service.Get(ctx, option.ID)
	require.NoError(t, err)
	assert.False(t, got.Removable)

	// 3. The persisted base flag is untouched
	stored, err := store.Get(ctx, option.ID)
	require.NoError(t, err)
	assert.True(t, stored.RemovableBase)
}

/*
TestService_Delete_BuiltIn refuses to delete a built-in option with a
NOT_REMOVABLE condition (HTTP 406).
*/
func TestService_Delete_BuiltIn(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store, nil)
	ctx := context.Background()

	builtIn := &Recommendation{
		ContextID:     1,
		Status:        StatusActive,
		RemovableBase: false,
		Title:         map[string]string{"en": "Accept"},
	}
	require.NoError(t, service.Add(ctx, builtIn, testLocales, testPrimary))

	err := service.Delete(ctx, builtIn.ID)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "NOT_REMOVABLE", appError.Code)
	assert.Equal(t, http.StatusNotAcceptable, appError.HTTPStatus)
}

/*
TestService_Delete_UsedOption refuses to delete a custom option once an
assignment references its value.
*/
func TestService_Delete_UsedOption(t *testing.T) {
	store := newFakeStore()
	assignments := &fakeAssignments{counts: map[int64]map[int]int{}}
	service := newTestService(store, assignments)
	ctx := context.Background()

	option := customOption(1, "Accept")
	require.NoError(t, service.Add(ctx, option, testLocales, testPrimary))
	assignments.counts[1] = map[int]int{option.Value: 1}

	err := service.Delete(ctx, option.ID)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "NOT_REMOVABLE", appError.Code)
}

/*
TestService_Delete_UnusedOption deletes a removable option.
*/
func TestService_Delete_UnusedOption(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store, nil)
	ctx := context.Background()

	option := customOption(1, "Accept")
	require.NoError(t, service.Add(ctx, option, testLocales, testPrimary))

	require.NoError(t, service.Delete(ctx, option.ID))

	_, err := service.Get(ctx, option.ID)
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestService_DeleteMany removes every matched custom option and leaves
other contexts untouched.
*/
func TestService_DeleteMany(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store, nil)
	ctx := context.Background()

	require.NoError(t, service.Add(ctx, customOption(1, "Accept"), testLocales, testPrimary))
	require.NoError(t, service.Add(ctx, customOption(1, "Decline"), testLocales, testPrimary))
	require.NoError(t, service.Add(ctx, customOption(2, "Accept"), testLocales, testPrimary))

	require.NoError(t, service.DeleteMany(ctx, NewCollector().FilterByContextIDs([]int64{1})))

	remaining, err := store.Count(ctx, NewCollector())
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}

/*
TestService_DeleteMany_GuardAborts stops at the first non-removable
match: removability is derived per record, so a used option inside the
batch surfaces NOT_REMOVABLE and the remainder stays in place.
*/
func TestService_DeleteMany_GuardAborts(t *testing.T) {
	store := newFakeStore()
	assignments := &fakeAssignments{counts: map[int64]map[int]int{}}
	service := newTestService(store, assignments)
	ctx := context.Background()

	used := customOption(1, "Accept")
	require.NoError(t, service.Add(ctx, used, testLocales, testPrimary))
	require.NoError(t, service.Add(ctx, customOption(1, "Decline"), testLocales, testPrimary))
	assignments.counts[1] = map[int]int{used.Value: 2}

	err := service.DeleteMany(ctx, NewCollector().FilterByContextIDs([]int64{1}))

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "NOT_REMOVABLE", appError.Code)
	remaining, countErr := store.Count(ctx, NewCollector())
	require.NoError(t, countErr)
	assert.Equal(t, 2, remaining)
}
