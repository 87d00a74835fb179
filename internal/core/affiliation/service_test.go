// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package affiliation

import (
	"context"
	"io"
	"iter"
	"log/slog"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpress/scholar/internal/platform/apperr"
)

// # Test Doubles

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	records map[int64]*Affiliation
	nextID  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[int64]*Affiliation{}}
}

func (s *fakeStore) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := s.records[id]
	return ok, nil
}

func (s *fakeStore) Get(_ context.Context, id int64) (*Affiliation, error) {
	a, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return copyAffiliation(a), nil
}

func (s *fakeStore) matches(a *Affiliation, c Collector) bool {
	if len(c.authorIDs) > 0 {
		found := false
		for _, id := range c.authorIDs {
			if a.AuthorID == id {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if c.searchPhrase != "" {
		hit := false
		for _, name := range a.Name {
			hit = hit || strings.Contains(strings.ToLower(name), strings.ToLower(c.searchPhrase))
		}
		if !hit {
			return false
		}
	}
	return true
}

func (s *fakeStore) matched(c Collector) []*Affiliation {
	var out []*Affiliation
	for _, a := range s.records {
		if s.matches(a, c) {
			out = append(out, copyAffiliation(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *fakeStore) Count(_ context.Context, c Collector) (int, error) {
	return len(s.matched(c)), nil
}

func (s *fakeStore) IDs(_ context.Context, c Collector) ([]int64, error) {
	var ids []int64
	for _, a := range s.matched(c) {
		ids = append(ids, a.ID)
	}
	return ids, nil
}

func (s *fakeStore) Many(_ context.Context, c Collector) iter.Seq2[*Affiliation, error] {
	return func(yield func(*Affiliation, error) bool) {
		for _, a := range s.matched(c) {
			if !yield(a, nil) {
				return
			}
		}
	}
}

func (s *fakeStore) Insert(_ context.Context, a *Affiliation) (int64, error) {
	s.nextID++
	a.ID = s.nextID
	s.records[a.ID] = copyAffiliation(a)
	return a.ID, nil
}

func (s *fakeStore) Update(_ context.Context, a *Affiliation) error {
	if _, ok := s.records[a.ID]; !ok {
		return apperr.NotFound("Affiliation")
	}
	s.records[a.ID] = copyAffiliation(a)
	return nil
}

func (s *fakeStore) Delete(_ context.Context, a *Affiliation) error {
	if _, ok := s.records[a.ID]; !ok {
		return apperr.NotFound("Affiliation")
	}
	delete(s.records, a.ID)
	return nil
}

func (s *fakeStore) UpdateOrInsert(ctx context.Context, a *Affiliation) error {
	if a.ID == 0 {
		_, err := s.Insert(ctx, a)
		return err
	}
	return s.Update(ctx, a)
}

func (s *fakeStore) DeleteByAuthorID(_ context.Context, authorID int64) error {
	for id, a := range s.records {
		if a.AuthorID == authorID {
			delete(s.records, id)
		}
	}
	return nil
}

func (s *fakeStore) InTx(_ context.Context, fn func(Store) error) error {
	return fn(s)
}

func copyAffiliation(a *Affiliation) *Affiliation {
	clone := *a
	if a.ROR != nil {
		ror := *a.ROR
		clone.ROR = &ror
	}
	clone.Name = make(map[string]string, len(a.Name))
	for locale, name := range a.Name {
		clone.Name[locale] = name
	}
	return &clone
}

// fakeAuthors knows a fixed set of author IDs.
type fakeAuthors struct {
	known map[int64]bool
}

func (f *fakeAuthors) AuthorExists(_ context.Context, authorID int64) (bool, error) {
	return f.known[authorID], nil
}

// fakeRegistry resolves one registry URI to localized names.
type fakeRegistry struct {
	names map[string]map[string]string
}

func (f *fakeRegistry) LookupNames(_ context.Context, rorURI string) (map[string]string, error) {
	return f.names[rorURI], nil
}

// countingObserver records lifecycle notifications.
type countingObserver struct {
	NopObserver
	added, edited, deleted int
}

func (o *countingObserver) AffiliationAdded(context.Context, *Affiliation)   { o.added++ }
func (o *countingObserver) AffiliationEdited(context.Context, *Affiliation)  { o.edited++ }
func (o *countingObserver) AffiliationDeleted(context.Context, *Affiliation) { o.deleted++ }

var (
	testLocales = []string{"en", "fr"}
	testPrimary = "en"
)

func newTestService(store Store, observers ...Observer) *Service {
	return NewService(store,
		&fakeAuthors{known: map[int64]bool{1: true, 2: true}},
		&fakeRegistry{names: map[string]map[string]string{
			"https://ror.org/03yrm5c26": {"en": "Test University", "fr": "Université de Test"},
		}},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observers...,
	)
}

func freeText(authorID int64, name string) *Affiliation {
	return &Affiliation{
		AuthorID: authorID,
		Name:     map[string]string{"en": name},
	}
}

// # Validation

/*
TestService_Validate covers the identity rule (ROR or name), the locale
whitelist, and the author existence check.
*/
func TestService_Validate(t *testing.T) {
	service := newTestService(newFakeStore())
	rorURI := "https://ror.org/03yrm5c26"

	tests := []struct {
		name      string
		candidate *Affiliation
		wantField string
	}{
		{
			name:      "free text record passes",
			candidate: freeText(1, "Test University"),
			wantField: "",
		},
		{
			name:      "registry backed record passes without name",
			candidate: &Affiliation{AuthorID: 1, ROR: &rorURI},
			wantField: "",
		},
		{
			name:      "neither ror nor name",
			candidate: &Affiliation{AuthorID: 1},
			wantField: FieldROR,
		},
		{
			name: "name keyed by disallowed locale",
			candidate: &Affiliation{
				AuthorID: 1,
				Name:     map[string]string{"en": "X", "de": "Y"},
			},
			wantField: FieldName,
		},
		{
			name: "free text name missing primary locale",
			candidate: &Affiliation{
				AuthorID: 1,
				Name:     map[string]string{"fr": "Université"},
			},
			wantField: FieldName,
		},
		{
			name:      "unknown author",
			candidate: freeText(99, "Test University"),
			wantField: FieldAuthorID,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			errs := service.Validate(context.Background(), nil, test.candidate, testLocales, testPrimary)

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
TestService_Add_InfersNamesFromRegistry fills the localized names from the
ROR cache when the caller supplies only the identifier.
*/
func TestService_Add_InfersNamesFromRegistry(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)

	rorURI := "https://ror.org/03yrm5c26"
	record := &Affiliation{AuthorID: 1, ROR: &rorURI}

	require.NoError(t, service.Add(context.Background(), record, testLocales, testPrimary))

	got, err := service.Get(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test University", got.Name["en"])
	assert.Equal(t, "Université de Test", got.Name["fr"])
}

/*
TestService_Add_LocaleRoundTrip persists and reloads a multilingual name
without loss; empty locale values are dropped, not stored.
*/
func TestService_Add_LocaleRoundTrip(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)

	record := &Affiliation{
		AuthorID: 1,
		Name:     map[string]string{"en": "Test University", "fr": "Université de Test"},
	}
	require.NoError(t, service.Add(context.Background(), record, testLocales, testPrimary))

	got, err := service.Get(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.Name, got.Name)
}

/*
TestService_Edit_IsPure verifies the patch produces a new value and never
mutates the caller's original.
*/
func TestService_Edit_IsPure(t *testing.T) {
	original := freeText(1, "Old Name")
	original.ID = 5

	edited := applyPatch(original, Patch{Name: map[string]string{"en": "New Name"}})

	assert.Equal(t, "Old Name", original.Name["en"])
	assert.Equal(t, "New Name", edited.Name["en"])
	assert.Equal(t, int64(5), edited.ID)
}

/*
TestService_Edit_ClearROR treats an explicit empty "ror" in the patch as
clearing the registry link.
*/
func TestService_Edit_ClearROR(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)

	rorURI := "https://ror.org/03yrm5c26"
	record := &Affiliation{AuthorID: 1, ROR: &rorURI}
	require.NoError(t, service.Add(context.Background(), record, testLocales, testPrimary))

	empty := ""
	edited, err := service.Edit(context.Background(), record.ID, Patch{
		ROR:  &empty,
		Name: map[string]string{"en": "Standalone Institute"},
	}, testLocales, testPrimary)
	require.NoError(t, err)

	assert.Nil(t, edited.ROR)
	assert.Equal(t, "Standalone Institute", edited.Name["en"])
}

// # Aggregate Reconciliation

/*
TestService_SyncForAuthor_Reconciles deletes stale children before
upserting the desired set: persisted {1,2,3} synced against {2,3,new}
leaves exactly {2,3,4}.
*/
func TestService_SyncForAuthor_Reconciles(t *testing.T) {
	store := newFakeStore()
	observer := &countingObserver{}
	service := newTestService(store, observer)

	ctx := context.Background()
	for _, name := range []string{"First", "Second", "Third"} {
		require.NoError(t, service.Add(ctx, freeText(1, name), testLocales, testPrimary))
	}
	observer.added = 0

	second, err := service.Get(ctx, 2)
	require.NoError(t, err)
	third, err := service.Get(ctx, 3)
	require.NoError(t, err)

	desired := []*Affiliation{second, third, freeText(0, "Fourth")}
	require.NoError(t, service.SyncForAuthor(ctx, 1, desired, testLocales, testPrimary))

	ids, err := store.IDs(ctx, NewCollector().FilterByAuthorIDs([]int64{1}))
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 3, 4}, ids)

	// One delete (stale #1), one add (#4), two edits (#2, #3).
	assert.Equal(t, 1, observer.deleted)
	assert.Equal(t, 1, observer.added)
	assert.Equal(t, 2, observer.edited)
}

/*
TestService_SyncForAuthor_AssignsOwner assigns the owning author to
desired children that arrive without one.
*/
func TestService_SyncForAuthor_AssignsOwner(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)

	desired := []*Affiliation{freeText(0, "Adopted Institute")}
	require.NoError(t, service.SyncForAuthor(context.Background(), 2, desired, testLocales, testPrimary))

	assert.Equal(t, int64(2), desired[0].AuthorID)
}

/*
TestService_SyncForAuthor_EmptySetClears verifies syncing the empty set
removes every affiliation the author had.
*/
func TestService_SyncForAuthor_EmptySetClears(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)

	ctx := context.Background()
	require.NoError(t, service.Add(ctx, freeText(1, "Doomed"), testLocales, testPrimary))

	require.NoError(t, service.SyncForAuthor(ctx, 1, nil, testLocales, testPrimary))

	total, err := store.Count(ctx, NewCollector().FilterByAuthorIDs([]int64{1}))
	require.NoError(t, err)
	assert.Zero(t, total)
}

/*
TestService_SyncForAuthor_Idempotent verifies syncing the same desired set
twice leaves the same records with the same IDs.
*/
func TestService_SyncForAuthor_Idempotent(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)

	ctx := context.Background()
	require.NoError(t, service.Add(ctx, freeText(1, "Stable Institute"), testLocales, testPrimary))

	current, err := service.Get(ctx, 1)
	require.NoError(t, err)

	for range 2 {
		require.NoError(t, service.SyncForAuthor(ctx, 1, []*Affiliation{current}, testLocales, testPrimary))
	}

	ids, err := store.IDs(ctx, NewCollector().FilterByAuthorIDs([]int64{1}))
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
}

/*
TestService_SyncForAuthor_ValidationAborts rejects the whole sync when any
desired child fails validation; nothing is written or deleted.
*/
func TestService_SyncForAuthor_ValidationAborts(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)

	ctx := context.Background()
	require.NoError(t, service.Add(ctx, freeText(1, "Survivor"), testLocales, testPrimary))

	invalid := &Affiliation{} // neither ror nor name
	err := service.SyncForAuthor(ctx, 1, []*Affiliation{invalid}, testLocales, testPrimary)

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)

	total, err := store.Count(ctx, NewCollector().FilterByAuthorIDs([]int64{1}))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

// # Cascade

/*
TestService_DeleteByAuthorID removes all of one author's affiliations and
nobody else's.
*/
func TestService_DeleteByAuthorID(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store)

	ctx := context.Background()
	require.NoError(t, service.Add(ctx, freeText(1, "Mine"), testLocales, testPrimary))
	require.NoError(t, service.Add(ctx, freeText(2, "Theirs"), testLocales, testPrimary))

	require.NoError(t, service.DeleteByAuthorID(ctx, 1))

	mine, err := store.Count(ctx, NewCollector().FilterByAuthorIDs([]int64{1}))
	require.NoError(t, err)
	theirs, err := store.Count(ctx, NewCollector().FilterByAuthorIDs([]int64{2}))
	require.NoError(t, err)

	assert.Zero(t, mine)
	assert.Equal(t, 1, theirs)
}

/*
TestService_DeleteMany deletes every matched affiliation and notifies
observers once per record.
*/
func TestService_DeleteMany(t *testing.T) {
	store := newFakeStore()
	observer := &countingObserver{}
	service := newTestService(store, observer)

	ctx := context.Background()
	require.NoError(t, service.Add(ctx, freeText(1, "First"), testLocales, testPrimary))
	require.NoError(t, service.Add(ctx, freeText(1, "Second"), testLocales, testPrimary))
	require.NoError(t, service.Add(ctx, freeText(2, "Other"), testLocales, testPrimary))

	require.NoError(t, service.DeleteMany(ctx, NewCollector().FilterByAuthorIDs([]int64{1})))

	assert.Equal(t, 2, observer.deleted)
	remaining, err := store.Count(ctx, NewCollector())
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}

// vetoObserver rejects every delete.
type vetoObserver struct {
	NopObserver
}

func (vetoObserver) AffiliationDeleting(context.Context, *Affiliation) error {
	return apperr.Conflict("Affiliation is still referenced")
}

/*
TestService_DeleteMany_VetoAborts propagates an observer veto; the vetoed
record and the remainder of the batch stay in place.
*/
func TestService_DeleteMany_VetoAborts(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store, vetoObserver{})

	ctx := context.Background()
	require.NoError(t, service.Add(ctx, freeText(1, "First"), testLocales, testPrimary))
	require.NoError(t, service.Add(ctx, freeText(1, "Second"), testLocales, testPrimary))

	err := service.DeleteMany(ctx, NewCollector().FilterByAuthorIDs([]int64{1}))

	assert.True(t, apperr.IsConflict(err))
	remaining, countErr := store.Count(ctx, NewCollector())
	require.NoError(t, countErr)
	assert.Equal(t, 2, remaining)
}
