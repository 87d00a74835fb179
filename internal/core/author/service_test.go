// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package author

import (
	"context"
	"io"
	"iter"
	"log/slog"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpress/scholar/internal/core/affiliation"
	"github.com/openpress/scholar/internal/platform/apperr"
)

// # Test Doubles

// fakeStore is an in-memory Store honouring the append-on-zero-seq
// contract.
type fakeStore struct {
	records map[int64]*Author
	nextID  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[int64]*Author{}}
}

func (s *fakeStore) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := s.records[id]
	return ok, nil
}

func (s *fakeStore) Get(_ context.Context, id int64) (*Author, error) {
	a, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return copyAuthor(a), nil
}

func (s *fakeStore) matched(c Collector) []*Author {
	var out []*Author
	for _, a := range s.records {
		if len(c.publicationIDs) > 0 {
			found := false
			for _, id := range c.publicationIDs {
				if a.PublicationID == id {
					found = true
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, copyAuthor(a))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PublicationID != out[j].PublicationID {
			return out[i].PublicationID < out[j].PublicationID
		}
		return out[i].Seq < out[j].Seq
	})
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

func (s *fakeStore) Many(_ context.Context, c Collector) iter.Seq2[*Author, error] {
	return func(yield func(*Author, error) bool) {
		for _, a := range s.matched(c) {
			if !yield(a, nil) {
				return
			}
		}
	}
}

func (s *fakeStore) Insert(_ context.Context, a *Author) (int64, error) {
	if a.Seq <= 0 {
		maxSeq := 0
		for _, existing := range s.records {
			if existing.PublicationID == a.PublicationID && existing.Seq > maxSeq {
				maxSeq = existing.Seq
			}
		}
		a.Seq = maxSeq + 1
	}
	s.nextID++
	a.ID = s.nextID
	s.records[a.ID] = copyAuthor(a)
	return a.ID, nil
}

func (s *fakeStore) Update(_ context.Context, a *Author) error {
	if _, ok := s.records[a.ID]; !ok {
		return apperr.NotFound("Author")
	}
	s.records[a.ID] = copyAuthor(a)
	return nil
}

func (s *fakeStore) Delete(_ context.Context, a *Author) error {
	if _, ok := s.records[a.ID]; !ok {
		return apperr.NotFound("Author")
	}
	delete(s.records, a.ID)
	return nil
}

func (s *fakeStore) DeleteByPublicationID(_ context.Context, publicationID int64) error {
	for id, a := range s.records {
		if a.PublicationID == publicationID {
			delete(s.records, id)
		}
	}
	return nil
}

func (s *fakeStore) InTx(_ context.Context, fn func(Store) error) error {
	return fn(s)
}

func copyAuthor(a *Author) *Author {
	clone := &Author{
		ID:            a.ID,
		PublicationID: a.PublicationID,
		Email:         a.Email,
		Seq:           a.Seq,
		GivenName:     map[string]string{},
		FamilyName:    map[string]string{},
	}
	for locale, name := range a.GivenName {
		clone.GivenName[locale] = name
	}
	for locale, name := range a.FamilyName {
		clone.FamilyName[locale] = name
	}
	return clone
}

// fakeAffiliations records calls and serves a canned affiliation set.
type fakeAffiliations struct {
	byAuthor  map[int64][]*affiliation.Affiliation
	listCalls int
	synced    map[int64]int
	cascaded  []int64
}

func newFakeAffiliations() *fakeAffiliations {
	return &fakeAffiliations{
		byAuthor: map[int64][]*affiliation.Affiliation{},
		synced:   map[int64]int{},
	}
}

func (f *fakeAffiliations) ListForAuthor(_ context.Context, authorID int64) ([]*affiliation.Affiliation, error) {
	f.listCalls++
	return f.byAuthor[authorID], nil
}

func (f *fakeAffiliations) SyncForAuthor(_ context.Context, authorID int64, desired []*affiliation.Affiliation, _ []string, _ string) error {
	f.synced[authorID]++
	f.byAuthor[authorID] = desired
	return nil
}

func (f *fakeAffiliations) DeleteByAuthorID(_ context.Context, authorID int64) error {
	f.cascaded = append(f.cascaded, authorID)
	delete(f.byAuthor, authorID)
	return nil
}

// fakePublications knows a fixed set of publication IDs.
type fakePublications struct {
	known map[int64]bool
}

func (f *fakePublications) PublicationExists(_ context.Context, id int64) (bool, error) {
	return f.known[id], nil
}

var (
	testLocales = []string{"en", "fr"}
	testPrimary = "en"
)

func newTestService(store Store, affiliations AffiliationManager) *Service {
	if affiliations == nil {
		affiliations = newFakeAffiliations()
	}
	return NewService(store, affiliations,
		&fakePublications{known: map[int64]bool{10: true, 20: true}},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func contributor(publicationID int64, email string) *Author {
	return &Author{
		PublicationID: publicationID,
		Email:         email,
		GivenName:     map[string]string{"en": "Jane"},
		FamilyName:    map[string]string{"en": "Doe"},
	}
}

// # Validation

/*
TestService_Validate covers the ownership, email and localized-name rules.
*/
func TestService_Validate(t *testing.T) {
	service := newTestService(newFakeStore(), nil)

	tests := []struct {
		name      string
		candidate *Author
		wantField string
	}{
		{
			name:      "valid candidate passes",
			candidate: contributor(10, "jane@example.org"),
			wantField: "",
		},
		{
			name: "missing email",
			candidate: &Author{
				PublicationID: 10,
				GivenName:     map[string]string{"en": "Jane"},
			},
			wantField: FieldEmail,
		},
		{
			name: "malformed email",
			candidate: &Author{
				PublicationID: 10,
				Email:         "not-an-address",
				GivenName:     map[string]string{"en": "Jane"},
			},
			wantField: FieldEmail,
		},
		{
			name: "missing primary locale given name",
			candidate: &Author{
				PublicationID: 10,
				Email:         "jane@example.org",
				GivenName:     map[string]string{"fr": "Jeanne"},
			},
			wantField: FieldGivenName,
		},
		{
			name: "family name keyed by disallowed locale",
			candidate: &Author{
				PublicationID: 10,
				Email:         "jane@example.org",
				GivenName:     map[string]string{"en": "Jane"},
				FamilyName:    map[string]string{"de": "Doe"},
			},
			wantField: FieldFamilyName,
		},
		{
			name:      "unknown publication",
			candidate: contributor(777, "jane@example.org"),
			wantField: FieldPublicationID,
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
TestService_Add_AppendsSeq assigns the next byline position per
publication when seq is omitted.
*/
func TestService_Add_AppendsSeq(t *testing.T) {
	service := newTestService(newFakeStore(), nil)
	ctx := context.Background()

	first := contributor(10, "first@example.org")
	second := contributor(10, "second@example.org")

	require.NoError(t, service.Add(ctx, first, testLocales, testPrimary))
	require.NoError(t, service.Add(ctx, second, testLocales, testPrimary))

	assert.Equal(t, 1, first.Seq)
	assert.Equal(t, 2, second.Seq)
}

/*
TestService_Delete_CascadesAffiliations removes the author's affiliations
through the affiliation service before the primary row.
*/
func TestService_Delete_CascadesAffiliations(t *testing.T) {
	store := newFakeStore()
	affiliations := newFakeAffiliations()
	service := newTestService(store, affiliations)
	ctx := context.Background()

	a := contributor(10, "jane@example.org")
	require.NoError(t, service.Add(ctx, a, testLocales, testPrimary))

	require.NoError(t, service.Delete(ctx, a.ID))

	assert.Equal(t, []int64{a.ID}, affiliations.cascaded)
	_, err := service.Get(ctx, a.ID)
	assert.True(t, apperr.IsNotFound(err))
}

// # Affiliation Memoization

/*
TestAuthor_Affiliations_Memoized fetches the affiliation set once per
in-memory author and serves later calls from the memo.
*/
func TestAuthor_Affiliations_Memoized(t *testing.T) {
	affiliations := newFakeAffiliations()
	service := newTestService(newFakeStore(), affiliations)
	ctx := context.Background()

	a := contributor(10, "jane@example.org")
	require.NoError(t, service.Add(ctx, a, testLocales, testPrimary))
	affiliations.byAuthor[a.ID] = []*affiliation.Affiliation{
		{ID: 1, AuthorID: a.ID, Name: map[string]string{"en": "Test University"}},
	}

	for range 3 {
		got, err := service.GetAffiliations(ctx, a)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}

	assert.Equal(t, 1, affiliations.listCalls)
}

/*
TestService_SaveAffiliations_InvalidatesMemo verifies a sync through the
service drops the memo, so the next read sees the reconciled set.
*/
func TestService_SaveAffiliations_InvalidatesMemo(t *testing.T) {
	affiliations := newFakeAffiliations()
	service := newTestService(newFakeStore(), affiliations)
	ctx := context.Background()

	a := contributor(10, "jane@example.org")
	require.NoError(t, service.Add(ctx, a, testLocales, testPrimary))

	// 1. Prime the memo with the empty set
	got, err := service.GetAffiliations(ctx, a)
	require.NoError(t, err)
	assert.Empty(t, got)

	// 2. Reconcile a new set through the service
	desired := []*affiliation.Affiliation{
		{AuthorID: a.ID, Name: map[string]string{"en": "Test University"}},
	}
	require.NoError(t, service.SaveAffiliations(ctx, a, desired, testLocales, testPrimary))
	assert.Equal(t, 1, affiliations.synced[a.ID])

	// 3. The memo was invalidated: the next read refetches
	got, err = service.GetAffiliations(ctx, a)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 2, affiliations.listCalls)
}
