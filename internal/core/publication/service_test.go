// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package publication

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
	"github.com/openpress/scholar/pkg/pointer"
)

// # Test Doubles

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	records map[int64]*Publication
	nextID  int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[int64]*Publication{}}
}

func (s *fakeStore) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := s.records[id]
	return ok, nil
}

func (s *fakeStore) Get(_ context.Context, id int64) (*Publication, error) {
	p, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return copyPublication(p), nil
}

func (s *fakeStore) matches(p *Publication, c Collector) bool {
	if c.status != nil && p.Status != *c.status {
		return false
	}
	if c.searchPhrase != "" {
		hit := false
		for _, title := range p.Title {
			hit = hit || strings.Contains(strings.ToLower(title), strings.ToLower(c.searchPhrase))
		}
		if !hit {
			return false
		}
	}
	return true
}

func (s *fakeStore) matched(c Collector) []*Publication {
	var out []*Publication
	for _, p := range s.records {
		if s.matches(p, c) {
			out = append(out, copyPublication(p))
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
	for _, p := range s.matched(c) {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (s *fakeStore) Many(_ context.Context, c Collector) iter.Seq2[*Publication, error] {
	return func(yield func(*Publication, error) bool) {
		for _, p := range s.matched(c) {
			if !yield(p, nil) {
				return
			}
		}
	}
}

func (s *fakeStore) Insert(_ context.Context, p *Publication) (int64, error) {
	s.nextID++
	p.ID = s.nextID
	s.records[p.ID] = copyPublication(p)
	return p.ID, nil
}

func (s *fakeStore) Update(_ context.Context, p *Publication) error {
	if _, ok := s.records[p.ID]; !ok {
		return apperr.NotFound("Publication")
	}
	s.records[p.ID] = copyPublication(p)
	return nil
}

func (s *fakeStore) Delete(_ context.Context, p *Publication) error {
	if _, ok := s.records[p.ID]; !ok {
		return apperr.NotFound("Publication")
	}
	delete(s.records, p.ID)
	return nil
}

func (s *fakeStore) InTx(_ context.Context, fn func(Store) error) error {
	return fn(s)
}

func copyPublication(p *Publication) *Publication {
	clone := &Publication{
		ID:     p.ID,
		Status: p.Status,
		Title:  make(map[string]string, len(p.Title)),
	}
	for locale, title := range p.Title {
		clone.Title[locale] = title
	}
	return clone
}

// cascadeRecorder stands in for the citation and author managers and records
// the order the cascade steps ran in.
type cascadeRecorder struct {
	log   *[]string
	label string
}

func (r *cascadeRecorder) DeleteByPublicationID(_ context.Context, _ int64) error {
	*r.log = append(*r.log, r.label)
	return nil
}

var (
	testLocales = []string{"en", "fr"}
	testPrimary = "en"
)

func newTestService(store Store) (*Service, *[]string) {
	log := &[]string{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewService(store,
		&cascadeRecorder{log: log, label: "citations"},
		&cascadeRecorder{log: log, label: "authors"},
		logger,
	)
	return service, log
}

// # Validation

func TestService_Validate(t *testing.T) {
	service, _ := newTestService(newFakeStore())

	tests := []struct {
		name      string
		candidate *Publication
		wantField string
	}{
		{
			name: "valid record",
			candidate: &Publication{
				Status: StatusQueued,
				Title:  map[string]string{"en": "On the Shoulders of Giants"},
			},
		},
		{
			name: "unknown status",
			candidate: &Publication{
				Status: 2,
				Title:  map[string]string{"en": "Draft"},
			},
			wantField: FieldStatus,
		},
		{
			name: "missing primary-locale title",
			candidate: &Publication{
				Status: StatusQueued,
				Title:  map[string]string{"fr": "Brouillon"},
			},
			wantField: FieldTitle,
		},
		{
			name: "title in unsupported locale",
			candidate: &Publication{
				Status: StatusQueued,
				Title:  map[string]string{"en": "Draft", "de": "Entwurf"},
			},
			wantField: FieldTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := service.Validate(tt.candidate, testLocales, testPrimary)

			if tt.wantField == "" {
				assert.Empty(t, errs)
				return
			}
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.wantField, errs[0].Field)
		})
	}
}

// # Write Operations

func TestService_Edit_IsPure(t *testing.T) {
	original := &Publication{
		ID:     7,
		Status: StatusQueued,
		Title:  map[string]string{"en": "Original"},
	}

	edited := applyPatch(original, Patch{Status: pointer.To(StatusPublished)})

	// 1. The copy carries the patch.
	assert.Equal(t, StatusPublished, edited.Status)
	assert.Equal(t, "Original", edited.Title["en"])

	// 2. The original is untouched.
	assert.Equal(t, StatusQueued, original.Status)
}

func TestService_Edit_PersistsPatch(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	service, _ := newTestService(store)

	p := &Publication{Status: StatusQueued, Title: map[string]string{"en": "Draft"}}
	require.NoError(t, service.Add(ctx, p, testLocales, testPrimary))

	edited, err := service.Edit(ctx, p.ID, Patch{Status: pointer.To(StatusPublished)}, testLocales, testPrimary)
	require.NoError(t, err)
	assert.Equal(t, StatusPublished, edited.Status)

	stored, err := service.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsPublished())
}

func TestService_Delete_CascadesChildren(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	service, log := newTestService(store)

	p := &Publication{Status: StatusQueued, Title: map[string]string{"en": "Doomed"}}
	require.NoError(t, service.Add(ctx, p, testLocales, testPrimary))

	// 1. Delete removes the record itself.
	require.NoError(t, service.Delete(ctx, p.ID))
	_, err := service.Get(ctx, p.ID)
	assert.True(t, apperr.IsNotFound(err))

	// 2. Citations are removed strictly before authors.
	assert.Equal(t, []string{"citations", "authors"}, *log)
}

func TestService_Delete_Missing(t *testing.T) {
	ctx := context.Background()
	service, log := newTestService(newFakeStore())

	err := service.Delete(ctx, 99)
	assert.True(t, apperr.IsNotFound(err))

	// No cascade runs for a record that does not exist.
	assert.Empty(t, *log)
}

// # Directory Adapter

func TestDirectory_PublicationExists(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	service, _ := newTestService(store)

	p := &Publication{Status: StatusQueued, Title: map[string]string{"en": "Here"}}
	require.NoError(t, service.Add(ctx, p, testLocales, testPrimary))

	directory := NewDirectory(store)

	exists, err := directory.PublicationExists(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = directory.PublicationExists(ctx, p.ID+1)
	require.NoError(t, err)
	assert.False(t, exists)
}
