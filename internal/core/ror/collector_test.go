// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package ror_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openpress/scholar/internal/core/ror"
	"github.com/openpress/scholar/internal/platform/database/plan"
)

/*
TestCollector_Immutable verifies filter methods return modified copies and
never touch the receiver.
*/
func TestCollector_Immutable(t *testing.T) {
	base := ror.NewCollector()
	filtered := base.FilterByRORs([]string{"https://ror.org/03yrm5c26"})

	// 1. The base collector still matches everything
	assert.Empty(t, base.Compile().Conds)

	// 2. The derived collector carries the filter
	assert.Len(t, filtered.Compile().Conds, 1)
}

/*
TestCollector_Compile renders filters into positional conjuncts with paging.
*/
func TestCollector_Compile(t *testing.T) {
	limit, offset := 10, 20
	status := ror.StatusActive

	q := ror.NewCollector().
		SearchPhrase("university").
		FilterByStatus(&status).
		Limit(&limit).
		Offset(&offset).
		Compile()

	assert.Len(t, q.Conds, 2)
	assert.Len(t, q.Args, 2)
	assert.Contains(t, q.WhereSQL(), "WHERE")
	assert.Equal(t, " LIMIT 10 OFFSET 20", q.PagingSQL())
}

/*
TestCollector_Hooks runs registered hooks after the base filters compile.
*/
func TestCollector_Hooks(t *testing.T) {
	q := ror.NewCollector().
		WithHook(func(q *plan.Query) {
			q.Where("r.status = " + q.Bind(ror.StatusActive))
		}).
		Compile()

	assert.Len(t, q.Conds, 1)
	assert.Equal(t, []any{ror.StatusActive}, q.Args)
}

/*
TestCollector_ZeroValuesClearFilters verifies passing zero values removes a
previously set filter.
*/
func TestCollector_ZeroValuesClearFilters(t *testing.T) {
	c := ror.NewCollector().
		SearchPhrase("university").
		SearchPhrase("")

	assert.Empty(t, c.Compile().Conds)
}
