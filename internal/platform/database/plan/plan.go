// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

/*
Package plan defines the compiled form of a collector: a declarative query
plan of WHERE conjuncts, positional arguments, and paging.

A plan performs no I/O. Collectors compile their accumulated filters into a
Query, optional hooks may append further conditions, and the entity stores
render the plan into SQL for their count / ids / rows projections.
*/
package plan

import (
	"strconv"
	"strings"
)

// Query is a compiled, declarative query plan.
//
// Conds are ANDed together. Args are bound positionally via [Query.Bind].
// Limit and Offset apply only to row projections, never to counts.
type Query struct {
	Conds  []string
	Args   []any
	Limit  *int
	Offset *int
}

// Hook may inspect and mutate an in-progress query plan before execution.
//
// This is the documented extension point that lets optional integrations add
// filters without subclassing a collector. The base plan must remain correct
// when no hook is registered.
type Hook func(*Query)

// Bind appends an argument and returns its positional placeholder ("$n").
func (q *Query) Bind(arg any) string {
	q.Args = append(q.Args, arg)
	return "$" + strconv.Itoa(len(q.Args))
}

// Where appends one conjunct to the plan. Placeholders inside cond must come
// from [Query.Bind] on the same plan.
func (q *Query) Where(cond string) {
	q.Conds = append(q.Conds, cond)
}

// WhereSQL renders the conjuncts as a WHERE clause, or "" when unfiltered.
func (q *Query) WhereSQL() string {
	if len(q.Conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.Conds, " AND ")
}

// PagingSQL renders LIMIT/OFFSET. Values are integers supplied by the
// collector, rendered as literals.
func (q *Query) PagingSQL() string {
	var sb strings.Builder
	if q.Limit != nil {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(*q.Limit))
	}
	if q.Offset != nil {
		sb.WriteString(" OFFSET ")
		sb.WriteString(strconv.Itoa(*q.Offset))
	}
	return sb.String()
}
