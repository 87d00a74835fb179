// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package recommendation

import (
	"fmt"

	"github.com/openpress/scholar/internal/platform/database/plan"
	"github.com/openpress/scholar/internal/platform/database/schema"
)

// Collector is an immutable query specification over reviewer
// recommendations.
//
// Filter methods take the value receiver and return a modified copy; passing
// a zero value clears the filter. Compilation is pure; execution belongs to
// the Store. Results are always ordered by (context, value).
type Collector struct {
	contextIDs []int64
	status     *int
	limit      *int
	offset     *int
	hooks      []plan.Hook
}

// NewCollector returns an empty collector matching every recommendation.
func NewCollector() Collector {
	return Collector{}
}

// FilterByContextIDs restricts results to the given review contexts.
// A nil or empty slice clears the filter.
func (c Collector) FilterByContextIDs(contextIDs []int64) Collector {
	c.contextIDs = contextIDs
	return c
}

// FilterByStatus restricts results to options with the given status.
// A nil pointer clears the filter.
func (c Collector) FilterByStatus(status *int) Collector {
	c.status = status
	return c
}

// Limit caps the number of records retrieved. Nil clears the cap.
func (c Collector) Limit(n *int) Collector {
	c.limit = n
	return c
}

// Offset skips the first n records. Nil clears the offset.
func (c Collector) Offset(n *int) Collector {
	c.offset = n
	return c
}

// WithHook registers a plan hook invoked during Compile, after the base
// filters have been applied.
func (c Collector) WithHook(hook plan.Hook) Collector {
	hooks := make([]plan.Hook, 0, len(c.hooks)+1)
	hooks = append(hooks, c.hooks...)
	hooks = append(hooks, hook)
	c.hooks = hooks
	return c
}

// Compile renders the accumulated filters into a declarative query plan.
// The primary table is aliased "rr".
func (c Collector) Compile() plan.Query {
	q := plan.Query{Limit: c.limit, Offset: c.offset}

	if len(c.contextIDs) > 0 {
		q.Where(fmt.Sprintf("rr.%s = ANY(%s)", schema.RefRecommendation.ContextID, q.Bind(c.contextIDs)))
	}

	if c.status != nil {
		q.Where(fmt.Sprintf("rr.%s = %s", schema.RefRecommendation.Status, q.Bind(*c.status)))
	}

	for _, hook := range c.hooks {
		hook(&q)
	}

	return q
}
