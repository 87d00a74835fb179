// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package citation

import (
	"fmt"

	"github.com/openpress/scholar/internal/platform/database/plan"
	"github.com/openpress/scholar/internal/platform/database/schema"
)

// Collector is an immutable query specification over citations.
//
// Filter methods take the value receiver and return a modified copy; passing
// a zero value clears the filter. Compilation is pure; execution belongs to
// the Store. Results are always ordered by (publication, seq).
type Collector struct {
	publicationIDs []int64
	searchPhrase   string
	limit          *int
	offset         *int
	hooks          []plan.Hook
}

// NewCollector returns an empty collector matching every citation.
func NewCollector() Collector {
	return Collector{}
}

// FilterByPublicationIDs restricts results to citations of the given
// publications. A nil or empty slice clears the filter.
func (c Collector) FilterByPublicationIDs(publicationIDs []int64) Collector {
	c.publicationIDs = publicationIDs
	return c
}

// SearchPhrase restricts results to citations whose raw text contains the
// phrase. An empty phrase clears the filter.
func (c Collector) SearchPhrase(phrase string) Collector {
	c.searchPhrase = phrase
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
// The primary table is aliased "c".
func (c Collector) Compile() plan.Query {
	q := plan.Query{Limit: c.limit, Offset: c.offset}

	if len(c.publicationIDs) > 0 {
		q.Where(fmt.Sprintf("c.%s = ANY(%s)", schema.RefCitation.PublicationID, q.Bind(c.publicationIDs)))
	}

	if c.searchPhrase != "" {
		q.Where(fmt.Sprintf("c.%s ILIKE %s", schema.RefCitation.RawCitation, q.Bind("%"+c.searchPhrase+"%")))
	}

	for _, hook := range c.hooks {
		hook(&q)
	}

	return q
}
