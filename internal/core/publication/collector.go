// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package publication

import (
	"fmt"

	"github.com/openpress/scholar/internal/platform/database/plan"
	"github.com/openpress/scholar/internal/platform/database/schema"
)

// Collector is an immutable query specification over publications.
//
// Filter methods take the value receiver and return a modified copy; passing
// a zero value clears the filter. Compilation is pure; execution belongs to
// the Store.
type Collector struct {
	status       *int
	searchPhrase string
	limit        *int
	offset       *int
	hooks        []plan.Hook
}

// NewCollector returns an empty collector matching every publication.
func NewCollector() Collector {
	return Collector{}
}

// FilterByStatus restricts results to publications with the given workflow
// status. A nil pointer clears the filter.
func (c Collector) FilterByStatus(status *int) Collector {
	c.status = status
	return c
}

// SearchPhrase restricts results to publications whose title contains the
// phrase in any locale. An empty phrase clears the filter.
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
// The primary table is aliased "p".
func (c Collector) Compile() plan.Query {
	q := plan.Query{Limit: c.limit, Offset: c.offset}

	if c.status != nil {
		q.Where(fmt.Sprintf("p.%s = %s", schema.RefPublication.Status, q.Bind(*c.status)))
	}

	if c.searchPhrase != "" {
		q.Where(fmt.Sprintf(
			"p.%s IN (SELECT %s FROM %s WHERE %s = 'title' AND %s ILIKE %s)",
			schema.RefPublication.ID,
			schema.RefPublicationSettings.FK, schema.RefPublicationSettings.Table,
			schema.RefPublicationSettings.SettingName, schema.RefPublicationSettings.SettingValue,
			q.Bind("%"+c.searchPhrase+"%"),
		))
	}

	for _, hook := range c.hooks {
		hook(&q)
	}

	return q
}
