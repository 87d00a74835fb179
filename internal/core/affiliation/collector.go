// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package affiliation

import (
	"fmt"

	"github.com/openpress/scholar/internal/platform/database/plan"
	"github.com/openpress/scholar/internal/platform/database/schema"
)

// Collector is an immutable query specification over author affiliations.
//
// Filter methods take the value receiver and return a modified copy; passing
// a zero value (nil slice, empty string, nil pointer) clears the filter.
// Compilation is pure; execution belongs to the Store.
type Collector struct {
	authorIDs    []int64
	rors         []string
	name         string
	searchPhrase string
	limit        *int
	offset       *int
	hooks        []plan.Hook
}

// NewCollector returns an empty collector matching every affiliation.
func NewCollector() Collector {
	return Collector{}
}

// FilterByAuthorIDs restricts results to affiliations owned by the given
// authors. A nil or empty slice clears the filter.
func (c Collector) FilterByAuthorIDs(authorIDs []int64) Collector {
	c.authorIDs = authorIDs
	return c
}

// FilterByRORs restricts results to registry-backed affiliations with the
// given identifiers. A nil or empty slice clears the filter.
func (c Collector) FilterByRORs(rors []string) Collector {
	c.rors = rors
	return c
}

// FilterByName restricts results to affiliations whose name matches exactly
// in any locale. An empty name clears the filter.
func (c Collector) FilterByName(name string) Collector {
	c.name = name
	return c
}

// SearchPhrase restricts results to affiliations whose name contains the
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
// The primary table is aliased "a".
func (c Collector) Compile() plan.Query {
	q := plan.Query{Limit: c.limit, Offset: c.offset}

	if len(c.authorIDs) > 0 {
		q.Where(fmt.Sprintf("a.%s = ANY(%s)", schema.RefAffiliation.AuthorID, q.Bind(c.authorIDs)))
	}

	if len(c.rors) > 0 {
		q.Where(fmt.Sprintf("a.%s = ANY(%s)", schema.RefAffiliation.ROR, q.Bind(c.rors)))
	}

	if c.name != "" {
		q.Where(fmt.Sprintf(
			"a.%s IN (SELECT %s FROM %s WHERE %s = 'name' AND %s = %s)",
			schema.RefAffiliation.ID,
			schema.RefAffiliationSettings.FK, schema.RefAffiliationSettings.Table,
			schema.RefAffiliationSettings.SettingName, schema.RefAffiliationSettings.SettingValue,
			q.Bind(c.name),
		))
	}

	if c.searchPhrase != "" {
		q.Where(fmt.Sprintf(
			"a.%s IN (SELECT %s FROM %s WHERE %s = 'name' AND %s ILIKE %s)",
			schema.RefAffiliation.ID,
			schema.RefAffiliationSettings.FK, schema.RefAffiliationSettings.Table,
			schema.RefAffiliationSettings.SettingName, schema.RefAffiliationSettings.SettingValue,
			q.Bind("%"+c.searchPhrase+"%"),
		))
	}

	for _, hook := range c.hooks {
		hook(&q)
	}

	return q
}
