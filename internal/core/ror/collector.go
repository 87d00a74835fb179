// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package ror

import (
	"fmt"

	"github.com/openpress/scholar/internal/platform/database/plan"
	"github.com/openpress/scholar/internal/platform/database/schema"
)

// Collector is an immutable query specification over the ROR cache.
//
// Each filter method takes the value receiver and returns a modified copy,
// so a collector can be shared and extended without state leaking between
// callers. Passing the zero value of a filter (nil slice, empty string)
// clears it. Compilation is pure; execution belongs to the Store.
type Collector struct {
	rors         []string
	name         string
	searchPhrase string
	status       *int
	limit        *int
	offset       *int
	hooks        []plan.Hook
}

// NewCollector returns an empty collector matching every cached record.
func NewCollector() Collector {
	return Collector{}
}

// FilterByRORs restricts results to the given registry identifiers.
// A nil or empty slice clears the filter.
func (c Collector) FilterByRORs(rors []string) Collector {
	c.rors = rors
	return c
}

// FilterByName restricts results to records whose name matches exactly in
// any locale. An empty name clears the filter.
func (c Collector) FilterByName(name string) Collector {
	c.name = name
	return c
}

// SearchPhrase restricts results to records whose name or identifier
// contains the phrase. An empty phrase clears the filter.
func (c Collector) SearchPhrase(phrase string) Collector {
	c.searchPhrase = phrase
	return c
}

// FilterByStatus restricts results to records with the given registry
// status. A nil pointer clears the filter.
func (c Collector) FilterByStatus(status *int) Collector {
	c.status = status
	return c
}

// Limit caps the number of records retrieved. Nil clears the cap.
func (c Collector) Limit(n *int) Collector {
	c.limit = n
	return c
}

// Offset skips the first n records, for example to retrieve the second page.
// Nil clears the offset.
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
// The primary table is aliased "r".
func (c Collector) Compile() plan.Query {
	q := plan.Query{Limit: c.limit, Offset: c.offset}

	if len(c.rors) > 0 {
		q.Where(fmt.Sprintf("r.%s = ANY(%s)", schema.RefRor.ROR, q.Bind(c.rors)))
	}

	if c.status != nil {
		q.Where(fmt.Sprintf("r.%s = %s", schema.RefRor.Status, q.Bind(*c.status)))
	}

	if c.name != "" {
		q.Where(fmt.Sprintf(
			"r.%s IN (SELECT %s FROM %s WHERE %s = 'name' AND %s = %s)",
			schema.RefRor.ID,
			schema.RefRorSettings.FK, schema.RefRorSettings.Table,
			schema.RefRorSettings.SettingName, schema.RefRorSettings.SettingValue,
			q.Bind(c.name),
		))
	}

	if c.searchPhrase != "" {
		pattern := "%" + c.searchPhrase + "%"
		placeholder := q.Bind(pattern)
		q.Where(fmt.Sprintf(
			"(r.%s ILIKE %s OR r.%s IN (SELECT %s FROM %s WHERE %s = 'name' AND %s ILIKE %s))",
			schema.RefRor.ROR, placeholder,
			schema.RefRor.ID,
			schema.RefRorSettings.FK, schema.RefRorSettings.Table,
			schema.RefRorSettings.SettingName, schema.RefRorSettings.SettingValue, placeholder,
		))
	}

	for _, hook := range c.hooks {
		hook(&q)
	}

	return q
}
