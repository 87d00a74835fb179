// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package publication

// Publication workflow statuses.
const (
	StatusQueued    = 1
	StatusPublished = 3
	StatusDeclined  = 4
	StatusScheduled = 5
)

// Publication is a publishable version of a submission. It is the parent
// aggregate for authors (and through them affiliations) and for the
// ordered citation list.
type Publication struct {
	ID     int64 `json:"id"`
	Status int   `json:"status"`

	// Title holds the publication title per locale, stored in the settings table.
	Title map[string]string `json:"title"`
}

// IsPublished reports whether the version is publicly visible.
func (p *Publication) IsPublished() bool {
	return p.Status == StatusPublished
}

// TitleFor returns the title in the given locale, falling back to any
// available locale when that locale has no entry.
func (p *Publication) TitleFor(locale string) string {
	if title := p.Title[locale]; title != "" {
		return title
	}
	for _, title := range p.Title {
		if title != "" {
			return title
		}
	}
	return ""
}

// Global field names for validation
const (
	FieldStatus = "status"
	FieldTitle  = "title"
)
