// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

package citation

// Citation is one raw bibliographic reference attached to a publication.
//
// Seq is the 1-based position within the publication's reference list and
// is unique per publication. The raw text is stored verbatim; parsing into
// structured metadata is a downstream concern.
type Citation struct {
	ID            int64  `json:"id"`
	PublicationID int64  `json:"publication_id"`
	RawCitation   string `json:"raw_citation"`
	Seq           int    `json:"seq"`
}

// Global field names for validation
const (
	FieldPublicationID = "publication_id"
	FieldRawCitation   = "raw_citation"
	FieldSeq           = "seq"
)
