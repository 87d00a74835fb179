package schema

// RefCitationTable represents the 'citations' table
type RefCitationTable struct {
	Table         string
	ID            string
	PublicationID string
	RawCitation   string
	Seq           string
}

// RefCitation is the schema definition for citations
var RefCitation = RefCitationTable{
	Table:         "citations",
	ID:            "citation_id",
	PublicationID: "publication_id",
	RawCitation:   "raw_citation",
	Seq:           "seq",
}

func (t RefCitationTable) Columns() []string {
	return []string{t.ID, t.PublicationID, t.RawCitation, t.Seq}
}
