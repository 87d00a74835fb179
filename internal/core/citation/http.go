// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

/*
Package citation manages the ordered reference lists of publications.

Citations are stored as raw strings in a 1-based, per-publication sequence.
The typical write path is the bulk import endpoint, which replaces a
publication's whole list from a pasted blob; per-record endpoints exist for
corrections.

# Routing

  - GET    /citations           List/search (publication, phrase)
  - GET    /citations/{id}      Fetch one record
  - POST   /citations           Create (seq <= 0 appends)
  - PUT    /citations/{id}      Replace every mutable field
  - PATCH  /citations/{id}      Patch
  - DELETE /citations/{id}      Delete
  - POST   /citations/import    Replace a publication's list from raw text

The handler translates between the web/JSON layer and the internal domain [Service].
*/
package citation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/openpress/scholar/internal/platform/request"
	"github.com/openpress/scholar/internal/platform/respond"
	"github.com/openpress/scholar/pkg/pagination"
	"github.com/openpress/scholar/pkg/query"
)

// # Handler Implementation

// Handler implements the HTTP layer for citation management.
type Handler struct {
	service *Service
}

// NewHandler constructs a new citation [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches citation endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Route("/citations", func(r chi.Router) {
		r.Get("/", handler.List)
		r.Post("/", handler.Create)
		r.Post("/import", handler.Import)
		r.Get("/{id}", handler.Get)
		r.Put("/{id}", handler.Replace)
		r.Patch("/{id}", handler.Update)
		r.Delete("/{id}", handler.Delete)
	})
}

// # Retrieval

/*
GET /api/v1/citations.

Description: Lists citations ordered by (publication, seq).

Request:
  - publication_ids: string (Comma-separated publication IDs)
  - q: string (Phrase matched against the raw text)
  - limit, page: int

Response:
  - 200: []Citation: Paginated list with meta block
*/
func (handler *Handler) List(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	limit := params.Limit
	offset := params.Offset()

	c := NewCollector().
		FilterByPublicationIDs(query.Int64Slice(request.URL.Query().Get("publication_ids"))).
		SearchPhrase(request.URL.Query().Get("q")).
		Limit(&limit).
		Offset(&offset)

	records, total, err := handler.service.List(request.Context(), c)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, records, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GET /api/v1/citations/{id}.

Response:
  - 200: Citation
  - 404: NOT_FOUND: Unknown ID
*/
func (handler *Handler) Get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, record)
}

// # Mutation

// createCitationRequest defines the inbound JSON schema for creation.
type createCitationRequest struct {
	PublicationID int64  `json:"publication_id"`
	RawCitation   string `json:"raw_citation"`
	Seq           int    `json:"seq"`
}

/*
POST /api/v1/citations.

Description: Creates a citation. Omitting seq (or any value <= 0) appends
it after the publication's current last reference.

Response:
  - 201: Citation: Created record with assigned ID and seq
  - 400: VALIDATION_ERROR
  - 409: CONFLICT: The (publication, seq) slot is taken
*/
func (handler *Handler) Create(writer http.ResponseWriter, request *http.Request) {
	var input createCitationRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record := &Citation{
		PublicationID: input.PublicationID,
		RawCitation:   input.RawCitation,
		Seq:           input.Seq,
	}

	if err := handler.service.Add(request.Context(), record); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, record)
}

// replaceCitationRequest defines the inbound JSON schema for full
// replacement. The owning publication is immutable and not part of it.
type replaceCitationRequest struct {
	RawCitation string `json:"raw_citation"`
	Seq         int    `json:"seq"`
}

/*
PUT /api/v1/citations/{id}.

Description: Replaces every mutable field of the citation with the request
body. Omitted fields take their zero values rather than keeping the stored
state; use PATCH for partial updates.

Response:
  - 200: Citation: New persisted state
  - 400: VALIDATION_ERROR
  - 404: NOT_FOUND
  - 409: CONFLICT: The target seq slot is taken
*/
func (handler *Handler) Replace(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input replaceCitationRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	patch := Patch{RawCitation: &input.RawCitation, Seq: &input.Seq}
	edited, err := handler.service.Edit(request.Context(), id, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, edited)
}

/*
PATCH /api/v1/citations/{id}.

Response:
  - 200: Citation: New persisted state
  - 400: VALIDATION_ERROR
  - 404: NOT_FOUND
  - 409: CONFLICT: The target seq slot is taken
*/
func (handler *Handler) Update(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var patch Patch
	if err := requestutil.DecodeJSON(request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	edited, err := handler.service.Edit(request.Context(), id, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, edited)
}

/*
DELETE /api/v1/citations/{id}.

Response:
  - 204: Deleted
  - 404: NOT_FOUND
*/
func (handler *Handler) Delete(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Import

// importCitationsRequest defines the inbound JSON schema for bulk import.
type importCitationsRequest struct {
	PublicationID int64  `json:"publication_id"`
	RawCitations  string `json:"raw_citations"`
}

/*
POST /api/v1/citations/import.

Description: Replaces a publication's entire reference list with the
parsed content of a raw blob (semicolon/newline separated). An empty blob
clears the list.

Response:
  - 200: ImportResult: Before/after sets
  - 400: VALIDATION_ERROR: Unknown publication
*/
func (handler *Handler) Import(writer http.ResponseWriter, request *http.Request) {
	var input importCitationsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.ImportFromRawList(request.Context(), input.PublicationID, input.RawCitations)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}
