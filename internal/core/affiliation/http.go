// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

/*
Package affiliation manages the organizations an author writes under.

An affiliation is either free text or backed by the ROR registry cache; in
the latter case the localized organization names are mirrored from the cache
at write time.

# Routing

  - GET    /affiliations           List/search (author, phrase)
  - GET    /affiliations/{id}      Fetch one record
  - POST   /affiliations           Create
  - PUT    /affiliations/{id}      Replace every mutable field
  - PATCH  /affiliations/{id}      Patch
  - DELETE /affiliations/{id}      Delete

The full-set reconciliation endpoint lives under /authors (see the author
package); this package only exposes per-record operations.

The handler translates between the web/JSON layer and the internal domain [Service].
*/
package affiliation

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openpress/scholar/internal/platform/config"
	requestutil "github.com/openpress/scholar/internal/platform/request"
	"github.com/openpress/scholar/internal/platform/respond"
	"github.com/openpress/scholar/pkg/pagination"
	"github.com/openpress/scholar/pkg/query"
)

// # Handler Implementation

// Handler implements the HTTP layer for affiliation management.
type Handler struct {
	service *Service
	config  *config.Config
}

// NewHandler constructs a new affiliation [Handler].
func NewHandler(service *Service, config *config.Config) *Handler {
	return &Handler{service: service, config: config}
}

// RegisterRoutes attaches affiliation endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Route("/affiliations", func(r chi.Router) {
		r.Get("/", handler.List)
		r.Post("/", handler.Create)
		r.Get("/{id}", handler.Get)
		r.Put("/{id}", handler.Replace)
		r.Patch("/{id}", handler.Update)
		r.Delete("/{id}", handler.Delete)
	})
}

// # Retrieval

/*
GET /api/v1/affiliations.

Description: Lists affiliations. Filters combine conjunctively.

Request:
  - author_ids: string (Comma-separated author IDs)
  - q: string (Phrase matched against names in any locale)
  - limit, page: int

Response:
  - 200: []Affiliation: Paginated list with meta block
*/
func (handler *Handler) List(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	limit := params.Limit
	offset := params.Offset()

	c := NewCollector().
		FilterByAuthorIDs(query.Int64Slice(request.URL.Query().Get("author_ids"))).
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
GET /api/v1/affiliations/{id}.

Response:
  - 200: Affiliation
  - 404: NOT_FOUND: Unknown ID
*/
func (handler *Handler) Get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	a, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, a)
}

// # Mutation

// createAffiliationRequest defines the inbound JSON schema for creation.
type createAffiliationRequest struct {
	AuthorID int64             `json:"author_id"`
	ROR      *string           `json:"ror"`
	Name     map[string]string `json:"name"`
}

/*
POST /api/v1/affiliations.

Description: Creates an affiliation. A registry-backed record may omit the
name; it is inferred from the ROR cache.

Response:
  - 201: Affiliation: Created record with assigned ID
  - 400: VALIDATION_ERROR: Invalid payload
*/
func (handler *Handler) Create(writer http.ResponseWriter, request *http.Request) {
	var input createAffiliationRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record := &Affiliation{
		AuthorID: input.AuthorID,
		ROR:      input.ROR,
		Name:     input.Name,
	}

	err := handler.service.Add(request.Context(), record,
		handler.config.Locales(), handler.config.PrimaryLocale())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, record)
}

// replaceAffiliationRequest defines the inbound JSON schema for full
// replacement. The owning author is immutable and not part of it.
type replaceAffiliationRequest struct {
	ROR  *string           `json:"ror"`
	Name map[string]string `json:"name"`
}

/*
PUT /api/v1/affiliations/{id}.

Description: Replaces every mutable field with the request body. An
omitted "ror" clears the registry link; use PATCH to keep it.

Response:
  - 200: Affiliation: New persisted state
  - 400: VALIDATION_ERROR
  - 404: NOT_FOUND
*/
func (handler *Handler) Replace(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input replaceAffiliationRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.ROR == nil {
		empty := ""
		input.ROR = &empty
	}
	if input.Name == nil {
		input.Name = map[string]string{}
	}

	patch := Patch{ROR: input.ROR, Name: input.Name}
	edited, err := handler.service.Edit(request.Context(), id, patch,
		handler.config.Locales(), handler.config.PrimaryLocale())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, edited)
}

/*
PATCH /api/v1/affiliations/{id}.

Description: Applies a partial update; absent JSON fields keep their
current values. An explicit empty "ror" clears the registry link.

Response:
  - 200: Affiliation: New persisted state
  - 400: VALIDATION_ERROR
  - 404: NOT_FOUND
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

	edited, err := handler.service.Edit(request.Context(), id, patch,
		handler.config.Locales(), handler.config.PrimaryLocale())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, edited)
}

/*
DELETE /api/v1/affiliations/{id}.

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
