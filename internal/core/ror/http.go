// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

/*
Package ror manages the cached mirror of the Research Organization Registry.

The cache backs affiliation name inference and autocomplete lookups. Records
are written either one at a time (manual curation) or in bulk from registry
dumps via the CSV import endpoint.

# Routing

  - GET    /rors              Search the cache (phrase, status, exact URI)
  - GET    /rors/{id}         Fetch one record
  - POST   /rors              Cache a single record
  - PUT    /rors/{id}         Replace every mutable field
  - PATCH  /rors/{id}         Patch a record
  - DELETE /rors/{id}         Evict a record
  - POST   /rors/import       Ingest a registry dump (CSV body)

The handler translates between the web/JSON layer and the internal domain [Service].
*/
package ror

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/openpress/scholar/internal/platform/request"
	"github.com/openpress/scholar/internal/platform/respond"
	"github.com/openpress/scholar/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for the registry cache.
type Handler struct {
	service *Service
}

// NewHandler constructs a new registry cache [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches the registry cache endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Route("/rors", func(r chi.Router) {
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
GET /api/v1/rors.

Description: Searches the cache. Filters combine conjunctively.

Request:
  - q: string (Phrase matched against names and registry URIs)
  - ror: string (Exact registry URI)
  - status: int (0 inactive, 1 active)
  - limit, page: int

Response:
  - 200: []Ror: Paginated list with meta block
*/
func (handler *Handler) List(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	limit := params.Limit
	offset := params.Offset()

	c := NewCollector().
		SearchPhrase(request.URL.Query().Get("q")).
		Limit(&limit).
		Offset(&offset)

	if uri := request.URL.Query().Get("ror"); uri != "" {
		c = c.FilterByRORs([]string{uri})
	}
	if raw := request.URL.Query().Get("status"); raw != "" {
		if status, err := strconv.Atoi(raw); err == nil {
			c = c.FilterByStatus(&status)
		}
	}

	records, total, err := handler.service.List(request.Context(), c)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, records, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GET /api/v1/rors/{id}.

Response:
  - 200: Ror
  - 404: NOT_FOUND: Unknown ID
*/
func (handler *Handler) Get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	r, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, r)
}

// # Mutation

// createRorRequest defines the inbound JSON schema for single-record caching.
type createRorRequest struct {
	ROR           string            `json:"ror"`
	DisplayLocale string            `json:"display_locale"`
	Status        int               `json:"status"`
	Name          map[string]string `json:"name"`
}

/*
POST /api/v1/rors.

Response:
  - 201: Ror: Cached record with assigned ID
  - 400: VALIDATION_ERROR: Invalid payload
  - 409: CONFLICT: Registry URI already cached
*/
func (handler *Handler) Create(writer http.ResponseWriter, request *http.Request) {
	var input createRorRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record := &Ror{
		ROR:           input.ROR,
		DisplayLocale: input.DisplayLocale,
		Status:        input.Status,
		Name:          input.Name,
	}

	if err := handler.service.Add(request.Context(), record); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, record)
}

/*
PUT /api/v1/rors/{id}.

Description: Replaces every mutable field with the request body. Omitted
fields take their zero values; use PATCH for partial updates.

Response:
  - 200: Ror: New persisted state
  - 400: VALIDATION_ERROR
  - 404: NOT_FOUND
  - 409: CONFLICT: New URI collides with another record
*/
func (handler *Handler) Replace(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRorRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.Name == nil {
		input.Name = map[string]string{}
	}

	patch := Patch{
		ROR:           &input.ROR,
		DisplayLocale: &input.DisplayLocale,
		Status:        &input.Status,
		Name:          input.Name,
	}
	edited, err := handler.service.Edit(request.Context(), id, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, edited)
}

/*
PATCH /api/v1/rors/{id}.

Description: Applies a partial update; absent JSON fields keep their
current values.

Response:
  - 200: Ror: New persisted state
  - 400: VALIDATION_ERROR
  - 404: NOT_FOUND
  - 409: CONFLICT: Patched URI collides with another record
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
DELETE /api/v1/rors/{id}.

Response:
  - 204: Evicted
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

// # Registry Import

/*
POST /api/v1/rors/import.

Description: Ingests a registry dump. The request body is the raw CSV
stream ("ror,display_locale,status,locale,name" header).

Response:
  - 200: SyncReport: Processed/inserted/updated/skipped counts
  - 422: UNPROCESSABLE: Unrecognized dump format
*/
func (handler *Handler) Import(writer http.ResponseWriter, request *http.Request) {
	report, err := handler.service.ImportRegistryCSV(request.Context(), request.Body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, report)
}
