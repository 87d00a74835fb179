// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

/*
Package publication manages publishable submission versions, the parent
aggregate of the author and citation domains.

# Routing

  - GET    /publications           List/search (status, phrase)
  - GET    /publications/{id}      Fetch one record
  - POST   /publications           Create
  - PUT    /publications/{id}      Replace status and title
  - PATCH  /publications/{id}      Patch
  - DELETE /publications/{id}      Delete (cascades citations and authors)

The handler translates between the web/JSON layer and the internal domain [Service].
*/
package publication

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openpress/scholar/internal/platform/config"
	requestutil "github.com/openpress/scholar/internal/platform/request"
	"github.com/openpress/scholar/internal/platform/respond"
	"github.com/openpress/scholar/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for publication management.
type Handler struct {
	service *Service
	config  *config.Config
}

// NewHandler constructs a new publication [Handler].
func NewHandler(service *Service, config *config.Config) *Handler {
	return &Handler{service: service, config: config}
}

// RegisterRoutes attaches publication endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Route("/publications", func(r chi.Router) {
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
GET /api/v1/publications.

Description: Lists publications. Filters combine conjunctively.

Request:
  - status: int (Workflow status code)
  - q: string (Phrase matched against titles in any locale)
  - limit, page: int

Response:
  - 200: []Publication: Paginated list with meta block
*/
func (handler *Handler) List(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	limit := params.Limit
	offset := params.Offset()

	c := NewCollector().
		SearchPhrase(request.URL.Query().Get("q")).
		Limit(&limit).
		Offset(&offset)

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
GET /api/v1/publications/{id}.

Response:
  - 200: Publication
  - 404: NOT_FOUND: Unknown ID
*/
func (handler *Handler) Get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	p, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, p)
}

// # Mutation

// createPublicationRequest defines the inbound JSON schema for creation.
type createPublicationRequest struct {
	Status int               `json:"status"`
	Title  map[string]string `json:"title"`
}

/*
POST /api/v1/publications.

Response:
  - 201: Publication: Created record with assigned ID
  - 400: VALIDATION_ERROR: Invalid payload
*/
func (handler *Handler) Create(writer http.ResponseWriter, request *http.Request) {
	var input createPublicationRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record := &Publication{
		Status: input.Status,
		Title:  input.Title,
	}
	if record.Status == 0 {
		record.Status = StatusQueued
	}

	err := handler.service.Add(request.Context(), record,
		handler.config.Locales(), handler.config.PrimaryLocale())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, record)
}

/*
PUT /api/v1/publications/{id}.

Description: Replaces the publication's status and title with the request
body. Omitted fields take their zero values; use PATCH for partial
updates.

Response:
  - 200: Publication: New persisted state
  - 400: VALIDATION_ERROR
  - 404: NOT_FOUND
*/
func (handler *Handler) Replace(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createPublicationRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.Title == nil {
		input.Title = map[string]string{}
	}

	patch := Patch{Status: &input.Status, Title: input.Title}
	edited, err := handler.service.Edit(request.Context(), id, patch,
		handler.config.Locales(), handler.config.PrimaryLocale())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, edited)
}

/*
PATCH /api/v1/publications/{id}.

Description: Applies a partial update; absent JSON fields keep their
current values.

Response:
  - 200: Publication: New persisted state
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
DELETE /api/v1/publications/{id}.

Description: Removes the publication, its citation list, and its
contributors (with their affiliations).

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
