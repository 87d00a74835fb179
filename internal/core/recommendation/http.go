// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

/*
Package recommendation manages the per-context reviewer recommendation
options (accept, minor revisions, decline, ...).

Each review context carries its own option set. Built-in options cannot be
deleted; custom options become undeletable once a reviewer has submitted
them. The JSON "removable" field is derived on every read.

# Routing

  - GET    /recommendations           List (context, status)
  - GET    /recommendations/{id}      Fetch one option
  - POST   /recommendations           Create
  - PUT    /recommendations/{id}      Replace status and title
  - PATCH  /recommendations/{id}      Patch status/title
  - DELETE /recommendations/{id}      Delete (406 when not removable)

The handler translates between the web/JSON layer and the internal domain [Service].
*/
package recommendation

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openpress/scholar/internal/platform/config"
	requestutil "github.com/openpress/scholar/internal/platform/request"
	"github.com/openpress/scholar/internal/platform/respond"
	"github.com/openpress/scholar/pkg/pagination"
	"github.com/openpress/scholar/pkg/query"
)

// # Handler Implementation

// Handler implements the HTTP layer for reviewer recommendations.
type Handler struct {
	service *Service
	config  *config.Config
}

// NewHandler constructs a new recommendation [Handler].
func NewHandler(service *Service, config *config.Config) *Handler {
	return &Handler{service: service, config: config}
}

// RegisterRoutes attaches recommendation endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Route("/recommendations", func(r chi.Router) {
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
GET /api/v1/recommendations.

Request:
  - context_ids: string (Comma-separated review context IDs)
  - status: int (0 inactive, 1 active)
  - limit, page: int

Response:
  - 200: []Recommendation: Paginated list, removability derived
*/
func (handler *Handler) List(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	limit := params.Limit
	offset := params.Offset()

	c := NewCollector().
		FilterByContextIDs(query.Int64Slice(request.URL.Query().Get("context_ids"))).
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
GET /api/v1/recommendations/{id}.

Response:
  - 200: Recommendation
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

// createRecommendationRequest defines the inbound JSON schema for creation.
// Custom options are always created removable; the protected base flag is
// reserved for seeded built-ins.
type createRecommendationRequest struct {
	ContextID int64             `json:"context_id"`
	Value     int               `json:"value"`
	Status    int               `json:"status"`
	Title     map[string]string `json:"title"`
}

/*
POST /api/v1/recommendations.

Description: Creates a custom option. Omitting value (or zero) assigns the
context's next free code.

Response:
  - 201: Recommendation: Created option with assigned value
  - 400: VALIDATION_ERROR
  - 409: CONFLICT: The (context, value) pair already exists
*/
func (handler *Handler) Create(writer http.ResponseWriter, request *http.Request) {
	var input createRecommendationRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record := &Recommendation{
		ContextID:     input.ContextID,
		Value:         input.Value,
		Status:        input.Status,
		RemovableBase: true,
		Title:         input.Title,
	}

	err := handler.service.Add(request.Context(), record,
		handler.config.Locales(), handler.config.PrimaryLocale())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, record)
}

// replaceRecommendationRequest defines the inbound JSON schema for full
// replacement. The context, value and protected flag are fixed at creation.
type replaceRecommendationRequest struct {
	Status int               `json:"status"`
	Title  map[string]string `json:"title"`
}

/*
PUT /api/v1/recommendations/{id}.

Description: Replaces the option's status and title with the request body.
Omitted fields take their zero values; use PATCH for partial updates.

Response:
  - 200: Recommendation: New persisted state
  - 400: VALIDATION_ERROR
  - 404: NOT_FOUND
*/
func (handler *Handler) Replace(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input replaceRecommendationRequest
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
PATCH /api/v1/recommendations/{id}.

Description: Patches status and/or title. The value and the protected
flag are fixed at creation.

Response:
  - 200: Recommendation: New persisted state
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
DELETE /api/v1/recommendations/{id}.

Response:
  - 204: Deleted
  - 404: NOT_FOUND
  - 406: NOT_REMOVABLE: Built-in, or already used by an assignment
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
