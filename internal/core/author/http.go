// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

/*
Package author manages publication contributors and their affiliations.

Authors form a publication's byline (1-based seq) and own affiliations as
an aggregate: the PUT affiliations endpoint replaces the full set in one
reconciling transaction.

# Routing

  - GET    /authors                      List/search (publication, phrase)
  - GET    /authors/{id}                 Fetch one contributor
  - POST   /authors                      Create
  - PUT    /authors/{id}                 Replace every mutable field
  - PATCH  /authors/{id}                 Patch
  - DELETE /authors/{id}                 Delete (cascades affiliations)
  - GET    /authors/{id}/affiliations    The author's affiliation set
  - PUT    /authors/{id}/affiliations    Replace the affiliation set

The handler translates between the web/JSON layer and the internal domain [Service].
*/
package author

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openpress/scholar/internal/core/affiliation"
	"github.com/openpress/scholar/internal/platform/config"
	requestutil "github.com/openpress/scholar/internal/platform/request"
	"github.com/openpress/scholar/internal/platform/respond"
	"github.com/openpress/scholar/pkg/pagination"
	"github.com/openpress/scholar/pkg/query"
)

// # Handler Implementation

// Handler implements the HTTP layer for contributor management.
type Handler struct {
	service *Service
	config  *config.Config
}

// NewHandler constructs a new author [Handler].
func NewHandler(service *Service, config *config.Config) *Handler {
	return &Handler{service: service, config: config}
}

// RegisterRoutes attaches author endpoints to the root API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Route("/authors", func(r chi.Router) {
		r.Get("/", handler.List)
		r.Post("/", handler.Create)
		r.Get("/{id}", handler.Get)
		r.Put("/{id}", handler.Replace)
		r.Patch("/{id}", handler.Update)
		r.Delete("/{id}", handler.Delete)
		r.Get("/{id}/affiliations", handler.ListAffiliations)
		r.Put("/{id}/affiliations", handler.SaveAffiliations)
	})
}

// # Retrieval

/*
GET /api/v1/authors.

Request:
  - publication_ids: string (Comma-separated publication IDs)
  - q: string (Phrase matched against given/family names in any locale)
  - limit, page: int

Response:
  - 200: []Author: Paginated list ordered by (publication, seq)
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
GET /api/v1/authors/{id}.

Response:
  - 200: Author
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

// createAuthorRequest defines the inbound JSON schema for creation.
type createAuthorRequest struct {
	PublicationID int64             `json:"publication_id"`
	Email         string            `json:"email"`
	Seq           int               `json:"seq"`
	GivenName     map[string]string `json:"given_name"`
	FamilyName    map[string]string `json:"family_name"`
}

/*
POST /api/v1/authors.

Description: Creates a contributor. Omitting seq (or any value <= 0)
appends to the publication's byline.

Response:
  - 201: Author: Created record with assigned ID and seq
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) Create(writer http.ResponseWriter, request *http.Request) {
	var input createAuthorRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	record := &Author{
		PublicationID: input.PublicationID,
		Email:         input.Email,
		Seq:           input.Seq,
		GivenName:     input.GivenName,
		FamilyName:    input.FamilyName,
	}

	err := handler.service.Add(request.Context(), record,
		handler.config.Locales(), handler.config.PrimaryLocale())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, record)
}

// replaceAuthorRequest defines the inbound JSON schema for full
// replacement. The owning publication is immutable and not part of it.
type replaceAuthorRequest struct {
	Email      string            `json:"email"`
	Seq        int               `json:"seq"`
	GivenName  map[string]string `json:"given_name"`
	FamilyName map[string]string `json:"family_name"`
}

/*
PUT /api/v1/authors/{id}.

Description: Replaces every mutable field with the request body. Omitted
fields take their zero values; use PATCH for partial updates.

Response:
  - 200: Author: New persisted state
  - 400: VALIDATION_ERROR
  - 404: NOT_FOUND
*/
func (handler *Handler) Replace(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.IntID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input replaceAuthorRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}
	if input.GivenName == nil {
		input.GivenName = map[string]string{}
	}
	if input.FamilyName == nil {
		input.FamilyName = map[string]string{}
	}

	patch := Patch{
		Email:      &input.Email,
		Seq:        &input.Seq,
		GivenName:  input.GivenName,
		FamilyName: input.FamilyName,
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
PATCH /api/v1/authors/{id}.

Response:
  - 200: Author: New persisted state
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
DELETE /api/v1/authors/{id}.

Description: Deletes a contributor and all their affiliations.

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

// # Affiliation Aggregate

/*
GET /api/v1/authors/{id}/affiliations.

Response:
  - 200: []Affiliation: The author's affiliation set in stable order
  - 404: NOT_FOUND: Unknown author
*/
func (handler *Handler) ListAffiliations(writer http.ResponseWriter, request *http.Request) {
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

	records, err := handler.service.GetAffiliations(request.Context(), a)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, records)
}

// saveAffiliationsRequest defines the inbound JSON schema for the full-set
// replacement. Entries with an ID update in place; entries without one are
// created; persisted affiliations missing from the list are deleted.
type saveAffiliationsRequest struct {
	Affiliations []*affiliation.Affiliation `json:"affiliations"`
}

/*
PUT /api/v1/authors/{id}/affiliations.

Description: Replaces the author's affiliation set in one transaction.
An empty list clears the set.

Response:
  - 200: []Affiliation: The reconciled set as persisted
  - 400: VALIDATION_ERROR: Any offending entry rejects the whole set
  - 404: NOT_FOUND: Unknown author
*/
func (handler *Handler) SaveAffiliations(writer http.ResponseWriter, request *http.Request) {
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

	var input saveAffiliationsRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.service.SaveAffiliations(request.Context(), a, input.Affiliations,
		handler.config.Locales(), handler.config.PrimaryLocale())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	records, err := handler.service.GetAffiliations(request.Context(), a)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, records)
}
