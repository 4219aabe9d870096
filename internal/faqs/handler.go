package faqs

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/JaimeStill/lacuna/internal/signals"
	"github.com/JaimeStill/lacuna/pkg/handlers"
	"github.com/JaimeStill/lacuna/pkg/pagination"
	"github.com/JaimeStill/lacuna/pkg/routes"
)

// Handler provides HTTP endpoints for FAQ operations.
type Handler struct {
	sys         System
	logger      *slog.Logger
	pagination  pagination.Config
	maxBodySize int64
}

// NewHandler creates a Handler with the given system, logger, pagination config, and body size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxBodySize int64,
) *Handler {
	return &Handler{
		sys:         sys,
		logger:      logger.With("handler", "faqs"),
		pagination:  pagination,
		maxBodySize: maxBodySize,
	}
}

// Routes returns the route group definition for FAQ endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/faqs",
		Tags:   []string{"FAQs"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: listOp},
			{Method: "POST", Pattern: "", Handler: h.Create, OpenAPI: createOp},
			{Method: "POST", Pattern: "/generate", Handler: h.Generate, OpenAPI: generateOp},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: findOp},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Edit, OpenAPI: editOp},
			{Method: "POST", Pattern: "/{id}/submit", Handler: h.Submit, OpenAPI: submitOp},
			{Method: "POST", Pattern: "/{id}/approve", Handler: h.Approve, OpenAPI: approveOp},
			{Method: "POST", Pattern: "/{id}/publish", Handler: h.Publish, OpenAPI: publishOp},
			{Method: "POST", Pattern: "/{id}/feedback", Handler: h.Feedback, OpenAPI: feedbackOp},
		},
	}
}

// List returns a paginated list of FAQs with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single FAQ by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	f, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, f)
}

// Create authors a curated FAQ.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := handlers.DecodeJSON(w, r, &cmd, h.maxBodySize); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	f, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, f)
}

// Edit updates the content of a draft or pending FAQ.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var cmd EditCommand
	if err := handlers.DecodeJSON(w, r, &cmd, h.maxBodySize); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	f, err := h.sys.Edit(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, f)
}

// Generate drafts FAQs from support tickets and search queries.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var batch signals.Batch
	if err := handlers.DecodeJSON(w, r, &batch, h.maxBodySize); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.Generate(r.Context(), batch)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	h.respond(w, func() (*FAQ, error) { return h.sys.Submit(r.Context(), id) })
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	h.respond(w, func() (*FAQ, error) { return h.sys.Approve(r.Context(), id) })
}

// Publish publishes an FAQ. A draft requires override=true unless its
// confidence meets the review threshold.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	override, err := boolParam(r, "override", false)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	h.respond(w, func() (*FAQ, error) { return h.sys.Publish(r.Context(), id, override) })
}

// Feedback records one helpful or not-helpful vote.
func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("helpful") == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: helpful is required", ErrInvalidInput))
		return
	}
	helpful, err := boolParam(r, "helpful", false)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	h.respond(w, func() (*FAQ, error) { return h.sys.Feedback(r.Context(), id, helpful) })
}

func (h *Handler) respond(w http.ResponseWriter, fn func() (*FAQ, error)) {
	f, err := fn()
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, f)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

func boolParam(r *http.Request, name string, fallback bool) (bool, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%w: %s must be a boolean", ErrInvalidInput, name)
	}
	return b, nil
}
