package gaps

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/lacuna/internal/signals"
	"github.com/JaimeStill/lacuna/pkg/handlers"
	"github.com/JaimeStill/lacuna/pkg/pagination"
	"github.com/JaimeStill/lacuna/pkg/routes"
)

// Handler provides HTTP endpoints for gap operations.
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
		logger:      logger.With("handler", "gaps"),
		pagination:  pagination,
		maxBodySize: maxBodySize,
	}
}

// Routes returns the route group definition for gap endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/gaps",
		Tags:   []string{"Gaps"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: listOp},
			{Method: "POST", Pattern: "", Handler: h.Create, OpenAPI: createOp},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: findOp},
			{Method: "POST", Pattern: "/analyze", Handler: h.Analyze, OpenAPI: analyzeOp},
			{Method: "PUT", Pattern: "/{id}/status", Handler: h.UpdateStatus, OpenAPI: statusOp},
		},
	}
}

// List returns a paginated list of gaps with optional query parameter filters.
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

// Find returns a single gap by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	g, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, g)
}

// Create records a manually reported gap.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if err := handlers.DecodeJSON(w, r, &cmd, h.maxBodySize); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	g, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, g)
}

// Analyze ingests search queries and support tickets and runs gap detection.
// Per-cluster failures are reported in the response body alongside the gaps.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var batch signals.Batch
	if err := handlers.DecodeJSON(w, r, &batch, h.maxBodySize); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.Analyze(r.Context(), batch)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// UpdateStatus applies a manual status transition from the status query parameter.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	status, err := ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	g, err := h.sys.UpdateStatus(r.Context(), id, status)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, g)
}
