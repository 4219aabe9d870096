package reports

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/lacuna/internal/signals"
	"github.com/JaimeStill/lacuna/pkg/handlers"
	"github.com/JaimeStill/lacuna/pkg/pagination"
	"github.com/JaimeStill/lacuna/pkg/routes"
)

// Handler provides HTTP endpoints for reports and analysis runs.
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
		logger:      logger.With("handler", "reports"),
		pagination:  pagination,
		maxBodySize: maxBodySize,
	}
}

// Routes returns the route group definition for analysis endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/analysis",
		Tags:   []string{"Analysis"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/reports", Handler: h.List, OpenAPI: listOp},
			{Method: "POST", Pattern: "/reports", Handler: h.Snapshot, OpenAPI: snapshotOp},
			{Method: "GET", Pattern: "/reports/{id}", Handler: h.Find, OpenAPI: findOp},
			{Method: "GET", Pattern: "/reports/{id}/archive", Handler: h.Archived, OpenAPI: archiveOp},
			{Method: "POST", Pattern: "/run", Handler: h.Run, OpenAPI: runOp},
		},
	}
}

// List returns a paginated list of reports, newest first.
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

// Find returns a single report by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	rep, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rep)
}

// Archived streams a report's archived JSON copy from blob storage.
func (h *Handler) Archived(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	body, err := h.sys.Archived(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Error("stream archived report", "id", id, "error", err)
	}
}

// Snapshot records a snapshot report now.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	rep, err := h.sys.Snapshot(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, rep)
}

// Run detects gaps and generates FAQs from the batch, then records the run.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	var batch signals.Batch
	if err := handlers.DecodeJSON(w, r, &batch, h.maxBodySize); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	result, err := h.sys.RunAnalysis(r.Context(), batch)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
