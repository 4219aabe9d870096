package content

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/lacuna/pkg/handlers"
	"github.com/JaimeStill/lacuna/pkg/routes"
)

// Handler proxies content requests to the Content Analyzer.
type Handler struct {
	sys         System
	logger      *slog.Logger
	maxBodySize int64
}

// NewHandler creates a Handler with the given system, logger, and body size limit.
func NewHandler(sys System, logger *slog.Logger, maxBodySize int64) *Handler {
	return &Handler{
		sys:         sys,
		logger:      logger.With("handler", "content"),
		maxBodySize: maxBodySize,
	}
}

// Routes returns the route group definition for content endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/content",
		Tags:   []string{"Content"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: listOp},
			{Method: "GET", Pattern: "/coverage", Handler: h.Coverage, OpenAPI: coverageOp},
			{Method: "POST", Pattern: "/suggestions", Handler: h.Suggest, OpenAPI: suggestOp},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := ListQuery{
		ContentType: query.Get("content_type"),
		Category:    query.Get("category"),
	}

	if v := query.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidInput)
			return
		}
		q.Limit = limit
	}

	items, err := h.sys.List(r.Context(), q)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

func (h *Handler) Coverage(w http.ResponseWriter, r *http.Request) {
	cov, err := h.sys.Coverage(r.Context(), r.URL.Query()["expected_topics"])
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, cov)
}

func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req SuggestionRequest
	if err := handlers.DecodeJSON(w, r, &req, h.maxBodySize); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	s, err := h.sys.Suggest(r.Context(), req)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}
