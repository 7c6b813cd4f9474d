package transport

import (
	"errors"
	"net/http"
	"strconv"

	"bookscout/internal/middleware"
	"bookscout/internal/repository"
	"bookscout/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SearchRequest carries the validated query parameters of GET /search.
type SearchRequest struct {
	Query string `validate:"required,min=1"`
	Limit int    `validate:"gte=1,lte=100"`
}

// ListRequest carries the validated query parameters of GET /api/books.
type ListRequest struct {
	Limit int `validate:"gte=1,lte=100"`
}

// CatalogHandler handles HTTP requests for the read-side query surface.
type CatalogHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/compare/by-isbn/{isbn13}", h.CompareByISBN)
	r.Get("/search", h.Search)
	r.Get("/api/books", h.ListCompared)
}

// CompareByISBN returns a book plus its ranked per-store offers. An unknown
// ISBN is a 404, not a server error.
func (h *CatalogHandler) CompareByISBN(w http.ResponseWriter, r *http.Request) {
	isbn13 := chi.URLParam(r, "isbn13")

	comparison, err := h.catalog.CompareByISBN(r.Context(), isbn13)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "book not found")
			return
		}

		h.logger.Error("Comparison query failed", zap.String("isbn13", isbn13), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to compare book")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, comparison)
}

// Search matches a free-text query against normalized titles.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	req := SearchRequest{
		Query: r.URL.Query().Get("q"),
		Limit: service.DefaultSearchLimit,
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		req.Limit = limit
	}

	if err := middleware.ValidateRequest(req); err != nil {
		h.logger.Debug("Search validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid search request")
		return
	}

	items, err := h.catalog.Search(r.Context(), req.Query, req.Limit)
	if err != nil {
		h.logger.Error("Search failed", zap.String("query", req.Query), zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to search books")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

// ListCompared returns the cross-store price grid, best-covered books first.
func (h *CatalogHandler) ListCompared(w http.ResponseWriter, r *http.Request) {
	req := ListRequest{Limit: service.DefaultGridLimit}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		req.Limit = limit
	}

	if err := middleware.ValidateRequest(req); err != nil {
		h.logger.Debug("List validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "invalid list request")
		return
	}

	grid, err := h.catalog.ListCompared(r.Context(), req.Limit)
	if err != nil {
		h.logger.Error("Price grid query failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list compared books")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, grid)
}
