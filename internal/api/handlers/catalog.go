package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/chrisbanes/tivi-sub008/internal/catalog"
	"github.com/sirupsen/logrus"
)

// CatalogHandler serves the collection endpoints: paginated discover lists,
// the user's watched and followed shows, show details and their related data,
// plus search and explicit refreshes.
type CatalogHandler struct {
	catalog *catalog.Catalog
	logger  *logrus.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(cat *catalog.Catalog, logger *logrus.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: cat, logger: logger}
}

func (h *CatalogHandler) writeJSON(w http.ResponseWriter, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(value); err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
	}
}

func (h *CatalogHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrShowNotFound):
		http.Error(w, "Show not found", http.StatusNotFound)
	case errors.Is(err, catalog.ErrShowNotLinked):
		http.Error(w, "Show has no provider ID", http.StatusUnprocessableEntity)
	default:
		h.logger.WithError(err).Error("Request failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func queryPage(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 0 {
		return 0
	}
	return page
}

func queryRefresh(r *http.Request) bool {
	return r.URL.Query().Get("refresh") == "true"
}

func pathShowID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(r.PathValue("id"), 10, 64)
}

// Trending serves GET /api/shows/trending
func (h *CatalogHandler) Trending(w http.ResponseWriter, r *http.Request) {
	entries, err := h.catalog.Trending.Get(r.Context(), queryPage(r), queryRefresh(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, entries)
}

// Popular serves GET /api/shows/popular
func (h *CatalogHandler) Popular(w http.ResponseWriter, r *http.Request) {
	entries, err := h.catalog.Popular.Get(r.Context(), queryPage(r), queryRefresh(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, entries)
}

// Anticipated serves GET /api/shows/anticipated
func (h *CatalogHandler) Anticipated(w http.ResponseWriter, r *http.Request) {
	entries, err := h.catalog.Anticipated.Get(r.Context(), queryPage(r), queryRefresh(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, entries)
}

// Recommended serves GET /api/shows/recommended
func (h *CatalogHandler) Recommended(w http.ResponseWriter, r *http.Request) {
	entries, err := h.catalog.Recommended.Get(r.Context(), queryPage(r), queryRefresh(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, entries)
}

// Watched serves GET /api/shows/watched
func (h *CatalogHandler) Watched(w http.ResponseWriter, r *http.Request) {
	entries, err := h.catalog.Watched.Get(r.Context(), catalog.Unit{}, queryRefresh(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, entries)
}

// Followed serves GET /api/shows/followed
func (h *CatalogHandler) Followed(w http.ResponseWriter, r *http.Request) {
	entries, err := h.catalog.Followed.Get(r.Context(), catalog.Unit{}, queryRefresh(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, entries)
}

// Show serves GET /api/shows/{id}
func (h *CatalogHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathShowID(r)
	if err != nil {
		http.Error(w, "Invalid show ID", http.StatusBadRequest)
		return
	}
	show, err := h.catalog.Shows.Get(r.Context(), id, queryRefresh(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, show)
}

// Related serves GET /api/shows/{id}/related
func (h *CatalogHandler) Related(w http.ResponseWriter, r *http.Request) {
	id, err := pathShowID(r)
	if err != nil {
		http.Error(w, "Invalid show ID", http.StatusBadRequest)
		return
	}
	entries, err := h.catalog.Related.Get(r.Context(), id, queryRefresh(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, entries)
}

// Images serves GET /api/shows/{id}/images
func (h *CatalogHandler) Images(w http.ResponseWriter, r *http.Request) {
	id, err := pathShowID(r)
	if err != nil {
		http.Error(w, "Invalid show ID", http.StatusBadRequest)
		return
	}
	images, err := h.catalog.Images.Get(r.Context(), id, queryRefresh(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, images)
}

// Seasons serves GET /api/shows/{id}/seasons
func (h *CatalogHandler) Seasons(w http.ResponseWriter, r *http.Request) {
	id, err := pathShowID(r)
	if err != nil {
		http.Error(w, "Invalid show ID", http.StatusBadRequest)
		return
	}
	seasons, err := h.catalog.Seasons.Get(r.Context(), id, queryRefresh(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, seasons)
}

// Watches serves GET /api/shows/{id}/watches
func (h *CatalogHandler) Watches(w http.ResponseWriter, r *http.Request) {
	id, err := pathShowID(r)
	if err != nil {
		http.Error(w, "Invalid show ID", http.StatusBadRequest)
		return
	}
	watches, err := h.catalog.EpisodeWatches.Get(r.Context(), id, queryRefresh(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, watches)
}

// Search serves GET /api/search
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "Missing query parameter q", http.StatusBadRequest)
		return
	}
	shows, err := h.catalog.Search.Search(r.Context(), query)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, shows)
}

// Refresh serves POST /api/refresh/{collection}
func (h *CatalogHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	collection := r.PathValue("collection")
	ctx := r.Context()

	var err error
	switch collection {
	case "trending":
		err = h.catalog.Trending.Refresh(ctx, queryPage(r))
	case "popular":
		err = h.catalog.Popular.Refresh(ctx, queryPage(r))
	case "anticipated":
		err = h.catalog.Anticipated.Refresh(ctx, queryPage(r))
	case "recommended":
		err = h.catalog.Recommended.Refresh(ctx, queryPage(r))
	case "watched":
		err = h.catalog.Watched.Refresh(ctx, catalog.Unit{})
	case "followed":
		err = h.catalog.Followed.Refresh(ctx, catalog.Unit{})
	default:
		http.Error(w, "Unknown collection", http.StatusNotFound)
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.WithField("collection", collection).Info("Collection refreshed")
	h.writeJSON(w, map[string]string{"status": "refreshed"})
}

// ClearLibrary serves POST /api/library/clear
func (h *CatalogHandler) ClearLibrary(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.ClearLibrary(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, map[string]string{"status": "cleared"})
}
