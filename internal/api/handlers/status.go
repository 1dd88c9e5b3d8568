package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/chrisbanes/tivi-sub008/internal/catalog"
	"github.com/chrisbanes/tivi-sub008/internal/database"
	"github.com/chrisbanes/tivi-sub008/internal/models"
	"github.com/sirupsen/logrus"
)

// StatusHandler handles status requests
type StatusHandler struct {
	db      *database.Database
	catalog *catalog.Catalog
	logger  *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *database.Database, cat *catalog.Catalog, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		db:      db,
		catalog: cat,
		logger:  logger,
	}
}

// lastFetch reports when a collection was last refreshed.
type lastFetch struct {
	Kind       models.RequestKind `json:"kind"`
	EntityID   uint64             `json:"entity_id,omitempty"`
	FetchedAt  time.Time          `json:"fetched_at"`
	AgeSeconds int64              `json:"age_seconds"`
}

// StatusResponse represents the status response
type StatusResponse struct {
	Counts      catalog.Counts `json:"counts"`
	LastFetches []lastFetch    `json:"last_fetches"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	counts, err := h.catalog.Counts()
	if err != nil {
		h.logger.WithError(err).Error("Failed to count collections")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	records, err := h.db.ListLastRequests()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list last requests")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := StatusResponse{Counts: counts}
	for _, record := range records {
		response.LastFetches = append(response.LastFetches, lastFetch{
			Kind:       record.Kind,
			EntityID:   record.EntityID,
			FetchedAt:  record.Timestamp,
			AgeSeconds: int64(time.Since(record.Timestamp).Seconds()),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.WithError(err).Error("Failed to encode status response")
	}
}
