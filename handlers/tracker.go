package handlers

import (
	"net/http"

	"teamcap/tracker"
)

type TrackerHandler struct {
	cache *tracker.Cache
}

func NewTrackerHandler(cache *tracker.Cache) *TrackerHandler {
	return &TrackerHandler{cache: cache}
}

// Tickets serves the latest poll snapshot. The list is empty until the first
// refresh completes or when polling is disabled.
func (h *TrackerHandler) Tickets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cache.Get())
}
