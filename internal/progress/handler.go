package progress

import (
	"encoding/json"
	"net/http"

	"github.com/ib-tutor/backend/internal/models"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) ListProgress(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)

	records, err := h.store.ListProgress(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load progress"})
		return
	}
	if records == nil {
		records = []models.ProgressRecord{}
	}

	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)

	stats, err := h.store.GetStats(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load stats"})
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
