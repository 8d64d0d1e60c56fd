package questions

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/ib-tutor/backend/internal/models"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid question id"})
		return
	}

	question, err := h.store.GetQuestion(r.Context(), questionID)
	if errors.Is(err, ErrQuestionNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Question not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load question"})
		return
	}

	writeJSON(w, http.StatusOK, question)
}

func (h *Handler) ListBySubject(w http.ResponseWriter, r *http.Request) {
	subject := mux.Vars(r)["subject"]
	if !models.ValidSubjects[subject] {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Unknown subject"})
		return
	}

	var difficulty *models.Difficulty
	if d := r.URL.Query().Get("difficulty"); d != "" {
		diff := models.Difficulty(d)
		if !models.ValidDifficulties[diff] {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid difficulty"})
			return
		}
		difficulty = &diff
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	questions, err := h.store.ListBySubject(r.Context(), subject, difficulty, limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load questions"})
		return
	}
	if questions == nil {
		questions = []models.Question{}
	}

	writeJSON(w, http.StatusOK, questions)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
