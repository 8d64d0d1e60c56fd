package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ib-tutor/backend/internal/models"
	"github.com/ib-tutor/backend/internal/questions"
)

const tryAgainMessage = "The tutor is unavailable right now. Please try again."

type Handler struct {
	service *Service
	catalog *questions.Store
}

func NewHandler(service *Service, catalog *questions.Store) *Handler {
	return &Handler{service: service, catalog: catalog}
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	question, ok := h.loadQuestion(w, r.Context(), req.QuestionID)
	if !ok {
		return
	}

	reply, err := h.service.Chat(r.Context(), req.Messages, question, req.UserAnswer)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: tryAgainMessage})
		return
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Response: reply})
}

func (h *Handler) Hint(w http.ResponseWriter, r *http.Request) {
	var req models.HintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	question, ok := h.loadQuestion(w, r.Context(), req.QuestionID)
	if !ok {
		return
	}

	hint, err := h.service.Hint(r.Context(), question, req.ConversationHistory)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: tryAgainMessage})
		return
	}

	writeJSON(w, http.StatusOK, models.HintResponse{Hint: hint})
}

func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("user_id").(int64)

	var req models.EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.UserAnswer == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "An answer is required"})
		return
	}

	question, ok := h.loadQuestion(w, r.Context(), req.QuestionID)
	if !ok {
		return
	}

	eval, saved, err := h.service.Evaluate(r.Context(), userID, question, req.UserAnswer)
	if err != nil {
		// Only cancellation reaches here; the client has gone away.
		return
	}

	writeJSON(w, http.StatusOK, models.EvaluateResponse{Evaluation: eval, ProgressSaved: saved})
}

func (h *Handler) loadQuestion(w http.ResponseWriter, ctx context.Context, questionID int64) (*models.Question, bool) {
	question, err := h.catalog.GetQuestion(ctx, questionID)
	if errors.Is(err, questions.ErrQuestionNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Question not found"})
		return nil, false
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load question"})
		return nil, false
	}
	return question, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
