package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"lms-grading-service/internal/app"
	"lms-grading-service/internal/domain"
)

// Handler serves the attempt and import JSON endpoints.
type Handler struct {
	attempts *app.AttemptService
	imports  *app.ImportService
}

func NewHandler(attempts *app.AttemptService, imports *app.ImportService) *Handler {
	return &Handler{attempts: attempts, imports: imports}
}

type answersRequest struct {
	Answers []domain.RawAnswer `json:"answers"`
}

type questionsRequest struct {
	Questions []domain.Question `json:"questions"`
}

type stageResponse struct {
	Session  domain.ImportSession `json:"session"`
	Rejected []app.QuestionError  `json:"rejected"`
}

type commitResponse struct {
	Committed int `json:"committed"`
}

type errorPayload struct {
	Message string               `json:"message"`
	Errors  []domain.AnswerError `json:"errors,omitempty"`
}

// POST /tests/{testID}/attempts
func (h *Handler) StartAttempt(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	attempt, err := h.attempts.Start(r.Context(), chi.URLParam(r, "testID"), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, attempt)
}

// POST /attempts/{attemptID}/submit
func (h *Handler) SubmitAttempt(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req answersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "bad json: " + err.Error()})
		return
	}
	report, err := h.attempts.Submit(r.Context(), chi.URLParam(r, "attemptID"), userID, req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// GET /attempts/{attemptID}/result
func (h *Handler) AttemptResult(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	report, err := h.attempts.Result(r.Context(), chi.URLParam(r, "attemptID"), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// POST /tests/{testID}/grade
func (h *Handler) GradePreview(w http.ResponseWriter, r *http.Request) {
	var req answersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "bad json: " + err.Error()})
		return
	}
	report, err := h.attempts.Grade(r.Context(), chi.URLParam(r, "testID"), req.Answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// POST /tests/{testID}/imports
func (h *Handler) BeginImport(w http.ResponseWriter, r *http.Request) {
	session, err := h.imports.Begin(r.Context(), chi.URLParam(r, "testID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// PUT /imports/{sessionID}
func (h *Handler) StageImport(w http.ResponseWriter, r *http.Request) {
	var req questionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "bad json: " + err.Error()})
		return
	}
	session, rejected, err := h.imports.Stage(r.Context(), chi.URLParam(r, "sessionID"), req.Questions)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stageResponse{Session: session, Rejected: rejected})
}

// POST /imports/{sessionID}/commit
func (h *Handler) CommitImport(w http.ResponseWriter, r *http.Request) {
	n, err := h.imports.Commit(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commitResponse{Committed: n})
}

// DELETE /imports/{sessionID}
func (h *Handler) DiscardImport(w http.ResponseWriter, r *http.Request) {
	if err := h.imports.Discard(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get(userHeader))
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, errorPayload{Message: "missing " + userHeader + " header"})
		return "", false
	}
	return userID, true
}

func writeError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "validation failed", Errors: verr.Errors})
	case errors.Is(err, domain.ErrNoAnswers):
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: err.Error()})
	case errors.Is(err, domain.ErrTestNotFound),
		errors.Is(err, domain.ErrAttemptNotFound),
		errors.Is(err, domain.ErrImportSessionNotFound):
		writeJSON(w, http.StatusNotFound, errorPayload{Message: err.Error()})
	case errors.Is(err, domain.ErrAttemptForbidden):
		writeJSON(w, http.StatusForbidden, errorPayload{Message: err.Error()})
	case errors.Is(err, domain.ErrAttemptNotSubmittable),
		errors.Is(err, domain.ErrAttemptTimeLimitExceeded),
		errors.Is(err, domain.ErrAttemptNotGraded):
		writeJSON(w, http.StatusConflict, errorPayload{Message: err.Error()})
	default:
		log.Printf("[http] internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorPayload{Message: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[http] encode response: %v", err)
	}
}
