package handlers

import (
	"net/http"

	"github.com/nekto007/language-learning-tool/internal/middleware"
	"github.com/nekto007/language-learning-tool/internal/model"
	"github.com/nekto007/language-learning-tool/internal/service"
	"github.com/nekto007/language-learning-tool/internal/webutil"

	"github.com/go-chi/chi/v5"
)

type GrammarHandler struct {
	grammar *service.GrammarService
	users   *service.UserService
}

func NewGrammarHandler(grammar *service.GrammarService, users *service.UserService) *GrammarHandler {
	return &GrammarHandler{grammar: grammar, users: users}
}

func (h *GrammarHandler) user(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	logger := middleware.GetLogger(r.Context())
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		webutil.HandleError(w, logger, err)
		return nil, false
	}
	user, err := h.users.Get(r.Context(), userID)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return nil, false
	}
	return user, true
}

// GetTopic handles GET /api/v1/grammar/{slug}.
func (h *GrammarHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	topic, err := h.grammar.Topic(r.Context(), user, chi.URLParam(r, "slug"))
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, topic)
}

// Answer handles POST /api/v1/grammar/answer.
func (h *GrammarHandler) Answer(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	var req model.AnswerExerciseRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		webutil.HandleError(w, logger, err)
		return
	}

	resp, err := h.grammar.Answer(r.Context(), user, req)
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp)
}

// CompleteTheory handles POST /api/v1/grammar/{slug}/theory-complete.
func (h *GrammarHandler) CompleteTheory(w http.ResponseWriter, r *http.Request) {
	logger := middleware.GetLogger(r.Context())
	user, ok := h.user(w, r)
	if !ok {
		return
	}

	resp, err := h.grammar.CompleteTheory(r.Context(), user, chi.URLParam(r, "slug"))
	if err != nil {
		webutil.HandleError(w, logger, err)
		return
	}
	webutil.RespondWithJSON(w, http.StatusOK, resp)
}
