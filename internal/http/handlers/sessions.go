package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"studyblossom/internal/history"
	"studyblossom/internal/middleware"
)

type createSessionRequest struct {
	GoalName  string `json:"goal_name"`
	StudyTime int    `json:"study_time"`
	Topic     string `json:"topic"`
	Mode      string `json:"mode"`
}

func (a *App) currentUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized",
			pick(r, "Falta el encabezado X-User-ID.", "Missing X-User-ID header."))
		return "", false
	}
	return userID, true
}

func (a *App) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "invalid_id",
			pick(r, "Identificador de sesión inválido.", "Invalid session id."))
		return uuid.Nil, false
	}
	return id, true
}

func (a *App) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUserID(w, r)
	if !ok {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			a.error(w, http.StatusBadRequest, "invalid_limit",
				pick(r, "El parámetro limit debe ser un número positivo.", "limit must be a positive number."))
			return
		}
		limit = n
	}
	entries, err := a.Sessions.List(r.Context(), userID, limit)
	if err != nil {
		a.sessionError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"sessions": entries})
}

func (a *App) CreateSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUserID(w, r)
	if !ok {
		return
	}
	var req createSessionRequest
	if !a.decode(w, r, &req) {
		return
	}
	entry, err := a.Sessions.Create(r.Context(), history.NewEntry{
		UserID:    userID,
		GoalName:  req.GoalName,
		StudyTime: req.StudyTime,
		Topic:     req.Topic,
		Mode:      req.Mode,
	})
	if err != nil {
		a.sessionError(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, entry)
}

func (a *App) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := a.sessionID(w, r)
	if !ok {
		return
	}
	entry, err := a.Sessions.Get(r.Context(), userID, id)
	if err != nil {
		a.sessionError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, entry)
}

func (a *App) DeleteSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := a.sessionID(w, r)
	if !ok {
		return
	}
	if err := a.Sessions.Delete(r.Context(), userID, id); err != nil {
		a.sessionError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) sessionError(w http.ResponseWriter, r *http.Request, err error) {
	var invalid *history.InvalidEntryError
	switch {
	case errors.As(err, &invalid):
		if len(invalid.Rejections) > 0 {
			locale := middleware.LocaleFromContext(r.Context())
			a.json(w, http.StatusUnprocessableEntity, validateGoalResponse{
				Errors: rejectionViews(locale, invalid.Rejections...),
			})
			return
		}
		a.error(w, http.StatusUnprocessableEntity, "invalid_session", invalid.Problem)
	case errors.Is(err, history.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found",
			pick(r, "Sesión no encontrada.", "Session not found."))
	default:
		a.Logger.Error().Err(err).Msg("history: request failed")
		a.error(w, http.StatusInternalServerError, "internal_error",
			pick(r, "Error interno del servidor.", "Internal server error."))
	}
}
