package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"studyblossom/internal/history"
	"studyblossom/internal/infra"
	"studyblossom/internal/middleware"
	"studyblossom/internal/providers/render"
	"studyblossom/internal/study"
	"studyblossom/internal/video"
)

const maxBodyBytes = 64 << 10

// VideoGenerator runs the full script, render and poll flow.
type VideoGenerator interface {
	Generate(ctx context.Context, topic string, tier video.Tier) (*video.GenerationResult, error)
}

// CreditsChecker reports the rendering account balance.
type CreditsChecker interface {
	Configured() bool
	Credits(ctx context.Context) (render.Credits, error)
}

// StudyGenerator produces practice material.
type StudyGenerator interface {
	Flashcards(ctx context.Context, topic string) ([]study.Flashcard, error)
	Quiz(ctx context.Context, cards []study.Flashcard) ([]study.QuizQuestion, error)
	ConceptMap(ctx context.Context, topic string) (study.ConceptMap, error)
	Explanation(ctx context.Context, topic string) (study.Explanation, error)
	Analysis(ctx context.Context, topic, userExplanation string) (study.Analysis, error)
	Engagement(ctx context.Context, topic string) (study.Engagement, error)
	PomodoroRecommendations(ctx context.Context, topic string) ([]study.Recommendation, error)
	Tutor(ctx context.Context, req study.TutorRequest) (study.TutorReply, error)
}

// SessionStore persists study session history.
type SessionStore interface {
	Create(ctx context.Context, in history.NewEntry) (history.Entry, error)
	List(ctx context.Context, userID string, limit int) ([]history.Entry, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (history.Entry, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
}

type App struct {
	Videos   VideoGenerator
	Render   CreditsChecker
	Study    StudyGenerator
	Sessions SessionStore
	Logger   *infra.Logger

	// VideoTimeout bounds one CreateVideo run. Keep it below the server's
	// write timeout so the error response can still be written.
	VideoTimeout time.Duration
}

func NewApp(videos VideoGenerator, renderer CreditsChecker, studyGen StudyGenerator, sessions SessionStore, logger *infra.Logger) *App {
	return &App{
		Videos:   videos,
		Render:   renderer,
		Study:    studyGen,
		Sessions: sessions,
		Logger:   infra.LoggerOrDiscard(logger),
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, status int, code, msg string) {
	a.json(w, status, map[string]errorBody{"error": {Code: code, Message: msg}})
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		msg := "Cuerpo de la solicitud inválido."
		if errors.Is(err, io.EOF) {
			msg = "El cuerpo de la solicitud está vacío."
		}
		if isEnglish(r) {
			msg = "Invalid request body."
		}
		a.error(w, http.StatusBadRequest, "invalid_body", msg)
		return false
	}
	return true
}

func isEnglish(r *http.Request) bool {
	return middleware.LocaleFromContext(r.Context()) == "en"
}

// pick returns the message for the request locale.
func pick(r *http.Request, es, en string) string {
	if isEnglish(r) {
		return en
	}
	return es
}
