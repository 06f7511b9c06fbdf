package handlers

import (
	"context"
	"errors"
	"net/http"

	"studyblossom/internal/middleware"
	"studyblossom/internal/providers/genai"
	"studyblossom/internal/study"
	"studyblossom/internal/validation"
)

type topicRequest struct {
	Topic string `json:"topic"`
}

type quizRequest struct {
	Flashcards []study.Flashcard `json:"flashcards"`
}

// localized is a message in both supported languages.
type localized struct {
	es, en string
}

var (
	topicInputMessage = localized{
		es: "El tema no es válido.",
		en: "The topic is not valid.",
	}
	quizInputMessage = localized{
		es: "Envía entre 1 y 20 tarjetas con pregunta y respuesta.",
		en: "Send between 1 and 20 cards with a question and an answer.",
	}
)

// validTopic runs the topic rules and answers 422 on rejection.
func (a *App) validTopic(w http.ResponseWriter, r *http.Request, topic string) (string, bool) {
	res := validation.TopicRules.Validate(topic)
	if res.Rejected() {
		locale := middleware.LocaleFromContext(r.Context())
		a.json(w, http.StatusUnprocessableEntity, validateGoalResponse{Errors: rejectionViews(locale, res)})
		return "", false
	}
	return res.Text, true
}

// topicFromBody decodes a {"topic"} body and runs the topic rules.
func (a *App) topicFromBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req topicRequest
	if !a.decode(w, r, &req) {
		return "", false
	}
	return a.validTopic(w, r, req.Topic)
}

func (a *App) Flashcards(w http.ResponseWriter, r *http.Request) {
	topic, ok := a.topicFromBody(w, r)
	if !ok {
		return
	}
	cards, err := a.Study.Flashcards(r.Context(), topic)
	if err != nil {
		a.studyError(w, r, err, topicInputMessage)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"flashcards": cards})
}

func (a *App) Quizzes(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if !a.decode(w, r, &req) {
		return
	}
	questions, err := a.Study.Quiz(r.Context(), req.Flashcards)
	if err != nil {
		a.studyError(w, r, err, quizInputMessage)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"questions": questions})
}

func (a *App) ConceptMaps(w http.ResponseWriter, r *http.Request) {
	topic, ok := a.topicFromBody(w, r)
	if !ok {
		return
	}
	cm, err := a.Study.ConceptMap(r.Context(), topic)
	if err != nil {
		a.studyError(w, r, err, topicInputMessage)
		return
	}
	a.json(w, http.StatusOK, map[string]string{"mermaid_graph": cm.MermaidGraph})
}

// studyError maps generator failures to responses. invalid is shown when the
// generator refused the caller's input.
func (a *App) studyError(w http.ResponseWriter, r *http.Request, err error, invalid localized) {
	switch {
	case errors.Is(err, study.ErrInvalidInput):
		a.error(w, http.StatusBadRequest, "invalid_input", pick(r, invalid.es, invalid.en))
	case errors.Is(err, genai.ErrMissingAPIKey):
		a.Logger.Error().Err(err).Msg("study: text model not configured")
		a.error(w, http.StatusServiceUnavailable, "generator_unavailable",
			pick(r, "El generador no está disponible.", "The generator is not available."))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		a.error(w, http.StatusServiceUnavailable, "canceled",
			pick(r, "La solicitud fue cancelada.", "The request was canceled."))
	default:
		a.Logger.Error().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg("study: generation failed")
		a.error(w, http.StatusBadGateway, "generation_failed",
			pick(r, "No se pudo generar el material. Por favor, intenta de nuevo.", "The material could not be generated. Please try again."))
	}
}
