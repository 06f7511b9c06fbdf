package handlers

import (
	"net/http"

	"studyblossom/internal/study"
)

type analysisRequest struct {
	Topic       string `json:"topic"`
	Explanation string `json:"explanation"`
}

type tutorRequest struct {
	Topic    string            `json:"topic"`
	Question string            `json:"question"`
	History  []study.TutorTurn `json:"history"`
}

var (
	analysisInputMessage = localized{
		es: "Escribe tu explicación (máximo 2000 caracteres).",
		en: "Write your explanation (2000 characters at most).",
	}
	tutorInputMessage = localized{
		es: "Escribe una pregunta de hasta 1000 caracteres. El historial solo admite los roles user y assistant.",
		en: "Ask a question of up to 1000 characters. History only accepts the user and assistant roles.",
	}
)

func (a *App) Explanations(w http.ResponseWriter, r *http.Request) {
	topic, ok := a.topicFromBody(w, r)
	if !ok {
		return
	}
	out, err := a.Study.Explanation(r.Context(), topic)
	if err != nil {
		a.studyError(w, r, err, topicInputMessage)
		return
	}
	a.json(w, http.StatusOK, out)
}

func (a *App) ExplanationAnalysis(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if !a.decode(w, r, &req) {
		return
	}
	topic, ok := a.validTopic(w, r, req.Topic)
	if !ok {
		return
	}
	out, err := a.Study.Analysis(r.Context(), topic, req.Explanation)
	if err != nil {
		a.studyError(w, r, err, analysisInputMessage)
		return
	}
	a.json(w, http.StatusOK, out)
}

func (a *App) Engagement(w http.ResponseWriter, r *http.Request) {
	topic, ok := a.topicFromBody(w, r)
	if !ok {
		return
	}
	out, err := a.Study.Engagement(r.Context(), topic)
	if err != nil {
		a.studyError(w, r, err, topicInputMessage)
		return
	}
	a.json(w, http.StatusOK, out)
}

func (a *App) PomodoroRecommendations(w http.ResponseWriter, r *http.Request) {
	topic, ok := a.topicFromBody(w, r)
	if !ok {
		return
	}
	recs, err := a.Study.PomodoroRecommendations(r.Context(), topic)
	if err != nil {
		a.studyError(w, r, err, topicInputMessage)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"recommendations": recs})
}

// Tutor answers one question. The client keeps the conversation and sends
// it back as history.
func (a *App) Tutor(w http.ResponseWriter, r *http.Request) {
	var req tutorRequest
	if !a.decode(w, r, &req) {
		return
	}
	topic, ok := a.validTopic(w, r, req.Topic)
	if !ok {
		return
	}
	reply, err := a.Study.Tutor(r.Context(), study.TutorRequest{
		Topic:    topic,
		Question: req.Question,
		History:  req.History,
	})
	if err != nil {
		a.studyError(w, r, err, tutorInputMessage)
		return
	}
	a.json(w, http.StatusOK, reply)
}
