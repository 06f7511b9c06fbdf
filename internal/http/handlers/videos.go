package handlers

import (
	"context"
	"errors"
	"net/http"

	"studyblossom/internal/middleware"
	"studyblossom/internal/providers/render"
	"studyblossom/internal/video"
)

type createVideoRequest struct {
	Topic    string `json:"topic"`
	Duration string `json:"duration"`
}

var englishVideoMessages = map[video.ErrorKind]string{
	video.KindScriptGenerationFailed: "The script could not be generated. Please try again.",
	video.KindJobSubmissionFailed:    "The video could not be created right now. Please try again later.",
	video.KindRenderFailed:           "The video service could not render the video. Please try again.",
	video.KindPollingTimedOut:        "The video took too long to render. Please try again.",
	video.KindCanceled:               "Video generation was canceled.",
}

// CreateVideo runs the pipeline synchronously. The request stays open until
// the render finishes, fails, polling gives up or VideoTimeout elapses.
func (a *App) CreateVideo(w http.ResponseWriter, r *http.Request) {
	var req createVideoRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Duration == "" {
		req.Duration = string(video.TierShort)
	}
	tier, err := video.ParseTier(req.Duration)
	if err != nil {
		a.error(w, http.StatusBadRequest, "invalid_duration",
			pick(r, "Duración no válida. Usa short, medium o long.", "Invalid duration. Use short, medium or long."))
		return
	}

	ctx := r.Context()
	if a.VideoTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.VideoTimeout)
		defer cancel()
	}

	result, err := a.Videos.Generate(ctx, req.Topic, tier)
	if err != nil {
		if r.Context().Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			a.Logger.Error().Err(err).Dur("timeout", a.VideoTimeout).
				Str("request_id", middleware.RequestIDFromContext(r.Context())).
				Msg("video: generation exceeded request budget")
			a.error(w, http.StatusGatewayTimeout, string(video.KindPollingTimedOut),
				pick(r, "El video tardó demasiado en generarse. Por favor, intenta de nuevo.", englishVideoMessages[video.KindPollingTimedOut]))
			return
		}
		a.videoError(w, r, err)
		return
	}
	a.json(w, http.StatusOK, result)
}

func (a *App) videoError(w http.ResponseWriter, r *http.Request, err error) {
	var pe *video.PipelineError
	if !errors.As(err, &pe) {
		a.Logger.Error().Err(err).Msg("video: unexpected pipeline error")
		a.error(w, http.StatusInternalServerError, "internal_error",
			pick(r, "Error interno del servidor.", "Internal server error."))
		return
	}

	if pe.Kind == video.KindValidation && pe.Validation != nil {
		locale := middleware.LocaleFromContext(r.Context())
		a.json(w, http.StatusUnprocessableEntity, validateGoalResponse{
			Errors: rejectionViews(locale, *pe.Validation),
		})
		return
	}

	status := http.StatusBadGateway
	switch pe.Kind {
	case video.KindValidation:
		status = http.StatusUnprocessableEntity
	case video.KindPollingTimedOut:
		status = http.StatusGatewayTimeout
	case video.KindCanceled:
		status = http.StatusServiceUnavailable
	}

	event := a.Logger.Warn()
	if status == http.StatusBadGateway || status == http.StatusGatewayTimeout {
		event = a.Logger.Error()
	}
	event.Err(pe.Err).
		Str("kind", string(pe.Kind)).
		Str("detail", pe.Detail).
		Str("job_id", pe.JobID).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Msg("video: generation failed")

	msg := pe.UserMessage
	if en, ok := englishVideoMessages[pe.Kind]; ok && isEnglish(r) {
		msg = en
	}
	a.error(w, status, string(pe.Kind), msg)
}

type connectionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Credits *int   `json:"credits,omitempty"`
}

// VideoConnection checks that the rendering credentials work.
func (a *App) VideoConnection(w http.ResponseWriter, r *http.Request) {
	if a.Render == nil || !a.Render.Configured() {
		a.json(w, http.StatusOK, connectionResponse{
			Message: pick(r, "API key de video no configurada.", "Video API key is not configured."),
		})
		return
	}

	credits, err := a.Render.Credits(r.Context())
	if err != nil {
		a.Logger.Warn().Err(err).Msg("video: credentials check failed")
		msg := pick(r, "No se pudo conectar con el servicio de video.", "Could not reach the video service.")
		var se *render.StatusError
		if errors.As(err, &se) {
			msg = pick(r, "El servicio de video rechazó las credenciales.", "The video service rejected the credentials.")
		}
		a.json(w, http.StatusOK, connectionResponse{Message: msg})
		return
	}

	remaining := credits.Remaining
	a.json(w, http.StatusOK, connectionResponse{
		Success: true,
		Message: pick(r, "Conexión exitosa.", "Connection successful."),
		Credits: &remaining,
	})
}
