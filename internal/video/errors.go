package video

import (
	"errors"
	"fmt"

	"studyblossom/internal/validation"
)

// ErrorKind classifies pipeline failures. Every kind is terminal for the run.
type ErrorKind string

const (
	KindValidation             ErrorKind = "validation_rejected"
	KindScriptGenerationFailed ErrorKind = "script_generation_failed"
	KindJobSubmissionFailed    ErrorKind = "job_submission_failed"
	KindRenderFailed           ErrorKind = "render_failed"
	KindPollingTimedOut        ErrorKind = "polling_timed_out"
	KindCanceled               ErrorKind = "canceled"
)

var (
	ErrValidation             = errors.New("video: topic rejected")
	ErrScriptGenerationFailed = errors.New("video: script generation failed")
	ErrJobSubmissionFailed    = errors.New("video: job submission failed")
	ErrRenderFailed           = errors.New("video: render failed")
	ErrPollingTimedOut        = errors.New("video: polling timed out")
	ErrCanceled               = errors.New("video: canceled")
)

var kindSentinels = map[ErrorKind]error{
	KindValidation:             ErrValidation,
	KindScriptGenerationFailed: ErrScriptGenerationFailed,
	KindJobSubmissionFailed:    ErrJobSubmissionFailed,
	KindRenderFailed:           ErrRenderFailed,
	KindPollingTimedOut:        ErrPollingTimedOut,
	KindCanceled:               ErrCanceled,
}

// PipelineError separates the message safe for end users from operator
// detail such as upstream status codes and response bodies.
type PipelineError struct {
	Kind        ErrorKind
	UserMessage string
	Detail      string
	JobID       string
	// Validation is set for KindValidation.
	Validation *validation.Result
	Err        error
}

func (e *PipelineError) Error() string {
	msg := string(e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return "video: " + msg
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *PipelineError) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

const (
	msgScriptFailed = "No se pudo generar el guión correctamente. Por favor, intenta de nuevo."
	msgSubmitFailed = "No se pudo crear el video en este momento. Por favor, intenta de nuevo más tarde."
	msgRenderFailed = "El servicio de video no pudo generar el video. Por favor, intenta de nuevo."
	msgTimedOut     = "El video tardó demasiado en generarse. Por favor, intenta de nuevo."
	msgCanceled     = "La generación del video fue cancelada."
	msgInvalidTier  = "Duración no válida. Usa short, medium o long."
)

func newError(kind ErrorKind, userMessage string, err error, detailFormat string, args ...any) *PipelineError {
	return &PipelineError{
		Kind:        kind,
		UserMessage: userMessage,
		Detail:      fmt.Sprintf(detailFormat, args...),
		Err:         err,
	}
}
