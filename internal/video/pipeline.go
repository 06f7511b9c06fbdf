// Package video produces educational videos: a script is written by a text
// model, rendered by a remote talking-avatar service and polled until done.
package video

import (
	"context"
	"errors"
	"time"

	"studyblossom/internal/infra"
	"studyblossom/internal/providers/genai"
	"studyblossom/internal/providers/render"
	"studyblossom/internal/validation"
)

const (
	DefaultPollInterval = 3 * time.Second
	DefaultMaxAttempts  = 60
	DefaultThumbnailURL = "https://create-images-results.d-id.com/default-presenter.jpg"
	DefaultSourceURL    = "https://d-id-public-bucket.s3.amazonaws.com/alice.jpg"

	scriptTemperature = 0.7
)

// DefaultVoice is the narration voice used when Options.Voice is empty.
var DefaultVoice = render.Voice{Type: "microsoft", VoiceID: "es-ES-ElviraNeural"}

// ScriptWriter produces text from a prompt.
type ScriptWriter interface {
	GenerateText(ctx context.Context, req genai.TextRequest) (string, error)
}

// Renderer submits rendering jobs and reports their state.
type Renderer interface {
	CreateTalk(ctx context.Context, req render.TalkRequest) (string, error)
	GetTalk(ctx context.Context, id string) (render.Talk, error)
}

// WaitFunc suspends for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

// Options tunes a Pipeline. Zero values fall back to the defaults above.
type Options struct {
	PollInterval     time.Duration
	MaxAttempts      int
	Voice            render.Voice
	SourceURL        string
	DefaultThumbnail string
	Wait             WaitFunc
	Now              func() time.Time
	Logger           *infra.Logger
}

// GenerationResult is only built from a job that finished with a video.
type GenerationResult struct {
	VideoURL          string    `json:"video_url"`
	VideoID           string    `json:"video_id"`
	Script            string    `json:"script"`
	Title             string    `json:"title"`
	KeyPoints         []string  `json:"key_points"`
	EstimatedDuration string    `json:"estimated_duration"`
	ThumbnailURL      string    `json:"thumbnail_url"`
	Status            string    `json:"status"`
	ProducedAt        time.Time `json:"produced_at"`
}

// Pipeline holds no per-run state; concurrent Generate calls are independent.
type Pipeline struct {
	writer   ScriptWriter
	renderer Renderer
	opts     Options
	logger   *infra.Logger
}

func NewPipeline(writer ScriptWriter, renderer Renderer, opts Options) *Pipeline {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Voice.VoiceID == "" {
		opts.Voice = DefaultVoice
	}
	if opts.SourceURL == "" {
		opts.SourceURL = DefaultSourceURL
	}
	if opts.DefaultThumbnail == "" {
		opts.DefaultThumbnail = DefaultThumbnailURL
	}
	if opts.Wait == nil {
		opts.Wait = Sleep
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{
		writer:   writer,
		renderer: renderer,
		opts:     opts,
		logger:   infra.LoggerOrDiscard(opts.Logger),
	}
}

// Sleep waits for d without busy looping and returns early with ctx.Err().
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Generate runs validation, script generation, job submission and polling in
// sequence. Any failure ends the run with a *PipelineError.
func (p *Pipeline) Generate(ctx context.Context, topic string, tier Tier) (*GenerationResult, error) {
	spec, ok := tier.Spec()
	if !ok {
		err := newError(KindValidation, msgInvalidTier, nil, "unknown tier %q", tier)
		return nil, err
	}

	verdict := validation.TopicRules.Validate(topic)
	if verdict.Rejected() {
		return nil, &PipelineError{
			Kind:        KindValidation,
			UserMessage: verdict.Message,
			Detail:      string(verdict.Reason),
			Validation:  &verdict,
		}
	}
	topic = verdict.Text

	log := p.logger.With().Str("tier", string(tier)).Logger()

	script, err := p.writeScript(ctx, topic, spec)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("title", script.Title).Int("chars", len([]rune(script.Body))).Msg("video: script generated")

	job, err := p.submit(ctx, script)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("job_id", job.ID).Msg("video: job submitted")

	if err := p.poll(ctx, job); err != nil {
		return nil, err
	}
	log.Info().Str("job_id", job.ID).Int("attempts", job.Attempts).Msg("video: job completed")

	return &GenerationResult{
		VideoURL:          job.ResultURL,
		VideoID:           job.ID,
		Script:            script.Body,
		Title:             script.Title,
		KeyPoints:         script.KeyPoints,
		EstimatedDuration: spec.Duration,
		ThumbnailURL:      job.ThumbnailURL,
		Status:            string(render.StatusDone),
		ProducedAt:        p.opts.Now().UTC(),
	}, nil
}

func (p *Pipeline) writeScript(ctx context.Context, topic string, spec TierSpec) (ScriptArtifact, error) {
	raw, err := p.writer.GenerateText(ctx, genai.TextRequest{
		Prompt:      BuildScriptPrompt(topic, spec),
		Temperature: scriptTemperature,
		JSON:        true,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ScriptArtifact{}, canceled(ctxErr, "")
		}
		p.logger.Warn().Err(err).Msg("video: script generation failed")
		return ScriptArtifact{}, newError(KindScriptGenerationFailed, msgScriptFailed, err, "text generation")
	}
	script, err := ParseScript(raw, topic, spec)
	if err != nil {
		p.logger.Warn().Err(err).Int("raw_chars", len(raw)).Msg("video: script response unparseable")
		return ScriptArtifact{}, newError(KindScriptGenerationFailed, msgScriptFailed, err, "parse script")
	}
	return script, nil
}

func (p *Pipeline) submit(ctx context.Context, script ScriptArtifact) (*RenderJob, error) {
	id, err := p.renderer.CreateTalk(ctx, render.TalkRequest{
		Script:    script.Body,
		Voice:     p.opts.Voice,
		SourceURL: p.opts.SourceURL,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, canceled(ctxErr, "")
		}
		var statusErr *render.StatusError
		if errors.As(err, &statusErr) {
			p.logger.Error().
				Int("status", statusErr.StatusCode).
				Str("body", statusErr.Body).
				Msg("video: job submission rejected")
			return nil, newError(KindJobSubmissionFailed, msgSubmitFailed, err, "status %d", statusErr.StatusCode)
		}
		p.logger.Error().Err(err).Msg("video: job submission failed")
		return nil, newError(KindJobSubmissionFailed, msgSubmitFailed, err, "create talk")
	}
	return newRenderJob(id), nil
}

// poll checks the job at a fixed interval until it is terminal or the attempt
// budget is spent. There is no wait after the last attempt.
func (p *Pipeline) poll(ctx context.Context, job *RenderJob) error {
	job.startPolling()
	maxAttempts := p.opts.MaxAttempts
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		talk, err := p.renderer.GetTalk(ctx, job.ID)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return canceled(ctxErr, job.ID)
			}
			job.fail(err.Error())
			p.logger.Error().Err(err).Str("job_id", job.ID).Int("attempt", attempt).Msg("video: status check failed")
			pe := newError(KindRenderFailed, msgRenderFailed, err, "status check")
			pe.JobID = job.ID
			return pe
		}

		terminal := job.observe(talk, p.opts.DefaultThumbnail)
		p.logger.Debug().
			Str("job_id", job.ID).
			Int("attempt", attempt).
			Int("max", maxAttempts).
			Str("status", string(talk.Status)).
			Msg("video: polled job")
		if terminal {
			if job.State == JobFailed {
				p.logger.Warn().Str("job_id", job.ID).Str("reason", job.FailureReason).Msg("video: job failed")
				pe := newError(KindRenderFailed, msgRenderFailed, nil, "%s", job.FailureReason)
				pe.JobID = job.ID
				return pe
			}
			return nil
		}

		if attempt == maxAttempts {
			break
		}
		if err := p.opts.Wait(ctx, p.opts.PollInterval); err != nil {
			return canceled(err, job.ID)
		}
	}

	job.timeOut()
	p.logger.Warn().Str("job_id", job.ID).Int("attempts", job.Attempts).Msg("video: polling timed out")
	pe := newError(KindPollingTimedOut, msgTimedOut, nil, "no terminal status after %d attempts", job.Attempts)
	pe.JobID = job.ID
	return pe
}

func canceled(err error, jobID string) *PipelineError {
	return &PipelineError{Kind: KindCanceled, UserMessage: msgCanceled, JobID: jobID, Err: err}
}
