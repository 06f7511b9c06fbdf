package video

import "studyblossom/internal/providers/render"

// JobState is the lifecycle of one remote rendering request.
type JobState string

const (
	JobSubmitted JobState = "submitted"
	JobPolling   JobState = "polling"
	JobDone      JobState = "done"
	JobFailed    JobState = "failed"
	JobTimedOut  JobState = "timed_out"
)

// Terminal reports whether the job can no longer change.
func (s JobState) Terminal() bool {
	return s == JobDone || s == JobFailed || s == JobTimedOut
}

// RenderJob is owned by a single pipeline run and mutated only by its polling
// loop.
type RenderJob struct {
	ID            string
	State         JobState
	Attempts      int
	ResultURL     string
	ThumbnailURL  string
	FailureReason string
}

func newRenderJob(id string) *RenderJob {
	return &RenderJob{ID: id, State: JobSubmitted}
}

func (j *RenderJob) startPolling() {
	if j.State == JobSubmitted {
		j.State = JobPolling
	}
}

// observe records one poll and reports whether the job reached a terminal
// state.
func (j *RenderJob) observe(talk render.Talk, defaultThumbnail string) bool {
	if j.State != JobPolling {
		return j.State.Terminal()
	}
	j.Attempts++
	switch {
	case talk.Status == render.StatusDone:
		if talk.ResultURL == "" {
			j.State = JobFailed
			j.FailureReason = "job finished without a result url"
			return true
		}
		j.State = JobDone
		j.ResultURL = talk.ResultURL
		j.ThumbnailURL = talk.ThumbnailURL
		if j.ThumbnailURL == "" {
			j.ThumbnailURL = defaultThumbnail
		}
		return true
	case talk.Status.Failed():
		j.State = JobFailed
		j.FailureReason = talk.Error.Message()
		if j.FailureReason == "" {
			j.FailureReason = "unknown error"
		}
		return true
	default:
		return false
	}
}

func (j *RenderJob) fail(reason string) {
	if j.State.Terminal() {
		return
	}
	j.State = JobFailed
	j.FailureReason = reason
}

func (j *RenderJob) timeOut() {
	if j.State == JobPolling {
		j.State = JobTimedOut
	}
}
