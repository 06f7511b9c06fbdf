// Package render is a client for the talking-avatar rendering API: jobs are
// created with a text script and polled until they finish.
package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"studyblossom/internal/infra"
)

const (
	defaultBaseURL = "https://api.d-id.com"
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 8 << 10
)

// ErrMissingAPIKey is returned when a request is attempted without credentials.
var ErrMissingAPIKey = errors.New("render: api key is not configured")

// StatusError is returned for non-2xx responses. Body is kept for operators and
// must not be shown to end users.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("render: %s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("render: %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Status is the remote job state.
type Status string

const (
	StatusCreated    Status = "created"
	StatusStarted    Status = "started"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusFailed     Status = "error"
	StatusRejected   Status = "rejected"
)

// IsTerminal reports whether polling should stop.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusDone, StatusFailed, StatusRejected:
		return true
	default:
		return false
	}
}

// Failed reports whether the job ended without a video.
func (s Status) Failed() bool {
	return s == StatusFailed || s == StatusRejected
}

// Voice selects the text-to-speech provider and voice.
type Voice struct {
	Type    string `json:"type"`
	VoiceID string `json:"voice_id"`
}

// TalkRequest is the payload for a new rendering job.
type TalkRequest struct {
	Script    string
	Voice     Voice
	SourceURL string
}

type talkScript struct {
	Type     string `json:"type"`
	Input    string `json:"input"`
	Provider Voice  `json:"provider"`
}

type createTalkBody struct {
	Script    talkScript `json:"script"`
	SourceURL string     `json:"source_url"`
}

type createTalkResponse struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
}

// Talk is the polled state of a job.
type Talk struct {
	ID           string    `json:"id"`
	Status       Status    `json:"status"`
	ResultURL    string    `json:"result_url,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Error        TalkError `json:"error,omitempty"`
}

// TalkError is the remote failure description. The API sends either a plain
// string or an object with kind and description.
type TalkError struct {
	Kind        string `json:"kind,omitempty"`
	Description string `json:"description,omitempty"`
}

func (e *TalkError) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &e.Description)
	}
	type plain TalkError
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return err
	}
	*e = TalkError(p)
	return nil
}

// Message returns a single line describing the failure.
func (e TalkError) Message() string {
	switch {
	case e.Description != "" && e.Kind != "":
		return e.Kind + ": " + e.Description
	case e.Description != "":
		return e.Description
	default:
		return e.Kind
	}
}

// Credits is the account balance reported by the API.
type Credits struct {
	Remaining int `json:"remaining"`
	Total     int `json:"total"`
}

// Options controls how the rendering client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client

	// Timeout bounds each request when HTTPClient is nil. Zero means 30s.
	Timeout time.Duration
	Logger  *infra.Logger
}

// Client issues authenticated calls against the rendering API. It holds no
// per-job state and is safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: client,
		logger:     infra.LoggerOrDiscard(opts.Logger),
	}
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// CreateTalk submits a rendering job and returns its id.
func (c *Client) CreateTalk(ctx context.Context, req TalkRequest) (string, error) {
	if strings.TrimSpace(req.Script) == "" {
		return "", errors.New("render: script is required")
	}
	body := createTalkBody{
		Script: talkScript{
			Type:     "text",
			Input:    req.Script,
			Provider: req.Voice,
		},
		SourceURL: req.SourceURL,
	}
	var out createTalkResponse
	if err := c.do(ctx, "create talk", http.MethodPost, "/talks", body, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", errors.New("render: create talk: response has no id")
	}
	c.logger.Debug().Str("talk_id", out.ID).Int("chars", len(req.Script)).Msg("render: talk created")
	return out.ID, nil
}

// GetTalk fetches the current state of a job.
func (c *Client) GetTalk(ctx context.Context, id string) (Talk, error) {
	if strings.TrimSpace(id) == "" {
		return Talk{}, errors.New("render: talk id is required")
	}
	var talk Talk
	if err := c.do(ctx, "get talk", http.MethodGet, "/talks/"+url.PathEscape(id), nil, &talk); err != nil {
		return Talk{}, err
	}
	if talk.ID == "" {
		talk.ID = id
	}
	return talk, nil
}

// Credits returns the remaining account balance. It doubles as a credentials
// check.
func (c *Client) Credits(ctx context.Context) (Credits, error) {
	var credits Credits
	if err := c.do(ctx, "credits", http.MethodGet, "/credits", nil, &credits); err != nil {
		return Credits{}, err
	}
	return credits, nil
}

func (c *Client) authorization() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.apiKey+":"))
}

func (c *Client) do(ctx context.Context, op, method, path string, payload any, out any) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("render: %s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("render: %s: create request: %w", op, err)
	}
	req.Header.Set("Authorization", c.authorization())
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("render: %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		c.logger.Warn().
			Str("op", op).
			Int("status", resp.StatusCode).
			Str("body", statusErr.Body).
			Msg("render: request failed")
		return statusErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("render: %s: decode response: %w", op, err)
	}
	return nil
}
