package render

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestClient(t *testing.T, fn roundTripFunc) *Client {
	t.Helper()
	return NewClient(Options{
		APIKey:     "user@example.com:secret",
		BaseURL:    "https://render.test/",
		HTTPClient: &http.Client{Transport: fn},
	})
}

func TestCreateTalkSendsScriptWithBasicAuth(t *testing.T) {
	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("user@example.com:secret:"))
	var body createTalkBody
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPost || r.URL.String() != "https://render.test/talks" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL)
		}
		if got := r.Header.Get("Authorization"); got != wantAuth {
			t.Fatalf("Authorization = %q, want %q", got, wantAuth)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		return response(http.StatusCreated, `{"id":"tlk_123","status":"created"}`), nil
	})

	id, err := client.CreateTalk(context.Background(), TalkRequest{
		Script:    "Hola, hoy aprenderemos sobre Roma.",
		Voice:     Voice{Type: "microsoft", VoiceID: "es-ES-ElviraNeural"},
		SourceURL: "https://example.com/avatar.jpg",
	})
	if err != nil {
		t.Fatalf("CreateTalk returned error: %v", err)
	}
	if id != "tlk_123" {
		t.Fatalf("id = %q", id)
	}
	if body.Script.Type != "text" || body.Script.Input != "Hola, hoy aprenderemos sobre Roma." {
		t.Fatalf("script = %#v", body.Script)
	}
	if body.Script.Provider.VoiceID != "es-ES-ElviraNeural" || body.SourceURL != "https://example.com/avatar.jpg" {
		t.Fatalf("body = %#v", body)
	}
}

func TestCreateTalkNon2xxReturnsStatusError(t *testing.T) {
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return response(http.StatusPaymentRequired, `{"kind":"InsufficientCreditsError"}`), nil
	})
	_, err := client.CreateTalk(context.Background(), TalkRequest{Script: "hola"})
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.StatusCode != http.StatusPaymentRequired || !strings.Contains(statusErr.Body, "InsufficientCredits") {
		t.Fatalf("status error = %#v", statusErr)
	}
}

func TestGetTalkDecodesErrorShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "object", body: `{"id":"t","status":"error","error":{"kind":"FaceError","description":"no face detected"}}`, want: "FaceError: no face detected"},
		{name: "string", body: `{"id":"t","status":"error","error":"bad script"}`, want: "bad script"},
		{name: "null", body: `{"id":"t","status":"processing","error":null}`, want: ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
				if r.URL.Path != "/talks/t" {
					t.Fatalf("path = %s", r.URL.Path)
				}
				return response(http.StatusOK, tc.body), nil
			})
			talk, err := client.GetTalk(context.Background(), "t")
			if err != nil {
				t.Fatalf("GetTalk returned error: %v", err)
			}
			if got := talk.Error.Message(); got != tc.want {
				t.Fatalf("error message = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGetTalkDone(t *testing.T) {
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		return response(http.StatusOK, `{"id":"t","status":"done","result_url":"https://cdn.test/v.mp4","thumbnail_url":"https://cdn.test/v.jpg"}`), nil
	})
	talk, err := client.GetTalk(context.Background(), "t")
	if err != nil {
		t.Fatalf("GetTalk returned error: %v", err)
	}
	if !talk.Status.IsTerminal() || talk.Status.Failed() {
		t.Fatalf("status = %q", talk.Status)
	}
	if talk.ResultURL != "https://cdn.test/v.mp4" || talk.ThumbnailURL != "https://cdn.test/v.jpg" {
		t.Fatalf("talk = %#v", talk)
	}
}

func TestCredits(t *testing.T) {
	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/credits" {
			t.Fatalf("path = %s", r.URL.Path)
		}
		return response(http.StatusOK, `{"remaining":42,"total":100}`), nil
	})
	credits, err := client.Credits(context.Background())
	if err != nil {
		t.Fatalf("Credits returned error: %v", err)
	}
	if credits.Remaining != 42 || credits.Total != 100 {
		t.Fatalf("credits = %#v", credits)
	}
}

func TestMissingAPIKey(t *testing.T) {
	client := NewClient(Options{})
	if client.Configured() {
		t.Fatal("client without key reports configured")
	}
	if _, err := client.Credits(context.Background()); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("error = %v, want ErrMissingAPIKey", err)
	}
}

func TestStatusIsTerminal(t *testing.T) {
	for _, s := range []Status{StatusCreated, StatusStarted, StatusProcessing, Status("queued")} {
		if s.IsTerminal() {
			t.Fatalf("%q should not be terminal", s)
		}
	}
	for _, s := range []Status{StatusDone, StatusFailed, StatusRejected} {
		if !s.IsTerminal() {
			t.Fatalf("%q should be terminal", s)
		}
	}
}

func TestFailedStatusesAndStatusError(t *testing.T) {
	if StatusFailed != Status("error") {
		t.Fatalf("StatusFailed = %q, want the remote value error", StatusFailed)
	}
	for _, s := range []Status{StatusFailed, StatusRejected} {
		if !s.Failed() {
			t.Fatalf("%q should be failed", s)
		}
	}
	if StatusDone.Failed() {
		t.Fatal("done should not be failed")
	}

	var err error = &StatusError{Op: "get talk", StatusCode: 500}
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != 500 {
		t.Fatalf("errors.As(%v) did not find *StatusError", err)
	}
}

func TestNewClientTimeout(t *testing.T) {
	if got := NewClient(Options{}).httpClient.Timeout; got != 30*time.Second {
		t.Fatalf("default timeout = %s", got)
	}
	if got := NewClient(Options{Timeout: 5 * time.Second}).httpClient.Timeout; got != 5*time.Second {
		t.Fatalf("timeout = %s, want 5s", got)
	}
	custom := &http.Client{Timeout: time.Second}
	if NewClient(Options{HTTPClient: custom, Timeout: 5 * time.Second}).httpClient != custom {
		t.Fatal("custom http client was replaced")
	}
}
