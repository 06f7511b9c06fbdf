package study

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"studyblossom/internal/providers/genai"
	"studyblossom/internal/validation"
)

const (
	MinRecommendations = 3
	MaxRecommendations = 5
	SourcesPerTopic    = 3
)

// SourceType is the kind of material a Source points at.
type SourceType string

const (
	SourceVideo         SourceType = "video"
	SourceArticle       SourceType = "article"
	SourceBook          SourceType = "book"
	SourceDocumentation SourceType = "documentation"
)

func (t SourceType) valid() bool {
	switch t {
	case SourceVideo, SourceArticle, SourceBook, SourceDocumentation:
		return true
	}
	return false
}

type Source struct {
	Title string     `json:"title"`
	URL   string     `json:"url"`
	Type  SourceType `json:"type"`
}

// Recommendation is one sub topic to cover during a pomodoro block.
type Recommendation struct {
	SubTopic string   `json:"subTopic"`
	Sources  []Source `json:"sources"`
}

// PomodoroRecommendations returns between MinRecommendations and
// MaxRecommendations sub topics of topic, each with SourcesPerTopic sources.
func (g *Generator) PomodoroRecommendations(ctx context.Context, topic string) ([]Recommendation, error) {
	topic = validation.SanitizeForAI(topic)
	raw, err := g.generate(ctx, "pomodoro recommendations", pomodoroPrompt(topic), 0.5)
	if err != nil {
		return nil, err
	}
	payload, err := genai.DecodeJSON[struct {
		Recommendations []Recommendation `json:"recommendations"`
	}](raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	recs := payload.Recommendations
	if len(recs) < MinRecommendations || len(recs) > MaxRecommendations {
		return nil, fmt.Errorf("%w: got %d recommendations, want %d to %d",
			ErrInvalidOutput, len(recs), MinRecommendations, MaxRecommendations)
	}
	for i := range recs {
		if err := normalizeRecommendation(&recs[i]); err != nil {
			return nil, fmt.Errorf("%w: recommendation %d: %v", ErrInvalidOutput, i+1, err)
		}
	}
	return recs, nil
}

func normalizeRecommendation(rec *Recommendation) error {
	rec.SubTopic = strings.TrimSpace(rec.SubTopic)
	if rec.SubTopic == "" {
		return errors.New("empty sub topic")
	}
	if len(rec.Sources) != SourcesPerTopic {
		return fmt.Errorf("got %d sources, want %d", len(rec.Sources), SourcesPerTopic)
	}
	for i := range rec.Sources {
		s := &rec.Sources[i]
		s.Title = strings.TrimSpace(s.Title)
		s.URL = strings.TrimSpace(s.URL)
		s.Type = SourceType(strings.ToLower(strings.TrimSpace(string(s.Type))))
		if s.Title == "" {
			return fmt.Errorf("source %d has no title", i+1)
		}
		if !s.Type.valid() {
			return fmt.Errorf("source %d has unknown type %q", i+1, s.Type)
		}
		u, err := url.Parse(s.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("source %d has invalid url %q", i+1, s.URL)
		}
	}
	return nil
}
