package study

import (
	"context"
	"fmt"
	"strings"

	"studyblossom/internal/providers/genai"
	"studyblossom/internal/validation"
)

// DesireCount is how many benefits an Engagement lists.
const DesireCount = 3

// Engagement is motivational copy for a topic following attention,
// interest and desire.
type Engagement struct {
	Attention string   `json:"attention"`
	Interest  string   `json:"interest"`
	Desire    []string `json:"desire"`
}

func (g *Generator) Engagement(ctx context.Context, topic string) (Engagement, error) {
	topic = validation.SanitizeForAI(topic)
	raw, err := g.generate(ctx, "engagement", engagementPrompt(topic), 0.8)
	if err != nil {
		return Engagement{}, err
	}
	payload, err := genai.DecodeJSON[Engagement](raw)
	if err != nil {
		return Engagement{}, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	payload.Attention = strings.TrimSpace(payload.Attention)
	payload.Interest = strings.TrimSpace(payload.Interest)
	if payload.Attention == "" || payload.Interest == "" {
		return Engagement{}, fmt.Errorf("%w: attention and interest are required", ErrInvalidOutput)
	}
	if len(payload.Desire) != DesireCount {
		return Engagement{}, fmt.Errorf("%w: got %d benefits, want %d", ErrInvalidOutput, len(payload.Desire), DesireCount)
	}
	for i, d := range payload.Desire {
		if payload.Desire[i] = strings.TrimSpace(d); payload.Desire[i] == "" {
			return Engagement{}, fmt.Errorf("%w: benefit %d is empty", ErrInvalidOutput, i+1)
		}
	}
	return payload, nil
}
