package study

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"studyblossom/internal/providers/genai"
	"studyblossom/internal/validation"
)

// MaxExplanationLength bounds the learner's own explanation, in runes.
const MaxExplanationLength = 2000

type Explanation struct {
	Explanation string `json:"explanation"`
}

// Analysis is feedback on a learner's explanation. Both fields are dash
// bulleted lists in one string.
type Analysis struct {
	Gaps            string `json:"gaps"`
	Simplifications string `json:"simplifications"`
}

// Explanation returns a short beginner level explanation of topic.
func (g *Generator) Explanation(ctx context.Context, topic string) (Explanation, error) {
	topic = validation.SanitizeForAI(topic)
	raw, err := g.generate(ctx, "explanation", explanationPrompt(topic), 0.5)
	if err != nil {
		return Explanation{}, err
	}
	payload, err := genai.DecodeJSON[Explanation](raw)
	if err != nil {
		return Explanation{}, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	payload.Explanation = strings.TrimSpace(payload.Explanation)
	if payload.Explanation == "" {
		return Explanation{}, fmt.Errorf("%w: empty explanation", ErrInvalidOutput)
	}
	return payload, nil
}

// Analysis reviews how the learner explained topic and points out gaps and
// simpler wordings.
func (g *Generator) Analysis(ctx context.Context, topic, userExplanation string) (Analysis, error) {
	userExplanation = strings.TrimSpace(userExplanation)
	if userExplanation == "" {
		return Analysis{}, fmt.Errorf("%w: explanation is empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(userExplanation) > MaxExplanationLength {
		return Analysis{}, fmt.Errorf("%w: explanation exceeds %d characters", ErrInvalidInput, MaxExplanationLength)
	}

	topic = validation.SanitizeForAI(topic)
	raw, err := g.generate(ctx, "analysis", analysisPrompt(topic, userExplanation), 0.4)
	if err != nil {
		return Analysis{}, err
	}
	payload, err := genai.DecodeJSON[Analysis](raw)
	if err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	payload.Gaps = strings.TrimSpace(payload.Gaps)
	payload.Simplifications = strings.TrimSpace(payload.Simplifications)
	if payload.Gaps == "" || payload.Simplifications == "" {
		return Analysis{}, fmt.Errorf("%w: analysis needs gaps and simplifications", ErrInvalidOutput)
	}
	return payload, nil
}
