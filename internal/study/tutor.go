package study

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"studyblossom/internal/providers/genai"
	"studyblossom/internal/validation"
)

const (
	MaxQuestionLength = 1000
	FollowUpCount     = 3

	// MaxTutorHistory is how many past turns are kept as context.
	MaxTutorHistory = 10

	tutorTemperature    = 0.7
	followUpTemperature = 0.6
)

// Roles in a tutoring conversation.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DefaultFollowUps are offered when the model does not produce usable
// follow up questions.
var DefaultFollowUps = []string{
	"¿Puedes darme un ejemplo práctico?",
	"¿Cómo se relaciona esto con otros conceptos?",
	"¿Cuáles son los errores comunes al aprender esto?",
}

type TutorTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TutorRequest struct {
	Topic    string
	Question string
	History  []TutorTurn
}

type TutorReply struct {
	TextResponse        string   `json:"textResponse"`
	FollowUpSuggestions []string `json:"followUpSuggestions"`
}

// Tutor answers a learner's question about a topic in a conversational tone
// and suggests FollowUpCount questions to continue with. Follow ups fall back
// to DefaultFollowUps; only the answer itself is required.
func (g *Generator) Tutor(ctx context.Context, req TutorRequest) (TutorReply, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return TutorReply{}, fmt.Errorf("%w: question is empty", ErrInvalidInput)
	}
	if utf8.RuneCountInString(question) > MaxQuestionLength {
		return TutorReply{}, fmt.Errorf("%w: question exceeds %d characters", ErrInvalidInput, MaxQuestionLength)
	}
	history, err := normalizeHistory(req.History)
	if err != nil {
		return TutorReply{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	topic := validation.SanitizeForAI(req.Topic)

	raw, err := g.text.GenerateText(ctx, genai.TextRequest{
		Prompt:      tutorPrompt(topic, question, history),
		Temperature: tutorTemperature,
	})
	if err != nil {
		g.logger.Warn().Err(err).Str("kind", "tutor").Msg("study: generation failed")
		return TutorReply{}, fmt.Errorf("study: generate tutor answer: %w", err)
	}
	answer := strings.TrimSpace(genai.TrimCodeFence(raw))
	if answer == "" {
		return TutorReply{}, fmt.Errorf("%w: empty tutor answer", ErrInvalidOutput)
	}

	followUps, err := g.followUps(ctx, topic, question, answer)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return TutorReply{}, ctxErr
		}
		g.logger.Warn().Err(err).Msg("study: follow up questions unavailable, using defaults")
		followUps = append([]string(nil), DefaultFollowUps...)
	}
	return TutorReply{TextResponse: answer, FollowUpSuggestions: followUps}, nil
}

func (g *Generator) followUps(ctx context.Context, topic, question, answer string) ([]string, error) {
	raw, err := g.generate(ctx, "follow ups", followUpPrompt(topic, question, answer), followUpTemperature)
	if err != nil {
		return nil, err
	}
	suggestions, err := genai.DecodeJSON[[]string](raw)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, FollowUpCount)
	for _, s := range suggestions {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) != FollowUpCount {
		return nil, fmt.Errorf("got %d follow ups, want %d", len(out), FollowUpCount)
	}
	return out, nil
}

// normalizeHistory keeps the last MaxTutorHistory non empty turns.
func normalizeHistory(turns []TutorTurn) ([]TutorTurn, error) {
	out := make([]TutorTurn, 0, len(turns))
	for i, t := range turns {
		t.Role = strings.ToLower(strings.TrimSpace(t.Role))
		if t.Role != RoleUser && t.Role != RoleAssistant {
			return nil, fmt.Errorf("turn %d has unknown role %q", i+1, t.Role)
		}
		t.Content = strings.TrimSpace(t.Content)
		if t.Content == "" {
			continue
		}
		if utf8.RuneCountInString(t.Content) > MaxExplanationLength {
			return nil, errors.New("history turn is too long")
		}
		out = append(out, t)
	}
	if len(out) > MaxTutorHistory {
		out = out[len(out)-MaxTutorHistory:]
	}
	return out, nil
}
