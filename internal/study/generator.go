// Package study builds practice material from a validated topic using a text
// model: flashcards, quizzes, concept maps, Feynman explanations, motivational
// copy, pomodoro reading lists and tutor answers.
package study

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"

	"studyblossom/internal/infra"
	"studyblossom/internal/providers/genai"
	"studyblossom/internal/validation"
)

const (
	FlashcardCount = 5
	QuizQuestions  = 5
	QuizOptions    = 4
	maxQuizInput   = 20
)

var (
	// ErrInvalidOutput means the model answered with the wrong shape.
	ErrInvalidOutput = errors.New("study: model output has an invalid shape")
	// ErrInvalidInput means the caller sent unusable material.
	ErrInvalidInput = errors.New("study: invalid input")
)

// TextGenerator produces text from a prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, req genai.TextRequest) (string, error)
}

type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

type ConceptMap struct {
	MermaidGraph string `json:"mermaidGraph"`
}

type Generator struct {
	text   TextGenerator
	logger *infra.Logger
}

func NewGenerator(text TextGenerator, logger *infra.Logger) *Generator {
	return &Generator{text: text, logger: infra.LoggerOrDiscard(logger)}
}

// Flashcards returns exactly FlashcardCount question/answer cards for topic.
func (g *Generator) Flashcards(ctx context.Context, topic string) ([]Flashcard, error) {
	topic = validation.SanitizeForAI(topic)
	raw, err := g.generate(ctx, "flashcards", flashcardsPrompt(topic), 0.6)
	if err != nil {
		return nil, err
	}
	payload, err := genai.DecodeJSON[struct {
		Flashcards []Flashcard `json:"flashcards"`
	}](raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	cards := make([]Flashcard, 0, len(payload.Flashcards))
	for _, c := range payload.Flashcards {
		c.Question = strings.TrimSpace(c.Question)
		c.Answer = strings.TrimSpace(c.Answer)
		if c.Question == "" || c.Answer == "" {
			return nil, fmt.Errorf("%w: empty flashcard", ErrInvalidOutput)
		}
		cards = append(cards, c)
	}
	if len(cards) != FlashcardCount {
		return nil, fmt.Errorf("%w: got %d flashcards, want %d", ErrInvalidOutput, len(cards), FlashcardCount)
	}
	return cards, nil
}

// Quiz turns flashcards into QuizQuestions multiple choice questions. Every
// CorrectAnswer is one of its Options.
func (g *Generator) Quiz(ctx context.Context, cards []Flashcard) ([]QuizQuestion, error) {
	if len(cards) == 0 || len(cards) > maxQuizInput {
		return nil, fmt.Errorf("%w: need between 1 and %d flashcards", ErrInvalidInput, maxQuizInput)
	}
	for i, c := range cards {
		if strings.TrimSpace(c.Question) == "" || strings.TrimSpace(c.Answer) == "" {
			return nil, fmt.Errorf("%w: flashcard %d is empty", ErrInvalidInput, i+1)
		}
	}

	raw, err := g.generate(ctx, "quiz", quizPrompt(cards), 0.5)
	if err != nil {
		return nil, err
	}
	payload, err := genai.DecodeJSON[struct {
		Questions []QuizQuestion `json:"questions"`
	}](raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if len(payload.Questions) != QuizQuestions {
		return nil, fmt.Errorf("%w: got %d questions, want %d", ErrInvalidOutput, len(payload.Questions), QuizQuestions)
	}

	out := make([]QuizQuestion, 0, QuizQuestions)
	for i, q := range payload.Questions {
		nq, err := normalizeQuestion(q)
		if err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrInvalidOutput, i+1, err)
		}
		out = append(out, nq)
	}
	return out, nil
}

func normalizeQuestion(q QuizQuestion) (QuizQuestion, error) {
	q.Question = strings.TrimSpace(q.Question)
	if q.Question == "" {
		return q, errors.New("empty question")
	}
	if len(q.Options) != QuizOptions {
		return q, fmt.Errorf("got %d options, want %d", len(q.Options), QuizOptions)
	}
	answer := strings.TrimSpace(q.CorrectAnswer)
	match := -1
	for i, opt := range q.Options {
		q.Options[i] = strings.TrimSpace(opt)
		if q.Options[i] == "" {
			return q, errors.New("empty option")
		}
		if match < 0 && q.Options[i] == answer {
			match = i
		}
	}
	// Models sometimes change the case of the answer; accept that and keep
	// the option's spelling.
	if match < 0 {
		folder := cases.Fold()
		for i, opt := range q.Options {
			if folder.String(opt) == folder.String(answer) {
				match = i
				break
			}
		}
	}
	if match < 0 {
		return q, errors.New("correct answer is not one of the options")
	}
	q.CorrectAnswer = q.Options[match]
	return q, nil
}

var (
	nodeLabel        = regexp.MustCompile(`\[([^\]]+)\]`)
	forbiddenInLabel = regexp.MustCompile(`[()/#]`)
)

// ConceptMap returns a Mermaid "graph" definition for topic.
func (g *Generator) ConceptMap(ctx context.Context, topic string) (ConceptMap, error) {
	topic = validation.SanitizeForAI(topic)
	raw, err := g.generate(ctx, "concept map", conceptMapPrompt(topic), 0.4)
	if err != nil {
		return ConceptMap{}, err
	}
	payload, err := genai.DecodeJSON[ConceptMap](raw)
	if err != nil {
		return ConceptMap{}, fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	graph := strings.TrimSpace(payload.MermaidGraph)
	if !strings.HasPrefix(graph, "graph") {
		return ConceptMap{}, fmt.Errorf("%w: mermaid definition must start with graph", ErrInvalidOutput)
	}
	return ConceptMap{MermaidGraph: SanitizeMermaid(graph)}, nil
}

// SanitizeMermaid strips characters Mermaid cannot parse inside [node] labels.
func SanitizeMermaid(graph string) string {
	return nodeLabel.ReplaceAllStringFunc(graph, func(m string) string {
		inner := m[1 : len(m)-1]
		return "[" + forbiddenInLabel.ReplaceAllString(inner, "") + "]"
	})
}

func (g *Generator) generate(ctx context.Context, kind, prompt string, temperature float64) (string, error) {
	raw, err := g.text.GenerateText(ctx, genai.TextRequest{Prompt: prompt, Temperature: temperature, JSON: true})
	if err != nil {
		g.logger.Warn().Err(err).Str("kind", kind).Msg("study: generation failed")
		return "", fmt.Errorf("study: generate %s: %w", kind, err)
	}
	return raw, nil
}
