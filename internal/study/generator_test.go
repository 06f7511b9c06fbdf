package study

import (
	"context"
	"errors"
	"strings"
	"testing"

	"studyblossom/internal/providers/genai"
)

type fakeText struct {
	text   string
	err    error
	prompt string
}

func (f *fakeText) GenerateText(ctx context.Context, req genai.TextRequest) (string, error) {
	f.prompt = req.Prompt
	return f.text, f.err
}

const fiveCards = `{"flashcards":[
{"question":"¿Qué es la fotosíntesis?","answer":"Conversión de luz en energía química."},
{"question":"¿Dónde ocurre?","answer":"En los cloroplastos."},
{"question":"¿Qué gas absorbe?","answer":"Dióxido de carbono."},
{"question":"¿Qué gas libera?","answer":"Oxígeno."},
{"question":"¿Qué pigmento usa?","answer":"Clorofila."}]}`

func TestFlashcards(t *testing.T) {
	text := &fakeText{text: "```json\n" + fiveCards + "\n```"}
	cards, err := NewGenerator(text, nil).Flashcards(context.Background(), "  Fotosíntesis   y respiración celular ")
	if err != nil {
		t.Fatalf("Flashcards returned error: %v", err)
	}
	if len(cards) != FlashcardCount {
		t.Fatalf("cards = %d", len(cards))
	}
	if !strings.Contains(text.prompt, `"Fotosíntesis y respiración celular"`) {
		t.Fatalf("prompt did not receive sanitized topic: %s", text.prompt)
	}
}

func TestFlashcardsRejectsWrongCount(t *testing.T) {
	text := &fakeText{text: `{"flashcards":[{"question":"a","answer":"b"}]}`}
	_, err := NewGenerator(text, nil).Flashcards(context.Background(), "Fotosíntesis")
	if !errors.Is(err, ErrInvalidOutput) {
		t.Fatalf("error = %v, want ErrInvalidOutput", err)
	}
}

func TestFlashcardsPropagatesUpstreamError(t *testing.T) {
	upstream := errors.New("quota")
	_, err := NewGenerator(&fakeText{err: upstream}, nil).Flashcards(context.Background(), "Fotosíntesis")
	if !errors.Is(err, upstream) {
		t.Fatalf("error = %v, want wrapped upstream error", err)
	}
}

func quizJSON(correct string) string {
	q := `{"question":"¿Qué gas libera?","options":["Oxígeno","Nitrógeno","Helio","Argón"],"correctAnswer":"` + correct + `"}`
	return `{"questions":[` + strings.Repeat(q+",", 4) + q + `]}`
}

func TestQuiz(t *testing.T) {
	cards := []Flashcard{{Question: "¿Qué gas libera?", Answer: "Oxígeno"}}
	tests := []struct {
		name    string
		output  string
		wantErr bool
	}{
		{name: "exact answer", output: quizJSON("Oxígeno")},
		{name: "case differs", output: quizJSON("oxígeno")},
		{name: "answer not in options", output: quizJSON("Hidrógeno"), wantErr: true},
		{name: "wrong question count", output: `{"questions":[]}`, wantErr: true},
		{name: "three options", output: `{"questions":[` + strings.Repeat(`{"question":"q","options":["a","b","c"],"correctAnswer":"a"},`, 4) + `{"question":"q","options":["a","b","c"],"correctAnswer":"a"}]}`, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			questions, err := NewGenerator(&fakeText{text: tc.output}, nil).Quiz(context.Background(), cards)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidOutput) {
					t.Fatalf("error = %v, want ErrInvalidOutput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Quiz returned error: %v", err)
			}
			for _, q := range questions {
				found := false
				for _, opt := range q.Options {
					if opt == q.CorrectAnswer {
						found = true
					}
				}
				if !found {
					t.Fatalf("correct answer %q not among options %v", q.CorrectAnswer, q.Options)
				}
			}
		})
	}
}

func TestQuizRejectsEmptyInput(t *testing.T) {
	_, err := NewGenerator(&fakeText{}, nil).Quiz(context.Background(), nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
	_, err = NewGenerator(&fakeText{}, nil).Quiz(context.Background(), []Flashcard{{Question: " ", Answer: "x"}})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("error = %v, want ErrInvalidInput", err)
	}
}

func TestConceptMap(t *testing.T) {
	text := &fakeText{text: `{"mermaidGraph":"graph TD; A[Fotosíntesis (plantas)]; B[Luz/Energía #1]; A --> B;"}`}
	m, err := NewGenerator(text, nil).ConceptMap(context.Background(), "Fotosíntesis")
	if err != nil {
		t.Fatalf("ConceptMap returned error: %v", err)
	}
	want := "graph TD; A[Fotosíntesis plantas]; B[LuzEnergía 1]; A --> B;"
	if m.MermaidGraph != want {
		t.Fatalf("graph = %q, want %q", m.MermaidGraph, want)
	}

	_, err = NewGenerator(&fakeText{text: `{"mermaidGraph":"flowchart LR; A-->B"}`}, nil).ConceptMap(context.Background(), "x")
	if !errors.Is(err, ErrInvalidOutput) {
		t.Fatalf("error = %v, want ErrInvalidOutput", err)
	}
}
