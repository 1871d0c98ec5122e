package service

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/aiexam/aiexam-backend/internal/llm"
	"github.com/aiexam/aiexam-backend/internal/model"
)

type fakeCompleter struct {
	text string
	err  error

	gotSystem string
	gotUser   string
}

func (f *fakeCompleter) Complete(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.gotSystem = systemPrompt
	f.gotUser = userPrompt
	return f.text, f.err
}

func mcQuestions(n int) []model.Question {
	out := make([]model.Question, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, model.Question{
			Text:          "Real question " + string(rune('0'+i)) + "?",
			Type:          model.QuestionTypeMultipleChoice,
			Difficulty:    model.DifficultyEasy,
			Options:       []string{"One", "Two", "Three", "Four"},
			CorrectAnswer: "B",
			Explanation:   "Because.",
		})
	}
	return out
}

func genRequest(count int) model.GenerateQuestionsRequest {
	return model.GenerateQuestionsRequest{
		Subject:      "Go",
		Difficulty:   "easy",
		QuestionType: "multiple-choice",
		Count:        count,
	}
}

func TestGenerateParsesCompletion(t *testing.T) {
	want := mcQuestions(2)
	body, err := json.Marshal(want)
	if err != nil {
		t.Fatal(err)
	}
	fake := &fakeCompleter{text: string(body)}
	svc := NewGenerationService(fake, 50, zerolog.Nop())

	got, err := svc.Generate(context.Background(), genRequest(2))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Generate() = %+v, want %+v", got, want)
	}

	if !strings.Contains(fake.gotSystem, "Generate exactly 2 multiple-choice questions about Go") {
		t.Errorf("system prompt = %q", fake.gotSystem)
	}
	if fake.gotUser != "Generate 2 multiple-choice questions about Go at easy difficulty level." {
		t.Errorf("user prompt = %q", fake.gotUser)
	}
}

func TestGenerateFallsBackOnProse(t *testing.T) {
	fake := &fakeCompleter{text: "I'm sorry, I can't produce JSON today."}
	svc := NewGenerationService(fake, 50, zerolog.Nop())

	got, err := svc.Generate(context.Background(), genRequest(3))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	want := llm.Synthesize("Go", model.DifficultyEasy, model.QuestionTypeMultipleChoice, 3)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Generate() = %+v, want synthesized placeholders", got)
	}
}

func TestGenerateUpstreamErrorIsFatal(t *testing.T) {
	fake := &fakeCompleter{err: llm.ErrUpstreamUnavailable}
	svc := NewGenerationService(fake, 50, zerolog.Nop())

	got, err := svc.Generate(context.Background(), genRequest(2))
	if !errors.Is(err, llm.ErrUpstreamUnavailable) {
		t.Fatalf("Generate() error = %v, want ErrUpstreamUnavailable", err)
	}
	if got != nil {
		t.Errorf("Generate() = %+v, want nil", got)
	}
}

func TestGenerateTrimsExtraQuestions(t *testing.T) {
	body, err := json.Marshal(mcQuestions(5))
	if err != nil {
		t.Fatal(err)
	}
	svc := NewGenerationService(&fakeCompleter{text: string(body)}, 50, zerolog.Nop())

	got, err := svc.Generate(context.Background(), genRequest(2))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Generate() returned %d questions, want 2", len(got))
	}
}

func TestGenerateTopsUpShortfall(t *testing.T) {
	body, err := json.Marshal(mcQuestions(1))
	if err != nil {
		t.Fatal(err)
	}
	svc := NewGenerationService(&fakeCompleter{text: string(body)}, 50, zerolog.Nop())

	got, err := svc.Generate(context.Background(), genRequest(3))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Generate() returned %d questions, want 3", len(got))
	}
	if got[0].Text != mcQuestions(1)[0].Text {
		t.Errorf("parsed question not kept first: %+v", got[0])
	}
	// Filler continues the 1-based numbering after the parsed prefix.
	if got[1].Text != "Sample Go question 2 (easy level)" {
		t.Errorf("filler question = %q", got[1].Text)
	}
	if got[2].Text != "Sample Go question 3 (easy level)" {
		t.Errorf("filler question = %q", got[2].Text)
	}
}

func TestGenerateValidation(t *testing.T) {
	tests := []struct {
		name string
		req  model.GenerateQuestionsRequest
	}{
		{"blank subject", model.GenerateQuestionsRequest{Subject: "   ", Difficulty: "easy", QuestionType: "multiple-choice", Count: 1}},
		{"unknown difficulty", model.GenerateQuestionsRequest{Subject: "Go", Difficulty: "extreme", QuestionType: "multiple-choice", Count: 1}},
		{"unknown type", model.GenerateQuestionsRequest{Subject: "Go", Difficulty: "easy", QuestionType: "true-false", Count: 1}},
		{"zero count", model.GenerateQuestionsRequest{Subject: "Go", Difficulty: "easy", QuestionType: "multiple-choice", Count: 0}},
		{"negative count", model.GenerateQuestionsRequest{Subject: "Go", Difficulty: "easy", QuestionType: "multiple-choice", Count: -2}},
		{"count above cap", model.GenerateQuestionsRequest{Subject: "Go", Difficulty: "easy", QuestionType: "multiple-choice", Count: 51}},
	}

	fake := &fakeCompleter{}
	svc := NewGenerationService(fake, 50, zerolog.Nop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Generate(context.Background(), tt.req)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("Generate() error = %v, want ErrInvalidRequest", err)
			}
		})
	}
	if fake.gotSystem != "" {
		t.Error("completer was called for an invalid request")
	}
}

func TestGenerateNormalizesCasing(t *testing.T) {
	body, err := json.Marshal(mcQuestions(1))
	if err != nil {
		t.Fatal(err)
	}
	svc := NewGenerationService(&fakeCompleter{text: string(body)}, 50, zerolog.Nop())

	got, err := svc.Generate(context.Background(), model.GenerateQuestionsRequest{
		Subject:      "  Go  ",
		Difficulty:   "  EASY ",
		QuestionType: "Multiple-Choice",
		Count:        1,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got[0].Difficulty != model.DifficultyEasy {
		t.Errorf("difficulty = %q", got[0].Difficulty)
	}
}
