package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aiexam/aiexam-backend/internal/llm"
	"github.com/aiexam/aiexam-backend/internal/model"
)

// ErrInvalidRequest indicates a generation request that failed
// validation. The wrapped message names the first offending field.
var ErrInvalidRequest = errors.New("invalid generation request")

// Completer is the single upstream boundary of the generation pipeline.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// GenerationService orchestrates the question generation pipeline:
// validate → prompt → complete → parse, with deterministic synthesis as
// the recovery path for unparsable completions. The only caller-visible
// failures are invalid input and upstream unreachability; malformed
// model output is silently downgraded to synthetic content.
type GenerationService struct {
	completer Completer
	maxCount  int
	log       zerolog.Logger
}

// NewGenerationService creates a GenerationService. maxCount caps the
// question count of a single request.
func NewGenerationService(completer Completer, maxCount int, log zerolog.Logger) *GenerationService {
	if maxCount <= 0 {
		maxCount = 50
	}
	return &GenerationService{
		completer: completer,
		maxCount:  maxCount,
		log:       log.With().Str("component", "generation_service").Logger(),
	}
}

// Generate turns a raw generation request into exactly req.Count
// schema-valid questions.
func (s *GenerationService) Generate(ctx context.Context, raw model.GenerateQuestionsRequest) ([]model.Question, error) {
	req, err := s.normalize(raw)
	if err != nil {
		return nil, err
	}

	rawText, err := s.completer.Complete(ctx, llm.BuildSystemPrompt(req), llm.BuildUserPrompt(req))
	if err != nil {
		// No text exists to recover from, so no fallback here.
		return nil, err
	}

	questions, err := llm.ParseQuestions(rawText, req.QuestionType, req.Difficulty)
	if err != nil {
		s.log.Warn().
			Str("subject", req.Subject).
			Int("count", req.Count).
			Msg("Completion output unparsable, serving synthesized questions")
		return llm.Synthesize(req.Subject, req.Difficulty, req.QuestionType, req.Count), nil
	}

	return s.fitToCount(questions, req), nil
}

// normalize implements the generation request validator: trims and
// lower-cases inputs, checks enums and bounds, and names the first
// offending field in the returned error. Counts above the configured
// cap are rejected rather than clamped so the caller is told.
func (s *GenerationService) normalize(raw model.GenerateQuestionsRequest) (model.GenerationRequest, error) {
	subject := strings.TrimSpace(raw.Subject)
	if subject == "" {
		return model.GenerationRequest{}, fmt.Errorf("%w: subject must not be empty", ErrInvalidRequest)
	}

	difficulty := model.Difficulty(strings.ToLower(strings.TrimSpace(raw.Difficulty)))
	switch difficulty {
	case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
	default:
		return model.GenerationRequest{}, fmt.Errorf("%w: difficulty must be one of easy, medium, hard", ErrInvalidRequest)
	}

	qType := model.QuestionType(strings.ToLower(strings.TrimSpace(raw.QuestionType)))
	switch qType {
	case model.QuestionTypeMultipleChoice, model.QuestionTypeDescriptive:
	default:
		return model.GenerationRequest{}, fmt.Errorf("%w: questionType must be multiple-choice or descriptive", ErrInvalidRequest)
	}

	if raw.Count < 1 {
		return model.GenerationRequest{}, fmt.Errorf("%w: count must be a positive integer", ErrInvalidRequest)
	}
	if raw.Count > s.maxCount {
		return model.GenerationRequest{}, fmt.Errorf("%w: count must not exceed %d", ErrInvalidRequest, s.maxCount)
	}

	return model.GenerationRequest{
		Subject:      subject,
		Difficulty:   difficulty,
		QuestionType: qType,
		Count:        raw.Count,
	}, nil
}

// fitToCount makes a salvaged list exactly the requested length:
// extras are trimmed, a shortfall is topped up with synthesized
// placeholders continuing the 1-based index.
func (s *GenerationService) fitToCount(questions []model.Question, req model.GenerationRequest) []model.Question {
	switch {
	case len(questions) == req.Count:
		return questions
	case len(questions) > req.Count:
		s.log.Warn().
			Int("parsed", len(questions)).
			Int("requested", req.Count).
			Msg("Completion returned extra questions, trimming")
		return questions[:req.Count]
	default:
		s.log.Warn().
			Int("parsed", len(questions)).
			Int("requested", req.Count).
			Msg("Completion returned too few questions, topping up with synthesized ones")
		filler := llm.Synthesize(req.Subject, req.Difficulty, req.QuestionType, req.Count)
		return append(questions, filler[len(questions):]...)
	}
}
