package model

import (
	"errors"
	"fmt"
)

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple-choice"
	QuestionTypeDescriptive    QuestionType = "descriptive"
)

// Difficulty enumerates question difficulty levels.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DescriptiveAnswer is the placeholder correct answer carried by
// descriptive questions. It never matches a typed student answer, so
// descriptive questions always count as incorrect under automatic
// scoring. This is intentional: no free-text grading rubric exists.
const DescriptiveAnswer = "N/A"

// OptionsPerQuestion is the fixed option count for multiple-choice.
const OptionsPerQuestion = 4

// Question is the shared contract for a single exam question,
// regardless of whether it was model-generated or synthesized.
// JSON field names follow the generation boundary contract.
type Question struct {
	Text          string       `json:"question"`
	Type          QuestionType `json:"type"`
	Difficulty    Difficulty   `json:"difficulty"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correctAnswer"`
	Explanation   string       `json:"explanation"`
}

// Validate checks the question schema invariant: multiple-choice means
// exactly four options and a correct answer in A-D; descriptive means
// no options and the "N/A" answer.
func (q *Question) Validate() error {
	if q.Text == "" {
		return errors.New("question text must not be empty")
	}
	switch q.Difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
	default:
		return fmt.Errorf("unknown difficulty %q", q.Difficulty)
	}
	switch q.Type {
	case QuestionTypeMultipleChoice:
		if len(q.Options) != OptionsPerQuestion {
			return fmt.Errorf("multiple-choice question needs exactly %d options, got %d", OptionsPerQuestion, len(q.Options))
		}
		switch q.CorrectAnswer {
		case "A", "B", "C", "D":
		default:
			return fmt.Errorf("multiple-choice correct answer must be A, B, C or D, got %q", q.CorrectAnswer)
		}
	case QuestionTypeDescriptive:
		if len(q.Options) != 0 {
			return errors.New("descriptive question must not carry options")
		}
		if q.CorrectAnswer != DescriptiveAnswer {
			return fmt.Errorf("descriptive correct answer must be %q, got %q", DescriptiveAnswer, q.CorrectAnswer)
		}
	default:
		return fmt.Errorf("unknown question type %q", q.Type)
	}
	return nil
}
