package llm

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/aiexam/aiexam-backend/internal/model"
)

// ErrUnparsableResponse indicates no valid question list could be
// recovered from the completion output.
var ErrUnparsableResponse = errors.New("no parsable question list in completion output")

// questionRecord is the loose shape a completion is expected (but not
// guaranteed) to emit per question.
type questionRecord struct {
	Question      string   `json:"question"`
	Type          string   `json:"type"`
	Difficulty    string   `json:"difficulty"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// ParseQuestions recovers a validated question list from raw completion
// text. Recovery is staged, first success wins:
//
//  1. the substring between the first '[' and the last ']' is parsed as
//     a JSON array — this tolerates surrounding prose and markdown
//     fences;
//  2. the whole trimmed text is parsed directly.
//
// Each recovered record is then validated against the question schema;
// records that fail are dropped rather than aborting the batch. An
// empty surviving list is an ErrUnparsableResponse.
func ParseQuestions(raw string, qType model.QuestionType, difficulty model.Difficulty) ([]model.Question, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, ErrUnparsableResponse
	}

	records, ok := decodeRecords(extractArray(trimmed))
	if !ok {
		records, ok = decodeRecords(trimmed)
	}
	if !ok {
		return nil, ErrUnparsableResponse
	}

	questions := make([]model.Question, 0, len(records))
	for _, rec := range records {
		if q, ok := rec.normalize(qType, difficulty); ok {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		return nil, ErrUnparsableResponse
	}
	return questions, nil
}

// extractArray returns the substring spanning the first '[' through the
// last ']', or the input unchanged when no such pair exists.
func extractArray(text string) string {
	start := strings.Index(text, "[")
	if start < 0 {
		return text
	}
	end := strings.LastIndex(text, "]")
	if end <= start {
		return text
	}
	return text[start : end+1]
}

func decodeRecords(candidate string) ([]questionRecord, bool) {
	var records []questionRecord
	if err := json.Unmarshal([]byte(candidate), &records); err != nil {
		return nil, false
	}
	return records, true
}

// normalize coerces a raw record into a schema-valid question for the
// requested type and difficulty. Absent type/difficulty fields inherit
// the request's values; records that still violate the schema are
// rejected.
func (r questionRecord) normalize(qType model.QuestionType, difficulty model.Difficulty) (model.Question, bool) {
	q := model.Question{
		Text:          strings.TrimSpace(r.Question),
		Type:          model.QuestionType(strings.TrimSpace(r.Type)),
		Difficulty:    model.Difficulty(strings.ToLower(strings.TrimSpace(r.Difficulty))),
		Options:       r.Options,
		CorrectAnswer: strings.ToUpper(strings.TrimSpace(r.CorrectAnswer)),
		Explanation:   strings.TrimSpace(r.Explanation),
	}

	if q.Text == "" {
		return model.Question{}, false
	}
	if q.Type == "" {
		q.Type = qType
	}
	if q.Difficulty == "" {
		q.Difficulty = difficulty
	}
	if q.Type != qType || q.Difficulty != difficulty {
		return model.Question{}, false
	}

	switch q.Type {
	case model.QuestionTypeMultipleChoice:
		if len(q.Options) != model.OptionsPerQuestion {
			return model.Question{}, false
		}
		switch q.CorrectAnswer {
		case "A", "B", "C", "D":
		default:
			return model.Question{}, false
		}
	case model.QuestionTypeDescriptive:
		// Descriptive records are forced into shape instead of dropped.
		q.Options = []string{}
		q.CorrectAnswer = model.DescriptiveAnswer
	default:
		return model.Question{}, false
	}

	return q, true
}
