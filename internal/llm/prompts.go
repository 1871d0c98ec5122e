package llm

import (
	"fmt"
	"strings"

	"github.com/aiexam/aiexam-backend/internal/model"
)

// BuildSystemPrompt builds the system prompt for question generation.
// It embeds subject, difficulty, type, count and the exact JSON array
// shape the completion service is asked to emit.
func BuildSystemPrompt(req model.GenerationRequest) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are an expert question generator. Generate exactly %d %s questions about %s at %s difficulty level.\n\n",
		req.Count, req.QuestionType, req.Subject, req.Difficulty)
	sb.WriteString("For multiple-choice questions, provide exactly 4 options (A, B, C, D) with one correct answer.\n")
	sb.WriteString("For descriptive questions, provide the question and expected key points for answers.\n\n")
	sb.WriteString("Return ONLY a valid JSON array in this exact format:\n")
	fmt.Fprintf(&sb, `[
  {
    "question": "Question text here?",
    "type": %q,
    "difficulty": %q,
    "options": ["Option A", "Option B", "Option C", "Option D"],
    "correctAnswer": "A",
    "explanation": "Brief explanation of the correct answer"
  }
]`, req.QuestionType, req.Difficulty)
	sb.WriteString("\n\nFor descriptive questions, use empty array for options and \"N/A\" for correctAnswer.")

	return sb.String()
}

// BuildUserPrompt builds the user prompt for question generation.
func BuildUserPrompt(req model.GenerationRequest) string {
	return fmt.Sprintf("Generate %d %s questions about %s at %s difficulty level.",
		req.Count, req.QuestionType, req.Subject, req.Difficulty)
}
