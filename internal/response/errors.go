package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Generation ────────────────────────────────────────────────────
	ErrGenerationFailed ErrCode = "GENERATION_FAILED"

	// ─── Exam / session ────────────────────────────────────────────────
	ErrNoQuestions         ErrCode = "NO_QUESTIONS"
	ErrExamNotAvailable    ErrCode = "EXAM_NOT_AVAILABLE"
	ErrInvalidSessionState ErrCode = "INVALID_SESSION_STATE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
// Messages stay generic on purpose: upstream diagnostics are logged,
// never surfaced to the caller.
func GetMessage(code ErrCode) string {
	switch code {
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."
	case ErrNotFound:
		return "Resource not found."
	case ErrGenerationFailed:
		return "Failed to generate questions."
	case ErrNoQuestions:
		return "An exam needs at least one question."
	case ErrExamNotAvailable:
		return "This exam is not currently available."
	case ErrInvalidSessionState:
		return "This exam session does not allow that action."
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
