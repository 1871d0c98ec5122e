package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer Action = "answer"
	ActionSubmit Action = "submit"
	ActionPing   Action = "ping"
)

// RequestPayload carries any client action; unused fields stay empty.
type RequestPayload struct {
	Action        Action `json:"action"`
	QuestionIndex *int   `json:"question_index,omitempty"`
	Answer        string `json:"answer,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventTime    Event = "time"
	EventSuccess Event = "success"
	EventGraded  Event = "graded"
	EventError   Event = "error"
	EventPong    Event = "pong"
)

// TimeResponse is pushed once per second while the session runs.
type TimeResponse struct {
	Event            Event `json:"event"`
	RemainingSeconds int   `json:"remaining_seconds"`
}

// AnswerResponse acknowledges a recorded answer.
type AnswerResponse struct {
	Event  Event  `json:"event"`
	Status string `json:"status"`
}

// GradedResponse reports the final score after submission or timer
// expiry.
type GradedResponse struct {
	Event          Event  `json:"event"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
	CompletedAt    string `json:"completed_at"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
