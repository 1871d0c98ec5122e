package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus enumerates exam session states.
type SessionStatus string

const (
	SessionStatusInProgress SessionStatus = "in-progress"
	SessionStatusCompleted  SessionStatus = "completed"
	SessionStatusSubmitted  SessionStatus = "submitted"
)

// ExamSession represents one student's timed attempt at one exam.
// Answer keys are zero-based question indexes into the exam's question
// list. TimeRemainingSeconds only decreases while the session is
// in progress.
type ExamSession struct {
	ID                   uuid.UUID      `json:"id"`
	ExamID               uuid.UUID      `json:"exam_id"`
	StudentID            string         `json:"student_id"`
	StartTime            time.Time      `json:"start_time"`
	Answers              map[int]string `json:"answers"`
	TimeRemainingSeconds int            `json:"time_remaining_seconds"`
	Status               SessionStatus  `json:"status"`
}

// ExamResult is the immutable record derived from a completed session.
type ExamResult struct {
	ExamID         uuid.UUID `json:"exam_id"`
	Title          string    `json:"title"`
	Subject        string    `json:"subject"`
	StudentID      string    `json:"student_id"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	CompletedAt    time.Time `json:"completed_at"`
}

// StartExamRequest is the payload for a student starting an exam.
type StartExamRequest struct {
	StudentID string `json:"student_id" binding:"required,min=1,max=64"`
}

// RecordAnswerRequest is the payload for answering a question.
// QuestionIndex is a pointer so index 0 survives required-field binding.
type RecordAnswerRequest struct {
	QuestionIndex *int   `json:"question_index" binding:"required,min=0"`
	Answer        string `json:"answer" binding:"required"`
}
