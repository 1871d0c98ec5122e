package model

import (
	"time"

	"github.com/google/uuid"
)

// ExamStatus enumerates the possible states of an exam.
type ExamStatus string

const (
	ExamStatusDraft     ExamStatus = "draft"
	ExamStatusPublished ExamStatus = "published"
	ExamStatusActive    ExamStatus = "active"
	ExamStatusCompleted ExamStatus = "completed"
)

// Exam represents an exam entity. It is owned by the exam service for
// its whole life; sessions reference it but never mutate it.
type Exam struct {
	ID               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	Subject          string     `json:"subject"`
	DurationMinutes  int        `json:"duration_minutes"`
	Questions        []Question `json:"questions"`
	AssignedStudents []string   `json:"assigned_students"`
	Status           ExamStatus `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
}

// CreateExamRequest is the payload for creating a new exam. Faculty
// drafting happens client-side, so the exam arrives complete with its
// question list and is published on creation.
type CreateExamRequest struct {
	Title            string     `json:"title" binding:"required,min=3,max=255"`
	Subject          string     `json:"subject" binding:"required,min=1,max=255"`
	DurationMinutes  int        `json:"duration_minutes" binding:"required,min=1,max=480"`
	AssignedStudents []string   `json:"assigned_students" binding:"omitempty,dive,min=1,max=64"`
	Questions        []Question `json:"questions" binding:"required,min=1"`
}
