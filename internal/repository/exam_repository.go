package repository

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/aiexam/aiexam-backend/internal/model"
)

// Store errors.
var (
	ErrExamNotFound    = errors.New("exam not found")
	ErrSessionNotFound = errors.New("exam session not found")
	ErrSessionExists   = errors.New("session already exists for this exam and student")
)

// ExamRepository is an in-memory exam store. Exams, sessions and
// results live only in process memory; durable storage is an external
// collaborator outside this service's boundary.
type ExamRepository struct {
	mu    sync.RWMutex
	exams map[uuid.UUID]*model.Exam
	order []uuid.UUID
}

// NewExamRepository creates an empty ExamRepository.
func NewExamRepository() *ExamRepository {
	return &ExamRepository{
		exams: make(map[uuid.UUID]*model.Exam),
	}
}

// Create stores a new exam and records its position in creation order.
func (r *ExamRepository) Create(exam *model.Exam) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exams[exam.ID] = exam
	r.order = append(r.order, exam.ID)
}

// GetByID retrieves an exam. Callers treat the returned exam as
// read-only; only UpdateStatus mutates it, under the store lock.
func (r *ExamRepository) GetByID(id uuid.UUID) (*model.Exam, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exam, ok := r.exams[id]
	if !ok {
		return nil, ErrExamNotFound
	}
	return exam, nil
}

// List returns all exams in creation order.
func (r *ExamRepository) List() []model.Exam {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exams := make([]model.Exam, 0, len(r.order))
	for _, id := range r.order {
		exams = append(exams, *r.exams[id])
	}
	return exams
}

// UpdateStatus transitions an exam to the given status.
func (r *ExamRepository) UpdateStatus(id uuid.UUID, status model.ExamStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	exam, ok := r.exams[id]
	if !ok {
		return ErrExamNotFound
	}
	exam.Status = status
	return nil
}
