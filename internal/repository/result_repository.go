package repository

import (
	"sync"

	"github.com/aiexam/aiexam-backend/internal/model"
)

// ResultRepository is an in-memory store of completed exam results.
// Results are immutable once added.
type ResultRepository struct {
	mu      sync.RWMutex
	results []model.ExamResult
}

// NewResultRepository creates an empty ResultRepository.
func NewResultRepository() *ResultRepository {
	return &ResultRepository{}
}

// Add appends a result in completion order.
func (r *ResultRepository) Add(result model.ExamResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

// ListByStudent returns the student's results in completion order.
func (r *ResultRepository) ListByStudent(studentID string) []model.ExamResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	results := make([]model.ExamResult, 0)
	for _, res := range r.results {
		if res.StudentID == studentID {
			results = append(results, res)
		}
	}
	return results
}
