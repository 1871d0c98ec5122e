package repository

import (
	"sync"

	"github.com/google/uuid"

	"github.com/aiexam/aiexam-backend/internal/model"
)

type examStudentKey struct {
	examID    uuid.UUID
	studentID string
}

// ExamSessionRepository is an in-memory session store. Each session is
// logically single-writer (its owning student's interaction stream),
// but the clock worker ticks sessions concurrently, so every mutation
// goes through Mutate under the store lock and reads return snapshots.
type ExamSessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*model.ExamSession
	byOwner  map[examStudentKey]uuid.UUID
}

// NewExamSessionRepository creates an empty ExamSessionRepository.
func NewExamSessionRepository() *ExamSessionRepository {
	return &ExamSessionRepository{
		sessions: make(map[uuid.UUID]*model.ExamSession),
		byOwner:  make(map[examStudentKey]uuid.UUID),
	}
}

// Create stores a new session. A student gets at most one session per
// exam; a duplicate create reports ErrSessionExists so the caller can
// resolve the concurrent-start race by fetching the winner.
func (r *ExamSessionRepository) Create(session *model.ExamSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := examStudentKey{examID: session.ExamID, studentID: session.StudentID}
	if _, ok := r.byOwner[key]; ok {
		return ErrSessionExists
	}
	r.sessions[session.ID] = session
	r.byOwner[key] = session.ID
	return nil
}

// GetByID returns a snapshot of the session.
func (r *ExamSessionRepository) GetByID(id uuid.UUID) (*model.ExamSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return snapshot(session), nil
}

// GetByExamAndStudent returns a snapshot of the student's session for
// the given exam.
func (r *ExamSessionRepository) GetByExamAndStudent(examID uuid.UUID, studentID string) (*model.ExamSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byOwner[examStudentKey{examID: examID, studentID: studentID}]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return snapshot(r.sessions[id]), nil
}

// Mutate runs fn against the live session under the write lock. If fn
// returns an error the session is left as fn left it, so fn must only
// mutate after its guards pass.
func (r *ExamSessionRepository) Mutate(id uuid.UUID, fn func(*model.ExamSession) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	return fn(session)
}

// ListInProgressIDs returns the IDs of all in-progress sessions, for
// the clock worker.
func (r *ExamSessionRepository) ListInProgressIDs() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []uuid.UUID
	for id, session := range r.sessions {
		if session.Status == model.SessionStatusInProgress {
			ids = append(ids, id)
		}
	}
	return ids
}

// snapshot deep-copies a session so readers never alias the answers map
// the write path mutates.
func snapshot(s *model.ExamSession) *model.ExamSession {
	cp := *s
	cp.Answers = make(map[int]string, len(s.Answers))
	for k, v := range s.Answers {
		cp.Answers[k] = v
	}
	return &cp
}
