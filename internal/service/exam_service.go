package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aiexam/aiexam-backend/internal/model"
	"github.com/aiexam/aiexam-backend/internal/repository"
)

// Domain errors.
var (
	ErrNoQuestions     = errors.New("exam must contain at least one question")
	ErrInvalidQuestion = errors.New("question violates the question schema")
)

// ExamService owns exam creation, listing, and status transitions.
// State transitions are asserted here, never inferred elsewhere.
type ExamService struct {
	examRepo *repository.ExamRepository
	log      zerolog.Logger
}

// NewExamService creates a new ExamService.
func NewExamService(examRepo *repository.ExamRepository, log zerolog.Logger) *ExamService {
	return &ExamService{
		examRepo: examRepo,
		log:      log.With().Str("component", "exam_service").Logger(),
	}
}

// Create validates and publishes a new exam in one step. Drafting
// happens on the faculty side, so an exam enters the store already
// published. An empty question list or a schema-invalid question is
// rejected and nothing is stored.
func (s *ExamService) Create(ctx context.Context, req model.CreateExamRequest) (*model.Exam, error) {
	if len(req.Questions) == 0 {
		return nil, ErrNoQuestions
	}
	for i := range req.Questions {
		if err := req.Questions[i].Validate(); err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrInvalidQuestion, i+1, err)
		}
	}

	assigned := req.AssignedStudents
	if assigned == nil {
		assigned = []string{}
	}

	exam := &model.Exam{
		ID:               uuid.New(),
		Title:            req.Title,
		Subject:          req.Subject,
		DurationMinutes:  req.DurationMinutes,
		Questions:        req.Questions,
		AssignedStudents: assigned,
		Status:           model.ExamStatusPublished,
		CreatedAt:        time.Now().UTC(),
	}
	s.examRepo.Create(exam)

	s.log.Info().
		Str("exam_id", exam.ID.String()).
		Str("subject", exam.Subject).
		Int("questions", len(exam.Questions)).
		Msg("Exam published")
	return exam, nil
}

// List returns all exams in creation order.
func (s *ExamService) List(ctx context.Context) []model.Exam {
	return s.examRepo.List()
}

// GetByID retrieves an exam by its UUID.
func (s *ExamService) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	return s.examRepo.GetByID(id)
}

// MarkActive transitions a published exam to active when its first
// session starts. Already-active exams are left alone.
func (s *ExamService) MarkActive(ctx context.Context, id uuid.UUID) error {
	exam, err := s.examRepo.GetByID(id)
	if err != nil {
		return err
	}
	if exam.Status != model.ExamStatusPublished {
		return nil
	}
	if err := s.examRepo.UpdateStatus(id, model.ExamStatusActive); err != nil {
		return err
	}
	s.log.Info().Str("exam_id", id.String()).Msg("Exam active")
	return nil
}

// Complete administratively closes an exam from any state.
func (s *ExamService) Complete(ctx context.Context, id uuid.UUID) error {
	if err := s.examRepo.UpdateStatus(id, model.ExamStatusCompleted); err != nil {
		return err
	}
	s.log.Info().Str("exam_id", id.String()).Msg("Exam completed")
	return nil
}
