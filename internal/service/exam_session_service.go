package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aiexam/aiexam-backend/internal/model"
	"github.com/aiexam/aiexam-backend/internal/repository"
)

// Domain errors.
var (
	ErrInvalidSessionState = errors.New("session is not in the required state")
	ErrExamNotAvailable    = errors.New("exam is not open for sessions")
)

// ExamSessionService owns a student's timed attempt: start, answer
// recording, countdown, submission, and scoring. Timer progression is
// driven externally through Tick (see the session clock worker); the
// service itself only reacts to elapsed time reaching zero.
type ExamSessionService struct {
	sessionRepo *repository.ExamSessionRepository
	resultRepo  *repository.ResultRepository
	examService *ExamService
	log         zerolog.Logger
}

// NewExamSessionService creates a new ExamSessionService.
func NewExamSessionService(
	sessionRepo *repository.ExamSessionRepository,
	resultRepo *repository.ResultRepository,
	examService *ExamService,
	log zerolog.Logger,
) *ExamSessionService {
	return &ExamSessionService{
		sessionRepo: sessionRepo,
		resultRepo:  resultRepo,
		examService: examService,
		log:         log.With().Str("component", "session_service").Logger(),
	}
}

// Start opens a timed attempt for a student. Re-starting an exam the
// student already has an in-progress session for returns that session;
// a finished attempt cannot be reopened. The first session on an exam
// moves it from published to active.
func (s *ExamSessionService) Start(ctx context.Context, examID uuid.UUID, studentID string) (*model.ExamSession, error) {
	exam, err := s.examService.GetByID(ctx, examID)
	if err != nil {
		return nil, err
	}
	if exam.Status != model.ExamStatusPublished && exam.Status != model.ExamStatusActive {
		return nil, ErrExamNotAvailable
	}

	if existing, err := s.sessionRepo.GetByExamAndStudent(examID, studentID); err == nil {
		if existing.Status == model.SessionStatusInProgress {
			return existing, nil
		}
		return nil, ErrInvalidSessionState
	}

	session := &model.ExamSession{
		ID:                   uuid.New(),
		ExamID:               examID,
		StudentID:            studentID,
		StartTime:            time.Now().UTC(),
		Answers:              make(map[int]string),
		TimeRemainingSeconds: exam.DurationMinutes * 60,
		Status:               model.SessionStatusInProgress,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		if errors.Is(err, repository.ErrSessionExists) {
			// Lost a concurrent-start race; the winner's session is the
			// student's session.
			return s.sessionRepo.GetByExamAndStudent(examID, studentID)
		}
		return nil, fmt.Errorf("create session: %w", err)
	}

	if err := s.examService.MarkActive(ctx, examID); err != nil {
		s.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Failed to mark exam active")
	}

	s.log.Info().
		Str("session_id", session.ID.String()).
		Str("exam_id", examID.String()).
		Str("student_id", studentID).
		Msg("Session started")
	return s.sessionRepo.GetByID(session.ID)
}

// Get returns a snapshot of a session.
func (s *ExamSessionService) Get(ctx context.Context, sessionID uuid.UUID) (*model.ExamSession, error) {
	return s.sessionRepo.GetByID(sessionID)
}

// RecordAnswer stores the student's answer for a question index. The
// session must be in progress and the index inside the exam's question
// list; a later answer for the same index overwrites the earlier one.
func (s *ExamSessionService) RecordAnswer(ctx context.Context, sessionID uuid.UUID, questionIndex int, answer string) (*model.ExamSession, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	exam, err := s.examService.GetByID(ctx, session.ExamID)
	if err != nil {
		return nil, err
	}

	err = s.sessionRepo.Mutate(sessionID, func(live *model.ExamSession) error {
		if live.Status != model.SessionStatusInProgress {
			return ErrInvalidSessionState
		}
		if questionIndex < 0 || questionIndex >= len(exam.Questions) {
			return ErrInvalidSessionState
		}
		live.Answers[questionIndex] = answer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.sessionRepo.GetByID(sessionID)
}

// Score counts exact string matches between recorded answers and the
// exam's correct answers and returns round(100 * correct / total), or 0
// for an exam with no questions. Descriptive questions store "N/A" and
// so never match — they always count as incorrect here; automatic
// scoring has no free-text rubric.
func (s *ExamSessionService) Score(session *model.ExamSession, exam *model.Exam) int {
	total := len(exam.Questions)
	if total == 0 {
		return 0
	}
	correct := 0
	for i, q := range exam.Questions {
		if session.Answers[i] == q.CorrectAnswer {
			correct++
		}
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// Complete finishes an in-progress session: the score is computed, the
// session lands on completed, and the derived immutable result is
// stored and returned.
func (s *ExamSessionService) Complete(ctx context.Context, sessionID uuid.UUID) (*model.ExamResult, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return nil, err
	}
	exam, err := s.examService.GetByID(ctx, session.ExamID)
	if err != nil {
		return nil, err
	}

	var result model.ExamResult
	err = s.sessionRepo.Mutate(sessionID, func(live *model.ExamSession) error {
		if live.Status != model.SessionStatusInProgress {
			return ErrInvalidSessionState
		}
		result = model.ExamResult{
			ExamID:         exam.ID,
			Title:          exam.Title,
			Subject:        exam.Subject,
			StudentID:      live.StudentID,
			Score:          s.Score(live, exam),
			TotalQuestions: len(exam.Questions),
			CompletedAt:    time.Now().UTC(),
		}
		live.Status = model.SessionStatusCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.resultRepo.Add(result)
	s.log.Info().
		Str("session_id", sessionID.String()).
		Str("exam_id", exam.ID.String()).
		Int("score", result.Score).
		Msg("Session completed")
	return &result, nil
}

// Tick advances a session's countdown by one elapsed second and
// reports whether the timer reached zero, in which case the session is
// auto-submitted through the regular completion path.
func (s *ExamSessionService) Tick(ctx context.Context, sessionID uuid.UUID) (expired bool, err error) {
	err = s.sessionRepo.Mutate(sessionID, func(live *model.ExamSession) error {
		if live.Status != model.SessionStatusInProgress {
			return ErrInvalidSessionState
		}
		if live.TimeRemainingSeconds > 0 {
			live.TimeRemainingSeconds--
		}
		expired = live.TimeRemainingSeconds == 0
		return nil
	})
	if err != nil || !expired {
		return false, err
	}

	if _, err := s.Complete(ctx, sessionID); err != nil {
		// A concurrent explicit submit may have won; that is fine.
		if errors.Is(err, ErrInvalidSessionState) {
			return true, nil
		}
		return true, err
	}
	s.log.Info().Str("session_id", sessionID.String()).Msg("Session auto-submitted on timer expiry")
	return true, nil
}

// InProgressSessionIDs lists sessions the clock worker must tick.
func (s *ExamSessionService) InProgressSessionIDs(ctx context.Context) []uuid.UUID {
	return s.sessionRepo.ListInProgressIDs()
}

// ResultsByStudent returns the student's completed results in
// completion order.
func (s *ExamSessionService) ResultsByStudent(ctx context.Context, studentID string) []model.ExamResult {
	return s.resultRepo.ListByStudent(studentID)
}
