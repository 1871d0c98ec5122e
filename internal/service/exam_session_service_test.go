package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aiexam/aiexam-backend/internal/model"
	"github.com/aiexam/aiexam-backend/internal/repository"
)

func newSessionFixture(t *testing.T) (*ExamSessionService, *ExamService) {
	t.Helper()
	examSvc := newExamService()
	svc := NewExamSessionService(
		repository.NewExamSessionRepository(),
		repository.NewResultRepository(),
		examSvc,
		zerolog.Nop(),
	)
	return svc, examSvc
}

// answerKeyExam builds a 4-question multiple-choice exam whose correct
// answers are A, B, C, D in order.
func answerKeyExam(t *testing.T, examSvc *ExamService, durationMinutes int) *model.Exam {
	t.Helper()
	questions := make([]model.Question, 0, 4)
	for _, letter := range []string{"A", "B", "C", "D"} {
		questions = append(questions, model.Question{
			Text:          "Correct answer is " + letter + "?",
			Type:          model.QuestionTypeMultipleChoice,
			Difficulty:    model.DifficultyEasy,
			Options:       []string{"One", "Two", "Three", "Four"},
			CorrectAnswer: letter,
		})
	}
	exam, err := examSvc.Create(context.Background(), model.CreateExamRequest{
		Title:           "Scoring exam",
		Subject:         "Go",
		DurationMinutes: durationMinutes,
		Questions:       questions,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return exam
}

func TestSessionStart(t *testing.T) {
	svc, examSvc := newSessionFixture(t)
	exam := answerKeyExam(t, examSvc, 30)

	session, err := svc.Start(context.Background(), exam.ID, "student-1")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if session.Status != model.SessionStatusInProgress {
		t.Errorf("status = %q, want in-progress", session.Status)
	}
	if session.TimeRemainingSeconds != 30*60 {
		t.Errorf("time remaining = %d, want %d", session.TimeRemainingSeconds, 30*60)
	}
	if len(session.Answers) != 0 {
		t.Errorf("answers = %v, want empty", session.Answers)
	}
	if session.StartTime.IsZero() {
		t.Error("start time not set")
	}

	// First session moves the exam to active.
	got, _ := examSvc.GetByID(context.Background(), exam.ID)
	if got.Status != model.ExamStatusActive {
		t.Errorf("exam status = %q, want active", got.Status)
	}
}

func TestSessionStartIsIdempotentPerStudent(t *testing.T) {
	svc, examSvc := newSessionFixture(t)
	exam := answerKeyExam(t, examSvc, 30)

	first, err := svc.Start(context.Background(), exam.ID, "student-1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Start(context.Background(), exam.ID, "student-1")
	if err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("second Start() opened a new session: %s vs %s", first.ID, second.ID)
	}

	other, err := svc.Start(context.Background(), exam.ID, "student-2")
	if err != nil {
		t.Fatalf("Start() for second student error = %v", err)
	}
	if other.ID == first.ID {
		t.Error("students share a session")
	}
}

func TestSessionStartGuards(t *testing.T) {
	svc, examSvc := newSessionFixture(t)

	if _, err := svc.Start(context.Background(), uuid.New(), "student-1"); !errors.Is(err, repository.ErrExamNotFound) {
		t.Errorf("Start(unknown exam) error = %v, want ErrExamNotFound", err)
	}

	closed := answerKeyExam(t, examSvc, 30)
	if err := examSvc.Complete(context.Background(), closed.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Start(context.Background(), closed.ID, "student-1"); !errors.Is(err, ErrExamNotAvailable) {
		t.Errorf("Start(completed exam) error = %v, want ErrExamNotAvailable", err)
	}

	// A finished attempt cannot be reopened.
	exam := answerKeyExam(t, examSvc, 30)
	session, err := svc.Start(context.Background(), exam.ID, "student-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Complete(context.Background(), session.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Start(context.Background(), exam.ID, "student-1"); !errors.Is(err, ErrInvalidSessionState) {
		t.Errorf("Start(finished attempt) error = %v, want ErrInvalidSessionState", err)
	}
}

func TestSessionRecordAnswer(t *testing.T) {
	svc, examSvc := newSessionFixture(t)
	exam := answerKeyExam(t, examSvc, 30)
	session, err := svc.Start(context.Background(), exam.ID, "student-1")
	if err != nil {
		t.Fatal(err)
	}

	got, err := svc.RecordAnswer(context.Background(), session.ID, 0, "A")
	if err != nil {
		t.Fatalf("RecordAnswer() error = %v", err)
	}
	if got.Answers[0] != "A" {
		t.Errorf("answers[0] = %q, want A", got.Answers[0])
	}

	// Later answers overwrite earlier ones.
	got, err = svc.RecordAnswer(context.Background(), session.ID, 0, "C")
	if err != nil {
		t.Fatalf("RecordAnswer() error = %v", err)
	}
	if got.Answers[0] != "C" {
		t.Errorf("answers[0] = %q, want C", got.Answers[0])
	}
}

func TestSessionRecordAnswerGuards(t *testing.T) {
	svc, examSvc := newSessionFixture(t)
	exam := answerKeyExam(t, examSvc, 30)
	session, err := svc.Start(context.Background(), exam.ID, "student-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RecordAnswer(context.Background(), session.ID, 1, "B"); err != nil {
		t.Fatal(err)
	}

	for _, index := range []int{-1, len(exam.Questions)} {
		if _, err := svc.RecordAnswer(context.Background(), session.ID, index, "A"); !errors.Is(err, ErrInvalidSessionState) {
			t.Errorf("RecordAnswer(index=%d) error = %v, want ErrInvalidSessionState", index, err)
		}
	}

	if _, err := svc.Complete(context.Background(), session.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RecordAnswer(context.Background(), session.ID, 0, "A"); !errors.Is(err, ErrInvalidSessionState) {
		t.Errorf("RecordAnswer(completed session) error = %v, want ErrInvalidSessionState", err)
	}

	// Rejected writes leave the recorded answers untouched.
	got, err := svc.Get(context.Background(), session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Answers) != 1 || got.Answers[1] != "B" {
		t.Errorf("answers = %v, want only {1: B}", got.Answers)
	}
}

func TestSessionScore(t *testing.T) {
	svc, _ := newSessionFixture(t)

	exam := &model.Exam{Questions: []model.Question{
		{CorrectAnswer: "A"},
		{CorrectAnswer: "B"},
		{CorrectAnswer: "C"},
		{CorrectAnswer: "D"},
	}}

	tests := []struct {
		name    string
		answers map[int]string
		want    int
	}{
		{"three of four", map[int]string{0: "A", 1: "B", 2: "X", 3: "D"}, 75},
		{"all correct", map[int]string{0: "A", 1: "B", 2: "C", 3: "D"}, 100},
		{"none answered", map[int]string{}, 0},
		{"one of four rounds to 25", map[int]string{0: "A"}, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &model.ExamSession{Answers: tt.answers}
			if got := svc.Score(session, exam); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSessionScoreRounding(t *testing.T) {
	svc, _ := newSessionFixture(t)
	exam := &model.Exam{Questions: []model.Question{
		{CorrectAnswer: "A"},
		{CorrectAnswer: "B"},
		{CorrectAnswer: "C"},
	}}
	session := &model.ExamSession{Answers: map[int]string{0: "A"}}
	// 100/3 rounds to 33, 200/3 rounds to 67.
	if got := svc.Score(session, exam); got != 33 {
		t.Errorf("Score() = %d, want 33", got)
	}
	session.Answers[1] = "B"
	if got := svc.Score(session, exam); got != 67 {
		t.Errorf("Score() = %d, want 67", got)
	}
}

func TestSessionScoreEmptyExam(t *testing.T) {
	svc, _ := newSessionFixture(t)
	session := &model.ExamSession{Answers: map[int]string{}}
	if got := svc.Score(session, &model.Exam{}); got != 0 {
		t.Errorf("Score() = %d, want 0", got)
	}
}

func TestSessionScoreDescriptiveNeverMatches(t *testing.T) {
	svc, _ := newSessionFixture(t)
	exam := &model.Exam{Questions: []model.Question{
		{Type: model.QuestionTypeDescriptive, CorrectAnswer: model.DescriptiveAnswer},
	}}
	session := &model.ExamSession{Answers: map[int]string{0: "A thoughtful free-text answer."}}
	if got := svc.Score(session, exam); got != 0 {
		t.Errorf("Score() = %d, want 0", got)
	}
}

func TestSessionComplete(t *testing.T) {
	svc, examSvc := newSessionFixture(t)
	exam := answerKeyExam(t, examSvc, 30)
	session, err := svc.Start(context.Background(), exam.ID, "student-1")
	if err != nil {
		t.Fatal(err)
	}
	for i, answer := range map[int]string{0: "A", 1: "B", 2: "X", 3: "D"} {
		if _, err := svc.RecordAnswer(context.Background(), session.ID, i, answer); err != nil {
			t.Fatal(err)
		}
	}

	result, err := svc.Complete(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if result.Score != 75 {
		t.Errorf("score = %d, want 75", result.Score)
	}
	if result.TotalQuestions != 4 {
		t.Errorf("total_questions = %d, want 4", result.TotalQuestions)
	}
	if result.StudentID != "student-1" || result.ExamID != exam.ID {
		t.Errorf("result identity = %+v", result)
	}

	got, err := svc.Get(context.Background(), session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != model.SessionStatusCompleted {
		t.Errorf("session status = %q, want completed", got.Status)
	}

	// Double submission is rejected and records no second result.
	if _, err := svc.Complete(context.Background(), session.ID); !errors.Is(err, ErrInvalidSessionState) {
		t.Errorf("second Complete() error = %v, want ErrInvalidSessionState", err)
	}
	results := svc.ResultsByStudent(context.Background(), "student-1")
	if len(results) != 1 {
		t.Errorf("stored %d results, want 1", len(results))
	}
}

func TestSessionTickCountdownAndExpiry(t *testing.T) {
	svc, examSvc := newSessionFixture(t)
	exam := answerKeyExam(t, examSvc, 1)
	session, err := svc.Start(context.Background(), exam.ID, "student-1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RecordAnswer(context.Background(), session.ID, 0, "A"); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 59; i++ {
		expired, err := svc.Tick(context.Background(), session.ID)
		if err != nil {
			t.Fatalf("Tick() error = %v", err)
		}
		if expired {
			t.Fatalf("Tick() expired after %d seconds", i+1)
		}
	}
	got, _ := svc.Get(context.Background(), session.ID)
	if got.TimeRemainingSeconds != 1 {
		t.Fatalf("time remaining = %d, want 1", got.TimeRemainingSeconds)
	}

	expired, err := svc.Tick(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("final Tick() error = %v", err)
	}
	if !expired {
		t.Fatal("final Tick() did not expire the session")
	}

	got, _ = svc.Get(context.Background(), session.ID)
	if got.Status != model.SessionStatusCompleted {
		t.Errorf("session status = %q, want completed after expiry", got.Status)
	}
	results := svc.ResultsByStudent(context.Background(), "student-1")
	if len(results) != 1 || results[0].Score != 25 {
		t.Errorf("auto-submit results = %+v, want one result scoring 25", results)
	}

	if _, err := svc.Tick(context.Background(), session.ID); !errors.Is(err, ErrInvalidSessionState) {
		t.Errorf("Tick(completed session) error = %v, want ErrInvalidSessionState", err)
	}
}

func TestSessionInProgressIDs(t *testing.T) {
	svc, examSvc := newSessionFixture(t)
	exam := answerKeyExam(t, examSvc, 30)
	session, err := svc.Start(context.Background(), exam.ID, "student-1")
	if err != nil {
		t.Fatal(err)
	}

	ids := svc.InProgressSessionIDs(context.Background())
	if len(ids) != 1 || ids[0] != session.ID {
		t.Errorf("InProgressSessionIDs() = %v, want [%s]", ids, session.ID)
	}

	if _, err := svc.Complete(context.Background(), session.ID); err != nil {
		t.Fatal(err)
	}
	if ids := svc.InProgressSessionIDs(context.Background()); len(ids) != 0 {
		t.Errorf("InProgressSessionIDs() after completion = %v, want empty", ids)
	}
}
