package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aiexam/aiexam-backend/internal/model"
	"github.com/aiexam/aiexam-backend/internal/repository"
	"github.com/aiexam/aiexam-backend/internal/response"
	"github.com/aiexam/aiexam-backend/internal/service"
	"github.com/aiexam/aiexam-backend/internal/validator"
)

// StudentPortalHandler handles student-facing endpoints (exam taking,
// results).
type StudentPortalHandler struct {
	sessionService *service.ExamSessionService
}

// NewStudentPortalHandler creates a new StudentPortalHandler.
func NewStudentPortalHandler(sessionService *service.ExamSessionService) *StudentPortalHandler {
	return &StudentPortalHandler{sessionService: sessionService}
}

// StartExam godoc
// POST /api/v1/student/exams/:exam_id/start
// Opens (or resumes) the student's timed attempt.
func (h *StudentPortalHandler) StartExam(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.StartExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.sessionService.Start(c.Request.Context(), examID, req.StudentID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrExamNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrExamNotAvailable):
			response.Fail(c, http.StatusBadRequest, response.ErrExamNotAvailable)
		case errors.Is(err, service.ErrInvalidSessionState):
			response.Fail(c, http.StatusConflict, response.ErrInvalidSessionState)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// GetSession godoc
// GET /api/v1/student/sessions/:session_id
// Returns the current session state, including remaining time.
func (h *StudentPortalHandler) GetSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	session, err := h.sessionService.Get(c.Request.Context(), sessionID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// RecordAnswer godoc
// PUT /api/v1/student/sessions/:session_id/answers
// Stores one answer; answering the same index again overwrites.
func (h *StudentPortalHandler) RecordAnswer(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.RecordAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.sessionService.RecordAnswer(c.Request.Context(), sessionID, *req.QuestionIndex, req.Answer)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSessionNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrInvalidSessionState):
			response.Fail(c, http.StatusConflict, response.ErrInvalidSessionState)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// SubmitExam godoc
// POST /api/v1/student/sessions/:session_id/submit
// Finishes the attempt and returns the scored result.
func (h *StudentPortalHandler) SubmitExam(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	result, err := h.sessionService.Complete(c.Request.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSessionNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrInvalidSessionState):
			response.Fail(c, http.StatusConflict, response.ErrInvalidSessionState)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// ListResults godoc
// GET /api/v1/student/results?student_id=...
// Returns the student's completed results in completion order.
func (h *StudentPortalHandler) ListResults(c *gin.Context) {
	studentID := c.Query("student_id")
	if studentID == "" {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
			map[string]string{"student_id": "student_id is required"})
		return
	}

	results := h.sessionService.ResultsByStudent(c.Request.Context(), studentID)
	response.Success(c, http.StatusOK, gin.H{"results": results})
}
