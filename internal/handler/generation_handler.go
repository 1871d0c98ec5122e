package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aiexam/aiexam-backend/internal/llm"
	"github.com/aiexam/aiexam-backend/internal/model"
	"github.com/aiexam/aiexam-backend/internal/response"
	"github.com/aiexam/aiexam-backend/internal/service"
	"github.com/aiexam/aiexam-backend/internal/validator"
)

// GenerationHandler handles the question generation boundary.
type GenerationHandler struct {
	generationService *service.GenerationService
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(generationService *service.GenerationService) *GenerationHandler {
	return &GenerationHandler{generationService: generationService}
}

// Generate godoc
// POST /api/v1/faculty/questions/generate
// Returns exactly `count` schema-valid questions. The caller cannot
// tell whether they came from the completion service or the fallback
// synthesizer.
func (h *GenerationHandler) Generate(c *gin.Context) {
	var req model.GenerateQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questions, err := h.generationService.Generate(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation,
				map[string]string{"detail": err.Error()})
		case errors.Is(err, llm.ErrUpstreamUnavailable):
			// Deliberately generic: upstream diagnostics are logged,
			// not surfaced.
			response.Fail(c, http.StatusBadGateway, response.ErrGenerationFailed)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": questions})
}
