package model

// GenerateQuestionsRequest is the raw payload of the generation
// boundary. Field names are part of the stable external contract.
type GenerateQuestionsRequest struct {
	Subject      string `json:"subject" binding:"required"`
	Difficulty   string `json:"difficulty" binding:"required,oneof=easy medium hard"`
	QuestionType string `json:"questionType" binding:"required,oneof=multiple-choice descriptive"`
	Count        int    `json:"count" binding:"required,min=1"`
}

// GenerationRequest is the normalized form produced by request
// validation. It is constructed per call and never persisted.
type GenerationRequest struct {
	Subject      string
	Difficulty   Difficulty
	QuestionType QuestionType
	Count        int
}
