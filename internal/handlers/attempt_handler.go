package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/surveyforge/survey-service/internal/models"
	"github.com/surveyforge/survey-service/internal/services"
	"github.com/surveyforge/survey-service/internal/utils"
)

type AttemptHandler struct {
	BaseHandler
	attemptManager services.AttemptManager
}

func NewAttemptHandler(attemptManager services.AttemptManager, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler:    NewBaseHandler(logger),
		attemptManager: attemptManager,
	}
}

// ===== REQUEST STRUCTURES =====

type CreateAttemptRequest struct {
	SurveyIdentifier string `json:"survey_identifier" binding:"required"`
}

type SetSectionRequest struct {
	SectionID uint `json:"section_id" binding:"required"`
}

// ===== WORKFLOW ENDPOINTS =====

// CreateAttempt starts a new attempt against the active survey for the given
// identifier. Any in-progress attempt the participant still holds is
// cancelled first.
func (h *AttemptHandler) CreateAttempt(c *gin.Context) {
	participant, ok := h.currentParticipant(c)
	if !ok {
		return
	}

	var req CreateAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	attempt, err := h.attemptManager.Create(c.Request.Context(), participant, req.SurveyIdentifier)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, attempt)
}

func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	participant, ok := h.currentParticipant(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	attempt, err := h.attemptManager.GetByID(c.Request.Context(), participant, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

func (h *AttemptHandler) SetSection(c *gin.Context) {
	participant, ok := h.currentParticipant(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req SetSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	attempt, err := h.attemptManager.SetSection(c.Request.Context(), participant, id, req.SectionID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

func (h *AttemptHandler) SubmitAnswer(c *gin.Context) {
	participant, ok := h.currentParticipant(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	attempt, err := h.attemptManager.SubmitAnswer(c.Request.Context(), participant, id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

func (h *AttemptHandler) SkipQuestion(c *gin.Context) {
	h.runTransition(c, h.attemptManager.SkipQuestion)
}

func (h *AttemptHandler) PreviousQuestion(c *gin.Context) {
	h.runTransition(c, h.attemptManager.PreviousQuestion)
}

func (h *AttemptHandler) ConfirmAttempt(c *gin.Context) {
	h.runTransition(c, h.attemptManager.Confirm)
}

// ===== READ-ONLY ENDPOINTS =====

func (h *AttemptHandler) GetProgress(c *gin.Context) {
	participant, ok := h.currentParticipant(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	progress, err := h.attemptManager.Progress(c.Request.Context(), participant, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": progress})
}

func (h *AttemptHandler) GetScoreBySection(c *gin.Context) {
	participant, ok := h.currentParticipant(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	scores, err := h.attemptManager.ScoreBySection(c.Request.Context(), participant, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sections": scores})
}

func (h *AttemptHandler) GetPosition(c *gin.Context) {
	participant, ok := h.currentParticipant(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	first, err := h.attemptManager.IsFirstQuestion(c.Request.Context(), participant, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	last, err := h.attemptManager.IsLastQuestion(c.Request.Context(), participant, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"is_first_question": first,
		"is_last_question":  last,
	})
}

func (h *AttemptHandler) GetCorrectAnswers(c *gin.Context) {
	h.listAnswers(c, h.attemptManager.CorrectAnswers)
}

func (h *AttemptHandler) GetIncorrectAnswers(c *gin.Context) {
	h.listAnswers(c, h.attemptManager.IncorrectAnswers)
}

// ===== HELPERS =====

type transitionFunc = func(ctx context.Context, participant models.Participant, attemptID uint) (*models.Attempt, error)

func (h *AttemptHandler) runTransition(c *gin.Context, transition transitionFunc) {
	participant, ok := h.currentParticipant(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	attempt, err := transition(c.Request.Context(), participant, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

type answersFunc = func(ctx context.Context, participant models.Participant, attemptID uint) ([]*models.Answer, error)

func (h *AttemptHandler) listAnswers(c *gin.Context, list answersFunc) {
	participant, ok := h.currentParticipant(c)
	if !ok {
		return
	}
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	answers, err := list(c.Request.Context(), participant, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"answers": answers})
}

func (h *AttemptHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var accessError *services.AccessError
	if errors.As(err, &accessError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied to attempt",
		})
		return
	}

	switch {
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Not found",
		})
	case errors.Is(err, services.ErrAttemptLimitExceeded):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Maximum attempts exceeded for this survey",
		})
	case errors.Is(err, services.ErrAttemptNotActive):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Attempt is not in progress",
		})
	case errors.Is(err, services.ErrQuestionMismatch):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Submitted question does not match the current position",
		})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request",
			Details: err.Error(),
		})
	default:
		h.LogError(c, err, "Attempt request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
