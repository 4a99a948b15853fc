package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/surveyforge/survey-service/internal/services"
	"github.com/surveyforge/survey-service/internal/utils"
)

type HandlerManager struct {
	surveyHandler  *SurveyHandler
	attemptHandler *AttemptHandler
}

func NewHandlerManager(
	surveyService services.SurveyService,
	exportService services.ExportService,
	attemptManager services.AttemptManager,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		surveyHandler:  NewSurveyHandler(surveyService, exportService, logger),
		attemptHandler: NewAttemptHandler(attemptManager, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "survey-service",
		})
	})

	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware())
	{
		surveys := v1.Group("/surveys")
		{
			surveys.GET("/:identifier", hm.surveyHandler.GetSurvey)
			surveys.GET("/:identifier/export", hm.surveyHandler.ExportResults)
		}

		attempts := v1.Group("/attempts")
		{
			attempts.POST("", hm.attemptHandler.CreateAttempt)
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
			attempts.PUT("/:id/section", hm.attemptHandler.SetSection)
			attempts.POST("/:id/answer", hm.attemptHandler.SubmitAnswer)
			attempts.POST("/:id/skip", hm.attemptHandler.SkipQuestion)
			attempts.POST("/:id/previous", hm.attemptHandler.PreviousQuestion)
			attempts.POST("/:id/confirm", hm.attemptHandler.ConfirmAttempt)

			attempts.GET("/:id/progress", hm.attemptHandler.GetProgress)
			attempts.GET("/:id/scores", hm.attemptHandler.GetScoreBySection)
			attempts.GET("/:id/position", hm.attemptHandler.GetPosition)
			attempts.GET("/:id/answers/correct", hm.attemptHandler.GetCorrectAnswers)
			attempts.GET("/:id/answers/incorrect", hm.attemptHandler.GetIncorrectAnswers)
		}
	}
}
