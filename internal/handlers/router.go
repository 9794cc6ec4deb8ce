package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/neurostat/exercise-service/internal/services"
	"github.com/neurostat/exercise-service/internal/utils"
)

type HandlerManager struct {
	exerciseHandler *ExerciseHandler
	contentHandler  *ContentHandler
}

func NewHandlerManager(
	exercises services.ExerciseService,
	grading services.GradingService,
	content services.ContentService,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		exerciseHandler: NewExerciseHandler(exercises, grading, logger),
		contentHandler:  NewContentHandler(content, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "exercise-service",
		})
	})

	v1 := router.Group("/api/v1")
	{
		exercises := v1.Group("/exercises")
		{
			exercises.POST("/generate", hm.exerciseHandler.Generate)
			exercises.POST("/check", hm.exerciseHandler.Check)
		}

		rules := v1.Group("/rules")
		{
			rules.GET("/:id/letters", hm.exerciseHandler.RuleLetters)
		}

		quiz := v1.Group("/quiz")
		{
			quiz.GET("/daily", hm.exerciseHandler.DailyQuiz)
		}

		content := v1.Group("/content")
		{
			content.POST("/import", hm.contentHandler.Import)
			content.POST("/export", hm.contentHandler.Export)
			content.PUT("/users/:user_id/words", hm.contentHandler.ReplaceUserWords)
		}
	}
}
