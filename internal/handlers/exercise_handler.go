package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neurostat/exercise-service/internal/models"
	"github.com/neurostat/exercise-service/internal/services"
	"github.com/neurostat/exercise-service/internal/utils"
)

// ExerciseHandler serves exercise generation, checking and the small
// rule/quiz lookups around them.
type ExerciseHandler struct {
	BaseHandler
	exercises services.ExerciseService
	grading   services.GradingService
}

func NewExerciseHandler(exercises services.ExerciseService, grading services.GradingService, logger utils.Logger) *ExerciseHandler {
	return &ExerciseHandler{
		BaseHandler: NewBaseHandler(logger),
		exercises:   exercises,
		grading:     grading,
	}
}

// Generate builds a fresh exercise for a session slot.
// POST /api/v1/exercises/generate
func (h *ExerciseHandler) Generate(c *gin.Context) {
	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	resp, err := h.exercises.Generate(c.Request.Context(), &req)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Check grades a submission against the stored exercise.
// POST /api/v1/exercises/check
func (h *ExerciseHandler) Check(c *gin.Context) {
	var sub models.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	resp, err := h.grading.Check(c.Request.Context(), &sub)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RuleLetters returns the answer alphabet of one rule.
// GET /api/v1/rules/:id/letters
func (h *ExerciseHandler) RuleLetters(c *gin.Context) {
	ruleID := ParseStringIDParam(c, "id")
	if ruleID == "" {
		return
	}

	resp, err := h.exercises.RuleLetters(c.Request.Context(), ruleID)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DailyQuiz returns a random two-option spelling question.
// GET /api/v1/quiz/daily
func (h *ExerciseHandler) DailyQuiz(c *gin.Context) {
	resp, err := h.exercises.DailyQuiz(c.Request.Context())
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
