package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neurostat/exercise-service/internal/models"
	"github.com/neurostat/exercise-service/internal/services"
	"github.com/neurostat/exercise-service/internal/utils"
)

// ContentHandler manages the example bank over HTTP.
type ContentHandler struct {
	BaseHandler
	content services.ContentService
}

func NewContentHandler(content services.ContentService, logger utils.Logger) *ContentHandler {
	return &ContentHandler{
		BaseHandler: NewBaseHandler(logger),
		content:     content,
	}
}

// Import ingests an example sheet (csv or xlsx).
// POST /api/v1/content/import
func (h *ContentHandler) Import(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "file is required", err)
		return
	}
	defer file.Close()

	summary, err := h.content.ImportExamplesFromFile(c.Request.Context(), file, header.Filename)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "import finished", summary)
}

// Export streams the bank as csv or xlsx.
// POST /api/v1/content/export
func (h *ContentHandler) Export(c *gin.Context) {
	var req models.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	switch req.Format {
	case "", "xlsx":
		data, err := h.content.ExportExamplesToExcel(c.Request.Context(), &req)
		if err != nil {
			h.RespondWithServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="examples.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	case "csv":
		data, err := h.content.ExportExamplesToCSV(c.Request.Context(), &req)
		if err != nil {
			h.RespondWithServiceError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="examples.csv"`)
		c.Data(http.StatusOK, "text/csv", data)
	default:
		h.RespondWithError(c, http.StatusBadRequest, "unsupported export format", nil, req.Format)
	}
}

type replaceUserWordsRequest struct {
	RuleID string                   `json:"rule_id" validate:"required"`
	Words  []services.UserWordInput `json:"words"`
}

// ReplaceUserWords swaps a learner's personal word list for one rule.
// PUT /api/v1/content/users/:user_id/words
func (h *ContentHandler) ReplaceUserWords(c *gin.Context) {
	userID := ParseStringIDParam(c, "user_id")
	if userID == "" {
		return
	}

	var req replaceUserWordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	count, err := h.content.ReplaceUserWords(c.Request.Context(), userID, req.RuleID, req.Words)
	if err != nil {
		h.RespondWithServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "word list replaced", gin.H{"count": count})
}
