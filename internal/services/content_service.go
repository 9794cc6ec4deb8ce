package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neurostat/exercise-service/internal/events"
	"github.com/neurostat/exercise-service/internal/mask"
	"github.com/neurostat/exercise-service/internal/models"
	"github.com/neurostat/exercise-service/internal/repositories"
	"github.com/neurostat/exercise-service/internal/validator"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"
)

// ContentService manages the example bank: spreadsheet import/export and
// wholesale replacement of a learner's personal word list.
type ContentService interface {
	ImportExamplesFromFile(ctx context.Context, file multipart.File, filename string) (*models.ImportSummary, error)
	ImportExamplesFromCSV(ctx context.Context, reader io.Reader, fileName string) (*models.ImportSummary, error)
	ImportExamplesFromExcel(ctx context.Context, reader io.Reader, fileName string) (*models.ImportSummary, error)

	ExportExamplesToCSV(ctx context.Context, req *models.ExportRequest) ([]byte, error)
	ExportExamplesToExcel(ctx context.Context, req *models.ExportRequest) ([]byte, error)

	ReplaceUserWords(ctx context.Context, userID, ruleID string, words []UserWordInput) (int, error)
}

// UserWordInput is one personal word a learner adds to their drill list.
type UserWordInput struct {
	Text       string `json:"text" validate:"required,max=200"`
	MaskedText string `json:"masked_text" validate:"required,max=200"`
}

type contentService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewContentService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) ContentService {
	return &contentService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

// importColumns is the header contract for example sheets. grades,
// explanation, incorrect_variant, has_error and error_type are optional.
var importColumns = []string{"rule_id", "text", "masked_text"}

// ===== IMPORT =====

func (s *contentService) ImportExamplesFromFile(ctx context.Context, file multipart.File, filename string) (*models.ImportSummary, error) {
	s.logger.Info("Starting content import", "filename", filename)

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		return s.ImportExamplesFromCSV(ctx, file, filename)
	case ".xlsx", ".xls":
		return s.ImportExamplesFromExcel(ctx, file, filename)
	default:
		return nil, NewValidationError("file", "unsupported file format", ext)
	}
}

func (s *contentService) ImportExamplesFromCSV(ctx context.Context, reader io.Reader, fileName string) (*models.ImportSummary, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportInvalidFile, err)
	}
	return s.importRows(ctx, records, fileName)
}

func (s *contentService) ImportExamplesFromExcel(ctx context.Context, reader io.Reader, fileName string) (*models.ImportSummary, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportInvalidFile, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrImportEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportInvalidFile, err)
	}
	return s.importRows(ctx, rows, fileName)
}

func (s *contentService) importRows(ctx context.Context, rows [][]string, fileName string) (*models.ImportSummary, error) {
	start := time.Now()
	if len(rows) < 2 {
		return nil, ErrImportEmptyFile
	}

	headerMap := make(map[string]int)
	for i, header := range rows[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, col := range importColumns {
		if _, exists := headerMap[col]; !exists {
			return nil, NewValidationError("headers", fmt.Sprintf("missing required column: %s", col), col)
		}
	}

	summary := &models.ImportSummary{TotalRows: len(rows) - 1}
	var examples []*models.Example

	for rowIndex, row := range rows[1:] {
		example, rowErrs := s.parseRow(row, headerMap, rowIndex+2)
		summary.ProcessedRows++
		if len(rowErrs) > 0 {
			summary.Errors = append(summary.Errors, rowErrs...)
			summary.ErrorCount++
			continue
		}
		examples = append(examples, example)
		summary.SuccessCount++
	}

	if len(examples) > 0 {
		if err := s.repo.Example().CreateBatch(ctx, examples); err != nil {
			return nil, fmt.Errorf("save imported examples: %w", err)
		}
		for _, e := range examples {
			summary.CreatedExamples = append(summary.CreatedExamples, e.ID)
		}
	}
	summary.ProcessingTime = time.Since(start)

	event := events.NewContentImportedEvent(uuid.NewString(), fileName, summary.SuccessCount, summary.ErrorCount)
	if err := s.publisher.PublishExerciseEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish import event", "error", err)
	}

	s.logger.Info("Content import finished",
		"file", fileName,
		"rows", summary.TotalRows,
		"imported", summary.SuccessCount,
		"errors", summary.ErrorCount)
	return summary, nil
}

func (s *contentService) parseRow(row []string, headerMap map[string]int, rowNum int) (*models.Example, []models.ImportError) {
	cell := func(name string) string {
		idx, ok := headerMap[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var errs []models.ImportError
	ruleID := cell("rule_id")
	text := cell("text")
	maskedText := cell("masked_text")

	if ruleID == "" {
		errs = append(errs, models.ImportError{Row: rowNum, Column: "rule_id", Message: "is required"})
	}
	if text == "" {
		errs = append(errs, models.ImportError{Row: rowNum, Column: "text", Message: "is required"})
	}

	tmpl, err := mask.Parse(maskedText)
	if err != nil {
		errs = append(errs, models.ImportError{Row: rowNum, Column: "masked_text", Message: err.Error()})
	}
	explanation := cell("explanation")
	if tmpl != nil && explanation != "" && tmpl.MarkerCount() > 1 {
		if _, err := mask.ExtractSentence(tmpl, explanation); err != nil {
			errs = append(errs, models.ImportError{Row: rowNum, Column: "explanation", Message: err.Error()})
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	example := &models.Example{
		RuleID:           ruleID,
		Text:             text,
		MaskedText:       maskedText,
		Explanation:      explanation,
		Active:           true,
		Source:           models.SourceSystem,
		IncorrectVariant: cell("incorrect_variant"),
		ErrorType:        cell("error_type"),
	}
	if v := cell("has_error"); v != "" {
		hasError, err := strconv.ParseBool(v)
		if err != nil {
			return nil, []models.ImportError{{Row: rowNum, Column: "has_error", Message: "must be true or false"}}
		}
		example.HasError = hasError
	}
	if v := cell("grades"); v != "" {
		var grades []string
		for _, g := range strings.Split(v, ",") {
			if g = strings.TrimSpace(g); g != "" {
				grades = append(grades, g)
			}
		}
		example.Grades = gradesJSON(grades)
	}
	return example, nil
}

func gradesJSON(grades []string) datatypes.JSON {
	quoted := make([]string, len(grades))
	for i, g := range grades {
		quoted[i] = strconv.Quote(g)
	}
	return datatypes.JSON("[" + strings.Join(quoted, ",") + "]")
}

// ===== EXPORT =====

var exportHeader = []string{"id", "rule_id", "text", "masked_text", "explanation", "active", "source", "created_by"}

func (s *contentService) exportExamples(ctx context.Context, req *models.ExportRequest) ([]*models.Example, error) {
	examples, _, err := s.repo.Example().List(ctx, repositories.ExampleFilters{
		RuleIDs:    req.RuleIDs,
		ActiveOnly: req.ActiveOnly,
		SortBy:     "rule_id",
		SortOrder:  "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("load examples for export: %w", err)
	}
	return examples, nil
}

func exportRow(e *models.Example, includeAnswer bool) []string {
	text := e.Text
	if !includeAnswer {
		text = ""
	}
	return []string{
		strconv.FormatUint(uint64(e.ID), 10),
		e.RuleID,
		text,
		e.MaskedText,
		e.Explanation,
		strconv.FormatBool(e.Active),
		string(e.Source),
		e.CreatedBy,
	}
}

func (s *contentService) ExportExamplesToCSV(ctx context.Context, req *models.ExportRequest) ([]byte, error) {
	examples, err := s.exportExamples(ctx, req)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("write export header: %w", err)
	}
	for _, e := range examples {
		if err := w.Write(exportRow(e, req.IncludeAnswer)); err != nil {
			return nil, fmt.Errorf("write export row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *contentService) ExportExamplesToExcel(ctx context.Context, req *models.ExportRequest) ([]byte, error) {
	examples, err := s.exportExamples(ctx, req)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for col, h := range exportHeader {
		cellRef, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cellRef, h); err != nil {
			return nil, fmt.Errorf("write export header: %w", err)
		}
	}
	for i, e := range examples {
		for col, v := range exportRow(e, req.IncludeAnswer) {
			cellRef, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cellRef, v); err != nil {
				return nil, fmt.Errorf("write export row: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// ===== USER WORDS =====

// ReplaceUserWords swaps a learner's personal items for one rule. Words
// whose mask cannot be parsed are rejected, the whole batch fails.
func (s *contentService) ReplaceUserWords(ctx context.Context, userID, ruleID string, words []UserWordInput) (int, error) {
	if userID == "" || ruleID == "" {
		return 0, fmt.Errorf("%w: user id and rule id are required", ErrBadRequest)
	}
	if _, err := s.repo.Rule().GetByID(ctx, ruleID); err != nil {
		if repositories.IsNotFoundError(err) {
			return 0, ErrRuleNotFound
		}
		return 0, fmt.Errorf("get rule %s: %w", ruleID, err)
	}

	examples := make([]*models.Example, 0, len(words))
	for i, w := range words {
		if err := s.validator.Validate(&w); err != nil {
			return 0, fmt.Errorf("%w: word %d: %v", ErrValidationFailed, i+1, err)
		}
		tmpl, err := mask.Parse(w.MaskedText)
		if err != nil {
			return 0, fmt.Errorf("%w: word %d: %v", ErrValidationFailed, i+1, err)
		}
		if _, err := mask.Extract(w.Text, tmpl); err != nil {
			return 0, fmt.Errorf("%w: word %d: %v", ErrValidationFailed, i+1, err)
		}
		examples = append(examples, &models.Example{
			Text:       w.Text,
			MaskedText: w.MaskedText,
			Active:     true,
		})
	}

	if err := s.repo.Example().ReplaceUserBatch(ctx, userID, ruleID, examples); err != nil {
		return 0, fmt.Errorf("replace user words: %w", err)
	}
	s.logger.Info("Replaced user word list", "user_id", userID, "rule_id", ruleID, "count", len(examples))
	return len(examples), nil
}
