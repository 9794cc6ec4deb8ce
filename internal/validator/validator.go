package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/neurostat/exercise-service/internal/models"
)

// Validator wraps struct-tag validation with the service's custom tags.
type Validator struct {
	structValidator *validator.Validate
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()
	registerCustomValidators(structValidator)
	return &Validator{structValidator: structValidator}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates s and converts field errors to the shared type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if converted := ToValidationErrors(err); len(converted) > 0 {
			return converted
		}
		return err
	}
	return nil
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("exercise_kind", validateExerciseKind)
	validate.RegisterValidation("question_kind", validateQuestionKind)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateExerciseKind(fl validator.FieldLevel) bool {
	_, ok := models.KindByName(fl.Field().String())
	return ok
}

func validateQuestionKind(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == string(models.QuestionMultipleChoice) ||
		value == string(models.QuestionFreeText)
}
