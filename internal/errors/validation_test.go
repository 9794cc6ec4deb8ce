package errors

import (
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("rule_id", "must be a known rule code", "66x")

	if err.Field != "rule_id" {
		t.Errorf("Expected field to be 'rule_id', got '%s'", err.Field)
	}

	if err.Message != "must be a known rule code" {
		t.Errorf("Expected message to be 'must be a known rule code', got '%s'", err.Message)
	}

	if err.Value != "66x" {
		t.Errorf("Expected value to be '66x', got '%v'", err.Value)
	}

	// Test Error method
	expected := "validation error on field 'rule_id': must be a known rule code"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	// Test empty ValidationErrors
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	// Test single ValidationError
	errs = append(errs, *NewValidationError("masked_text", "is required", nil))
	expected := "validation failed: masked_text is required"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	// Test multiple ValidationErrors
	errs = append(errs, *NewValidationError("session_key", "is required", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("kind", "must be a valid exercise kind (fill_blank, uniform_letters, binary_choice, sentence_set, punctuation, match_five, multi_select, free_text, error_hunt)", "exercise_kind", "quiz")

	if err.Rule != "exercise_kind" {
		t.Errorf("Expected rule to be 'exercise_kind', got '%s'", err.Rule)
	}

	if err.Field != "kind" {
		t.Errorf("Expected field to be 'kind', got '%s'", err.Field)
	}
}
