package model

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by storage, service and transport layers.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
	ErrValidation = errors.New("validation error")
)

// FieldError describes a validation failure of a single input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists the field-level problems of an input.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validate checks that both fields of a topic input are present.
func (in TopicInput) Validate() error {
	var errs []FieldError
	if in.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "is required"})
	}
	if in.Explanation == "" {
		errs = append(errs, FieldError{Field: "explanation", Message: "is required"})
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
