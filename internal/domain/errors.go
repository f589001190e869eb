package domain

import (
	"errors"
	"fmt"
	"strings"
)

const (
	CodeValidation       = "VALIDATION"
	CodeNotFound         = "NOT_FOUND"
	CodeAmbiguousVariant = "AMBIGUOUS_VARIANT"
)

// Sentinels for errors.Is matching.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrAmbiguousVariant = errors.New("ambiguous variant selector")
)

// ValidationError reports a bad input value and the field it came from.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Code() string { return CodeValidation }

// NotFoundError reports a missing item or variant.
type NotFoundError struct {
	Resource string `json:"resource"`
	Key      string `json:"key"`
}

func NewNotFoundError(resource string, key any) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: fmt.Sprint(key)}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func (e *NotFoundError) Code() string { return CodeNotFound }

// AmbiguityError is returned when a variant selector resolves to zero or
// several variants where exactly one is required. It also matches ErrValidation.
type AmbiguityError struct {
	Selector   string   `json:"selector"`
	Candidates []string `json:"candidates"`
	Matched    int      `json:"matched"`
}

func (e *AmbiguityError) Error() string {
	sel := e.Selector
	if sel == "" {
		sel = "<empty>"
	}
	if e.Matched == 0 {
		return fmt.Sprintf("size selector %q matches no variant (candidates: %s)", sel, strings.Join(e.Candidates, ", "))
	}
	return fmt.Sprintf("size selector %q matches %d variants: %s", sel, e.Matched, strings.Join(e.Candidates, ", "))
}

func (e *AmbiguityError) Is(target error) bool {
	return target == ErrAmbiguousVariant || target == ErrValidation
}

func (e *AmbiguityError) Code() string { return CodeAmbiguousVariant }
