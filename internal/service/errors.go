package service

import (
	"errors"
	"sort"
	"strings"
)

// --- Error Definitions ---
var (
	ErrValidation         = errors.New("validation failed")
	ErrForbidden          = errors.New("not allowed to access this resource")
	ErrWorkoutNotFound    = errors.New("workout not found")
	ErrDuplicateImport    = errors.New("workout already imported from fitbit")
	ErrFitbitNotConnected = errors.New("no Fitbit account for this user")
	ErrFitbitRefresh      = errors.New("failed to refresh Fitbit token")
	ErrFitbitUpstream     = errors.New("fitbit request failed")
	ErrInvalidState       = errors.New("invalid or expired oauth state")
	ErrExportFailed       = errors.New("failed to export workouts")
	ErrExportNotFound     = errors.New("export not found")
)

// ValidationError carries one message per rejected field.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// fieldErrors collects validation failures.
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}
