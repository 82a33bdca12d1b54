package commonModels

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrExtraction        = errors.New("extraction failed")
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrPersistence       = errors.New("persistence failed")
	ErrCompletionService = errors.New("completion service failed")
	ErrEmptyQuestion     = errors.New("empty question")
)

type ExtractionError struct {
	Path  string
	Cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s: %v", e.Path, e.Cause)
}

func (e *ExtractionError) Unwrap() error { return e.Cause }

func (e *ExtractionError) Is(target error) bool { return target == ErrExtraction }

type PersistenceError struct {
	Op    string
	Path  string
	Cause error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Cause)
}

func (e *PersistenceError) Unwrap() error { return e.Cause }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

type CompletionError struct {
	Provider string
	Cause    error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("%s completion: %v", e.Provider, e.Cause)
}

func (e *CompletionError) Unwrap() error { return e.Cause }

func (e *CompletionError) Is(target error) bool { return target == ErrCompletionService }

// DimensionError reports the configured and the offending vector length.
func DimensionError(want, got int) error {
	return fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, want, got)
}
