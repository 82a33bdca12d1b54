package commonModels

import (
	"errors"
	"io/fs"
	"testing"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	cause := fs.ErrNotExist

	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"extraction", &ExtractionError{Path: "a.pdf", Cause: cause}, ErrExtraction},
		{"persistence", &PersistenceError{Op: "rename", Path: "x", Cause: cause}, ErrPersistence},
		{"completion", &CompletionError{Provider: "gemini", Cause: cause}, ErrCompletionService},
		{"dimension", DimensionError(3, 4), ErrDimensionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.sentinel)
			}
			if tt.name != "dimension" && !errors.Is(tt.err, cause) {
				t.Errorf("cause not unwrapped from %v", tt.err)
			}
		})
	}
}

func TestDocumentStatusTerminal(t *testing.T) {
	if StatusUploading.IsTerminal() || StatusProcessing.IsTerminal() {
		t.Error("in-flight statuses reported terminal")
	}
	if !StatusCompleted.IsTerminal() || !StatusFailed.IsTerminal() {
		t.Error("terminal statuses not reported terminal")
	}
}
