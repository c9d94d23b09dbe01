package entities

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrEmptyTranscript  = errors.New("transcript is empty")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidTemplate  = errors.New("invalid template name")
	ErrRunNotFound      = errors.New("generation run not found")
	ErrAuditDisabled    = errors.New("audit log is disabled")
	ErrNotArchived      = errors.New("generation run has no archived document")
)

// ExtractionError means no JSON object could be read out of the model reply.
// The model is nondeterministic, so resubmitting may succeed.
type ExtractionError struct {
	Reason  string
	Snippet string
	Err     error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed: %s", e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// RenderError means a fully shaped record could not be substituted into the template
type RenderError struct {
	Template string
	Err      error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %q: %v", e.Template, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
