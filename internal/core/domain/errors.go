package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a file format or provider that is not handled.
	ErrUnsupportedType = errors.New("unsupported type")

	// Reader Errors.

	// ErrReadFailed indicates the document container could not be parsed.
	ErrReadFailed = errors.New("read failed")

	// ErrEmptyDocument indicates the document parsed but yielded no text.
	// Scanned PDFs without a text layer end up here.
	ErrEmptyDocument = errors.New("document contains no extractable text")

	// Model Errors.

	// ErrLLMUnavailable indicates the model server could not be reached or is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrLLMRequestFailed indicates the model server answered with an error status.
	ErrLLMRequestFailed = errors.New("LLM request failed")

	// ErrEmptyResponse indicates the model returned no content.
	ErrEmptyResponse = errors.New("empty model response")

	// ErrMalformedResponse indicates the model output could not be decoded or
	// contained none of the expected sections.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrModelRefusal indicates the model declined the task instead of answering.
	ErrModelRefusal = errors.New("model refused the request")

	// Export Errors.

	// ErrExportFailed indicates a report could not be rendered or written.
	ErrExportFailed = errors.New("export failed")
)

// StageError records which pipeline stage produced an error.
type StageError struct {
	Stage Stage
	Err   error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage.Description(), e.Err)
}

// Unwrap returns the underlying cause.
func (e *StageError) Unwrap() error {
	return e.Err
}

// WrapStage annotates err with the stage it came from.
// Returns nil when err is nil.
func WrapStage(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	var se *StageError
	if errors.As(err, &se) {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}

// FailedStage returns the stage recorded on err, if any.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
