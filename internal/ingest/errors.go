package ingest

import (
	"errors"
	"fmt"
)

// ValidationError reports input rejected before any store access.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ErrEmptyMessage is returned when the raw message is empty or whitespace.
var ErrEmptyMessage error = &ValidationError{Field: "message", Reason: "raw message is empty"}

// Steps of the write sequence, used in StepError and failure metrics.
const (
	StepValidate          = "validate"
	StepUpsertOpportunity = "upsert_opportunity"
	StepAppendEvent       = "append_event"
	StepAppendAudit       = "append_audit"
	StepTransition        = "transition"
	StepReadOpportunity   = "read_opportunity"
)

// StepError reports which step of the write sequence failed. Steps before
// it have been applied; replaying the same message completes the rest.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("ingest: %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// FailedStep returns the step name carried by err, or "" when err is not a
// StepError. Uses errors.As to handle wrapped errors.
func FailedStep(err error) string {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step
	}
	return ""
}
