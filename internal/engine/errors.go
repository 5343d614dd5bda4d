package engine

import (
	"errors"
	"fmt"
)

// SetupErrorCode categorizes fatal pre-run configuration failures.
type SetupErrorCode string

const (
	// ErrCodeEmptyPopulation indicates a run with no agents.
	ErrCodeEmptyPopulation SetupErrorCode = "EMPTY_POPULATION"

	// ErrCodeBadAgent indicates a malformed agent: duplicate identity,
	// variant parameters not matching the type tag, or a negative/NaN
	// balance-sheet amount.
	ErrCodeBadAgent SetupErrorCode = "BAD_AGENT"

	// ErrCodeBadScenario indicates a scenario whose paths cannot drive the
	// requested horizon.
	ErrCodeBadScenario SetupErrorCode = "BAD_SCENARIO"
)

// SetupError is a fatal configuration failure surfaced before any simulated
// day runs. Nothing is recovered mid-run: a run either starts clean or not
// at all.
type SetupError struct {
	Code    SetupErrorCode
	Message string
	Agent   string
}

func (e *SetupError) Error() string {
	if e.Agent != "" {
		return fmt.Sprintf("%s: %s (agent=%s)", e.Code, e.Message, e.Agent)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsSetupError reports whether err is (or wraps) a SetupError.
// Uses errors.As to handle wrapped errors.
func IsSetupError(err error) bool {
	var se *SetupError
	return errors.As(err, &se)
}

// InvariantError reports a derived quantity that violated the model's
// invariants mid-run (negative or NaN loss, negative sale amount). It
// indicates a calibration bug upstream and is never silently clamped.
type InvariantError struct {
	Day     int
	Agent   string
	Field   string
	Value   float64
	Message string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated on day %d: %s=%v for agent %s: %s",
		e.Day, e.Field, e.Value, e.Agent, e.Message)
}

// AsInvariantError extracts an InvariantError from err, if present.
func AsInvariantError(err error) (*InvariantError, bool) {
	var ie *InvariantError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
