package booking

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrWizardClosed     = errors.New("booking wizard is closed")
	ErrNotAtConfirm     = errors.New("submit is only available on the confirm step")
	ErrSubmitInProgress = errors.New("a submission is already in progress")
	ErrNoSubmitter      = errors.New("no booking submitter configured")
	ErrGateBlocked      = errors.New("step gate is blocked")
	ErrFieldLocked      = errors.New("field belongs to a later step")
	ErrIneligibleDate   = errors.New("date is not bookable")
	ErrUnknownTimeSlot  = errors.New("time is not a bookable slot")
	ErrInvalidLocation  = errors.New("unknown service location")
	ErrInvalidPayment   = errors.New("unknown payment method")
)

// GateError reports the fields that keep a step's gate closed.
// It matches ErrGateBlocked under errors.Is.
type GateError struct {
	Step    Step
	Missing []string
}

func (e *GateError) Error() string {
	return fmt.Sprintf("step %s is incomplete: missing %s", e.Step, strings.Join(e.Missing, ", "))
}

func (e *GateError) Unwrap() error { return ErrGateBlocked }
