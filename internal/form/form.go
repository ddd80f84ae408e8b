// Package form drives the submit lifecycle shared by every form surface:
// signup, upload, feedback, playlists. Validation and submission are supplied
// by the caller; the controller owns the state transitions.
package form

import (
	"context"
	"errors"
	"sync"
)

// State is the controller's position in the submit lifecycle.
type State int

const (
	Idle State = iota
	Validating
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// ErrSubmitInFlight is returned by Submit while a previous submit is still
// running. The in-flight submit is unaffected.
var ErrSubmitInFlight = errors.New("form: submit already in flight")

// ErrInvalid is returned when validation rejects the input; the field
// messages are available via FieldErrors.
var ErrInvalid = errors.New("form: validation failed")

// Validator checks the input and returns field-path -> message pairs; an
// empty map means the input is accepted.
type Validator func() map[string]string

// Submitter performs the side effect once validation passes.
type Submitter func(ctx context.Context) error

// Controller is a single form's state machine. The zero value is ready to
// use and starts Idle.
type Controller struct {
	mu          sync.Mutex
	state       State
	fieldErrors map[string]string
	submitErr   error
}

// State returns the current lifecycle position.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending reports whether the submit control should be non-interactive.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == Validating || c.state == Submitting
}

// FieldErrors returns the messages from the last failed validation, keyed by
// field path. Nil when the last submit passed validation.
func (c *Controller) FieldErrors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fieldErrors
}

// Err returns the submission error from the last failed submit, nil
// otherwise.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitErr
}

// Submit runs validation then submission. Invalid input moves the controller
// to Failed with field errors and returns ErrInvalid. A submission error
// moves it to Failed and is returned unchanged. On success the controller is
// Succeeded. Only one submit may run at a time; a second call while one is
// in flight returns ErrSubmitInFlight without touching state.
func (c *Controller) Submit(ctx context.Context, validate Validator, submit Submitter) error {
	c.mu.Lock()
	if c.state == Validating || c.state == Submitting {
		c.mu.Unlock()
		return ErrSubmitInFlight
	}
	c.state = Validating
	c.fieldErrors = nil
	c.submitErr = nil
	c.mu.Unlock()

	if validate != nil {
		if fields := validate(); len(fields) > 0 {
			c.mu.Lock()
			c.state = Failed
			c.fieldErrors = fields
			c.mu.Unlock()
			return ErrInvalid
		}
	}

	c.mu.Lock()
	c.state = Submitting
	c.mu.Unlock()

	if err := submit(ctx); err != nil {
		c.mu.Lock()
		c.state = Failed
		c.submitErr = err
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	c.state = Succeeded
	c.mu.Unlock()
	return nil
}

// Reset returns the controller to Idle, clearing recorded errors. It is a
// no-op while a submit is in flight.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Validating || c.state == Submitting {
		return
	}
	c.state = Idle
	c.fieldErrors = nil
	c.submitErr = nil
}
