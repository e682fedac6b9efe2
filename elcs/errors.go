package elcs

import (
	"errors"
	"fmt"
)

// ErrEmptyModel signals that an inference call had no rule in its match set.
// It is not a failure: callers should treat it as the documented "no
// prediction" sentinel rather than retrying or treating it as fatal.
var ErrEmptyModel = errors.New("elcs: no rule matched the instance")

// InvalidHyperparameterError is returned from Validate (and so from
// NewModel/Reboot) when a hyperparameter value is out of its documented range.
type InvalidHyperparameterError struct {
	Field  string
	Reason string
}

func (e *InvalidHyperparameterError) Error() string {
	return fmt.Sprintf("elcs: invalid hyperparameter %s: %s", e.Field, e.Reason)
}

func invalidHyperparameter(field, reason string) error {
	return &InvalidHyperparameterError{Field: field, Reason: reason}
}

// InvalidInputError is returned from NewSliceEnvironment when X or y fail
// basic shape validation, and from PredictProba on a continuous-phenotype
// model. Fit and Predict do not validate X or y.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("elcs: invalid input: %s", e.Reason)
}

func invalidInput(reason string) error {
	return &InvalidInputError{Reason: reason}
}

// IllegalStateError is returned when an operation is attempted out of its
// required order: calling Fit twice, or calling a post-training export
// method (Score, FinalInstanceCoverage, ...) before the model has trained.
type IllegalStateError struct {
	Op     string
	Reason string
}

func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("elcs: illegal state for %s: %s", e.Op, e.Reason)
}

func illegalState(op, reason string) error {
	return &IllegalStateError{Op: op, Reason: reason}
}
