package errors

import (
	stderrors "errors"
	"fmt"
)

type AppError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`

	cause error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the store or driver error this AppError was built from.
func (e *AppError) Unwrap() error {
	return e.cause
}

// Is matches any AppError carrying the same code, so copies made by
// WithDetails/Wrap still satisfy errors.Is against the package sentinels.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    make(map[string]interface{}),
	}
}

func (e *AppError) clone() *AppError {
	details := make(map[string]interface{}, len(e.Details))
	for k, v := range e.Details {
		details[k] = v
	}
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Details:    details,
		cause:      e.cause,
	}
}

// WithDetails returns a copy with details merged in. Sentinels are never mutated.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	c := e.clone()
	for k, v := range details {
		c.Details[k] = v
	}
	return c
}

// WithMessage returns a copy with a more specific message.
func (e *AppError) WithMessage(format string, args ...interface{}) *AppError {
	c := e.clone()
	c.Message = fmt.Sprintf(format, args...)
	return c
}

// Wrap returns a copy that records cause as the underlying error.
func (e *AppError) Wrap(cause error) *AppError {
	c := e.clone()
	c.cause = cause
	return c
}

// Cause returns the wrapped error message or an empty string.
func (e *AppError) Cause() string {
	if e.cause == nil {
		return ""
	}
	return e.cause.Error()
}

// StepError identifies the sub-resource of a route save that failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("save %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// AtStep wraps err with the failing save step. Nil stays nil and an
// existing StepError keeps its original step.
func AtStep(step string, err error) error {
	if err == nil {
		return nil
	}
	var se *StepError
	if stderrors.As(err, &se) {
		return err
	}
	return &StepError{Step: step, Err: err}
}

// As finds the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// StepOf returns the save step recorded in err's chain.
func StepOf(err error) (string, bool) {
	var se *StepError
	if stderrors.As(err, &se) {
		return se.Step, true
	}
	return "", false
}
