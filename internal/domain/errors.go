package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyPool is returned when a quiz is started without any questions.
	ErrEmptyPool = errors.New("no questions available")
	// ErrNoSelection is returned when an answer is submitted before one is selected.
	ErrNoSelection = errors.New("no answer selected")
	// ErrNotRevealed is returned when advancing before the answer was submitted.
	ErrNotRevealed = errors.New("answer not submitted yet")
	// ErrAlreadyRevealed is returned when the current answer was already submitted.
	ErrAlreadyRevealed = errors.New("answer already submitted")
	// ErrSessionCompleted is returned for any play action after the last question.
	ErrSessionCompleted = errors.New("quiz session already completed")
	// ErrSessionNotCompleted is returned when reading the final score too early.
	ErrSessionNotCompleted = errors.New("quiz session not completed")
	// ErrScoreAlreadySaved is returned when a finished session posts its score twice.
	ErrScoreAlreadySaved = errors.New("score already saved for this quiz")

	// ErrNotFound is the parent of every lookup miss.
	ErrNotFound         = errors.New("not found")
	ErrTeacherNotFound  = fmt.Errorf("teacher %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
	ErrQuestionNotFound = fmt.Errorf("question %w", ErrNotFound)

	// ErrInvalidCredentials hides whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnauthenticated means the token is missing, invalid or revoked.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means the record belongs to another teacher.
	ErrForbidden = errors.New("access denied")
)

// ValidationError reports bad input the user can correct.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError builds a *ValidationError.
func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// DataAccessError wraps a failure of the backing store.
type DataAccessError struct {
	Op  string
	Err error
}

func (e *DataAccessError) Error() string {
	return "data access " + e.Op + ": " + e.Err.Error()
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

// WrapDataAccess classifies a store error. Errors that already belong to the
// domain taxonomy pass through untouched; anything else becomes a *DataAccessError.
func WrapDataAccess(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		v *ValidationError
		d *DataAccessError
	)
	if errors.As(err, &v) || errors.As(err, &d) || errors.Is(err, ErrNotFound) {
		return err
	}
	return &DataAccessError{Op: op, Err: err}
}

// IsMisuse reports whether err is a play-state error caused by calling the
// engine out of order.
func IsMisuse(err error) bool {
	return errors.Is(err, ErrNoSelection) ||
		errors.Is(err, ErrNotRevealed) ||
		errors.Is(err, ErrAlreadyRevealed) ||
		errors.Is(err, ErrSessionCompleted) ||
		errors.Is(err, ErrSessionNotCompleted) ||
		errors.Is(err, ErrScoreAlreadySaved)
}
