package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mynote-app/mynote/internal/throttle"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrAccountLocked      = errors.New("account temporarily locked")
	ErrStorage            = errors.New("storage error")
	ErrAccountExists      = errors.New("account already exists")
	ErrForbidden          = errors.New("access denied")
	ErrNotFound           = errors.New("not found")
	ErrSessionExpired     = errors.New("session expired")
)

// InputError is a validation failure the user can correct. It matches
// ErrInvalidInput.
type InputError struct {
	Message string
}

func invalidInput(msg string) error { return &InputError{Message: msg} }

func (e *InputError) Error() string { return e.Message }

func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

// AccountLockedError carries the time left on a lock. It matches
// ErrAccountLocked.
type AccountLockedError struct {
	Remaining time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account temporarily locked for %s", e.Remaining.Round(time.Second))
}

func (e *AccountLockedError) Is(target error) bool { return target == ErrAccountLocked }

// RemainingSeconds rounds up.
func (e *AccountLockedError) RemainingSeconds() int {
	return throttle.Status{Remaining: e.Remaining}.RemainingSeconds()
}

// RemainingMinutes rounds up, as shown to the user.
func (e *AccountLockedError) RemainingMinutes() int {
	return throttle.Status{Remaining: e.Remaining}.RemainingMinutes()
}

// StorageError wraps a remote store or local store failure. It matches
// ErrStorage and unwraps to the cause.
type StorageError struct {
	Op  string
	Err error
}

func storageError(op string, err error) error { return &StorageError{Op: op, Err: err} }

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

// UserMessage turns a service error into the text shown to the user.
func UserMessage(err error) string {
	var (
		inputErr   *InputError
		lockedErr  *AccountLockedError
		storageErr *StorageError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &inputErr):
		return inputErr.Message
	case errors.As(err, &lockedErr):
		return fmt.Sprintf("Account is temporarily blocked. Please try again in %d minutes.", lockedErr.RemainingMinutes())
	case errors.Is(err, ErrInvalidCredentials):
		return "Invalid login credentials"
	case errors.Is(err, ErrAccountExists):
		return "An account with this email already exists."
	case errors.Is(err, ErrForbidden):
		return "You are not authorized to view this page."
	case errors.Is(err, ErrNotFound):
		return "Not found."
	case errors.Is(err, ErrSessionExpired):
		return "Session expired. Please log in again."
	case errors.As(err, &storageErr) && strings.HasPrefix(storageErr.Op, "note"):
		return "Could not reach the notes store. Please try again."
	default:
		return "An error occurred during login. Please try again."
	}
}
