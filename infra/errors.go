package infra

import (
	"errors"
	"fmt"
)

var (
	ErrTimeout     = errors.New("timeout error")
	ErrNetwork     = errors.New("network error")
	ErrValidation  = errors.New("validation error")
	ErrUnknownRoom = errors.New("unknown room")
	ErrPersistence = errors.New("persistence error")
)

func NewTimeoutError(details string) error {
	return fmt.Errorf("%w: %s", ErrTimeout, details)
}

func NewNetworkError(details string) error {
	return fmt.Errorf("%w: %s", ErrNetwork, details)
}

func NewValidationError(details string) error {
	return fmt.Errorf("%w: %s", ErrValidation, details)
}

func NewUnknownRoomError(roomID string) error {
	return fmt.Errorf("%w: %s", ErrUnknownRoom, roomID)
}

func NewPersistenceError(roomID string, cause error) error {
	return fmt.Errorf("%w: room %s: %v", ErrPersistence, roomID, cause)
}

// IsRetriable returns true if the error is timeout or network (5xx), so retry makes sense.
func IsRetriable(err error) bool {
	return err != nil && (errors.Is(err, ErrTimeout) || errors.Is(err, ErrNetwork))
}
