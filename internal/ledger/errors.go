package ledger

import (
	"errors"
	"fmt"
)

// Error kinds. Callers map each to a distinct response with errors.Is.
var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNotFound            = errors.New("not found")
)

// Location is the kind of balance an operation draws from.
type Location string

// Balance locations.
const (
	LocationCentral Location = "central"
	LocationRoom    Location = "room"
)

// InsufficientError reports a balance that cannot cover a withdrawal.
type InsufficientError struct {
	Location  Location
	ItemID    int64
	RoomID    int64
	Available int
	Requested int
}

func (e *InsufficientError) Error() string {
	if e.Location == LocationCentral {
		return fmt.Sprintf("insufficient central quantity: have %d, need %d", e.Available, e.Requested)
	}
	return fmt.Sprintf("insufficient room allocation in room %d: have %d, need %d", e.RoomID, e.Available, e.Requested)
}

// Unwrap lets errors.Is match ErrInsufficientBalance.
func (e *InsufficientError) Unwrap() error {
	return ErrInsufficientBalance
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Outcome classifies the result of an operation for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
