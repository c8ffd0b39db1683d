package game

import (
	"errors"
	"fmt"
)

// ValidationError marks an illegal player command: wrong phase, insufficient
// resources, acting out of turn. It is caught at the host boundary and
// reported to the player without mutating game state.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a player-command validation error, as
// opposed to an internal engine failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
