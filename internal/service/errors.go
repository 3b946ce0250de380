package service

import (
	"errors"
	"fmt"
)

// ErrValidation marks input the service refuses before touching the store.
var ErrValidation = errors.New("validation failed")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
