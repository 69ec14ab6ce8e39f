package server

import (
	"errors"
	"fmt"
)

// ErrBadRequest wraps malformed query bodies.
var ErrBadRequest = errors.New("server: bad request")

func errShape(what string, got, want int) error {
	return fmt.Errorf("%w: %s has %d entries, want %d", ErrBadRequest, what, got, want)
}
