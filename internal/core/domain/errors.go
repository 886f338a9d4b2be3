package domain

import (
	"errors"
	"fmt"
)

var (
	ErrItemNotFound    = errors.New("context item not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrConflict        = errors.New("conflict")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrTemporary       = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// IsNotFound reports whether err signals a missing item or project.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound) || errors.Is(err, ErrProjectNotFound)
}
