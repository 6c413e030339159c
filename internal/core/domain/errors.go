package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoMatch       = errors.New("no matching duty rate")
	ErrService       = errors.New("classification service failure")
	ErrInvalidInput  = errors.New("invalid input")
	ErrSheetNotFound = errors.New("rate sheet not found")
	ErrTemporary     = errors.New("temporary failure")
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
