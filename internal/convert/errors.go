package convert

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingInstance signals that a required entity was not supplied.
	ErrMissingInstance = errors.New("missing metadata instance")
	// ErrInvalidBean signals that the requested bean cannot be built,
	// e.g. because the family has no factory or the entity has the wrong type.
	ErrInvalidBean = errors.New("invalid bean")
)

// Error is returned by all conversion functions. Err is one of
// ErrMissingInstance or ErrInvalidBean.
type Error struct {
	Family    string // Name of the bean family, e.g. "Asset".
	Operation string // "simple", "relationship" or "complex".
	Detail    string
	Err       error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("convert %s (%s): %v", e.Family, e.Operation, e.Err)
	}
	return fmt.Sprintf("convert %s (%s): %v: %s", e.Family, e.Operation, e.Err, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func missingInstance(family, op, format string, args ...any) error {
	return &Error{Family: family, Operation: op, Err: ErrMissingInstance, Detail: fmt.Sprintf(format, args...)}
}

func invalidBean(family, op, format string, args ...any) error {
	return &Error{Family: family, Operation: op, Err: ErrInvalidBean, Detail: fmt.Sprintf(format, args...)}
}
