package utils

import (
	"errors"
	"fmt"
)

type ErrorType int

const (
	EmptyListError ErrorType = iota + 1
	OutOfRangeError
	NotFoundError
	CorruptArtifactError
	MissingArtifactError
	UsageError
)

func (t ErrorType) String() string {
	switch t {
	case EmptyListError:
		return "empty list"
	case OutOfRangeError:
		return "out of range"
	case NotFoundError:
		return "not found"
	case CorruptArtifactError:
		return "corrupt artifact"
	case MissingArtifactError:
		return "missing artifact"
	case UsageError:
		return "usage"
	}
	return "unknown"
}

type GenericError struct {
	Message string
	Type    ErrorType
	Err     error
}

var (
	ErrEmptyList       = &GenericError{Type: EmptyListError}
	ErrOutOfRange      = &GenericError{Type: OutOfRangeError}
	ErrNotFound        = &GenericError{Type: NotFoundError}
	ErrCorruptArtifact = &GenericError{Type: CorruptArtifactError}
	ErrMissingArtifact = &GenericError{Type: MissingArtifactError}
	ErrUsage           = &GenericError{Type: UsageError}
)

func (g *GenericError) Error() string {
	if g.Err != nil {
		return fmt.Sprintf("%s: %s: %v", g.Type, g.Message, g.Err)
	}
	if g.Message == "" {
		return g.Type.String()
	}
	return fmt.Sprintf("%s: %s", g.Type, g.Message)
}

func (g *GenericError) Unwrap() error {
	return g.Err
}

// Is matches any GenericError of the same Type, so the sentinels above work with errors.Is.
func (g *GenericError) Is(target error) bool {
	t, ok := target.(*GenericError)
	if !ok {
		return false
	}
	return t.Type == g.Type
}

func NewError(errorType ErrorType, format string, args ...any) *GenericError {
	return &GenericError{
		Type:    errorType,
		Message: fmt.Sprintf(format, args...),
	}
}

func WrapError(errorType ErrorType, err error, format string, args ...any) *GenericError {
	return &GenericError{
		Type:    errorType,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// ErrorTypeOf returns the taxonomy type of err, or 0 when err carries none.
func ErrorTypeOf(err error) ErrorType {
	var g *GenericError
	if errors.As(err, &g) {
		return g.Type
	}
	return 0
}
