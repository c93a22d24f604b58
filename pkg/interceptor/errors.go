package interceptor

import (
	"errors"
	"fmt"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
)

var (
	// ErrUnsupportedResultType is returned when interception is requested on
	// a result shape that cannot be instrumented.
	ErrUnsupportedResultType = errors.New("interceptor: unsupported result type")

	// ErrNilTarget is returned when an invocation has no target to call.
	ErrNilTarget = errors.New("interceptor: nil target")

	// ErrInvalidMethod is returned when registering a descriptor without type or name.
	ErrInvalidMethod = errors.New("interceptor: method requires type and name")

	// ErrMethodNotFound is returned by Registry.Lookup for unknown methods.
	ErrMethodNotFound = errors.New("interceptor: method not found")

	// ErrDuplicateMethod is returned when a method is registered twice.
	ErrDuplicateMethod = errors.New("interceptor: method already registered")
)

// UnsupportedResultTypeError describes the call that could not be instrumented.
type UnsupportedResultTypeError struct {
	Operation observability.Operation
	Shape     Shape
}

func (e *UnsupportedResultTypeError) Error() string {
	return fmt.Sprintf("%s: %s returns %s", ErrUnsupportedResultType, e.Operation, e.Shape)
}

// Unwrap returns ErrUnsupportedResultType for errors.Is.
func (e *UnsupportedResultTypeError) Unwrap() error {
	return ErrUnsupportedResultType
}
