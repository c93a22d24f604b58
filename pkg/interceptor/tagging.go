package interceptor

import (
	"context"
	"fmt"
	"reflect"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
)

// tagArguments copies tagged arguments onto the span carried by ctx.
// Failures are logged and never reach the caller.
func (i *Interceptor) tagArguments(ctx context.Context, m *Method, args []any) {
	if len(m.tags) == 0 {
		return
	}

	span := i.tracer.SpanFromContext(ctx)
	for _, tag := range m.tags {
		if tag.Index < 0 || tag.Index >= len(args) {
			continue
		}
		if err := setTag(span, tag.Name, args[tag.Index]); err != nil {
			i.logger.Debug(ctx, "span tag skipped",
				observability.String("operation", m.Key()),
				observability.String("tag", tag.Name),
				observability.Error(err),
			)
		}
	}
}

func setTag(span observability.Span, name string, value any) (err error) {
	if isNil(value) {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tag %q: %v", name, r)
		}
	}()

	span.SetAttributes(observability.String(name, displayString(value)))
	return nil
}

// displayString renders value the way it prints, honouring fmt.Stringer and error.
func displayString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case error:
		return v.Error()
	default:
		return fmt.Sprint(v)
	}
}

// isNil also reports typed nils held in an interface.
func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		return v.IsNil()
	default:
		return false
	}
}
