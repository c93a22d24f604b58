package otel

import (
	"fmt"
	"time"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"go.opentelemetry.io/otel/attribute"
)

// convertFieldToAttribute is shared by spans and metric instruments.
func convertFieldToAttribute(field observability.Field) attribute.KeyValue {
	switch v := field.Value.(type) {
	case string:
		return attribute.String(field.Key, v)
	case int:
		return attribute.Int(field.Key, v)
	case int64:
		return attribute.Int64(field.Key, v)
	case float64:
		return attribute.Float64(field.Key, v)
	case bool:
		return attribute.Bool(field.Key, v)
	case []string:
		return attribute.StringSlice(field.Key, v)
	case time.Duration:
		return attribute.Int64(field.Key, v.Milliseconds())
	case error:
		return attribute.String(field.Key, v.Error())
	case fmt.Stringer:
		return attribute.String(field.Key, v.String())
	default:
		return attribute.String(field.Key, fmt.Sprintf("%v", v))
	}
}

// convertFieldsToAttributes returns nil for an empty slice.
func convertFieldsToAttributes(fields []observability.Field) []attribute.KeyValue {
	if len(fields) == 0 {
		return nil
	}

	attrs := make([]attribute.KeyValue, len(fields))
	for i, field := range fields {
		attrs[i] = convertFieldToAttribute(field)
	}
	return attrs
}
