package otel

import (
	"errors"
	"testing"
	"time"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

type orderID string

func (o orderID) String() string { return "order-" + string(o) }

func TestConvertFieldToAttribute(t *testing.T) {
	tests := []struct {
		name  string
		field observability.Field
		want  attribute.KeyValue
	}{
		{"string value", observability.String("key", "value"), attribute.String("key", "value")},
		{"int value", observability.Int("count", 42), attribute.Int("count", 42)},
		{"int64 value", observability.Int64("big", 1<<40), attribute.Int64("big", 1<<40)},
		{"float64 value", observability.Float64("price", 99.99), attribute.Float64("price", 99.99)},
		{"bool value", observability.Bool("enabled", true), attribute.Bool("enabled", true)},
		{"string slice", observability.Any("tags", []string{"a", "b"}), attribute.StringSlice("tags", []string{"a", "b"})},
		{"duration in millis", observability.Any("elapsed", 1500*time.Millisecond), attribute.Int64("elapsed", 1500)},
		{"error value", observability.Error(errors.New("test error")), attribute.String("error", "test error")},
		{"stringer", observability.Any("order", orderID("7")), attribute.String("order", "order-7")},
		{"custom type", observability.Any("custom", struct{ Name string }{Name: "test"}), attribute.String("custom", "{test}")},
		{"nil value", observability.Any("nil_value", nil), attribute.String("nil_value", "<nil>")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, convertFieldToAttribute(tt.field))
		})
	}
}

func TestConvertFieldsToAttributes(t *testing.T) {
	assert.Nil(t, convertFieldsToAttributes(nil))
	assert.Nil(t, convertFieldsToAttributes([]observability.Field{}))

	attrs := convertFieldsToAttributes([]observability.Field{
		observability.String("a", "1"),
		observability.Int("b", 2),
	})
	assert.Equal(t, []attribute.KeyValue{attribute.String("a", "1"), attribute.Int("b", 2)}, attrs)
}
