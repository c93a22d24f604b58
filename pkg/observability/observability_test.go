package observability_test

import (
	"errors"
	"testing"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"github.com/stretchr/testify/assert"
)

func TestFieldHelpers(t *testing.T) {
	tests := []struct {
		name      string
		field     observability.Field
		wantKey   string
		wantValue any
	}{
		{name: "String field", field: observability.String("name", "test"), wantKey: "name", wantValue: "test"},
		{name: "Int field", field: observability.Int("count", 10), wantKey: "count", wantValue: 10},
		{name: "Int64 field", field: observability.Int64("big_count", 1000000), wantKey: "big_count", wantValue: int64(1000000)},
		{name: "Float64 field", field: observability.Float64("price", 99.99), wantKey: "price", wantValue: 99.99},
		{name: "Bool field", field: observability.Bool("enabled", false), wantKey: "enabled", wantValue: false},
		{name: "Any field", field: observability.Any("ids", []int{1, 2}), wantKey: "ids", wantValue: []int{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKey, tt.field.Key)
			assert.Equal(t, tt.wantValue, tt.field.Value)
		})
	}
}

func TestErrorField(t *testing.T) {
	testErr := errors.New("test error")
	field := observability.Error(testErr)

	assert.Equal(t, "error", field.Key)
	assert.Same(t, testErr, field.Value)
	assert.Equal(t, "test error", field.StringValue())
}

func TestFieldStringValue(t *testing.T) {
	assert.Equal(t, "42", observability.Int("n", 42).StringValue())
	assert.Equal(t, "true", observability.Bool("b", true).StringValue())
	assert.Equal(t, "plain", observability.String("s", "plain").StringValue())
}

func TestNewOperation(t *testing.T) {
	t.Run("without override", func(t *testing.T) {
		op := observability.NewOperation("OrderService", "placeOrder", "")

		assert.Equal(t, "OrderService", op.Type)
		assert.Equal(t, "placeOrder", op.Method)
		assert.Equal(t, "OrderService / placeOrder", op.String())
		assert.Equal(t, "OrderService.placeOrder", op.SpanName())
	})

	t.Run("with override", func(t *testing.T) {
		op := observability.NewOperation("OrderService", "placeOrder", "checkout")

		assert.Equal(t, "placeOrder#checkout", op.Method)
		assert.Equal(t, "OrderService / placeOrder#checkout", op.String())
		assert.Equal(t, "OrderService.placeOrder#checkout", op.SpanName())
	})

	t.Run("code attributes", func(t *testing.T) {
		op := observability.NewOperation("OrderService", "placeOrder", "")

		assert.Equal(t, []observability.Field{
			observability.String(observability.CodeNamespaceKey, "OrderService"),
			observability.String(observability.CodeFunctionKey, "placeOrder"),
		}, op.Fields())
	})
}

func TestOperationMatches(t *testing.T) {
	op := observability.NewOperation("OrderService", "Place", "")

	tests := []struct {
		pattern string
		want    bool
	}{
		{"OrderService.Place", true},
		{"OrderService", true},
		{"OrderService.*", true},
		{"OrderService.Cancel", false},
		{"PaymentService.*", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, op.Matches(tt.pattern))
		})
	}
}

func TestNewSpanConfig(t *testing.T) {
	cfg := observability.NewSpanConfig(nil)
	assert.Equal(t, observability.SpanKindInternal, cfg.Kind())
	assert.Empty(t, cfg.Attributes())

	cfg = observability.NewSpanConfig([]observability.SpanOption{
		observability.WithSpanKind(observability.SpanKindClient),
		observability.WithAttributes(observability.String("a", "1")),
		observability.WithAttributes(observability.String("b", "2")),
	})
	assert.Equal(t, observability.SpanKindClient, cfg.Kind())
	assert.Len(t, cfg.Attributes(), 2)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, observability.LogLevelDebug, observability.ParseLogLevel("DEBUG"))
	assert.Equal(t, observability.LogLevelWarn, observability.ParseLogLevel("warning"))
	assert.Equal(t, observability.LogLevelError, observability.ParseLogLevel(" error "))
	assert.Equal(t, observability.LogLevelInfo, observability.ParseLogLevel("verbose"))
}
