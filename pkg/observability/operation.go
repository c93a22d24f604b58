package observability

import "strings"

const (
	// CodeNamespaceKey is the attribute carrying the declaring type.
	CodeNamespaceKey = "code.namespace"
	// CodeFunctionKey is the attribute carrying the method name.
	CodeFunctionKey = "code.function"
)

// Operation identifies an instrumented method: the declaring type and the
// method name. It is the key spans are named by.
type Operation struct {
	Type   string
	Method string
}

// NewOperation returns the operation for typeName.method. A non-empty
// override is appended to the method component as "#override".
func NewOperation(typeName, method, override string) Operation {
	if override != "" {
		method = method + "#" + override
	}
	return Operation{Type: typeName, Method: method}
}

// SpanName is the name spans for this operation are recorded under.
func (o Operation) SpanName() string {
	if o.Type == "" {
		return o.Method
	}
	return o.Type + "." + o.Method
}

// String renders the operation as "Type / Method".
func (o Operation) String() string {
	return o.Type + " / " + o.Method
}

// Fields returns the code attributes describing the operation.
func (o Operation) Fields() []Field {
	return []Field{
		String(CodeNamespaceKey, o.Type),
		String(CodeFunctionKey, o.Method),
	}
}

// Matches reports whether pattern selects the operation. Patterns are a span
// name ("OrderService.Place"), a bare type ("OrderService"), or a type
// wildcard ("OrderService.*").
func (o Operation) Matches(pattern string) bool {
	switch {
	case pattern == "":
		return false
	case pattern == o.SpanName(), pattern == o.Type:
		return true
	case strings.HasSuffix(pattern, ".*"):
		return strings.TrimSuffix(pattern, ".*") == o.Type
	default:
		return false
	}
}
