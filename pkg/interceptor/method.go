package interceptor

import (
	"fmt"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
)

// TagDirective copies the argument at Index onto the span under Name.
type TagDirective struct {
	Index int
	Name  string
}

// Method is the static description of an instrumented method. Build it once
// with NewMethod and share it between calls; it is never mutated afterwards.
type Method struct {
	typeName string
	name     string

	continueSpan bool
	newSpan      bool
	override     string

	params []string
	tags   []TagDirective
}

// MethodOption configures a Method.
type MethodOption func(*Method)

// NewSpan marks the method as starting a new span. A non-empty name is
// appended to the span name as "#name".
func NewSpan(name string) MethodOption {
	return func(m *Method) {
		m.newSpan = true
		m.override = name
	}
}

// WithSpan behaves like NewSpan.
func WithSpan(name string) MethodOption {
	return NewSpan(name)
}

// ContinueSpan marks the method as continuing the ambient trace. It wins
// over NewSpan when both are declared.
func ContinueSpan() MethodOption {
	return func(m *Method) {
		m.continueSpan = true
	}
}

// Params declares the parameter names in order. They name tags that were
// declared without an explicit name.
func Params(names ...string) MethodOption {
	return func(m *Method) {
		m.params = append([]string(nil), names...)
	}
}

// SpanTag tags the argument at index. An empty name falls back to the
// declared parameter name.
func SpanTag(index int, name string) MethodOption {
	return func(m *Method) {
		m.tags = append(m.tags, TagDirective{Index: index, Name: name})
	}
}

// NewMethod describes typeName.name.
func NewMethod(typeName, name string, opts ...MethodOption) *Method {
	m := &Method{typeName: typeName, name: name}
	for _, opt := range opts {
		opt(m)
	}

	for i, tag := range m.tags {
		if tag.Name != "" {
			continue
		}
		if tag.Index >= 0 && tag.Index < len(m.params) && m.params[tag.Index] != "" {
			m.tags[i].Name = m.params[tag.Index]
		} else {
			m.tags[i].Name = fmt.Sprintf("arg%d", tag.Index)
		}
	}
	return m
}

func (m *Method) Type() string {
	return m.typeName
}

func (m *Method) Name() string {
	return m.name
}

// Key is the registry key, "Type.Name".
func (m *Method) Key() string {
	return m.typeName + "." + m.name
}

// Intent resolves the declared annotations to a single intent.
func (m *Method) Intent() Intent {
	switch {
	case m == nil:
		return IntentSkip
	case m.continueSpan:
		return IntentContinue
	case m.newSpan:
		return IntentNew
	default:
		return IntentSkip
	}
}

// Operation is the identity spans for this method are named by. The
// override only applies to the new-span intent.
func (m *Method) Operation() observability.Operation {
	if m.Intent() == IntentNew {
		return observability.NewOperation(m.typeName, m.name, m.override)
	}
	return observability.NewOperation(m.typeName, m.name, "")
}

// Tags returns the resolved tag directives.
func (m *Method) Tags() []TagDirective {
	return append([]TagDirective(nil), m.tags...)
}
