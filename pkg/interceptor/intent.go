package interceptor

// Intent is what the interceptor does with the trace for one call.
type Intent int

const (
	// IntentSkip passes the call through untouched.
	IntentSkip Intent = iota
	// IntentContinue attaches to the ambient trace without starting a span.
	IntentContinue
	// IntentNew starts a child span unless the tracer declines.
	IntentNew
)

func (i Intent) String() string {
	switch i {
	case IntentContinue:
		return "continue"
	case IntentNew:
		return "new"
	default:
		return "skip"
	}
}

// Shape classifies how a method delivers its result.
type Shape int

const (
	ShapeUnsupported Shape = iota
	ShapeSynchronous
	ShapeDeferred
	ShapeStream
)

func (s Shape) String() string {
	switch s {
	case ShapeSynchronous:
		return "sync"
	case ShapeDeferred:
		return "deferred"
	case ShapeStream:
		return "stream"
	default:
		return "unsupported"
	}
}
