// Package fake provides capturing observability doubles for tests. Spans
// started by FakeTracer are carried in the context, so parent/child links,
// tags, recorded errors and end counts can all be asserted on.
package fake

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
)

// Provider bundles the fake tracer, logger and metrics.
type Provider struct {
	tracer  *FakeTracer
	logger  *FakeLogger
	metrics *FakeMetrics
}

// NewProvider creates a fake provider whose tracer accepts every operation.
func NewProvider() *Provider {
	return &Provider{
		tracer:  NewFakeTracer(),
		logger:  NewFakeLogger(),
		metrics: NewFakeMetrics(),
	}
}

func (p *Provider) Tracer() observability.Tracer {
	return p.tracer
}

func (p *Provider) Logger() observability.Logger {
	return p.logger
}

func (p *Provider) Metrics() observability.Metrics {
	return p.metrics
}

// FakeTracer returns the concrete tracer for assertions.
func (p *Provider) FakeTracer() *FakeTracer {
	return p.tracer
}

// FakeLogger returns the concrete logger for assertions.
func (p *Provider) FakeLogger() *FakeLogger {
	return p.logger
}

// FakeMetrics returns the concrete metrics recorder for assertions.
func (p *Provider) FakeMetrics() *FakeMetrics {
	return p.metrics
}

type spanKey struct{}

var spanIDs atomic.Uint64

// FakeTracer records every span it starts.
type FakeTracer struct {
	mu          sync.RWMutex
	spans       []*FakeSpan
	shouldStart func(context.Context, observability.Operation) bool
	decisions   []observability.Operation
}

// NewFakeTracer creates a tracer that accepts every operation.
func NewFakeTracer() *FakeTracer {
	return &FakeTracer{}
}

// SetShouldStart replaces the start decision. A nil fn restores "always start".
func (t *FakeTracer) SetShouldStart(fn func(context.Context, observability.Operation) bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shouldStart = fn
}

// ShouldStart records the query and applies the configured decision.
func (t *FakeTracer) ShouldStart(ctx context.Context, op observability.Operation) bool {
	t.mu.Lock()
	t.decisions = append(t.decisions, op)
	fn := t.shouldStart
	t.mu.Unlock()

	if fn == nil {
		return true
	}
	return fn(ctx, op)
}

// Start creates a span parented on the span carried by ctx, if any.
func (t *FakeTracer) Start(ctx context.Context, spanName string, opts ...observability.SpanOption) (context.Context, observability.Span) {
	cfg := observability.NewSpanConfig(opts)

	span := &FakeSpan{
		ID:         fmt.Sprintf("%016x", spanIDs.Add(1)),
		Name:       spanName,
		Kind:       cfg.Kind(),
		StartTime:  time.Now(),
		Attributes: append([]observability.Field(nil), cfg.Attributes()...),
	}
	if parent, ok := ctx.Value(spanKey{}).(*FakeSpan); ok {
		span.ParentID = parent.ID
	}

	t.mu.Lock()
	t.spans = append(t.spans, span)
	t.mu.Unlock()

	return context.WithValue(ctx, spanKey{}, span), span
}

// SpanFromContext returns the span carried by ctx, or a detached span that
// is not recorded by the tracer.
func (t *FakeTracer) SpanFromContext(ctx context.Context) observability.Span {
	if span, ok := ctx.Value(spanKey{}).(*FakeSpan); ok {
		return span
	}
	return &FakeSpan{}
}

// ContextWithSpan stores span in ctx when it is a *FakeSpan.
func (t *FakeTracer) ContextWithSpan(ctx context.Context, span observability.Span) context.Context {
	fs, ok := span.(*FakeSpan)
	if !ok || fs.ID == "" {
		return ctx
	}
	return context.WithValue(ctx, spanKey{}, fs)
}

// GetSpans returns the started spans in start order.
func (t *FakeTracer) GetSpans() []*FakeSpan {
	t.mu.RLock()
	defer t.mu.RUnlock()
	result := make([]*FakeSpan, len(t.spans))
	copy(result, t.spans)
	return result
}

// SpanByName returns the first span started under name.
func (t *FakeTracer) SpanByName(name string) (*FakeSpan, bool) {
	for _, span := range t.GetSpans() {
		if span.Name == name {
			return span, true
		}
	}
	return nil, false
}

// Decisions returns the operations ShouldStart was asked about.
func (t *FakeTracer) Decisions() []observability.Operation {
	t.mu.RLock()
	defer t.mu.RUnlock()
	result := make([]observability.Operation, len(t.decisions))
	copy(result, t.decisions)
	return result
}

// Reset clears spans and decisions. The start decision is kept.
func (t *FakeTracer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spans = nil
	t.decisions = nil
}

// FakeSpan captures span operations for assertions.
type FakeSpan struct {
	mu         sync.RWMutex
	ID         string
	ParentID   string
	Name       string
	Kind       observability.SpanKind
	StartTime  time.Time
	EndTime    *time.Time
	EndCount   int
	Attributes []observability.Field
	Events     []FakeEvent
	Status     observability.StatusCode
	StatusDesc string
	Errors     []error
}

// End marks the span as ended and counts the call.
func (s *FakeSpan) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.EndTime = &now
	s.EndCount++
}

func (s *FakeSpan) SetAttributes(fields ...observability.Field) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Attributes = append(s.Attributes, fields...)
}

func (s *FakeSpan) SetStatus(code observability.StatusCode, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Status = code
	s.StatusDesc = description
}

// RecordError appends err to the recorded errors.
func (s *FakeSpan) RecordError(err error, fields ...observability.Field) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errors = append(s.Errors, err)
	s.Attributes = append(s.Attributes, fields...)
}

func (s *FakeSpan) AddEvent(name string, fields ...observability.Field) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, FakeEvent{Name: name, Timestamp: time.Now(), Fields: fields})
}

func (s *FakeSpan) Context() observability.SpanContext {
	return FakeSpanContext{spanID: s.ID, sampled: s.ID != ""}
}

// Ended reports how many times End was called.
func (s *FakeSpan) Ended() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.EndCount
}

// RecordedErrors returns a copy of the recorded errors.
func (s *FakeSpan) RecordedErrors() []error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]error(nil), s.Errors...)
}

// Attribute returns the last value set for key.
func (s *FakeSpan) Attribute(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.Attributes) - 1; i >= 0; i-- {
		if s.Attributes[i].Key == key {
			return s.Attributes[i].Value, true
		}
	}
	return nil, false
}

// AttributeMap flattens the attributes, later values winning.
func (s *FakeSpan) AttributeMap() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.Attributes))
	for _, f := range s.Attributes {
		out[f.Key] = f.Value
	}
	return out
}

// FakeEvent is a recorded span event.
type FakeEvent struct {
	Name      string
	Timestamp time.Time
	Fields    []observability.Field
}

// FakeSpanContext carries the fake span id under a fixed trace id.
type FakeSpanContext struct {
	spanID  string
	sampled bool
}

func (c FakeSpanContext) TraceID() string {
	if c.spanID == "" {
		return ""
	}
	return "fake-trace-id"
}

func (c FakeSpanContext) SpanID() string {
	return c.spanID
}

func (c FakeSpanContext) IsSampled() bool {
	return c.sampled
}

// FakeLogger captures log entries. Children created by With share storage
// with their parent.
type FakeLogger struct {
	mu      *sync.RWMutex
	entries *[]LogEntry
	fields  []observability.Field
}

// NewFakeLogger creates an empty capturing logger.
func NewFakeLogger() *FakeLogger {
	entries := make([]LogEntry, 0)
	return &FakeLogger{mu: &sync.RWMutex{}, entries: &entries}
}

func (l *FakeLogger) Debug(ctx context.Context, msg string, fields ...observability.Field) {
	l.append(observability.LogLevelDebug, msg, fields)
}

func (l *FakeLogger) Info(ctx context.Context, msg string, fields ...observability.Field) {
	l.append(observability.LogLevelInfo, msg, fields)
}

func (l *FakeLogger) Warn(ctx context.Context, msg string, fields ...observability.Field) {
	l.append(observability.LogLevelWarn, msg, fields)
}

func (l *FakeLogger) Error(ctx context.Context, msg string, fields ...observability.Field) {
	l.append(observability.LogLevelError, msg, fields)
}

func (l *FakeLogger) append(level observability.LogLevel, msg string, fields []observability.Field) {
	all := make([]observability.Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)

	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = append(*l.entries, LogEntry{
		Level:     level,
		Message:   msg,
		Fields:    all,
		Timestamp: time.Now(),
	})
}

func (l *FakeLogger) With(fields ...observability.Field) observability.Logger {
	merged := make([]observability.Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &FakeLogger{mu: l.mu, entries: l.entries, fields: merged}
}

// GetEntries returns the captured entries.
func (l *FakeLogger) GetEntries() []LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make([]LogEntry, len(*l.entries))
	copy(result, *l.entries)
	return result
}

// Reset clears captured entries.
func (l *FakeLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.entries = make([]LogEntry, 0)
}

// LogEntry is a captured log call.
type LogEntry struct {
	Level     observability.LogLevel
	Message   string
	Fields    []observability.Field
	Timestamp time.Time
}

// FakeMetrics captures instrument updates keyed by instrument name.
type FakeMetrics struct {
	mu         sync.RWMutex
	counters   map[string]*FakeCounter
	histograms map[string]*FakeHistogram
}

// NewFakeMetrics creates an empty recorder.
func NewFakeMetrics() *FakeMetrics {
	return &FakeMetrics{
		counters:   make(map[string]*FakeCounter),
		histograms: make(map[string]*FakeHistogram),
	}
}

func (m *FakeMetrics) Counter(name, description, unit string) observability.Counter {
	return m.counter(name)
}

// UpDownCounter shares storage with counters; Total may go negative.
func (m *FakeMetrics) UpDownCounter(name, description, unit string) observability.UpDownCounter {
	return m.counter(name)
}

func (m *FakeMetrics) counter(name string) *FakeCounter {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.counters[name]; ok {
		return c
	}
	c := &FakeCounter{Name: name}
	m.counters[name] = c
	return c
}

func (m *FakeMetrics) Histogram(name, description, unit string) observability.Histogram {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.histograms[name]; ok {
		return h
	}
	h := &FakeHistogram{Name: name}
	m.histograms[name] = h
	return h
}

// GetCounter returns the counter registered under name, or nil.
func (m *FakeMetrics) GetCounter(name string) *FakeCounter {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[name]
}

// GetHistogram returns the histogram registered under name, or nil.
func (m *FakeMetrics) GetHistogram(name string) *FakeHistogram {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.histograms[name]
}

// FakeCounter captures counter and up-down counter updates.
type FakeCounter struct {
	mu     sync.RWMutex
	Name   string
	values []CounterValue
}

func (c *FakeCounter) Add(ctx context.Context, value int64, fields ...observability.Field) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = append(c.values, CounterValue{Value: value, Fields: fields, Timestamp: time.Now()})
}

func (c *FakeCounter) Increment(ctx context.Context, fields ...observability.Field) {
	c.Add(ctx, 1, fields...)
}

// Total sums every captured update.
func (c *FakeCounter) Total() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var total int64
	for _, v := range c.values {
		total += v.Value
	}
	return total
}

// GetValues returns the captured updates.
func (c *FakeCounter) GetValues() []CounterValue {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]CounterValue(nil), c.values...)
}

// CounterValue is a captured counter update.
type CounterValue struct {
	Value     int64
	Fields    []observability.Field
	Timestamp time.Time
}

// FakeHistogram captures recorded values.
type FakeHistogram struct {
	mu     sync.RWMutex
	Name   string
	values []float64
}

func (h *FakeHistogram) Record(ctx context.Context, value float64, fields ...observability.Field) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.values = append(h.values, value)
}

// GetValues returns the recorded values.
func (h *FakeHistogram) GetValues() []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]float64(nil), h.values...)
}
