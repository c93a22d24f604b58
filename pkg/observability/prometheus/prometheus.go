// Package prometheus implements observability.Metrics on
// github.com/prometheus/client_golang.
//
// The facade does not declare label names up front, so each instrument
// registers its vector on first use with the keys of that call's fields.
// Later calls fill missing labels with "" and drop unknown ones.
package prometheus

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics hands out Prometheus-backed instruments registered on a single registerer.
type Metrics struct {
	namespace  string
	registerer prometheus.Registerer

	mu          sync.Mutex
	instruments map[string]*instrument
}

// New creates a Metrics that registers on reg under namespace.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	return &Metrics{
		namespace:   namespace,
		registerer:  reg,
		instruments: make(map[string]*instrument),
	}
}

func (m *Metrics) Counter(name, description, unit string) observability.Counter {
	return m.instrument(kindCounter, name, description)
}

func (m *Metrics) Histogram(name, description, unit string) observability.Histogram {
	return m.instrument(kindHistogram, name, description)
}

func (m *Metrics) UpDownCounter(name, description, unit string) observability.UpDownCounter {
	return m.instrument(kindGauge, name, description)
}

func (m *Metrics) instrument(kind instrumentKind, name, description string) *instrument {
	name = sanitizeName(name)

	m.mu.Lock()
	defer m.mu.Unlock()

	if inst, ok := m.instruments[name]; ok {
		return inst
	}
	if description == "" {
		description = name
	}
	inst := &instrument{
		kind:       kind,
		opts:       prometheus.Opts{Namespace: m.namespace, Name: name, Help: description},
		registerer: m.registerer,
	}
	m.instruments[name] = inst
	return inst
}

type instrumentKind int

const (
	kindCounter instrumentKind = iota
	kindHistogram
	kindGauge
)

type instrument struct {
	kind       instrumentKind
	opts       prometheus.Opts
	registerer prometheus.Registerer

	once      sync.Once
	labels    []string
	counter   *prometheus.CounterVec
	histogram *prometheus.HistogramVec
	gauge     *prometheus.GaugeVec
	failed    bool
}

func (i *instrument) init(fields []observability.Field) {
	i.once.Do(func() {
		i.labels = labelNames(fields)

		var collector prometheus.Collector
		switch i.kind {
		case kindCounter:
			i.counter = prometheus.NewCounterVec(prometheus.CounterOpts(i.opts), i.labels)
			collector = i.counter
		case kindHistogram:
			i.histogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: i.opts.Namespace,
				Name:      i.opts.Name,
				Help:      i.opts.Help,
				Buckets:   prometheus.DefBuckets,
			}, i.labels)
			collector = i.histogram
		case kindGauge:
			i.gauge = prometheus.NewGaugeVec(prometheus.GaugeOpts(i.opts), i.labels)
			collector = i.gauge
		}

		if err := i.registerer.Register(collector); err != nil {
			i.failed = true
		}
	})
}

func (i *instrument) labelValues(fields []observability.Field) []string {
	values := make([]string, len(i.labels))
	for _, f := range fields {
		key := sanitizeName(f.Key)
		for idx, name := range i.labels {
			if name == key {
				values[idx] = f.StringValue()
			}
		}
	}
	return values
}

func (i *instrument) Add(ctx context.Context, value int64, fields ...observability.Field) {
	i.init(fields)
	if i.failed {
		return
	}
	values := i.labelValues(fields)
	switch i.kind {
	case kindCounter:
		if value > 0 {
			i.counter.WithLabelValues(values...).Add(float64(value))
		}
	case kindGauge:
		i.gauge.WithLabelValues(values...).Add(float64(value))
	case kindHistogram:
		i.histogram.WithLabelValues(values...).Observe(float64(value))
	}
}

func (i *instrument) Increment(ctx context.Context, fields ...observability.Field) {
	i.Add(ctx, 1, fields...)
}

func (i *instrument) Record(ctx context.Context, value float64, fields ...observability.Field) {
	i.init(fields)
	if i.failed || i.kind != kindHistogram {
		return
	}
	i.histogram.WithLabelValues(i.labelValues(fields)...).Observe(value)
}

func labelNames(fields []observability.Field) []string {
	seen := make(map[string]struct{}, len(fields))
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		name := sanitizeName(f.Key)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// sanitizeName maps dotted OTel-style names to Prometheus identifiers.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == ':':
			return r
		default:
			return '_'
		}
	}, name)
}
