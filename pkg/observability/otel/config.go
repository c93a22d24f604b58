package otel

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strings"

	"github.com/JailtonJunior94/devkit-tracing/pkg/observability"
)

// OTLPProtocol selects the OTLP transport.
type OTLPProtocol string

const (
	// ProtocolGRPC exports over gRPC (default port 4317).
	ProtocolGRPC OTLPProtocol = "grpc"
	// ProtocolHTTP exports over HTTP/protobuf (default port 4318).
	ProtocolHTTP OTLPProtocol = "http"
)

// Exporter selects where telemetry is sent.
type Exporter string

const (
	// ExporterOTLP sends traces, metrics and logs to an OTLP collector.
	ExporterOTLP Exporter = "otlp"
	// ExporterStdout pretty-prints spans to stdout. Metrics and logs stay local.
	ExporterStdout Exporter = "stdout"
	// ExporterNone keeps every signal in process.
	ExporterNone Exporter = "none"
)

var (
	ErrEmptyServiceName   = errors.New("service name cannot be empty")
	ErrInvalidSampleRate  = errors.New("trace sample rate must be between 0 and 1")
	ErrInsecureProduction = errors.New("insecure connections are not allowed in production environment")
	ErrWeakTLS            = errors.New("minimum TLS version must be 1.2 or higher")
	ErrUnknownExporter    = errors.New("unknown exporter")
)

// Config holds the configuration for the OpenTelemetry provider.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	Exporter     Exporter
	OTLPEndpoint string
	OTLPProtocol OTLPProtocol

	// Insecure allows plaintext OTLP connections outside production.
	Insecure  bool
	TLSConfig *tls.Config

	// TraceSampleRate is applied parent-based: 1 samples every root trace.
	TraceSampleRate float64

	// Disabled makes ShouldStart decline every operation.
	Disabled bool
	// SuppressedOperations lists operation patterns ShouldStart declines.
	// See observability.Operation.Matches for the pattern syntax.
	SuppressedOperations []string

	LogLevel  observability.LogLevel
	LogFormat observability.LogFormat

	ResourceAttributes map[string]string
}

// DefaultConfig returns a development configuration exporting over OTLP/gRPC.
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName:     serviceName,
		ServiceVersion:  "unknown",
		Environment:     "development",
		Exporter:        ExporterOTLP,
		OTLPEndpoint:    "localhost:4317",
		OTLPProtocol:    ProtocolGRPC,
		TraceSampleRate: 1.0,
		LogLevel:        observability.LogLevelInfo,
		LogFormat:       observability.LogFormatJSON,
	}
}

// Validate checks the configuration and normalizes the protocol and exporter names.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return ErrEmptyServiceName
	}
	if c.TraceSampleRate < 0 || c.TraceSampleRate > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidSampleRate, c.TraceSampleRate)
	}

	c.OTLPProtocol = normalizeProtocol(string(c.OTLPProtocol))
	exporter, err := normalizeExporter(string(c.Exporter))
	if err != nil {
		return err
	}
	c.Exporter = exporter

	return c.validateSecurity()
}

func (c *Config) validateSecurity() error {
	if c.Exporter != ExporterOTLP {
		return nil
	}

	env := strings.ToLower(c.Environment)
	if c.Insecure && (env == "production" || env == "prod") {
		return ErrInsecureProduction
	}
	if c.TLSConfig != nil && c.TLSConfig.MinVersion > 0 && c.TLSConfig.MinVersion < tls.VersionTLS12 {
		return ErrWeakTLS
	}
	return nil
}

func normalizeProtocol(protocol string) OTLPProtocol {
	switch strings.ToLower(protocol) {
	case "http", "http/protobuf":
		return ProtocolHTTP
	default:
		return ProtocolGRPC
	}
}

func normalizeExporter(exporter string) (Exporter, error) {
	switch Exporter(strings.ToLower(strings.TrimSpace(exporter))) {
	case ExporterOTLP, "":
		return ExporterOTLP, nil
	case ExporterStdout:
		return ExporterStdout, nil
	case ExporterNone:
		return ExporterNone, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownExporter, exporter)
	}
}
