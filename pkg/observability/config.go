// Package observability provides OpenTelemetry tracing and metrics plus
// structured logging for every cypherast mode (CLI, MCP, LSP, server).
package observability

import (
	"fmt"
	"log/slog"
	"strings"
)

// AppMode identifies how the binary was launched.
type AppMode string

const (
	// ModeCLI is a one-shot CLI command.
	ModeCLI AppMode = "cli"
	// ModeMCP is the MCP stdio server.
	ModeMCP AppMode = "mcp"
	// ModeLSP is the language server.
	ModeLSP AppMode = "lsp"
	// ModeServe is the HTTP server.
	ModeServe AppMode = "serve"
)

const (
	defaultServiceName        = "cypherast"
	defaultShutdownTimeoutSec = 5
)

// Config holds all observability configuration.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the version of the running binary.
	ServiceVersion string

	// Environment is the deployment environment (e.g. "production", "dev").
	Environment string

	// Mode identifies how the binary was launched.
	Mode AppMode

	// OTLPEndpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	// Empty disables export; providers become no-op.
	OTLPEndpoint string

	// OTLPHeaders are additional gRPC metadata headers for the exporters.
	OTLPHeaders map[string]string

	// OTLPInsecure disables TLS for the OTLP connection.
	OTLPInsecure bool

	// DebugTrace forces full sampling and logs attributes dropped by the filter.
	DebugTrace bool

	// SampleRatio is the trace sampling ratio when DebugTrace is false.
	SampleRatio float64

	// LogLevel controls the minimum slog severity.
	LogLevel slog.Level

	// TraceVerbose keeps per-node and cache lookup spans.
	TraceVerbose bool

	// LogJSON selects JSON log output.
	LogJSON bool

	// ShutdownTimeoutSec bounds the flush on shutdown.
	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(strings.TrimSpace(name)))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log level %q: %w", name, err)
	}

	return level, nil
}
