package observability

import (
	"context"
	"os"
	"time"
)

type SanitizerFunc func(key string, value any) any

// LogEntry represents a structured log entry.
//
// This type is intentionally small and stable so implementations can adapt it to their backend.
type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`

	RunID  string `json:"run_id,omitempty"`
	Stack  string `json:"stack,omitempty"`
	Site   string `json:"site,omitempty"`
	Region string `json:"region,omitempty"`
}

// StructuredLogger is the logging surface used across synth, deploy, and
// verification tooling.
//
// Scoping methods return derived loggers; implementations sanitize field
// values so credential material never reaches a sink.
type StructuredLogger interface {
	Debug(message string, fields ...map[string]any)
	Info(message string, fields ...map[string]any)
	Warn(message string, fields ...map[string]any)
	Error(message string, fields ...map[string]any)

	WithField(key string, value any) StructuredLogger
	WithFields(fields map[string]any) StructuredLogger

	WithRunID(runID string) StructuredLogger
	WithStack(stack string) StructuredLogger
	WithSite(site string) StructuredLogger
	WithRegion(region string) StructuredLogger

	Flush(ctx context.Context) error
	Close() error
	IsHealthy() bool
	GetStats() LoggerStats
}

type LoggerStats struct {
	LastFlush     time.Time     `json:"last_flush"`
	LastError     string        `json:"last_error,omitempty"`
	EntriesLogged int64         `json:"entries_logged"`
	FlushCount    int64         `json:"flush_count"`
	ErrorCount    int64         `json:"error_count"`
	AverageFlush  time.Duration `json:"average_flush_time"`
}

// LoggerConfig configures logger implementations.
type LoggerConfig struct {
	Format       string `json:"format"`
	Level        string `json:"level"`
	EnableStack  bool   `json:"enable_stack"`
	EnableCaller bool   `json:"enable_caller"`
}

type LoggerFactory interface {
	CreateConsoleLogger(config LoggerConfig) (StructuredLogger, error)
	CreateTestLogger() StructuredLogger
	CreateNoOpLogger() StructuredLogger
}

// RunningInCI reports whether the process runs under a CI system.
// Implementations use it to default to machine-readable output.
func RunningInCI() bool {
	return os.Getenv("GITHUB_ACTIONS") != "" || os.Getenv("CI") != ""
}
