package postgresengine

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNilDatabaseConnection is returned when a constructor receives a nil database handle.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyEventsTableName is returned when an empty events table name is supplied.
	ErrEmptyEventsTableName = errors.New("events table name must not be empty")

	// ErrEmptyTrackerTableName is returned when an empty tracker table name is supplied.
	ErrEmptyTrackerTableName = errors.New("tracker table name must not be empty")
)

// Logger interface for SQL query logging, operational messages, warnings
// and error reporting. It is satisfied by *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// ContextualLogger interface for context-aware logging with automatic trace
// correlation. It is dependency-free so any logging backend that supports
// context-based correlation can be plugged in (see the oteladapters package).
type ContextualLogger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

// MetricsCollector interface for collecting engine performance and
// operational metrics.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// settings holds the shared configuration applied by Option values.
type settings struct {
	eventsTableName  string
	trackerTableName string
	observability
}

// Option defines a functional option for configuring the EventStore and
// the Tracker.
type Option func(*settings) error

// WithEventsTableName sets the table name events are stored in.
func WithEventsTableName(tableName string) Option {
	return func(s *settings) error {
		if tableName == "" {
			return ErrEmptyEventsTableName
		}

		s.eventsTableName = tableName

		return nil
	}
}

// WithTrackerTableName sets the table name reactor positions are stored in.
func WithTrackerTableName(tableName string) Option {
	return func(s *settings) error {
		if tableName == "" {
			return ErrEmptyTrackerTableName
		}

		s.trackerTableName = tableName

		return nil
	}
}

// WithLogger sets the logger.
//
// Debug level: SQL statements with execution timing (development use)
// Info level: event counts and durations (production-safe)
// Warn level: non-critical issues like cleanup failures
// Error level: failures that cause operation errors.
func WithLogger(logger Logger) Option {
	return func(s *settings) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger. Messages carry the
// operation context, enabling automatic trace/span correlation when a
// tracing-aware backend is plugged in.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(s *settings) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector. It receives operation durations,
// appended/read event counts and database error counters.
func WithMetrics(collector MetricsCollector) Option {
	return func(s *settings) error {
		s.metricsCollector = collector
		return nil
	}
}

func defaultSettings() settings {
	return settings{
		eventsTableName:  defaultEventsTableName,
		trackerTableName: defaultTrackerTableName,
	}
}

func applyOptions(options []Option) (settings, error) {
	s := defaultSettings()

	for _, option := range options {
		if err := option(&s); err != nil {
			return settings{}, err
		}
	}

	return s, nil
}
