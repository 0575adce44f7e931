package postgresengine

import (
	"context"
	"math"
	"time"
)

const (
	logAttrError      = "error"
	logAttrQuery      = "query"
	logAttrDurationMS = "duration_ms"

	metricOperationDuration = "eventsourcery_operation_duration_seconds"
	metricDatabaseErrors    = "eventsourcery_database_errors_total"

	labelOperation = "operation"
	labelStatus    = "status"
	labelErrorType = "error_type"

	statusSuccess = "success"
	statusError   = "error"
)

// observability bundles the optional logging and metrics sinks shared by
// the EventStore and the Tracker. All methods are nil-guarded.
type observability struct {
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
}

// logSQLWithDuration logs executed SQL with timing at debug level.
func (o observability) logSQLWithDuration(ctx context.Context, action, sqlQuery string, duration time.Duration) {
	if o.logger != nil {
		o.logger.Debug("executed sql for: "+action, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
	}

	if o.contextualLogger != nil {
		o.contextualLogger.DebugContext(ctx, "executed sql for: "+action, logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level.
func (o observability) logOperation(ctx context.Context, msg string, args ...any) {
	if o.logger != nil {
		o.logger.Info(msg, args...)
	}

	if o.contextualLogger != nil {
		o.contextualLogger.InfoContext(ctx, msg, args...)
	}
}

// logWarning logs non-critical issues at warn level.
func (o observability) logWarning(ctx context.Context, msg string, args ...any) {
	if o.logger != nil {
		o.logger.Warn(msg, args...)
	}

	if o.contextualLogger != nil {
		o.contextualLogger.WarnContext(ctx, msg, args...)
	}
}

// logError logs failures at error level.
func (o observability) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := append([]any{logAttrError, err.Error()}, args...)

	if o.logger != nil {
		o.logger.Error(msg, allArgs...)
	}

	if o.contextualLogger != nil {
		o.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	}
}

// recordOperationDuration records a successful operation's duration.
func (o observability) recordOperationDuration(operation string, duration time.Duration) {
	if o.metricsCollector != nil {
		o.metricsCollector.RecordDuration(metricOperationDuration, duration, map[string]string{
			labelOperation: operation,
			labelStatus:    statusSuccess,
		})
	}
}

// recordErrorMetrics counts a failed database operation.
func (o observability) recordErrorMetrics(operation, errorType string) {
	if o.metricsCollector != nil {
		o.metricsCollector.IncrementCounter(metricDatabaseErrors, map[string]string{
			labelOperation: operation,
			labelStatus:    statusError,
			labelErrorType: errorType,
		})
	}
}

// toMilliseconds converts a duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
