package reactor

import (
	"context"
	"errors"
	"time"
)

const (
	defaultBatchSize    = 100
	defaultPollInterval = 100 * time.Millisecond

	logMsgEventsProcessed = "reactor events processed"
	logAttrProcessor      = "processor"
	logAttrEventCount     = "event_count"
	logAttrPosition       = "position"
)

// ErrRunnerSourceMissing is returned when a Runner is constructed for a
// reactor that has no event source bound and none was supplied.
var ErrRunnerSourceMissing = errors.New("runner requires an event source")

// Logger interface for operational logging. It is satisfied by *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Runner is the dispatch loop driving a single Reactor: it polls the event
// source for events after the tracker's recorded position, processes them
// in order and advances the tracker per processed event.
//
// The Runner owns no retry or backoff policy; processing errors stop the
// loop and surface to the caller.
type Runner struct {
	reactor      *Reactor
	source       EventSource
	batchSize    int
	pollInterval time.Duration
	logger       Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithBatchSize sets the read batch size (limit) used when polling the
// event source.
func WithBatchSize(size int) RunnerOption {
	return func(run *Runner) {
		run.batchSize = size
	}
}

// WithPollInterval sets how long the Runner sleeps between polls once the
// stream is exhausted.
func WithPollInterval(interval time.Duration) RunnerOption {
	return func(run *Runner) {
		run.pollInterval = interval
	}
}

// WithLogger sets the logger for the Runner. Batch progress is logged at
// debug level.
func WithLogger(logger Logger) RunnerOption {
	return func(run *Runner) {
		run.logger = logger
	}
}

// WithRunnerEventSource sets the event source the Runner polls, overriding
// the source the reactor itself was constructed with.
func WithRunnerEventSource(source EventSource) RunnerOption {
	return func(run *Runner) {
		run.source = source
	}
}

// NewRunner constructs a Runner for the given reactor. The reactor's own
// event source is polled unless WithRunnerEventSource overrides it; a
// reactor without any source fails with ErrRunnerSourceMissing.
func NewRunner(reactor *Reactor, options ...RunnerOption) (*Runner, error) {
	run := &Runner{
		reactor:      reactor,
		source:       reactor.source,
		batchSize:    defaultBatchSize,
		pollInterval: defaultPollInterval,
	}

	for _, option := range options {
		option(run)
	}

	if run.source == nil {
		return nil, ErrRunnerSourceMissing
	}

	return run, nil
}

// RunOnce drains all currently available events: it reads batches from the
// source starting after the tracker's recorded position, processes each
// event in order and advances the tracker after each one. It returns the
// number of events processed.
func (run *Runner) RunOnce(ctx context.Context) (int, error) {
	processorName := run.reactor.definition.processorName
	processed := 0

	for {
		position, err := run.reactor.LastProcessedEventID(ctx)
		if err != nil {
			return processed, err
		}

		events, err := run.source.GetNextFrom(ctx, position, run.batchSize)
		if err != nil {
			return processed, err
		}

		if len(events) == 0 {
			return processed, nil
		}

		for _, event := range events {
			if processErr := run.reactor.Process(ctx, event); processErr != nil {
				return processed, processErr
			}

			if advanceErr := run.reactor.tracker.Advance(ctx, processorName, event.ID); advanceErr != nil {
				return processed, advanceErr
			}

			processed++
		}

		if run.logger != nil {
			run.logger.Debug(logMsgEventsProcessed,
				logAttrProcessor, processorName,
				logAttrEventCount, len(events),
				logAttrPosition, events[len(events)-1].ID)
		}
	}
}

// Run polls the event source until the context is canceled, draining
// available events and then sleeping for the poll interval. Context
// cancellation returns nil; any other error stops the loop and is returned
// to the caller, which owns retry and fatal decisions.
func (run *Runner) Run(ctx context.Context) error {
	if err := run.reactor.Setup(ctx); err != nil {
		return err
	}

	for {
		if _, err := run.RunOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}

			return err
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(run.pollInterval):
		}
	}
}
