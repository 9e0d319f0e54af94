package logging

import (
	"time"
)

type LogEvent struct {
	Timestamp  time.Time
	Level      Level
	Message    string
	Properties map[string]string
}

// Formatter renders a single event to its wire JSON representation.
type Formatter interface {
	Format(event LogEvent) ([]byte, error)
}

// BatchSink receives flushed batches from an EventProcessor. OnBatch and
// OnIdle are invoked serially by a single flush loop, never concurrently.
// ShouldAccept may be called from any producer goroutine.
type BatchSink interface {
	ShouldAccept(level Level) bool
	OnBatch(events []LogEvent) error
	OnIdle() error
	Close() error
}

type EventProcessor interface {
	AddEvent(event LogEvent)
	Start()
	Stop()
}

// DiagnosticFunc receives self-diagnostic messages (dropped events, failed
// flushes). It must never block.
type DiagnosticFunc func(format string, args ...any)

type Config struct {
	BatchSize   int
	FlushPeriod time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
	QueueSize   int
	Diagnostics DiagnosticFunc
}
