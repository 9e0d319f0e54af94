package seq

import (
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"seqship/internal/logging"
)

const (
	// probeInterval bounds how often an idle sink re-checks the server's
	// minimum accepted level. Not configurable.
	probeInterval = 2 * time.Minute

	defaultRequestTimeout = 30 * time.Second

	levelUnset = int32(-1)
)

type Config struct {
	// ServerURL is the base address of the ingestion server. Required.
	ServerURL string
	// APIKey is sent in the X-Seq-ApiKey header when non-blank.
	APIKey string
	// EventBodyLimitBytes drops any single formatted event larger than
	// this many bytes. Zero means unlimited.
	EventBodyLimitBytes int
	// UseGzip compresses request bodies.
	UseGzip bool
	// RequestTimeout bounds each POST. Defaults to 30s.
	RequestTimeout time.Duration
	// Formatter renders single events. Defaults to logging.JSONFormatter.
	Formatter logging.Formatter
	// Diagnostics receives drop/failure notices. Defaults to a no-op.
	Diagnostics logging.DiagnosticFunc
}

// Sink ships event batches to a Seq-compatible ingestion endpoint and
// keeps a server-driven admission filter: after every successful delivery
// the server's advertised minimum level replaces the current one, and
// events below it are rejected before they are ever buffered.
//
// OnBatch and OnIdle must be invoked serially (the batch.Processor flush
// loop guarantees this). ShouldAccept is safe from any goroutine.
type Sink struct {
	enc    *encoder
	client *client

	minLevel  atomic.Int32
	nextProbe time.Time
	now       func() time.Time
}

func New(cfg Config) (*Sink, error) {
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	if _, err := url.Parse(cfg.ServerURL); err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", cfg.ServerURL, err)
	}

	formatter := cfg.Formatter
	if formatter == nil {
		formatter = logging.JSONFormatter{}
	}
	debugf := cfg.Diagnostics
	if debugf == nil {
		debugf = func(string, ...any) {}
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	s := &Sink{
		enc: &encoder{
			formatter: formatter,
			byteLimit: cfg.EventBodyLimitBytes,
			debugf:    debugf,
		},
		client: newClient(cfg.ServerURL, cfg.APIKey, cfg.UseGzip, timeout),
		now:    time.Now,
	}
	s.minLevel.Store(levelUnset)
	return s, nil
}

// ShouldAccept reports whether an event of the given level would currently
// be admitted. Events exactly at the minimum level are accepted.
func (s *Sink) ShouldAccept(level logging.Level) bool {
	min := s.minLevel.Load()
	return min == levelUnset || int32(level) >= min
}

// MinimumLevel returns the server-imposed minimum level, if any.
func (s *Sink) MinimumLevel() (logging.Level, bool) {
	min := s.minLevel.Load()
	if min == levelUnset {
		return 0, false
	}
	return logging.Level(min), true
}

func (s *Sink) OnBatch(events []logging.LogEvent) error {
	return s.send(events)
}

// OnIdle performs an empty delivery when the server has previously imposed
// a restriction and the probe deadline has elapsed. This is how a
// restrictive filter gets relaxed again while the restriction itself is
// suppressing the events that would otherwise trigger a flush.
func (s *Sink) OnIdle() error {
	if s.minLevel.Load() == levelUnset {
		return nil
	}
	if s.now().Before(s.nextProbe) {
		return nil
	}
	return s.send(nil)
}

func (s *Sink) send(events []logging.LogEvent) error {
	// Re-arm before the network call so a slow request cannot queue up
	// extra probes behind it.
	s.nextProbe = s.now().Add(probeInterval)

	min, err := s.client.deliver(s.enc.encode(events))
	if err != nil {
		return err
	}

	if min == nil {
		s.minLevel.Store(levelUnset)
	} else {
		s.minLevel.Store(int32(*min))
	}
	return nil
}

func (s *Sink) Close() error {
	s.client.close()
	return nil
}
