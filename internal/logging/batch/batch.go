package batch

import (
	"context"
	"sync"
	"time"

	"seqship/internal/logging"
)

// Processor is the scheduling harness around a BatchSink. Producers call
// AddEvent from any goroutine; a single background loop owns the buffer
// and invokes the sink, so OnBatch and OnIdle never overlap. The sink's
// admission filter is consulted before an event is buffered, and rejected
// events do not count toward the batch size.
type Processor struct {
	ctx    context.Context
	cancel context.CancelFunc
	sink   logging.BatchSink
	config logging.Config
	events chan logging.LogEvent
	wg     sync.WaitGroup
	debugf logging.DiagnosticFunc
}

func NewBatchProcessor(ctx context.Context, sink logging.BatchSink, config logging.Config) *Processor {
	if config.BatchSize <= 0 {
		config.BatchSize = 1000
	}
	if config.FlushPeriod <= 0 {
		config.FlushPeriod = 2 * time.Second
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 1
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = time.Second
	}
	if config.QueueSize <= 0 {
		config.QueueSize = 10000
	}
	debugf := config.Diagnostics
	if debugf == nil {
		debugf = func(string, ...any) {}
	}

	nCtx, cancel := context.WithCancel(ctx)
	return &Processor{
		ctx:    nCtx,
		cancel: cancel,
		sink:   sink,
		config: config,
		events: make(chan logging.LogEvent, config.QueueSize),
		debugf: debugf,
	}
}

// AddEvent queues an event for the next flush. Events the sink rejects are
// discarded immediately; events arriving while the queue is full are
// dropped with a diagnostic.
func (p *Processor) AddEvent(event logging.LogEvent) {
	if !p.sink.ShouldAccept(event.Level) {
		return
	}

	select {
	case <-p.ctx.Done():
	case p.events <- event:
	default:
		p.debugf("event queue full (%d), dropping event: %s", cap(p.events), event.Message)
	}
}

func (p *Processor) Start() {
	p.wg.Add(1)
	go p.run()
}

// Stop flushes whatever is still buffered, then closes the sink. Events
// produced after Stop are dropped.
func (p *Processor) Stop() {
	p.cancel()
	p.wg.Wait()

	if err := p.sink.Close(); err != nil {
		p.debugf("failed to close sink: %v", err)
	}
}

func (p *Processor) run() {
	defer p.wg.Done()

	buf := make([]logging.LogEvent, 0, p.config.BatchSize)
	ticker := time.NewTicker(p.config.FlushPeriod)
	defer ticker.Stop()

	for {
		select {
		case event := <-p.events:
			buf = append(buf, event)
			if len(buf) >= p.config.BatchSize {
				buf = p.flush(buf)
			}

		case <-ticker.C:
			if len(buf) > 0 {
				buf = p.flush(buf)
				continue
			}
			if err := p.sink.OnIdle(); err != nil {
				p.debugf("idle probe failed: %v", err)
			}

		case <-p.ctx.Done():
			for {
				select {
				case event := <-p.events:
					buf = append(buf, event)
				default:
					if len(buf) > 0 {
						p.flush(buf)
					}
					return
				}
			}
		}
	}
}

// flush delivers one batch, retrying transient failures with a linearly
// growing delay. A batch that exhausts its retries is dropped.
func (p *Processor) flush(buf []logging.LogEvent) []logging.LogEvent {
	batch := make([]logging.LogEvent, len(buf))
	copy(batch, buf)

	var err error
	for attempt := 0; attempt < p.config.MaxRetries; attempt++ {
		if err = p.sink.OnBatch(batch); err == nil {
			return buf[:0]
		}
		if attempt < p.config.MaxRetries-1 {
			p.debugf("retry %d/%d after error: %v", attempt+1, p.config.MaxRetries, err)
			time.Sleep(time.Duration(attempt+1) * p.config.RetryDelay)
		}
	}

	p.debugf("dropping batch of %d events after %d attempts: %v", len(batch), p.config.MaxRetries, err)
	return buf[:0]
}
