package testutils

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"seqship/internal/logging"
)

// MockSink records every OnBatch and OnIdle invocation. FailTimes makes
// the next N OnBatch calls fail, and MinLevel drives ShouldAccept.
type MockSink struct {
	mu         sync.Mutex
	Batches    [][]logging.LogEvent
	IdleCalls  int
	CloseCalls int
	FailTimes  int
	MinLevel   *logging.Level
	Delay      time.Duration
}

func (m *MockSink) ShouldAccept(level logging.Level) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.MinLevel == nil || level >= *m.MinLevel
}

func (m *MockSink) OnBatch(events []logging.LogEvent) error {
	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailTimes > 0 {
		m.FailTimes--
		return fmt.Errorf("mock delivery failed")
	}

	batch := make([]logging.LogEvent, len(events))
	copy(batch, events)
	m.Batches = append(m.Batches, batch)
	return nil
}

func (m *MockSink) OnIdle() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.IdleCalls++
	return nil
}

func (m *MockSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalls++
	return nil
}

func (m *MockSink) GetBatches() [][]logging.LogEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Batches
}

func (m *MockSink) GetIdleCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.IdleCalls
}

type MockProcessor struct {
	Events        []logging.LogEvent
	mu            sync.Mutex
	AddEventDelay time.Duration
	AddEventCalls int
	StartCalls    int
	StopCalls     int
}

func (m *MockProcessor) AddEvent(event logging.LogEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AddEventDelay > 0 {
		time.Sleep(m.AddEventDelay)
	}

	m.Events = append(m.Events, event)
	m.AddEventCalls++
}

func (m *MockProcessor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartCalls++
}

func (m *MockProcessor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StopCalls++
}

func (m *MockProcessor) GetEvents() []logging.LogEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := make([]logging.LogEvent, len(m.Events))
	copy(events, m.Events)
	return events
}

func CreateTempLogStructure(t *testing.T) string {
	tempDir := t.TempDir()

	structure := map[string]string{
		"api/access.log":      "GET /healthz 200\nGET /orders 500\n",
		"api/error.log":       `{"level":"error","msg":"db timeout"}` + "\n",
		"worker/worker.log":   "[INFO] worker started\n[WARN] queue backlog\n",
		"billing/billing.log": "billing cycle complete\n",
		"db/postgres.log":     "checkpoint complete\n",
	}

	for path, content := range structure {
		fullPath := filepath.Join(tempDir, path)
		dir := filepath.Dir(fullPath)

		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create directory %s: %v", dir, err)
		}

		if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write file %s: %v", fullPath, err)
		}
	}

	return tempDir
}
