package seq

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seqship/internal/logging"
)

func newTestEncoder(byteLimit int, diagnostics *[]string) *encoder {
	return &encoder{
		formatter: logging.JSONFormatter{},
		byteLimit: byteLimit,
		debugf: func(format string, args ...any) {
			if diagnostics != nil {
				*diagnostics = append(*diagnostics, fmt.Sprintf(format, args...))
			}
		},
	}
}

func makeEvents(messages ...string) []logging.LogEvent {
	events := make([]logging.LogEvent, 0, len(messages))
	for _, msg := range messages {
		events = append(events, logging.LogEvent{
			Timestamp: time.Now(),
			Level:     logging.Information,
			Message:   msg,
		})
	}
	return events
}

func TestEncoder_EmptyBatch(t *testing.T) {
	enc := newTestEncoder(0, nil)
	assert.Equal(t, `{"Events":[]}`, string(enc.encode(nil)))
	assert.Equal(t, `{"Events":[]}`, string(enc.encode([]logging.LogEvent{})))
}

func TestEncoder_PreservesOrderAndBytes(t *testing.T) {
	enc := newTestEncoder(0, nil)
	events := makeEvents("first", "second", "third")

	payload := enc.encode(events)

	var envelope struct {
		Events []json.RawMessage `json:"Events"`
	}
	require.NoError(t, json.Unmarshal(payload, &envelope))
	require.Len(t, envelope.Events, 3)

	for i, event := range events {
		formatted, err := logging.JSONFormatter{}.Format(event)
		require.NoError(t, err)
		assert.Equal(t, formatted, []byte(envelope.Events[i]))
		assert.True(t, bytes.Contains(payload, formatted))
	}
}

func TestEncoder_SeparatorCount(t *testing.T) {
	enc := newTestEncoder(0, nil)

	for n := 1; n <= 4; n++ {
		messages := make([]string, n)
		for i := range messages {
			messages[i] = "m"
		}
		payload := enc.encode(makeEvents(messages...))

		inner := strings.TrimSuffix(strings.TrimPrefix(string(payload), `{"Events":[`), `]}`)
		assert.Equal(t, n-1, strings.Count(inner, "},{"))
	}
}

func TestEncoder_DropsOversizedEvents(t *testing.T) {
	var diagnostics []string
	enc := newTestEncoder(120, &diagnostics)

	huge := strings.Repeat("x", 500)
	events := makeEvents("small one", huge, "small two")

	payload := enc.encode(events)

	assert.NotContains(t, string(payload), huge)
	assert.Contains(t, string(payload), "small one")
	assert.Contains(t, string(payload), "small two")

	require.Len(t, diagnostics, 1)
	assert.Contains(t, diagnostics[0], "120")
	assert.Contains(t, diagnostics[0], huge)

	var envelope struct {
		Events []json.RawMessage `json:"Events"`
	}
	require.NoError(t, json.Unmarshal(payload, &envelope))
	assert.Len(t, envelope.Events, 2)
}

func TestEncoder_AllEventsDropped(t *testing.T) {
	var diagnostics []string
	enc := newTestEncoder(10, &diagnostics)

	payload := enc.encode(makeEvents("this will not fit", "neither will this"))

	assert.Equal(t, `{"Events":[]}`, string(payload))
	assert.Len(t, diagnostics, 2)
}

func TestEncoder_NoLimitKeepsEverything(t *testing.T) {
	var diagnostics []string
	enc := newTestEncoder(0, &diagnostics)

	payload := enc.encode(makeEvents(strings.Repeat("y", 10000)))

	var envelope struct {
		Events []json.RawMessage `json:"Events"`
	}
	require.NoError(t, json.Unmarshal(payload, &envelope))
	assert.Len(t, envelope.Events, 1)
	assert.Empty(t, diagnostics)
}
