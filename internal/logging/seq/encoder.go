package seq

import (
	"bytes"

	"seqship/internal/logging"
)

// encoder assembles formatted events into the {"Events":[...]} envelope.
// Encoding never fails: events that cannot be formatted or that exceed the
// configured byte limit are dropped with a diagnostic, and the output is a
// complete JSON document even when every event is dropped.
type encoder struct {
	formatter logging.Formatter
	byteLimit int // 0 means unlimited
	debugf    logging.DiagnosticFunc
}

func (e *encoder) encode(events []logging.LogEvent) []byte {
	var buf bytes.Buffer
	buf.WriteString(`{"Events":[`)

	first := true
	for _, event := range events {
		body, err := e.formatter.Format(event)
		if err != nil {
			e.debugf("failed to format event, dropping: %v", err)
			continue
		}
		if e.byteLimit > 0 && len(body) > e.byteLimit {
			e.debugf("event exceeds body limit of %d bytes, dropping: %s", e.byteLimit, body)
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		buf.Write(body)
		first = false
	}

	buf.WriteString("]}")
	return buf.Bytes()
}
