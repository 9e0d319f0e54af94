package logging

import (
	"time"

	json "github.com/goccy/go-json"
)

// JSONFormatter renders events in the raw-event shape the ingestion
// endpoint accepts inside its {"Events":[...]} envelope.
type JSONFormatter struct{}

type rawEvent struct {
	Timestamp       string            `json:"Timestamp"`
	Level           string            `json:"Level"`
	MessageTemplate string            `json:"MessageTemplate"`
	Properties      map[string]string `json:"Properties,omitempty"`
}

func (JSONFormatter) Format(event LogEvent) ([]byte, error) {
	return json.Marshal(rawEvent{
		Timestamp:       event.Timestamp.UTC().Format(time.RFC3339Nano),
		Level:           event.Level.String(),
		MessageTemplate: event.Message,
		Properties:      event.Properties,
	})
}
