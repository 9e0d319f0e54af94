package daemon

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"seqship/internal/logging"
)

func TestExtractLevel_JSONLines(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected logging.Level
	}{
		{"level field", `{"level":"error","msg":"db timeout"}`, logging.Error},
		{"clef field", `{"@l":"Warning","@mt":"slow request"}`, logging.Warning},
		{"severity field", `{"severity":"debug","msg":"cache miss"}`, logging.Debug},
		{"no level field", `{"msg":"hello"}`, logging.Information},
		{"unknown value falls through", `{"level":"noisy"}`, logging.Information},
		{"leading whitespace", `   {"level":"fatal"}`, logging.Fatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractLevel(tt.line))
		})
	}
}

func TestExtractLevel_PlainLines(t *testing.T) {
	tests := []struct {
		line     string
		expected logging.Level
	}{
		{"[FATAL] out of memory", logging.Fatal},
		{"2025-03-14 ERROR something broke", logging.Error},
		{"[error] lowercase too", logging.Error},
		{"WARN: disk at 91%", logging.Warning},
		{"[WARNING] retrying", logging.Warning},
		{"DEBUG starting reconcile", logging.Debug},
		{"TRACE enter handler", logging.Verbose},
		{"GET /healthz 200", logging.Information},
		{"", logging.Information},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractLevel(tt.line))
		})
	}
}

func TestExtractLevel_MalformedJSONFallsBackToScan(t *testing.T) {
	assert.Equal(t, logging.Error, ExtractLevel(`{"level":"error", broken`))
}
