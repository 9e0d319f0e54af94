package daemon

import (
	"strings"

	json "github.com/goccy/go-json"

	"seqship/internal/logging"
)

// ExtractLevel guesses the severity of a raw log line. JSON lines are
// probed for the usual level fields; plain lines are scanned for level
// tokens. Lines that give no signal default to Information.
func ExtractLevel(line string) logging.Level {
	trimmed := strings.TrimSpace(line)

	if strings.HasPrefix(trimmed, "{") {
		var probe struct {
			Level    string `json:"level"`
			L        string `json:"@l"`
			Severity string `json:"severity"`
		}
		if err := json.Unmarshal([]byte(trimmed), &probe); err == nil {
			for _, candidate := range []string{probe.Level, probe.L, probe.Severity} {
				if candidate == "" {
					continue
				}
				if level, err := logging.ParseLevel(candidate); err == nil {
					return level
				}
			}
		}
	}

	upper := strings.ToUpper(line)
	switch {
	case strings.Contains(upper, "FATAL") || strings.Contains(upper, "PANIC"):
		return logging.Fatal
	case strings.Contains(upper, "ERROR") || strings.Contains(upper, "[ERR]"):
		return logging.Error
	case strings.Contains(upper, "WARN"):
		return logging.Warning
	case strings.Contains(upper, "DEBUG"):
		return logging.Debug
	case strings.Contains(upper, "TRACE") || strings.Contains(upper, "VERBOSE"):
		return logging.Verbose
	}

	return logging.Information
}
