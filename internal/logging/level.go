package logging

import (
	"fmt"
	"strings"
)

// Level is the severity of a log event. Levels form a total order:
// Verbose < Debug < Information < Warning < Error < Fatal.
type Level int

const (
	Verbose Level = iota
	Debug
	Information
	Warning
	Error
	Fatal
)

var levelNames = [...]string{
	Verbose:     "Verbose",
	Debug:       "Debug",
	Information: "Information",
	Warning:     "Warning",
	Error:       "Error",
	Fatal:       "Fatal",
}

func (l Level) String() string {
	if l < Verbose || l > Fatal {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel accepts the canonical level names plus the common aliases
// found in application logs. Matching is case-insensitive.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "verbose", "trace", "trc":
		return Verbose, nil
	case "debug", "dbg":
		return Debug, nil
	case "information", "informational", "info", "inf":
		return Information, nil
	case "warning", "warn", "wrn":
		return Warning, nil
	case "error", "err":
		return Error, nil
	case "fatal", "critical", "crit", "panic":
		return Fatal, nil
	}
	return Information, fmt.Errorf("unrecognized level %q", s)
}
