// Package issues collects non-fatal diagnostics produced while loading,
// repairing and saving meshes.
package issues

import (
	"errors"
	"fmt"
)

// ErrStop is wrapped by every error built from a Stop issue.
var ErrStop = errors.New("operation stopped")

// Severity ranks an issue. Higher values are more serious.
type Severity int

const (
	Note Severity = iota
	Warning
	Stop
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case Note:
		return "note"
	case Warning:
		return "warning"
	case Stop:
		return "stop"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Issue is a single diagnostic.
type Issue struct {
	Severity Severity
	Key      string // Stable machine-readable identifier, e.g. "dat.badToken"
	Message  string
	Line     int // Source line, 0 when not tied to input text
}

// String formats the issue for display.
func (i Issue) String() string {
	if i.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s [%s]", i.Severity, i.Line, i.Message, i.Key)
	}
	return fmt.Sprintf("%s: %s [%s]", i.Severity, i.Message, i.Key)
}

// Err converts the issue to an error. Stop issues wrap ErrStop.
func (i Issue) Err() error {
	if i.Severity == Stop {
		return fmt.Errorf("%w: %s", ErrStop, i.String())
	}
	return errors.New(i.String())
}

// Sink receives issues. Implementations decide how to present them.
type Sink interface {
	Add(Issue)
}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Add(Issue) {}

// Notef adds a Note issue to sink.
func Notef(sink Sink, key, format string, args ...any) {
	sink.Add(Issue{Severity: Note, Key: key, Message: fmt.Sprintf(format, args...)})
}

// Warnf adds a Warning issue to sink.
func Warnf(sink Sink, key, format string, args ...any) {
	sink.Add(Issue{Severity: Warning, Key: key, Message: fmt.Sprintf(format, args...)})
}

// Stopf adds a Stop issue to sink and returns it as an error so callers can
// abort with a single statement.
func Stopf(sink Sink, key, format string, args ...any) error {
	issue := Issue{Severity: Stop, Key: key, Message: fmt.Sprintf(format, args...)}
	sink.Add(issue)
	return issue.Err()
}

// StopAt is Stopf with a source line attached.
func StopAt(sink Sink, line int, key, format string, args ...any) error {
	issue := Issue{Severity: Stop, Key: key, Message: fmt.Sprintf(format, args...), Line: line}
	sink.Add(issue)
	return issue.Err()
}

// WarnAt is Warnf with a source line attached.
func WarnAt(sink Sink, line int, key, format string, args ...any) {
	sink.Add(Issue{Severity: Warning, Key: key, Message: fmt.Sprintf(format, args...), Line: line})
}

// NoteAt is Notef with a source line attached.
func NoteAt(sink Sink, line int, key, format string, args ...any) {
	sink.Add(Issue{Severity: Note, Key: key, Message: fmt.Sprintf(format, args...), Line: line})
}
