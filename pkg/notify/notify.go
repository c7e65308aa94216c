package notify

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Severity classifies a message
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Default display durations
const (
	DefaultDuration      = 5 * time.Second
	DefaultErrorDuration = 8 * time.Second
)

// Sink accepts fire-and-forget messages. A zero duration selects the default
// for the severity.
type Sink interface {
	Notify(message string, severity Severity, duration time.Duration)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(message string, severity Severity, duration time.Duration)

func (f SinkFunc) Notify(message string, severity Severity, duration time.Duration) {
	f(message, severity, duration)
}

// ResolveDuration applies the per-severity default to a zero or negative duration
func ResolveDuration(severity Severity, duration time.Duration) time.Duration {
	if duration > 0 {
		return duration
	}
	if severity == SeverityError {
		return DefaultErrorDuration
	}
	return DefaultDuration
}

// LogSink writes messages to a logrus logger
type LogSink struct {
	Logger *logrus.Logger
}

func (s LogSink) Notify(message string, severity Severity, duration time.Duration) {
	entry := s.Logger.WithField("severity", string(severity))
	switch severity {
	case SeverityError:
		entry.Error(message)
	case SeverityWarning:
		entry.Warn(message)
	default:
		entry.Info(message)
	}
}

type multiSink []Sink

// Multi fans a message out to every non-nil sink in order
func Multi(sinks ...Sink) Sink {
	var out multiSink
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (m multiSink) Notify(message string, severity Severity, duration time.Duration) {
	for _, s := range m {
		s.Notify(message, severity, duration)
	}
}

// Discard drops every message
var Discard Sink = SinkFunc(func(string, Severity, time.Duration) {})
