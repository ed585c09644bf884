package logging

import (
	"io"
	"log"
)

// Logger is the logging interface accepted by library packages
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Nop discards everything
type Nop struct{}

func (Nop) Debugf(_ string, _ ...interface{}) {}
func (Nop) Infof(_ string, _ ...interface{})  {}
func (Nop) Warnf(_ string, _ ...interface{})  {}
func (Nop) Errorf(_ string, _ ...interface{}) {}

// StdLogger writes through a standard library logger, tagging every line with a component name.
// In quiet mode only warnings and errors are written.
type StdLogger struct {
	component string
	quiet     bool
	out       *log.Logger
}

// New creates a StdLogger writing to the standard logger's output
func New(component string, quiet bool) *StdLogger {
	return NewWithWriter(log.Writer(), component, quiet)
}

// NewWithWriter creates a StdLogger writing to w
func NewWithWriter(w io.Writer, component string, quiet bool) *StdLogger {
	return &StdLogger{
		component: component,
		quiet:     quiet,
		out:       log.New(w, "", log.LstdFlags),
	}
}

func (l *StdLogger) Debugf(format string, args ...interface{}) {
	if !l.quiet {
		l.printf("DEBUG", format, args...)
	}
}

func (l *StdLogger) Infof(format string, args ...interface{}) {
	if !l.quiet {
		l.printf("INFO", format, args...)
	}
}

func (l *StdLogger) Warnf(format string, args ...interface{}) {
	l.printf("WARN", format, args...)
}

func (l *StdLogger) Errorf(format string, args ...interface{}) {
	l.printf("ERROR", format, args...)
}

func (l *StdLogger) printf(level, format string, args ...interface{}) {
	l.out.Printf("[%s] %s: "+format, append([]interface{}{l.component, level}, args...)...)
}

// OrNop returns l, or Nop when l is nil
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop{}
	}
	return l
}
