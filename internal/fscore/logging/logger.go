// Package logging provides a minimal, nil-safe logger: one that still
// functions (as a no-op) when nil, so callers can accept an optional
// *Logger without special-casing every call site.
package logging

import (
	"fmt"
	"log"

	"github.com/fatih/color"
)

// Logger is the core's logging type. A nil *Logger is valid and discards
// everything written to it. It is safe for concurrent use.
type Logger struct {
	prefix string
}

// Root is the root logger from which all other loggers derive.
var Root = &Logger{}

// Sublogger creates a new logger with name appended to the current prefix.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}
	return &Logger{prefix: prefix}
}

func (l *Logger) output(line string) {
	if l.prefix != "" {
		line = fmt.Sprintf("[%s] %s", l.prefix, line)
	}
	log.Output(3, line)
}

// Printf logs informational output with fmt.Printf semantics.
func (l *Logger) Printf(format string, v ...interface{}) {
	if l != nil {
		l.output(fmt.Sprintf(format, v...))
	}
}

// Println logs informational output with fmt.Println semantics.
func (l *Logger) Println(v ...interface{}) {
	if l != nil {
		l.output(fmt.Sprintln(v...))
	}
}

// Warn logs a warning in yellow, used for the "environment variable out of
// bounds, falling back to default" case and similar recoverable conditions.
func (l *Logger) Warn(format string, v ...interface{}) {
	if l != nil {
		l.output(color.YellowString("warning: "+format, v...))
	}
}

// Error logs an error in red.
func (l *Logger) Error(err error) {
	if l != nil {
		l.output(color.RedString("error: %v", err))
	}
}
