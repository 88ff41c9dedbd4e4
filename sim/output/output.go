// Package output persists execution logs produced by the simulator.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/interrupt-sim/interrupt-sim/sim"
)

// DefaultExecutionFile is the file the text sink writes when no path is given.
const DefaultExecutionFile = "execution.txt"

// Sink persists a finished (or truncated) execution log.
type Sink interface {
	WriteLog(log *sim.ExecutionLog) error
	Close() error
}

// TextSink writes the log as "<start>, <duration>, <description>" lines.
type TextSink struct {
	path string
	w    io.Writer
}

// NewTextSink creates a sink that writes to path, overwriting an existing file.
func NewTextSink(path string) *TextSink {
	if path == "" {
		path = DefaultExecutionFile
	}
	return &TextSink{path: path}
}

// NewWriterSink creates a sink that writes to w.
func NewWriterSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

// WriteLog writes the rendered log.
func (s *TextSink) WriteLog(log *sim.ExecutionLog) error {
	if s.w != nil {
		if _, err := log.WriteTo(s.w); err != nil {
			return fmt.Errorf("writing execution log: %w", err)
		}
		return nil
	}
	if err := os.WriteFile(s.path, []byte(log.String()), 0644); err != nil {
		return fmt.Errorf("writing execution log: %w", err)
	}
	logrus.Infof("Wrote %d log entries to %s", log.Len(), s.path)
	return nil
}

// Close is a no-op; the file is written and closed in WriteLog.
func (s *TextSink) Close() error {
	return nil
}

// Flusher writes one log to a set of sinks exactly once, so it can be both
// registered as an exit handler and called on the normal path.
type Flusher struct {
	sinks []Sink
	log   *sim.ExecutionLog
	done  bool
	err   error
}

// NewFlusher creates a Flusher for log.
func NewFlusher(log *sim.ExecutionLog, sinks ...Sink) *Flusher {
	return &Flusher{sinks: sinks, log: log}
}

// Flush writes the log to every sink and closes them. Later calls return
// the result of the first one. Every sink is attempted even if one fails.
func (f *Flusher) Flush() error {
	if f.done {
		return f.err
	}
	f.done = true
	for _, s := range f.sinks {
		if err := s.WriteLog(f.log); err != nil && f.err == nil {
			f.err = err
		}
		if err := s.Close(); err != nil && f.err == nil {
			f.err = fmt.Errorf("closing sink: %w", err)
		}
	}
	return f.err
}

// FlushOnExit is the exit-handler form of Flush; errors are logged.
func (f *Flusher) FlushOnExit() {
	if err := f.Flush(); err != nil {
		logrus.Errorf("flushing execution log: %v", err)
	}
}
