package sim

import (
	"fmt"
	"io"
	"strings"
)

// LogEntry is one micro-operation in the execution log.
type LogEntry struct {
	Start       int64 // clock value when the micro-operation began (ms)
	Duration    int64 // ms
	Description string
}

// End returns the clock value after the micro-operation.
func (e LogEntry) End() int64 {
	return e.Start + e.Duration
}

// String renders the entry as "<start>, <duration>, <description>".
func (e LogEntry) String() string {
	return fmt.Sprintf("%d, %d, %s", e.Start, e.Duration, e.Description)
}

// ExecutionLog is the append-only sequence of log entries of one run.
type ExecutionLog struct {
	entries []LogEntry
}

// NewExecutionLog creates an empty log.
func NewExecutionLog() *ExecutionLog {
	return &ExecutionLog{entries: make([]LogEntry, 0)}
}

// Append adds entries in order.
func (l *ExecutionLog) Append(entries ...LogEntry) {
	l.entries = append(l.entries, entries...)
}

// Len returns the number of entries.
func (l *ExecutionLog) Len() int {
	return len(l.entries)
}

// Entries returns a copy of the entries in emission order.
func (l *ExecutionLog) Entries() []LogEntry {
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// String renders the whole log, one newline-terminated line per entry.
func (l *ExecutionLog) String() string {
	var sb strings.Builder
	for _, e := range l.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// WriteTo writes the rendered log to w.
func (l *ExecutionLog) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, l.String())
	return int64(n), err
}
