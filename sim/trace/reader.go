package trace

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/interrupt-sim/interrupt-sim/sim"
)

// MaxLineBytes bounds the length of a trace line. Longer lines are
// skipped like any other malformed line.
const MaxLineBytes = 4096

// Reader streams events from a line-oriented trace, one line at a time.
// It implements sim.EventSource.
type Reader struct {
	br      *bufio.Reader
	line    int
	skipped int
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r)}
}

// Next returns the next recognized event, or io.EOF at end of input.
func (r *Reader) Next() (sim.Event, error) {
	for {
		text, oversized, err := r.readLine()
		if err == io.EOF {
			return sim.Event{}, io.EOF
		}
		if err != nil {
			return sim.Event{}, fmt.Errorf("line %d: %w", r.line+1, err)
		}
		r.line++
		if oversized {
			r.skipped++
			logrus.Debugf("trace line %d skipped: longer than %d bytes", r.line, MaxLineBytes)
			continue
		}
		ev, ok := ParseLine(text)
		if !ok {
			if strings.TrimSpace(text) != "" {
				r.skipped++
				logrus.Debugf("trace line %d skipped: %q", r.line, text)
			}
			continue
		}
		ev.Line = r.line
		return ev, nil
	}
}

// readLine returns the next line without its terminator. A line longer than
// MaxLineBytes is consumed but not kept.
func (r *Reader) readLine() (string, bool, error) {
	var buf []byte
	started, oversized := false, false
	for {
		frag, isPrefix, err := r.br.ReadLine()
		if err != nil {
			if started && err == io.EOF {
				return string(buf), oversized, nil
			}
			return "", false, err
		}
		started = true
		if !oversized {
			if len(buf)+len(frag) > MaxLineBytes {
				oversized = true
				buf = nil
			} else {
				buf = append(buf, frag...)
			}
		}
		if !isPrefix {
			return string(buf), oversized, nil
		}
	}
}

// Skipped returns how many non-empty lines were ignored so far.
func (r *Reader) Skipped() int {
	return r.skipped
}

// Lines returns how many lines were consumed so far.
func (r *Reader) Lines() int {
	return r.line
}

// SliceSource replays a fixed list of events. It implements sim.EventSource.
type SliceSource struct {
	events []sim.Event
	next   int
}

// NewSliceSource creates a source over events.
func NewSliceSource(events []sim.Event) *SliceSource {
	return &SliceSource{events: events}
}

// Next returns the next event, or io.EOF when all were returned.
func (s *SliceSource) Next() (sim.Event, error) {
	if s.next >= len(s.events) {
		return sim.Event{}, io.EOF
	}
	ev := s.events[s.next]
	s.next++
	return ev, nil
}
