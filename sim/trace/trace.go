// Package trace reads activity traces for the simulator.
// Each line holds an activity token and an integer operand, for example
// "CPU, 50" or "END_IO 3". Lines that cannot be understood are skipped.
package trace

import (
	"strconv"
	"strings"

	"github.com/interrupt-sim/interrupt-sim/sim"
)

// CommentPrefix starts a line that is ignored.
const CommentPrefix = "#"

// ParseLine converts one trace line into an event.
// It returns ok=false for blank lines, comments, unknown activity tokens,
// missing or non-integer operands and negative CPU durations.
func ParseLine(line string) (ev sim.Event, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, CommentPrefix) {
		return sim.Event{}, false
	}

	activity, operand, found := splitLine(line)
	if !found || !sim.IsValidActivity(activity) {
		return sim.Event{}, false
	}
	n, err := strconv.ParseInt(operand, 10, 64)
	if err != nil {
		return sim.Event{}, false
	}
	kind := sim.ActivityKind(activity)
	if kind == sim.ActivityCPU && n < 0 {
		return sim.Event{}, false
	}
	return sim.Event{Kind: kind, Operand: n}, true
}

// splitLine splits on the first comma when there is one, otherwise on whitespace.
func splitLine(line string) (activity, operand string, found bool) {
	if before, after, ok := strings.Cut(line, ","); ok {
		return strings.TrimSpace(before), strings.TrimSpace(after), true
	}
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return "", "", false
	}
	return fields[0], fields[1], true
}
