package sim

import (
	"errors"
	"fmt"
	"math"
)

const cpuBurstDescription = "CPU burst"

// ErrClockOverflow is returned when an event would advance the clock past math.MaxInt64.
var ErrClockOverflow = errors.New("simulated clock overflow")

// advance returns clock+d, or ErrClockOverflow if the sum does not fit in an int64.
func advance(clock, d int64) (int64, error) {
	if d > math.MaxInt64-clock {
		return clock, fmt.Errorf("%w: %d + %d ms", ErrClockOverflow, clock, d)
	}
	return clock + d, nil
}

// Step is the pure transition of the servicing engine: it applies one event
// to the clock and returns the new clock and the entries the event produced.
// On error the clock is returned unchanged and no entries are produced.
func Step(clock int64, table *DeviceTable, costs Costs, ev Event) (int64, []LogEntry, error) {
	switch ev.Kind {
	case ActivityCPU:
		return cpuBurst(clock, ev.Operand)
	case ActivitySyscall, ActivityEndIO:
		return service(clock, table, costs, ev.Kind, ev.Operand)
	default:
		return clock, nil, fmt.Errorf("unsupported activity %q", ev.Kind)
	}
}

func cpuBurst(clock, duration int64) (int64, []LogEntry, error) {
	if duration < 0 {
		return clock, nil, fmt.Errorf("CPU burst duration must be non-negative, got %d", duration)
	}
	end, err := advance(clock, duration)
	if err != nil {
		return clock, nil, err
	}
	return end, []LogEntry{{Start: clock, Duration: duration, Description: cpuBurstDescription}}, nil
}

// service runs the shared SYSCALL / END_IO pipeline. kind only changes the
// label of the execute-ISR step.
func service(clock int64, table *DeviceTable, costs Costs, kind ActivityKind, deviceID int64) (int64, []LogEntry, error) {
	dev, err := table.Lookup(deviceID)
	if err != nil {
		return clock, nil, err
	}

	steps := []struct {
		cost int64
		what string
	}{
		{costs.SwitchMode, "switch to kernel mode"},
		{costs.SaveContext, "context saved"},
		{costs.FindVector, fmt.Sprintf("find vector %d in memory position 0x%04X", dev.ID, costs.VectorPosition(dev.ID))},
		{costs.FetchISR, fmt.Sprintf("load address %s into the PC", dev.ISRAddress)},
		{dev.IODelay, fmt.Sprintf("execute ISR (%s device %d)", kind, dev.ID)},
		{costs.IRET, "IRET"},
	}

	now := clock
	entries := make([]LogEntry, 0, len(steps))
	for _, s := range steps {
		next, err := advance(now, s.cost)
		if err != nil {
			return clock, nil, err
		}
		entries = append(entries, LogEntry{Start: now, Duration: s.cost, Description: s.what})
		now = next
	}
	return now, entries, nil
}
