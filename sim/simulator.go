// sim/simulator.go
package sim

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Simulator is the core object that holds simulation time, the device
// configuration and the execution log. It is the only clock mutator.
type Simulator struct {
	Clock   int64
	Devices *DeviceTable
	Costs   Costs
	Log     *ExecutionLog
	Metrics *Metrics
}

// NewSimulator creates a Simulator with the clock at 0 and an empty log.
func NewSimulator(devices *DeviceTable, costs Costs) *Simulator {
	return &Simulator{
		Clock:   0,
		Devices: devices,
		Costs:   costs,
		Log:     NewExecutionLog(),
		Metrics: NewMetrics(),
	}
}

// RunCPUBurst logs one CPU burst and advances the clock by its duration.
func (sim *Simulator) RunCPUBurst(duration int64) error {
	return sim.Apply(Event{Kind: ActivityCPU, Operand: duration})
}

// HandleSyscall services a SYSCALL for the given device.
func (sim *Simulator) HandleSyscall(deviceID int64) error {
	return sim.Apply(Event{Kind: ActivitySyscall, Operand: deviceID})
}

// ServiceInterrupt services an END_IO interrupt for the given device.
func (sim *Simulator) ServiceInterrupt(deviceID int64) error {
	return sim.Apply(Event{Kind: ActivityEndIO, Operand: deviceID})
}

// Apply runs one event through Step and commits the result.
// On error neither the clock nor the log changes.
func (sim *Simulator) Apply(ev Event) error {
	next, entries, err := Step(sim.Clock, sim.Devices, sim.Costs, ev)
	if err != nil {
		return err
	}
	logrus.Debugf("[t=%06d] %s %d -> %d entries, clock %d", sim.Clock, ev.Kind, ev.Operand, len(entries), next)
	sim.Log.Append(entries...)
	sim.Metrics.record(ev, entries)
	sim.Clock = next
	sim.Metrics.SimEndedTime = next
	return nil
}

// Run pulls events from src in order and dispatches each one until the
// source is exhausted or an event fails. Events applied before a failure
// stay in the log.
func (sim *Simulator) Run(src EventSource) error {
	for {
		ev, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("reading trace: %w", err)
		}

		switch ev.Kind {
		case ActivityCPU:
			err = sim.RunCPUBurst(ev.Operand)
		case ActivitySyscall:
			err = sim.HandleSyscall(ev.Operand)
		case ActivityEndIO:
			err = sim.ServiceInterrupt(ev.Operand)
		default:
			logrus.Debugf("skipping unsupported activity %q", ev.Kind)
			continue
		}
		if err != nil {
			if ev.Line > 0 {
				return fmt.Errorf("trace line %d (%s %d): %w", ev.Line, ev.Kind, ev.Operand, err)
			}
			return fmt.Errorf("%s %d: %w", ev.Kind, ev.Operand, err)
		}
	}
	logrus.Infof("[t=%06d] Simulation ended after %d log entries", sim.Clock, sim.Log.Len())
	return nil
}
