// Tracks run-wide totals such as CPU time versus interrupt servicing overhead.

package sim

import (
	"fmt"
	"io"
)

// Metrics aggregates statistics about the simulation
// for final reporting. Useful for comparing how much simulated time
// goes to useful CPU work versus kernel bookkeeping.
type Metrics struct {
	CPUBursts      int   // Number of CPU events replayed
	Syscalls       int   // Number of SYSCALL events serviced
	EndIOs         int   // Number of END_IO events serviced
	TraceLines     int   // Trace lines read, recognized or not
	SkippedLines   int   // Trace lines ignored (comments, unknown activities, malformed operands)
	CPUTime        int64 // Sum of CPU burst durations (ms)
	KernelOverhead int64 // Sum of switch, save, vector, fetch and IRET costs (ms)
	ISRTime        int64 // Sum of ISR body durations (ms)
	SimEndedTime   int64 // Clock value at the end of the run (ms)
}

// NewMetrics creates an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// record updates totals from one applied event.
func (m *Metrics) record(ev Event, entries []LogEntry) {
	var total int64
	for _, e := range entries {
		total += e.Duration
	}
	switch ev.Kind {
	case ActivityCPU:
		m.CPUBursts++
		m.CPUTime += total
	case ActivitySyscall, ActivityEndIO:
		if ev.Kind == ActivitySyscall {
			m.Syscalls++
		} else {
			m.EndIOs++
		}
		isr := entries[4].Duration
		m.ISRTime += isr
		m.KernelOverhead += total - isr
	}
}

// OverheadRatio is the share of simulated time spent in kernel bookkeeping.
func (m *Metrics) OverheadRatio() float64 {
	if m.SimEndedTime == 0 {
		return 0
	}
	return float64(m.KernelOverhead) / float64(m.SimEndedTime)
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "CPU Bursts           : %d\n", m.CPUBursts)
	fmt.Fprintf(w, "Syscalls             : %d\n", m.Syscalls)
	fmt.Fprintf(w, "END_IO Interrupts    : %d\n", m.EndIOs)
	fmt.Fprintf(w, "Trace Lines          : %d\n", m.TraceLines)
	fmt.Fprintf(w, "Skipped Trace Lines  : %d\n", m.SkippedLines)
	fmt.Fprintf(w, "CPU Time             : %d ms\n", m.CPUTime)
	fmt.Fprintf(w, "ISR Time             : %d ms\n", m.ISRTime)
	fmt.Fprintf(w, "Kernel Overhead      : %d ms\n", m.KernelOverhead)
	fmt.Fprintf(w, "Simulated Time       : %d ms\n", m.SimEndedTime)
	if m.SimEndedTime > 0 {
		fmt.Fprintf(w, "Overhead Ratio       : %.2f%%\n", 100*m.OverheadRatio())
	}
}
