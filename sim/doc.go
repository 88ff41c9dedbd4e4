// Package sim provides the discrete-event trace interpreter for interrupt-sim.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - event.go: the activity kinds (CPU, SYSCALL, END_IO) and the Event value
//   - engine.go: Step, the pure transition that turns one event into log entries
//   - simulator.go: the Simulator that owns the clock and the execution log
//
// # Timing Model
//
// A CPU event is a single logged burst. SYSCALL and END_IO events run the same
// six micro-operations (switch to kernel mode, save context, find vector, load
// ISR address, execute ISR, IRET); only the label of the execute-ISR step
// differs. Fixed costs come from Costs, the ISR body cost from the device's
// I/O delay in the DeviceTable.
//
// # Architecture
//
// Implementations of the surrounding I/O live in sub-packages:
//   - sim/trace/: trace line parsing and the streaming event reader
//   - sim/devices/: device table loaders (vector/delay text files, YAML)
//   - sim/output/: execution log sinks (text file, SQLite)
package sim
