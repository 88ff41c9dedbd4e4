package sim

// ActivityKind is the type of a trace event.
type ActivityKind string

const (
	// ActivityCPU is a CPU burst; the operand is its duration in ms.
	ActivityCPU ActivityKind = "CPU"
	// ActivitySyscall is a system call; the operand is a device id.
	ActivitySyscall ActivityKind = "SYSCALL"
	// ActivityEndIO is a device I/O completion interrupt; the operand is a device id.
	ActivityEndIO ActivityKind = "END_IO"
)

// validActivityKinds maps accepted activity tokens.
var validActivityKinds = map[ActivityKind]bool{
	ActivityCPU:     true,
	ActivitySyscall: true,
	ActivityEndIO:   true,
}

// IsValidActivity returns true if the token names a recognized activity.
// Matching is case-sensitive.
func IsValidActivity(token string) bool {
	return validActivityKinds[ActivityKind(token)]
}

// Event is one trace record, consumed immediately by the Simulator.
type Event struct {
	Kind    ActivityKind
	Operand int64 // burst duration (CPU) or device id (SYSCALL, END_IO)
	Line    int   // 1-based source line, 0 when not read from a file
}

// EventSource yields events in trace order.
// Next returns io.EOF once the source is exhausted.
type EventSource interface {
	Next() (Event, error)
}
