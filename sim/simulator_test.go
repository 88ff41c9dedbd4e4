package sim_test

import (
	"bytes"
	"errors"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interrupt-sim/interrupt-sim/sim"
	"github.com/interrupt-sim/interrupt-sim/sim/devices"
	"github.com/interrupt-sim/interrupt-sim/sim/internal/testutil"
	"github.com/interrupt-sim/interrupt-sim/sim/trace"
)

func newTestSimulator(t *testing.T) *sim.Simulator {
	t.Helper()
	table, err := sim.NewDeviceTable([]string{"0x1A", "0x2B"}, []int64{40, 7})
	require.NoError(t, err)
	return sim.NewSimulator(table, sim.DefaultCosts())
}

func runTrace(t *testing.T, s *sim.Simulator, text string) error {
	t.Helper()
	return s.Run(trace.NewReader(strings.NewReader(text)))
}

func TestSimulator_ScenarioA_SingleCPUBurst(t *testing.T) {
	s := newTestSimulator(t)

	require.NoError(t, runTrace(t, s, "CPU 5\n"))

	assert.Equal(t, "0, 5, CPU burst\n", s.Log.String())
	assert.Equal(t, int64(5), s.Clock)
}

func TestSimulator_ScenarioB_EndIOPipeline(t *testing.T) {
	// GIVEN device 0 with io_delay=40 and isr_address=0x1A
	s := newTestSimulator(t)

	// WHEN END_IO 0 is replayed
	require.NoError(t, runTrace(t, s, "END_IO 0\n"))

	// THEN six lines are logged and the last one is the IRET at 53
	lines := strings.Split(strings.TrimSuffix(s.Log.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "0, 1, switch to kernel mode", lines[0])
	assert.Equal(t, "53, 1, IRET", lines[5])
	assert.Equal(t, int64(54), s.Clock)
}

func TestSimulator_ScenarioC_UnrecognizedLineIsInert(t *testing.T) {
	// GIVEN two traces that differ only by an unrecognized line
	with := newTestSimulator(t)
	without := newTestSimulator(t)

	// WHEN both are replayed
	require.NoError(t, runTrace(t, with, "CPU, 10\nFOO 3\nCPU, 20\n"))
	require.NoError(t, runTrace(t, without, "CPU, 10\nCPU, 20\n"))

	// THEN the unrecognized line adds no entries and does not move the clock
	assert.Equal(t, 2, with.Log.Len())
	assert.Equal(t, without.Log.String(), with.Log.String())
	assert.Equal(t, int64(30), with.Clock)
}

func TestSimulator_ScenarioD_UndeclaredDeviceAborts(t *testing.T) {
	// GIVEN a trace whose second event references undeclared device 7
	s := newTestSimulator(t)

	// WHEN it is replayed
	err := runTrace(t, s, "CPU, 10\nSYSCALL 7\nCPU, 20\n")

	// THEN the run stops with a ConfigurationError naming the line
	var cfgErr *sim.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, int64(7), cfgErr.DeviceID)
	assert.Contains(t, err.Error(), "trace line 2")

	// AND only the completed first event is in the log
	assert.Equal(t, "0, 10, CPU burst\n", s.Log.String())
	assert.Equal(t, int64(10), s.Clock)
}

func TestSimulator_OversizedTraceLineIsSkipped(t *testing.T) {
	// GIVEN a trace with a 70000-byte garbage line between two bursts
	s := newTestSimulator(t)
	text := "CPU, 5\n" + strings.Repeat("X", 70000) + "\nCPU, 7\n"

	// WHEN it is replayed
	err := runTrace(t, s, text)

	// THEN the long line is treated like any other unrecognized line
	require.NoError(t, err)
	assert.Equal(t, int64(12), s.Clock)
	assert.Equal(t, "0, 5, CPU burst\n5, 7, CPU burst\n", s.Log.String())
}

func TestSimulator_ClockOverflowAborts(t *testing.T) {
	// GIVEN a trace of two maximal CPU bursts
	s := newTestSimulator(t)

	// WHEN it is replayed
	err := runTrace(t, s, "CPU, 9223372036854775807\nCPU, 9223372036854775807\n")

	// THEN the second burst is refused and the clock stays at the first burst's end
	require.ErrorIs(t, err, sim.ErrClockOverflow)
	assert.Contains(t, err.Error(), "trace line 2")
	assert.Equal(t, int64(math.MaxInt64), s.Clock)
	assert.Equal(t, 1, s.Log.Len())
}

func TestSimulator_DirectOperations(t *testing.T) {
	s := newTestSimulator(t)

	require.NoError(t, s.RunCPUBurst(3))
	require.NoError(t, s.HandleSyscall(1))
	require.NoError(t, s.ServiceInterrupt(0))
	assert.Error(t, s.ServiceInterrupt(2))

	assert.Equal(t, 13, s.Log.Len())
	assert.Equal(t, int64(3+14+7+14+40), s.Clock)
}

func TestSimulator_Properties_ClockAndContiguity(t *testing.T) {
	// GIVEN a mixed trace
	events := []sim.Event{
		{Kind: sim.ActivityCPU, Operand: 12},
		{Kind: sim.ActivitySyscall, Operand: 1},
		{Kind: sim.ActivityCPU, Operand: 0},
		{Kind: sim.ActivityEndIO, Operand: 0},
		{Kind: sim.ActivityEndIO, Operand: 1},
		{Kind: sim.ActivityCPU, Operand: 99},
	}
	s := newTestSimulator(t)
	costs := sim.DefaultCosts()

	// WHEN it is replayed
	require.NoError(t, s.Run(trace.NewSliceSource(events)))

	// THEN the final clock is the sum of per-event costs
	var wantClock int64
	wantEntries := 0
	for _, ev := range events {
		if ev.Kind == sim.ActivityCPU {
			wantClock += ev.Operand
			wantEntries++
			continue
		}
		dev, err := s.Devices.Lookup(ev.Operand)
		require.NoError(t, err)
		wantClock += costs.Overhead() + dev.IODelay
		wantEntries += 6
	}
	assert.Equal(t, wantClock, s.Clock)

	// AND there is one entry per CPU event and six per service
	assert.Equal(t, wantEntries, s.Log.Len())

	// AND entries are contiguous from 0
	testutil.AssertContiguous(t, s.Log.Entries())
}

func TestSimulator_Idempotent(t *testing.T) {
	text := "CPU, 50\nSYSCALL, 1\nEND_IO, 0\nCPU, 5\n"
	first := newTestSimulator(t)
	second := newTestSimulator(t)

	require.NoError(t, runTrace(t, first, text))
	require.NoError(t, runTrace(t, second, text))

	var a, b bytes.Buffer
	_, err := first.Log.WriteTo(&a)
	require.NoError(t, err)
	_, err = second.Log.WriteTo(&b)
	require.NoError(t, err)
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestSimulator_GoldenExecutionLog(t *testing.T) {
	// GIVEN the sample device tables and trace in testdata/
	table, err := devices.LoadTextTables(
		testutil.TestdataPath(t, "vector_table.txt"),
		testutil.TestdataPath(t, "device_table.txt"),
	)
	require.NoError(t, err)
	f, err := os.Open(testutil.TestdataPath(t, "trace.txt"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	// WHEN the trace is replayed with canonical costs
	s := sim.NewSimulator(table, sim.DefaultCosts())
	require.NoError(t, s.Run(trace.NewReader(f)))

	// THEN the log matches the golden file byte for byte
	assert.Equal(t, testutil.LoadGoldenLog(t, "execution.golden.txt"), s.Log.String())
	assert.Equal(t, int64(772), s.Clock)
}

func TestSimulator_Metrics(t *testing.T) {
	s := newTestSimulator(t)
	require.NoError(t, runTrace(t, s, "CPU, 10\nSYSCALL, 1\nEND_IO, 0\n"))

	m := s.Metrics
	assert.Equal(t, 1, m.CPUBursts)
	assert.Equal(t, 1, m.Syscalls)
	assert.Equal(t, 1, m.EndIOs)
	assert.Equal(t, int64(10), m.CPUTime)
	assert.Equal(t, int64(47), m.ISRTime)
	assert.Equal(t, int64(28), m.KernelOverhead)
	assert.Equal(t, s.Clock, m.SimEndedTime)
	assert.Equal(t, m.CPUTime+m.ISRTime+m.KernelOverhead, m.SimEndedTime)

	var buf bytes.Buffer
	m.Print(&buf)
	assert.Contains(t, buf.String(), "Kernel Overhead      : 28 ms")
}
