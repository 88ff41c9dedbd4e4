// Package testutil provides shared test infrastructure for the simulator.
// It loads golden execution logs and asserts the log-ordering invariants
// used across the sim/ test packages.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/interrupt-sim/interrupt-sim/sim"
)

// TestdataDir returns the repository testdata/ directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func TestdataDir(t *testing.T) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata")
}

// TestdataPath joins name onto the testdata directory.
func TestdataPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(TestdataDir(t), name)
}

// LoadGoldenLog reads an expected execution log from testdata/.
func LoadGoldenLog(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(TestdataPath(t, name))
	if err != nil {
		t.Fatalf("Failed to read golden log %s: %v", name, err)
	}
	return string(data)
}

// AssertContiguous checks that the first entry starts at 0 and every entry
// starts where the previous one ended.
func AssertContiguous(t *testing.T, entries []sim.LogEntry) {
	t.Helper()
	var want int64
	for i, e := range entries {
		if e.Start != want {
			t.Errorf("entry %d (%q): start=%d, want %d", i, e.Description, e.Start, want)
		}
		want = e.End()
	}
}
