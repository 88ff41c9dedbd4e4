package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Costs groups the fixed timing parameters of the interrupt servicing pipeline.
// All durations are in milliseconds of simulated time.
type Costs struct {
	SwitchMode      int64 `yaml:"switch_mode_ms"`    // switch to kernel mode
	SaveContext     int64 `yaml:"save_context_ms"`   // save CPU context
	FindVector      int64 `yaml:"find_vector_ms"`    // compute vector memory position
	FetchISR        int64 `yaml:"fetch_isr_ms"`      // load ISR address into the PC
	IRET            int64 `yaml:"iret_ms"`           // return from interrupt
	VectorEntrySize int64 `yaml:"vector_entry_size"` // bytes per vector table slot (must be > 0)
	VectorBase      int64 `yaml:"vector_base"`       // memory address of vector 0
}

// DefaultCosts returns the canonical timing parameters.
func DefaultCosts() Costs {
	return Costs{
		SwitchMode:      1,
		SaveContext:     10,
		FindVector:      1,
		FetchISR:        1,
		IRET:            1,
		VectorEntrySize: 2,
		VectorBase:      0,
	}
}

// Overhead is the fixed part of one SYSCALL or END_IO service, excluding the ISR body.
func (c Costs) Overhead() int64 {
	return c.SwitchMode + c.SaveContext + c.FindVector + c.FetchISR + c.IRET
}

// VectorPosition returns the memory position of the vector slot for a device.
func (c Costs) VectorPosition(deviceID int) int64 {
	return c.VectorBase + int64(deviceID)*c.VectorEntrySize
}

// Validate checks that every cost is non-negative and the vector layout is usable.
func (c Costs) Validate() error {
	fields := []struct {
		name string
		val  int64
	}{
		{"switch_mode_ms", c.SwitchMode},
		{"save_context_ms", c.SaveContext},
		{"find_vector_ms", c.FindVector},
		{"fetch_isr_ms", c.FetchISR},
		{"iret_ms", c.IRET},
		{"vector_base", c.VectorBase},
	}
	for _, f := range fields {
		if f.val < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", f.name, f.val)
		}
	}
	if c.VectorEntrySize <= 0 {
		return fmt.Errorf("vector_entry_size must be positive, got %d", c.VectorEntrySize)
	}
	return nil
}

// LoadCosts reads a YAML costs file on top of DefaultCosts.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadCosts(path string) (Costs, error) {
	costs := DefaultCosts()
	data, err := os.ReadFile(path)
	if err != nil {
		return costs, fmt.Errorf("reading costs file: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&costs); err != nil {
		return costs, fmt.Errorf("parsing costs file %s: %w", path, err)
	}
	if err := costs.Validate(); err != nil {
		return costs, fmt.Errorf("costs file %s: %w", path, err)
	}
	return costs, nil
}
