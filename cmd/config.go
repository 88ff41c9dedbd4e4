package cmd

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/interrupt-sim/interrupt-sim/sim"
	"github.com/interrupt-sim/interrupt-sim/sim/devices"
)

// deviceSource names where the device table comes from. Either DeviceConfig
// (YAML) or both VectorsPath and DelaysPath (text tables) must be set.
type deviceSource struct {
	VectorsPath  string
	DelaysPath   string
	DeviceConfig string
}

func (d deviceSource) load() (*sim.DeviceTable, error) {
	switch {
	case d.DeviceConfig != "" && (d.VectorsPath != "" || d.DelaysPath != ""):
		return nil, fmt.Errorf("--device-config cannot be combined with --vectors/--devices")
	case d.DeviceConfig != "":
		return devices.LoadYAML(d.DeviceConfig)
	case d.VectorsPath != "" && d.DelaysPath != "":
		return devices.LoadTextTables(d.VectorsPath, d.DelaysPath)
	default:
		return nil, fmt.Errorf("device table not provided; use --vectors and --devices, or --device-config")
	}
}

// costFlags holds per-cost CLI overrides. Only flags the user actually set
// replace values from the costs file (or the defaults).
type costFlags struct {
	CostsPath       string
	SwitchMode      int64
	SaveContext     int64
	FindVector      int64
	FetchISR        int64
	IRET            int64
	VectorEntrySize int64
	VectorBase      int64
}

func (c *costFlags) register(fs *pflag.FlagSet) {
	def := sim.DefaultCosts()
	fs.StringVar(&c.CostsPath, "costs", "", "YAML file with timing costs (defaults apply to missing keys)")
	fs.Int64Var(&c.SwitchMode, "switch-mode", def.SwitchMode, "Cost of switching to kernel mode (ms)")
	fs.Int64Var(&c.SaveContext, "save-context", def.SaveContext, "Cost of saving the CPU context (ms)")
	fs.Int64Var(&c.FindVector, "find-vector", def.FindVector, "Cost of locating the interrupt vector (ms)")
	fs.Int64Var(&c.FetchISR, "fetch-isr", def.FetchISR, "Cost of loading the ISR address into the PC (ms)")
	fs.Int64Var(&c.IRET, "iret", def.IRET, "Cost of returning from the interrupt (ms)")
	fs.Int64Var(&c.VectorEntrySize, "vector-size", def.VectorEntrySize, "Bytes per vector table entry")
	fs.Int64Var(&c.VectorBase, "vector-base", def.VectorBase, "Memory address of vector 0")
}

// resolve builds the effective costs: defaults, then the costs file, then
// explicitly set flags.
func (c *costFlags) resolve(fs *pflag.FlagSet) (sim.Costs, error) {
	costs := sim.DefaultCosts()
	if c.CostsPath != "" {
		loaded, err := sim.LoadCosts(c.CostsPath)
		if err != nil {
			return costs, err
		}
		costs = loaded
	}

	overrides := []struct {
		flag string
		dst  *int64
		val  int64
	}{
		{"switch-mode", &costs.SwitchMode, c.SwitchMode},
		{"save-context", &costs.SaveContext, c.SaveContext},
		{"find-vector", &costs.FindVector, c.FindVector},
		{"fetch-isr", &costs.FetchISR, c.FetchISR},
		{"iret", &costs.IRET, c.IRET},
		{"vector-size", &costs.VectorEntrySize, c.VectorEntrySize},
		{"vector-base", &costs.VectorBase, c.VectorBase},
	}
	for _, o := range overrides {
		if fs.Changed(o.flag) {
			*o.dst = o.val
		}
	}
	if err := costs.Validate(); err != nil {
		return costs, fmt.Errorf("invalid costs: %w", err)
	}
	return costs, nil
}
