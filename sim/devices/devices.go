// Package devices loads the device table: either the two-file layout
// (a vector table of ISR addresses and a device table of I/O delays, one
// entry per line, line index = device id) or a single YAML file.
package devices

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/interrupt-sim/interrupt-sim/sim"
)

// Config is the YAML device table layout.
type Config struct {
	Devices []DeviceSpec `yaml:"devices"`
}

// DeviceSpec configures one device; its position in the list is its id.
type DeviceSpec struct {
	ISRAddress string `yaml:"isr_address"`
	IODelay    int64  `yaml:"io_delay"`
}

// ParseVectorTable reads one ISR address per non-blank line.
func ParseVectorTable(r io.Reader) ([]string, error) {
	addresses := make([]string, 0)
	err := scanEntries(r, func(_ int, text string) error {
		addresses = append(addresses, text)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading vector table: %w", err)
	}
	return addresses, nil
}

// ParseDelayTable reads one non-negative integer delay (ms) per non-blank line.
func ParseDelayTable(r io.Reader) ([]int64, error) {
	delays := make([]int64, 0)
	err := scanEntries(r, func(line int, text string) error {
		d, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid delay %q", line, text)
		}
		if d < 0 {
			return fmt.Errorf("line %d: delay must be non-negative, got %d", line, d)
		}
		delays = append(delays, d)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading device table: %w", err)
	}
	return delays, nil
}

func scanEntries(r io.Reader, fn func(line int, text string) error) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if err := fn(line, text); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// LoadTextTables builds a table from a vector table file and a device table file.
func LoadTextTables(vectorsPath, delaysPath string) (*sim.DeviceTable, error) {
	vf, err := os.Open(vectorsPath)
	if err != nil {
		return nil, fmt.Errorf("opening vector table: %w", err)
	}
	defer func() { _ = vf.Close() }()
	addresses, err := ParseVectorTable(vf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", vectorsPath, err)
	}

	df, err := os.Open(delaysPath)
	if err != nil {
		return nil, fmt.Errorf("opening device table: %w", err)
	}
	defer func() { _ = df.Close() }()
	delays, err := ParseDelayTable(df)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", delaysPath, err)
	}

	table, err := sim.NewDeviceTable(addresses, delays)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Loaded %d devices from %s and %s", table.Len(), vectorsPath, delaysPath)
	return table, nil
}

// ParseYAML decodes a YAML device table.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func ParseYAML(data []byte) (*sim.DeviceTable, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing device config: %w", err)
	}
	addresses := make([]string, len(cfg.Devices))
	delays := make([]int64, len(cfg.Devices))
	for i, d := range cfg.Devices {
		if d.ISRAddress == "" {
			return nil, fmt.Errorf("devices[%d]: isr_address is required", i)
		}
		addresses[i] = d.ISRAddress
		delays[i] = d.IODelay
	}
	return sim.NewDeviceTable(addresses, delays)
}

// LoadYAML reads a YAML device table from path.
func LoadYAML(path string) (*sim.DeviceTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading device config: %w", err)
	}
	table, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logrus.Infof("Loaded %d devices from %s", table.Len(), path)
	return table, nil
}

// ToConfig converts a table back into its YAML layout.
func ToConfig(table *sim.DeviceTable) Config {
	cfg := Config{Devices: make([]DeviceSpec, 0, table.Len())}
	for _, d := range table.Devices() {
		cfg.Devices = append(cfg.Devices, DeviceSpec{ISRAddress: d.ISRAddress, IODelay: d.IODelay})
	}
	return cfg
}
