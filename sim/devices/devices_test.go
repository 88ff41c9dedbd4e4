package devices

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/interrupt-sim/interrupt-sim/sim"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseVectorTable_SkipsBlankLines(t *testing.T) {
	got, err := ParseVectorTable(strings.NewReader("0x01E3\n\n  0x029C  \n0x0695\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"0x01E3", "0x029C", "0x0695"}, got)
}

func TestParseDelayTable_ValidAndInvalid(t *testing.T) {
	got, err := ParseDelayTable(strings.NewReader("110\n 40 \n0\n"))
	require.NoError(t, err)
	assert.Equal(t, []int64{110, 40, 0}, got)

	_, err = ParseDelayTable(strings.NewReader("110\nfast\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = ParseDelayTable(strings.NewReader("-5\n"))
	assert.ErrorContains(t, err, "non-negative")
}

func TestLoadTextTables_BuildsIndexedTable(t *testing.T) {
	// GIVEN a vector table and a device table with two entries each
	vectors := writeFile(t, "vector_table.txt", "0x1A\n0x2B\n")
	delays := writeFile(t, "device_table.txt", "40\n250\n")

	// WHEN they are loaded
	table, err := LoadTextTables(vectors, delays)

	// THEN device ids follow line order
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	dev, err := table.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, sim.Device{ID: 1, ISRAddress: "0x2B", IODelay: 250}, dev)
}

func TestLoadTextTables_LengthMismatch_ReturnsError(t *testing.T) {
	vectors := writeFile(t, "vector_table.txt", "0x1A\n0x2B\n")
	delays := writeFile(t, "device_table.txt", "40\n")

	_, err := LoadTextTables(vectors, delays)
	assert.ErrorContains(t, err, "2 entries")
}

func TestLoadTextTables_MissingFile_ReturnsError(t *testing.T) {
	delays := writeFile(t, "device_table.txt", "40\n")
	_, err := LoadTextTables(filepath.Join(t.TempDir(), "nope.txt"), delays)
	assert.Error(t, err)
}

func TestParseYAML_StrictFields(t *testing.T) {
	// GIVEN a valid YAML table
	table, err := ParseYAML([]byte("devices:\n  - isr_address: \"0x1A\"\n    io_delay: 40\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())

	// WHEN a key is misspelled
	_, err = ParseYAML([]byte("devices:\n  - isr_adress: \"0x1A\"\n    io_delay: 40\n"))

	// THEN parsing fails
	assert.Error(t, err)
}

func TestParseYAML_MissingAddress_ReturnsError(t *testing.T) {
	_, err := ParseYAML([]byte("devices:\n  - io_delay: 40\n"))
	assert.ErrorContains(t, err, "devices[0]")
}

func TestLoadYAML_RoundTripsThroughToConfig(t *testing.T) {
	// GIVEN a two-device table
	table, err := sim.NewDeviceTable([]string{"0x1A", "0x2B"}, []int64{40, 7})
	require.NoError(t, err)

	// WHEN it is written as YAML and loaded back
	data, err := yaml.Marshal(ToConfig(table))
	require.NoError(t, err)
	path := writeFile(t, "devices.yaml", string(data))
	loaded, err := LoadYAML(path)

	// THEN both tables hold the same devices
	require.NoError(t, err)
	assert.Equal(t, table.Devices(), loaded.Devices())
}

func TestLoadYAML_UnknownDeviceStillFailsLookup(t *testing.T) {
	path := writeFile(t, "devices.yaml", "devices:\n  - isr_address: \"0x1A\"\n    io_delay: 40\n")
	table, err := LoadYAML(path)
	require.NoError(t, err)

	_, err = table.Lookup(7)
	var cfgErr *sim.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, int64(7), cfgErr.DeviceID)
}
