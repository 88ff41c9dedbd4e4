package sim

import (
	"errors"
	"fmt"
)

// ErrUnknownDevice is wrapped by every ConfigurationError.
var ErrUnknownDevice = errors.New("unknown device")

// ConfigurationError reports a trace event that references a device
// missing from the DeviceTable. It is fatal to the run.
type ConfigurationError struct {
	DeviceID    int64
	TableLength int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("device %d not declared (device table has %d entries)", e.DeviceID, e.TableLength)
}

// Unwrap lets callers match with errors.Is(err, ErrUnknownDevice).
func (e *ConfigurationError) Unwrap() error {
	return ErrUnknownDevice
}

// Device is the static configuration of one device. Its ID is the index in the table.
type Device struct {
	ID         int
	ISRAddress string
	IODelay    int64 // ISR body duration in ms
}

// DeviceTable is the read-only, index-addressed device configuration.
type DeviceTable struct {
	devices []Device
}

// NewDeviceTable builds a table from parallel ISR address and delay lists.
// The two lists must have equal length and every delay must be non-negative.
func NewDeviceTable(addresses []string, delays []int64) (*DeviceTable, error) {
	if len(addresses) != len(delays) {
		return nil, fmt.Errorf("vector table has %d entries but device table has %d", len(addresses), len(delays))
	}
	devices := make([]Device, len(addresses))
	for i := range addresses {
		if delays[i] < 0 {
			return nil, fmt.Errorf("device %d: io delay must be non-negative, got %d", i, delays[i])
		}
		devices[i] = Device{ID: i, ISRAddress: addresses[i], IODelay: delays[i]}
	}
	return &DeviceTable{devices: devices}, nil
}

// Lookup returns the device with the given id, or a *ConfigurationError
// if the id is outside the table.
func (t *DeviceTable) Lookup(id int64) (Device, error) {
	if t == nil || id < 0 || id >= int64(len(t.devices)) {
		return Device{}, &ConfigurationError{DeviceID: id, TableLength: t.Len()}
	}
	return t.devices[id], nil
}

// Len returns the number of declared devices.
func (t *DeviceTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.devices)
}

// Devices returns a copy of the table contents in id order.
func (t *DeviceTable) Devices() []Device {
	if t == nil {
		return nil
	}
	out := make([]Device, len(t.devices))
	copy(out, t.devices)
	return out
}
