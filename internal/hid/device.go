package hid

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/karalabe/hid"

	"github.com/pleimann/infodisplay/internal/utils"
)

// ErrClosed is returned when writing to a closed device.
var ErrClosed = errors.New("device closed")

// Device is a connection to a USB HID status display.
type Device struct {
	vendorID  uint16
	productID uint16
	device    *hid.Device
	mu        sync.Mutex
	closed    bool
}

// NewDevice opens a connection to a HID device with the specified vendor and product IDs
func NewDevice(vendorID, productID uint16) (*Device, error) {
	devices := hid.Enumerate(vendorID, productID)
	if len(devices) == 0 {
		if len(hid.Enumerate(0, 0)) == 0 {
			return nil, fmt.Errorf("no HID devices found on system - check USB connection")
		}
		return nil, fmt.Errorf("no device found with VendorID=0x%04X, ProductID=0x%04X\n"+
			"  Run '%s list-devices' to see available devices\n"+
			"  Run '%s set-device' to configure the correct device",
			vendorID, productID, utils.ExecutableName(), utils.ExecutableName())
	}

	dev, err := openAny(devices)
	if err != nil {
		return nil, fmt.Errorf("failed to open device 0x%04X:0x%04X: %w\n"+
			"  On Linux this is usually missing udev permissions for the hidraw node",
			vendorID, productID, err)
	}
	return &Device{
		vendorID:  vendorID,
		productID: productID,
		device:    dev,
	}, nil
}

// openAny tries each interface until one opens. Composite devices expose
// several and not all can be opened.
func openAny(devices []hid.DeviceInfo) (*hid.Device, error) {
	var lastErr error
	for _, info := range devices {
		dev, err := info.Open()
		if err == nil {
			return dev, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// Close closes the HID device connection
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	if d.device != nil {
		return d.device.Close()
	}
	return nil
}

// Write sends one report to the device.
func (d *Device) Write(data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || d.device == nil {
		return ErrClosed
	}

	_, err := d.device.Write(data)
	return err
}

// SendFrame sends a display frame to the device
func (d *Device) SendFrame(frame *DisplayFrame) error {
	return d.Write(frame.Encode())
}

// Reconnect attempts to reconnect to the device
func (d *Device) Reconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.device != nil {
		d.device.Close()
		d.device = nil
	}
	d.closed = false

	devices := hid.Enumerate(d.vendorID, d.productID)
	if len(devices) == 0 {
		return fmt.Errorf("device not found")
	}
	dev, err := openAny(devices)
	if err != nil {
		return fmt.Errorf("failed to open device: %w", err)
	}
	d.device = dev
	return nil
}

// WaitForDevice waits for a device to become available and connects to it
func (d *Device) WaitForDevice(ctx context.Context, pollInterval time.Duration) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := d.Reconnect(); err == nil {
				return nil
			}
		}
	}
}
