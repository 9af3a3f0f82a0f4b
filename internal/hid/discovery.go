package hid

import (
	"sort"

	"github.com/karalabe/hid"
)

// DeviceInfo contains information about a discovered HID device
type DeviceInfo struct {
	VendorID     uint16
	ProductID    uint16
	Path         string
	Manufacturer string
	Product      string
	SerialNumber string
	UsagePage    uint16
	Usage        uint16
}

func toDeviceInfo(d hid.DeviceInfo) DeviceInfo {
	return DeviceInfo{
		VendorID:     d.VendorID,
		ProductID:    d.ProductID,
		Path:         d.Path,
		Manufacturer: d.Manufacturer,
		Product:      d.Product,
		SerialNumber: d.Serial,
		UsagePage:    d.UsagePage,
		Usage:        d.Usage,
	}
}

// ListDevices returns all HID devices ordered by vendor and product ID.
func ListDevices() ([]DeviceInfo, error) {
	devices := hid.Enumerate(0, 0)

	result := make([]DeviceInfo, len(devices))
	for i, d := range devices {
		result[i] = toDeviceInfo(d)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].VendorID != result[j].VendorID {
			return result[i].VendorID < result[j].VendorID
		}
		return result[i].ProductID < result[j].ProductID
	})
	return result, nil
}

// Unique drops devices without IDs and keeps one entry per vendor and
// product ID pair.
func Unique(devices []DeviceInfo) []DeviceInfo {
	seen := make(map[uint32]bool)
	var out []DeviceInfo
	for _, d := range devices {
		if d.VendorID == 0 && d.ProductID == 0 {
			continue
		}
		key := uint32(d.VendorID)<<16 | uint32(d.ProductID)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	return out
}

// FindDevice returns the first device matching the given IDs, or nil.
func FindDevice(vendorID, productID uint16) *DeviceInfo {
	devices := hid.Enumerate(vendorID, productID)
	if len(devices) == 0 {
		return nil
	}
	info := toDeviceInfo(devices[0])
	return &info
}
