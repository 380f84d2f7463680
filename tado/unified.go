package tado

// UnifiedDevice is a device record independent of the API line it came from.
type UnifiedDevice struct {
	DeviceType        string   `json:"deviceType"`
	Serial            string   `json:"serial"`
	FirmwareVersion   string   `json:"firmwareVersion"`
	ConnectionState   bool     `json:"connectionState"`
	BatteryState      *string  `json:"batteryState,omitempty"`
	TemperatureOffset *float64 `json:"temperatureOffset,omitempty"`
	ChildLockEnabled  *bool    `json:"childLockEnabled,omitempty"`
}

// UnifiedFromV3 converts a v3 device. offset is nil when it was not fetched
// or the fetch failed.
func UnifiedFromV3(d Device, offset *TemperatureOffset) UnifiedDevice {
	out := UnifiedDevice{
		DeviceType:       d.DeviceType,
		Serial:           d.SerialNo,
		FirmwareVersion:  d.CurrentFwVersion,
		ConnectionState:  d.ConnectionState.Value,
		BatteryState:     d.BatteryState,
		ChildLockEnabled: d.ChildLockEnabled,
	}
	if offset != nil {
		celsius := offset.Celsius
		out.TemperatureOffset = &celsius
	}
	return out
}

// UnifiedFromX converts an X device.
func UnifiedFromX(d XDevice) UnifiedDevice {
	return UnifiedDevice{
		DeviceType:        d.Type,
		Serial:            d.SerialNumber,
		FirmwareVersion:   d.FirmwareVersion,
		ConnectionState:   d.Connection.State == xConnected,
		BatteryState:      d.BatteryState,
		TemperatureOffset: d.TemperatureOffset,
		ChildLockEnabled:  d.ChildLockEnabled,
	}
}
