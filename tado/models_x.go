package tado

// DeviceManualControlTermination is a room's default manual-control policy on the X line.
type DeviceManualControlTermination struct {
	Type              string `json:"type"`
	DurationInSeconds *int   `json:"durationInSeconds"`
}

func (d *DeviceManualControlTermination) UnmarshalJSON(data []byte) error {
	type plain DeviceManualControlTermination
	return unmarshalRequired(data, (*plain)(d), "DeviceManualControlTermination", "type", "durationInSeconds")
}

type Connection struct {
	State string `json:"state"`
}

func (c *Connection) UnmarshalJSON(data []byte) error {
	type plain Connection
	return unmarshalRequired(data, (*plain)(c), "Connection", "state")
}

// XDevice is an X line device. Unlike v3 it embeds its temperature offset.
type XDevice struct {
	SerialNumber          string     `json:"serialNumber"`
	Type                  string     `json:"type"`
	FirmwareVersion       string     `json:"firmwareVersion"`
	Connection            Connection `json:"connection"`
	BatteryState          *string    `json:"batteryState,omitempty"`
	TemperatureAsMeasured *float64   `json:"temperatureAsMeasured,omitempty"`
	TemperatureOffset     *float64   `json:"temperatureOffset,omitempty"`
	MountingState         *string    `json:"mountingState,omitempty"`
	ChildLockEnabled      *bool      `json:"childLockEnabled,omitempty"`
}

func (d *XDevice) UnmarshalJSON(data []byte) error {
	type plain XDevice
	return unmarshalRequired(data, (*plain)(d), "XDevice", "serialNumber", "type", "firmwareVersion", "connection")
}

type Room struct {
	RoomID                         int                            `json:"roomId"`
	RoomName                       string                         `json:"roomName"`
	DeviceManualControlTermination DeviceManualControlTermination `json:"deviceManualControlTermination"`
	Devices                        []XDevice                      `json:"devices"`
	ZoneControllerAssignable       bool                           `json:"zoneControllerAssignable"`
	ZoneControllers                []any                          `json:"zoneControllers"`
	RoomLinkAvailable              bool                           `json:"roomLinkAvailable"`
}

func (r *Room) UnmarshalJSON(data []byte) error {
	type plain Room
	return unmarshalRequired(data, (*plain)(r), "Room",
		"roomId", "roomName", "deviceManualControlTermination", "devices",
		"zoneControllerAssignable", "zoneControllers", "roomLinkAvailable")
}

// RoomsAndDevices is the X line listing of a home's rooms and their devices.
type RoomsAndDevices struct {
	Rooms        []Room    `json:"rooms"`
	OtherDevices []XDevice `json:"otherDevices"`
}

func (r *RoomsAndDevices) UnmarshalJSON(data []byte) error {
	type plain RoomsAndDevices
	return unmarshalRequired(data, (*plain)(r), "RoomsAndDevices", "rooms", "otherDevices")
}
