package tado

import "time"

// Version is reported in the User-Agent header.
const Version = "0.3.0"

const (
	ClientID = "1bb50063-6b0c-4d11-bd99-387f4a91cc46"

	defaultTokenURL      = "https://login.tado.com/oauth2/token"
	defaultDeviceAuthURL = "https://login.tado.com/oauth2/device_authorize"
	defaultAPIURL        = "https://my.tado.com/api/v2"
	defaultXURL          = "https://hops.tado.com"
	defaultEIQURL        = "https://energy-insights.tado.com/api"

	DefaultTimeout = 10 * time.Second

	// tokenSafetyMargin is subtracted from the token expiry before it is trusted.
	tokenSafetyMargin = 30 * time.Second

	defaultDeviceInterval = 5 * time.Second
	defaultDeviceExpiry   = 300 * time.Second
	slowDownStep          = 5 * time.Second
)

// Line is the hardware generation of a home, as reported in its generation field.
type Line string

const (
	LinePreX Line = "PRE_LINE_X"
	LineX    Line = "LINE_X"
)

// Zone setting types.
const (
	TypeHeating         = "HEATING"
	TypeHotWater        = "HOT_WATER"
	TypeAirConditioning = "AIR_CONDITIONING"
)

// HVAC modes.
const (
	ModeSmartSchedule = "SMART_SCHEDULE"
	ModeOff           = "OFF"
	ModeHeat          = "HEAT"
	ModeCool          = "COOL"
	ModeAuto          = "AUTO"
	ModeDry           = "DRY"
	ModeFan           = "FAN"
)

// HVAC actions.
const (
	ActionHeating  = "HEATING"
	ActionDrying   = "DRYING"
	ActionFan      = "FAN"
	ActionCooling  = "COOLING"
	ActionHotWater = "HOT_WATER"
	ActionIdle     = "IDLE"
	ActionOff      = "OFF"
)

// Fan speed and fan level are separate vendor settings with their own values.
const (
	FanSpeedAuto = "AUTO"
	FanSpeedOff  = "OFF"
	FanLevelAuto = "AUTO"
	FanLevelOff  = "OFF"
)

const (
	SwingOff           = "OFF"
	VerticalSwingOff   = "OFF"
	HorizontalSwingOff = "OFF"

	PowerOn  = "ON"
	PowerOff = "OFF"

	tadoModeAway = "AWAY"
	linkOffline  = "OFFLINE"

	CapabilityInsideTemperature = "INSIDE_TEMPERATURE_MEASUREMENT"

	xConnected = "CONNECTED"
)

// Presence values accepted by SetPresence.
const (
	PresenceHome = "HOME"
	PresenceAway = "AWAY"
	PresenceAuto = "AUTO"
)

// Overlay termination types.
const (
	TerminationManual        = "MANUAL"
	TerminationTimer         = "TIMER"
	TerminationNextTimeBlock = "NEXT_TIME_BLOCK"
)

// typeToMode derives the mode of legacy devices that only report a setting type.
var typeToMode = map[string]string{
	TypeHeating:  ModeHeat,
	TypeHotWater: ModeHeat,
	"COOLING":    ModeCool,
}

// modeToAction resolves the action of a powered unit whose AC power is on.
var modeToAction = map[string]string{
	ModeHeat: ActionHeating,
	ModeDry:  ActionDrying,
	ModeFan:  ActionFan,
	ModeCool: ActionCooling,
}
