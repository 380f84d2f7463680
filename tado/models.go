package tado

import "encoding/json"

// Me is the authenticated user's profile.
type Me struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	ID       string `json:"id"`
	Username string `json:"username"`
	Locale   string `json:"locale"`
	Homes    []Home `json:"homes"`
}

func (m *Me) UnmarshalJSON(data []byte) error {
	type plain Me
	return unmarshalRequired(data, (*plain)(m), "Me", "name", "email", "id", "username", "locale", "homes")
}

// Home is a home reference as listed in the user profile.
type Home struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (h *Home) UnmarshalJSON(data []byte) error {
	type plain Home
	return unmarshalRequired(data, (*plain)(h), "Home", "id", "name")
}

// HomeInfo is the detailed home record. Generation tells which API line
// serves the home's devices.
type HomeInfo struct {
	ID                         int      `json:"id"`
	Name                       string   `json:"name"`
	Generation                 *Line    `json:"generation,omitempty"`
	DateTimeZone               *string  `json:"dateTimeZone,omitempty"`
	TemperatureUnit            *string  `json:"temperatureUnit,omitempty"`
	Partner                    *string  `json:"partner,omitempty"`
	SimpleSmartScheduleEnabled *bool    `json:"simpleSmartScheduleEnabled,omitempty"`
	AwayRadiusInMeters         *float64 `json:"awayRadiusInMeters,omitempty"`
	InstallationCompleted      *bool    `json:"installationCompleted,omitempty"`
	IsHeatSourceInstalled      *bool    `json:"isHeatSourceInstalled,omitempty"`
}

func (h *HomeInfo) UnmarshalJSON(data []byte) error {
	type plain HomeInfo
	return unmarshalRequired(data, (*plain)(h), "HomeInfo", "id", "name")
}

type DeviceMetadata struct {
	Platform  string `json:"platform"`
	OSVersion string `json:"osVersion"`
	Model     string `json:"model"`
	Locale    string `json:"locale"`
}

func (d *DeviceMetadata) UnmarshalJSON(data []byte) error {
	type plain DeviceMetadata
	return unmarshalRequired(data, (*plain)(d), "DeviceMetadata", "platform", "osVersion", "model", "locale")
}

// MobileDevice is a phone registered for geofencing.
type MobileDevice struct {
	Name           string          `json:"name"`
	ID             int             `json:"id"`
	DeviceMetadata DeviceMetadata  `json:"deviceMetadata"`
	Settings       MobileSettings  `json:"settings"`
	Location       *MobileLocation `json:"location,omitempty"`
}

func (m *MobileDevice) UnmarshalJSON(data []byte) error {
	type plain MobileDevice
	return unmarshalRequired(data, (*plain)(m), "MobileDevice", "name", "id", "deviceMetadata", "settings")
}

type MobileLocation struct {
	Stale                         bool                  `json:"stale"`
	AtHome                        bool                  `json:"atHome"`
	BearingFromHome               MobileBearingFromHome `json:"bearingFromHome"`
	RelativeDistanceFromHomeFence float64               `json:"relativeDistanceFromHomeFence"`
}

func (m *MobileLocation) UnmarshalJSON(data []byte) error {
	type plain MobileLocation
	return unmarshalRequired(data, (*plain)(m), "MobileLocation",
		"stale", "atHome", "bearingFromHome", "relativeDistanceFromHomeFence")
}

type MobileBearingFromHome struct {
	Degrees float64 `json:"degrees"`
	Radians float64 `json:"radians"`
}

func (m *MobileBearingFromHome) UnmarshalJSON(data []byte) error {
	type plain MobileBearingFromHome
	return unmarshalRequired(data, (*plain)(m), "MobileBearingFromHome", "degrees", "radians")
}

type MobileSettings struct {
	GeoTrackingEnabled          bool `json:"geoTrackingEnabled"`
	SpecialOffersEnabled        bool `json:"specialOffersEnabled"`
	OnDemandLogRetrievalEnabled bool `json:"onDemandLogRetrievalEnabled"`
}

func (m *MobileSettings) UnmarshalJSON(data []byte) error {
	type plain MobileSettings
	return unmarshalRequired(data, (*plain)(m), "MobileSettings",
		"geoTrackingEnabled", "specialOffersEnabled", "onDemandLogRetrievalEnabled")
}

// ConnectionState is the v3 connectivity flag of a device or zone.
type ConnectionState struct {
	Value     bool   `json:"value"`
	Timestamp string `json:"timestamp"`
}

func (c *ConnectionState) UnmarshalJSON(data []byte) error {
	type plain ConnectionState
	return unmarshalRequired(data, (*plain)(c), "ConnectionState", "value", "timestamp")
}

type Characteristics struct {
	Capabilities []string `json:"capabilities"`
}

func (c *Characteristics) UnmarshalJSON(data []byte) error {
	type plain Characteristics
	return unmarshalRequired(data, (*plain)(c), "Characteristics", "capabilities")
}

// Has reports whether the device advertises capability.
func (c Characteristics) Has(capability string) bool {
	for _, value := range c.Capabilities {
		if value == capability {
			return true
		}
	}
	return false
}

type MountingState struct {
	Value     string `json:"value"`
	Timestamp string `json:"timestamp"`
}

func (m *MountingState) UnmarshalJSON(data []byte) error {
	type plain MountingState
	return unmarshalRequired(data, (*plain)(m), "MountingState", "value", "timestamp")
}

// Device is a v3 line device.
type Device struct {
	DeviceType             string          `json:"deviceType"`
	SerialNo               string          `json:"serialNo"`
	ShortSerialNo          string          `json:"shortSerialNo"`
	CurrentFwVersion       string          `json:"currentFwVersion"`
	ConnectionState        ConnectionState `json:"connectionState"`
	Characteristics        Characteristics `json:"characteristics"`
	InPairingMode          *bool           `json:"inPairingMode,omitempty"`
	MountingState          *MountingState  `json:"mountingState,omitempty"`
	MountingStateWithError *string         `json:"mountingStateWithError,omitempty"`
	BatteryState           *string         `json:"batteryState,omitempty"`
	Orientation            *string         `json:"orientation,omitempty"`
	ChildLockEnabled       *bool           `json:"childLockEnabled,omitempty"`
}

func (d *Device) UnmarshalJSON(data []byte) error {
	type plain Device
	return unmarshalRequired(data, (*plain)(d), "Device",
		"deviceType", "serialNo", "shortSerialNo", "currentFwVersion", "connectionState", "characteristics")
}

type DazzleMode struct {
	Supported bool `json:"supported"`
	Enabled   bool `json:"enabled"`
}

func (d *DazzleMode) UnmarshalJSON(data []byte) error {
	type plain DazzleMode
	return unmarshalRequired(data, (*plain)(d), "DazzleMode", "supported")
}

type OpenWindowDetection struct {
	Supported        bool `json:"supported"`
	Enabled          bool `json:"enabled"`
	TimeoutInSeconds int  `json:"timeoutInSeconds"`
}

func (o *OpenWindowDetection) UnmarshalJSON(data []byte) error {
	type plain OpenWindowDetection
	return unmarshalRequired(data, (*plain)(o), "OpenWindowDetection", "supported")
}

// Zone is a controllable climate area of a home.
type Zone struct {
	ID                  int                  `json:"id"`
	Name                string               `json:"name"`
	Type                string               `json:"type"`
	DateCreated         string               `json:"dateCreated"`
	DeviceTypes         []string             `json:"deviceTypes"`
	Devices             []Device             `json:"devices"`
	ReportAvailable     bool                 `json:"reportAvailable"`
	ShowScheduleSetup   bool                 `json:"showScheduleSetup"`
	SupportsDazzle      bool                 `json:"supportsDazzle"`
	DazzleEnabled       bool                 `json:"dazzleEnabled"`
	DazzleMode          DazzleMode           `json:"dazzleMode"`
	OpenWindowDetection *OpenWindowDetection `json:"openWindowDetection,omitempty"`
}

func (z *Zone) UnmarshalJSON(data []byte) error {
	type plain Zone
	return unmarshalRequired(data, (*plain)(z), "Zone",
		"id", "name", "type", "dateCreated", "deviceTypes", "devices",
		"reportAvailable", "showScheduleSetup", "supportsDazzle", "dazzleEnabled", "dazzleMode")
}

type Precision struct {
	Celsius    float64 `json:"celsius"`
	Fahrenheit float64 `json:"fahrenheit"`
}

func (p *Precision) UnmarshalJSON(data []byte) error {
	type plain Precision
	return unmarshalRequired(data, (*plain)(p), "Precision", "celsius", "fahrenheit")
}

type InsideTemperature struct {
	Celsius    float64   `json:"celsius"`
	Fahrenheit float64   `json:"fahrenheit"`
	Precision  Precision `json:"precision"`
	Type       *string   `json:"type,omitempty"`
	Timestamp  *string   `json:"timestamp,omitempty"`
}

func (t *InsideTemperature) UnmarshalJSON(data []byte) error {
	type plain InsideTemperature
	return unmarshalRequired(data, (*plain)(t), "InsideTemperature", "celsius", "fahrenheit", "precision")
}

type Temperature struct {
	Celsius    float64 `json:"celsius"`
	Fahrenheit float64 `json:"fahrenheit"`
	Type       *string `json:"type,omitempty"`
	Timestamp  *string `json:"timestamp,omitempty"`
}

func (t *Temperature) UnmarshalJSON(data []byte) error {
	type plain Temperature
	return unmarshalRequired(data, (*plain)(t), "Temperature", "celsius", "fahrenheit")
}

type SolarIntensity struct {
	Percentage float64 `json:"percentage"`
	Timestamp  string  `json:"timestamp"`
	Type       string  `json:"type"`
}

func (s *SolarIntensity) UnmarshalJSON(data []byte) error {
	type plain SolarIntensity
	return unmarshalRequired(data, (*plain)(s), "SolarIntensity", "percentage", "timestamp", "type")
}

type WeatherState struct {
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Value     string `json:"value"`
}

func (w *WeatherState) UnmarshalJSON(data []byte) error {
	type plain WeatherState
	return unmarshalRequired(data, (*plain)(w), "WeatherState", "timestamp", "type", "value")
}

// Weather is the outdoor conditions at the home's location.
type Weather struct {
	OutsideTemperature Temperature    `json:"outsideTemperature"`
	SolarIntensity     SolarIntensity `json:"solarIntensity"`
	WeatherState       WeatherState   `json:"weatherState"`
}

func (w *Weather) UnmarshalJSON(data []byte) error {
	type plain Weather
	return unmarshalRequired(data, (*plain)(w), "Weather", "outsideTemperature", "solarIntensity", "weatherState")
}

// HomeState is the home's presence status.
type HomeState struct {
	Presence                         string `json:"presence"`
	PresenceLocked                   bool   `json:"presenceLocked"`
	ShowHomePresenceSwitchButton     *bool  `json:"showHomePresenceSwitchButton,omitempty"`
	ShowSwitchToAutoGeofencingButton *bool  `json:"showSwitchToAutoGeofencingButton,omitempty"`
}

func (h *HomeState) UnmarshalJSON(data []byte) error {
	type plain HomeState
	return unmarshalRequired(data, (*plain)(h), "HomeState", "presence", "presenceLocked")
}

type TemperatureRange struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

func (t *TemperatureRange) UnmarshalJSON(data []byte) error {
	type plain TemperatureRange
	return unmarshalRequired(data, (*plain)(t), "TemperatureRange", "min", "max", "step")
}

type Temperatures struct {
	Celsius    TemperatureRange `json:"celsius"`
	Fahrenheit TemperatureRange `json:"fahrenheit"`
}

func (t *Temperatures) UnmarshalJSON(data []byte) error {
	type plain Temperatures
	return unmarshalRequired(data, (*plain)(t), "Temperatures", "celsius", "fahrenheit")
}

// ModeCapabilities lists what an air conditioner supports in one mode.
type ModeCapabilities struct {
	Temperatures    *Temperatures `json:"temperatures,omitempty"`
	FanSpeeds       []string      `json:"fanSpeeds,omitempty"`
	FanLevel        []string      `json:"fanLevel,omitempty"`
	Swings          []string      `json:"swings,omitempty"`
	VerticalSwing   []string      `json:"verticalSwing,omitempty"`
	HorizontalSwing []string      `json:"horizontalSwing,omitempty"`
}

// Capabilities describes what a zone can be set to. Heating zones carry
// Temperatures; air conditioning zones carry one entry per mode.
type Capabilities struct {
	Type              string            `json:"type"`
	Temperatures      *Temperatures     `json:"temperatures,omitempty"`
	CanSetTemperature *bool             `json:"canSetTemperature,omitempty"`
	Auto              *ModeCapabilities `json:"AUTO,omitempty"`
	Cool              *ModeCapabilities `json:"COOL,omitempty"`
	Heat              *ModeCapabilities `json:"HEAT,omitempty"`
	Dry               *ModeCapabilities `json:"DRY,omitempty"`
	Fan               *ModeCapabilities `json:"FAN,omitempty"`
}

func (c *Capabilities) UnmarshalJSON(data []byte) error {
	type plain Capabilities
	return unmarshalRequired(data, (*plain)(c), "Capabilities", "type")
}

// TemperatureOffset is the calibration offset of a device's sensor.
type TemperatureOffset struct {
	Celsius    float64 `json:"celsius"`
	Fahrenheit float64 `json:"fahrenheit"`
}

func (t *TemperatureOffset) UnmarshalJSON(data []byte) error {
	type plain TemperatureOffset
	return unmarshalRequired(data, (*plain)(t), "TemperatureOffset", "celsius", "fahrenheit")
}

// Setting is what a zone is (or will be) doing. Temperature is absent while
// the zone is powered off; Mode is absent on legacy devices.
type Setting struct {
	Type            string       `json:"type"`
	Power           string       `json:"power"`
	Mode            *string      `json:"mode,omitempty"`
	Temperature     *Temperature `json:"temperature,omitempty"`
	FanSpeed        *string      `json:"fanSpeed,omitempty"`
	FanLevel        *string      `json:"fanLevel,omitempty"`
	Swing           *string      `json:"swing,omitempty"`
	VerticalSwing   *string      `json:"verticalSwing,omitempty"`
	HorizontalSwing *string      `json:"horizontalSwing,omitempty"`
}

func (s *Setting) UnmarshalJSON(data []byte) error {
	type plain Setting
	return unmarshalRequired(data, (*plain)(s), "Setting", "type", "power")
}

// Overlay is a manual override of the zone schedule.
type Overlay struct {
	Type            string       `json:"type"`
	Setting         Setting      `json:"setting"`
	Termination     *Termination `json:"termination,omitempty"`
	ProjectedExpiry *string      `json:"projectedExpiry,omitempty"`
}

func (o *Overlay) UnmarshalJSON(data []byte) error {
	type plain Overlay
	return unmarshalRequired(data, (*plain)(o), "Overlay", "type", "setting")
}

type Termination struct {
	Type                   string  `json:"type"`
	TypeSkillBasedApp      *string `json:"typeSkillBasedApp,omitempty"`
	ProjectedExpiry        *string `json:"projectedExpiry,omitempty"`
	DurationInSeconds      *int    `json:"durationInSeconds,omitempty"`
	RemainingTimeInSeconds *int    `json:"remainingTimeInSeconds,omitempty"`
	Expiry                 *string `json:"expiry,omitempty"`
}

func (t *Termination) UnmarshalJSON(data []byte) error {
	type plain Termination
	return unmarshalRequired(data, (*plain)(t), "Termination", "type")
}

type NextScheduleChange struct {
	Start   string  `json:"start"`
	Setting Setting `json:"setting"`
}

func (n *NextScheduleChange) UnmarshalJSON(data []byte) error {
	type plain NextScheduleChange
	return unmarshalRequired(data, (*plain)(n), "NextScheduleChange", "start", "setting")
}

type Link struct {
	State  string         `json:"state"`
	Reason map[string]any `json:"reason,omitempty"`
}

func (l *Link) UnmarshalJSON(data []byte) error {
	type plain Link
	return unmarshalRequired(data, (*plain)(l), "Link", "state")
}

type HeatingPower struct {
	Type       string   `json:"type"`
	Percentage *float64 `json:"percentage,omitempty"`
	Timestamp  string   `json:"timestamp"`
	Value      *string  `json:"value,omitempty"`
}

func (h *HeatingPower) UnmarshalJSON(data []byte) error {
	type plain HeatingPower
	return unmarshalRequired(data, (*plain)(h), "HeatingPower", "type", "timestamp")
}

type AcPower struct {
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Value     string `json:"value"`
}

func (a *AcPower) UnmarshalJSON(data []byte) error {
	type plain AcPower
	return unmarshalRequired(data, (*plain)(a), "AcPower", "type", "timestamp", "value")
}

type Humidity struct {
	Type       string  `json:"type"`
	Percentage float64 `json:"percentage"`
	Timestamp  string  `json:"timestamp"`
}

func (h *Humidity) UnmarshalJSON(data []byte) error {
	type plain Humidity
	return unmarshalRequired(data, (*plain)(h), "Humidity", "type", "percentage", "timestamp")
}

// SensorDataPoints may be an empty object for zones without sensors.
type SensorDataPoints struct {
	InsideTemperature *InsideTemperature `json:"insideTemperature,omitempty"`
	Humidity          *Humidity          `json:"humidity,omitempty"`
}

type ActivityDataPoints struct {
	AcPower      *AcPower      `json:"acPower,omitempty"`
	HeatingPower *HeatingPower `json:"heatingPower,omitempty"`
}

type OpenWindow struct {
	DetectedTime           string `json:"detectedTime"`
	DurationInSeconds      int    `json:"durationInSeconds"`
	Expiry                 string `json:"expiry"`
	RemainingTimeInSeconds int    `json:"remainingTimeInSeconds"`
}

func (o *OpenWindow) UnmarshalJSON(data []byte) error {
	type plain OpenWindow
	return unmarshalRequired(data, (*plain)(o), "OpenWindow",
		"detectedTime", "durationInSeconds", "expiry", "remainingTimeInSeconds")
}

type TerminationCondition struct {
	Type              *string `json:"type,omitempty"`
	DurationInSeconds *int    `json:"durationInSeconds,omitempty"`
}

// ZoneState is the raw state of a zone as returned by the v2/v3 API.
// Derived is filled by Normalize and never serialized.
type ZoneState struct {
	Setting                        Setting               `json:"setting"`
	Link                           Link                  `json:"link"`
	ActivityDataPoints             ActivityDataPoints    `json:"activityDataPoints"`
	TadoMode                       string                `json:"tadoMode"`
	GeolocationOverride            bool                  `json:"geolocationOverride"`
	OverlayType                    *string               `json:"overlayType"`
	NextTimeBlock                  map[string]any        `json:"nextTimeBlock"`
	SensorDataPoints               *SensorDataPoints     `json:"sensorDataPoints,omitempty"`
	Overlay                        *Overlay              `json:"overlay,omitempty"`
	GeolocationOverrideDisableTime *string               `json:"geolocationOverrideDisableTime,omitempty"`
	OpenWindow                     *OpenWindow           `json:"openWindow,omitempty"`
	NextScheduleChange             *NextScheduleChange   `json:"nextScheduleChange,omitempty"`
	TerminationCondition           *TerminationCondition `json:"terminationCondition,omitempty"`
	ConnectionState                *ConnectionState      `json:"connectionState,omitempty"`
	Preparation                    json.RawMessage       `json:"preparation,omitempty"`
	OpenWindowDetected             json.RawMessage       `json:"openWindowDetected,omitempty"`

	Derived ZoneView `json:"-"`
}

func (z *ZoneState) UnmarshalJSON(data []byte) error {
	type plain ZoneState
	return unmarshalRequired(data, (*plain)(z), "ZoneState",
		"setting", "link", "activityDataPoints", "tadoMode", "geolocationOverride", "overlayType", "nextTimeBlock")
}

// ZoneStates is the payload of the home-wide zone state listing, keyed by zone id.
type ZoneStates struct {
	ZoneStates map[string]ZoneState `json:"zoneStates"`
}

func (z *ZoneStates) UnmarshalJSON(data []byte) error {
	type plain ZoneStates
	return unmarshalRequired(data, (*plain)(z), "ZoneStates", "zoneStates")
}

// meterReadingResponse carries a business error in an otherwise successful response.
type meterReadingResponse struct {
	Message *string `json:"message,omitempty"`
}
