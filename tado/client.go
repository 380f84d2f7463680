package tado

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/oauth2"
)

// Client talks to the tado REST API on behalf of one user and one home.
// A Client is meant for one caller at a time. Its token state is guarded
// so concurrent use does not corrupt it, but concurrent refreshes are not
// coalesced.
type Client struct {
	mu     sync.Mutex
	token  *oauth2.Token
	status ActivationStatus
	device *oauth2.DeviceAuthResponse

	sessionMu  sync.Mutex
	httpClient *http.Client
	ownsClient bool

	endpoints Endpoints
	timeout   time.Duration
	log       logr.Logger
	now       func() time.Time
	sleep     func(context.Context, time.Duration) error

	homeID         *int
	me             *Me
	line           Line
	autoGeofencing *bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient makes the Client use hc. Close never closes it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
		c.ownsClient = false
	}
}

// WithTimeout bounds every call, token exchanges included.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRefreshToken resumes a session persisted from an earlier run.
func WithRefreshToken(token string) Option {
	return func(c *Client) {
		if token = strings.TrimSpace(token); token != "" {
			c.token = &oauth2.Token{RefreshToken: token}
		}
	}
}

// WithEndpoints overrides the non-empty base URLs of e.
func WithEndpoints(e Endpoints) Option {
	return func(c *Client) {
		c.endpoints = c.endpoints.merge(e)
	}
}

func WithLogger(log logr.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithClock replaces the wall clock used for token and device code expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithHomeID skips the home lookup through /me.
func WithHomeID(id int) Option {
	return func(c *Client) {
		c.homeID = &id
	}
}

// WithLine skips line detection.
func WithLine(line Line) Option {
	return func(c *Client) {
		c.line = line
	}
}

// New returns a Client. It makes no network calls; see Init.
func New(opts ...Option) *Client {
	c := &Client{
		status:    StatusNotStarted,
		endpoints: DefaultEndpoints(),
		timeout:   DefaultTimeout,
		log:       logr.Discard(),
		now:       time.Now,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init resumes the session when a refresh token was given and resolves the
// home. Without one it starts the device authorization flow; the caller
// then shows VerificationURL and waits with WaitForDeviceAuthorization.
func (c *Client) Init(ctx context.Context) error {
	if c.RefreshToken() == "" {
		return c.StartDeviceAuthorization(ctx)
	}
	c.mu.Lock()
	c.status = StatusCompleted
	c.device = nil
	c.mu.Unlock()

	if _, err := c.HomeID(ctx); err != nil {
		return err
	}
	_, err := c.Line(ctx)
	return err
}

// Me returns the user profile. It is fetched once per Client.
func (c *Client) Me(ctx context.Context) (Me, error) {
	if c.me != nil {
		return *c.me, nil
	}
	data, err := c.get(ctx, "me")
	if err != nil {
		return Me{}, err
	}
	me, err := decode[Me](data, "Me")
	if err != nil {
		return Me{}, err
	}
	c.me = &me
	return me, nil
}

// HomeID returns the id of the user's first home.
func (c *Client) HomeID(ctx context.Context) (int, error) {
	if c.homeID != nil {
		return *c.homeID, nil
	}
	me, err := c.Me(ctx)
	if err != nil {
		return 0, err
	}
	if len(me.Homes) == 0 {
		return 0, fmt.Errorf("no homes found in /me response")
	}
	if len(me.Homes) > 1 {
		c.log.Info("multiple homes found, using the first", "home", me.Homes[0].ID, "homes", len(me.Homes))
	}
	id := me.Homes[0].ID
	c.homeID = &id
	return id, nil
}

// Home returns the home record and remembers its line.
func (c *Client) Home(ctx context.Context) (HomeInfo, error) {
	data, err := c.homeGet(ctx, "")
	if err != nil {
		return HomeInfo{}, err
	}
	home, err := decode[HomeInfo](data, "HomeInfo")
	if err != nil {
		return HomeInfo{}, err
	}
	if c.line == "" && home.Generation != nil {
		c.line = *home.Generation
	}
	return home, nil
}

// Line returns the hardware line of the home, fetching the home record if
// it is not known yet.
func (c *Client) Line(ctx context.Context) (Line, error) {
	if c.line != "" {
		return c.line, nil
	}
	if _, err := c.Home(ctx); err != nil {
		return "", err
	}
	return c.line, nil
}

func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	data, err := c.homeGet(ctx, "devices")
	if err != nil {
		return nil, err
	}
	return decode[[]Device](data, "Device")
}

func (c *Client) MobileDevices(ctx context.Context) ([]MobileDevice, error) {
	data, err := c.homeGet(ctx, "mobileDevices")
	if err != nil {
		return nil, err
	}
	return decode[[]MobileDevice](data, "MobileDevice")
}

func (c *Client) Zones(ctx context.Context) ([]Zone, error) {
	data, err := c.homeGet(ctx, "zones")
	if err != nil {
		return nil, err
	}
	return decode[[]Zone](data, "Zone")
}

// ZoneStates returns the state of every zone keyed by zone id, each
// normalized.
func (c *Client) ZoneStates(ctx context.Context) (map[string]ZoneState, error) {
	data, err := c.homeGet(ctx, "zoneStates")
	if err != nil {
		return nil, err
	}
	resp, err := decode[ZoneStates](data, "ZoneStates")
	if err != nil {
		return nil, err
	}
	for id, state := range resp.ZoneStates {
		Normalize(&state)
		resp.ZoneStates[id] = state
	}
	return resp.ZoneStates, nil
}

// ZoneState returns the normalized state of one zone.
func (c *Client) ZoneState(ctx context.Context, zone int) (ZoneState, error) {
	data, err := c.homeGet(ctx, fmt.Sprintf("zones/%d/state", zone))
	if err != nil {
		return ZoneState{}, err
	}
	state, err := decode[ZoneState](data, "ZoneState")
	if err != nil {
		return ZoneState{}, err
	}
	Normalize(&state)
	return state, nil
}

func (c *Client) Weather(ctx context.Context) (Weather, error) {
	data, err := c.homeGet(ctx, "weather")
	if err != nil {
		return Weather{}, err
	}
	return decode[Weather](data, "Weather")
}

// HomeState returns the presence state and records whether the home can
// switch to automatic geofencing.
func (c *Client) HomeState(ctx context.Context) (HomeState, error) {
	data, err := c.homeGet(ctx, "state")
	if err != nil {
		return HomeState{}, err
	}
	state, err := decode[HomeState](data, "HomeState")
	if err != nil {
		return HomeState{}, err
	}
	supported := !state.PresenceLocked
	if state.ShowSwitchToAutoGeofencingButton != nil && *state.ShowSwitchToAutoGeofencingButton {
		supported = true
	}
	c.autoGeofencing = &supported
	return state, nil
}

// AutoGeofencingSupported fetches the home state on first use.
func (c *Client) AutoGeofencingSupported(ctx context.Context) (bool, error) {
	if c.autoGeofencing == nil {
		if _, err := c.HomeState(ctx); err != nil {
			return false, err
		}
	}
	return *c.autoGeofencing, nil
}

func (c *Client) Capabilities(ctx context.Context, zone int) (Capabilities, error) {
	data, err := c.homeGet(ctx, fmt.Sprintf("zones/%d/capabilities", zone))
	if err != nil {
		return Capabilities{}, err
	}
	return decode[Capabilities](data, "Capabilities")
}

// ResetZoneOverlay removes the manual override so the zone follows its
// schedule again.
func (c *Client) ResetZoneOverlay(ctx context.Context, zone int) error {
	return c.homeDo(ctx, http.MethodDelete, fmt.Sprintf("zones/%d/overlay", zone), nil)
}

// OverlayRequest describes a manual override. Empty strings leave a field
// out of the request.
type OverlayRequest struct {
	// Termination is one of TerminationManual, TerminationTimer or
	// TerminationNextTimeBlock.
	Termination string
	Duration    time.Duration
	Temperature *float64

	// Type defaults to HEATING, Power to ON.
	Type            string
	Power           string
	Mode            string
	FanSpeed        string
	FanLevel        string
	Swing           string
	VerticalSwing   string
	HorizontalSwing string
}

// body builds the overlay payload. Fan speed and swing are only sent
// together with a temperature.
func (r OverlayRequest) body() map[string]any {
	setting := map[string]any{
		"type":  defaultString(r.Type, TypeHeating),
		"power": defaultString(r.Power, PowerOn),
	}
	if r.Temperature != nil {
		setting["temperature"] = map[string]any{"celsius": *r.Temperature}
		if r.FanSpeed != "" {
			setting["fanSpeed"] = r.FanSpeed
		}
		if r.Swing != "" {
			setting["swing"] = r.Swing
		}
	}
	if r.FanLevel != "" {
		setting["fanLevel"] = r.FanLevel
	}
	if r.VerticalSwing != "" {
		setting["verticalSwing"] = r.VerticalSwing
	}
	if r.HorizontalSwing != "" {
		setting["horizontalSwing"] = r.HorizontalSwing
	}
	if r.Mode != "" {
		setting["mode"] = r.Mode
	}

	termination := map[string]any{
		"typeSkillBasedApp": defaultString(r.Termination, TerminationManual),
	}
	if r.Duration > 0 {
		termination["durationInSeconds"] = int(r.Duration / time.Second)
	}
	return map[string]any{
		"setting":     setting,
		"termination": termination,
	}
}

func (c *Client) SetZoneOverlay(ctx context.Context, zone int, overlay OverlayRequest) error {
	return c.homeDo(ctx, http.MethodPut, fmt.Sprintf("zones/%d/overlay", zone), overlay.body())
}

// SetPresence sets HOME or AWAY, or hands presence back to geofencing
// with AUTO.
func (c *Client) SetPresence(ctx context.Context, presence string) error {
	if strings.EqualFold(presence, PresenceAuto) {
		return c.homeDo(ctx, http.MethodDelete, "presenceLock", nil)
	}
	return c.homeDo(ctx, http.MethodPut, "presenceLock", map[string]string{"homePresence": presence})
}

// DeviceInfo returns a device by serial number.
func (c *Client) DeviceInfo(ctx context.Context, serial string) (Device, error) {
	data, err := c.get(ctx, "devices/"+serial+"/")
	if err != nil {
		return Device{}, err
	}
	return decode[Device](data, "Device")
}

// TemperatureOffset returns the calibration offset of a device.
func (c *Client) TemperatureOffset(ctx context.Context, serial string) (TemperatureOffset, error) {
	data, err := c.get(ctx, "devices/"+serial+"/temperatureOffset")
	if err != nil {
		return TemperatureOffset{}, err
	}
	return decode[TemperatureOffset](data, "TemperatureOffset")
}

// UnifiedDevices lists the home's devices independent of its line. On
// pre-X homes the temperature offset is fetched per device that measures
// temperature; a failed fetch is logged and leaves the offset nil.
func (c *Client) UnifiedDevices(ctx context.Context) ([]UnifiedDevice, error) {
	line, err := c.Line(ctx)
	if err != nil {
		return nil, err
	}
	switch line {
	case LinePreX:
		devices, err := c.V3().Devices(ctx)
		if err != nil {
			return nil, err
		}
		if len(devices) == 0 {
			return nil, fmt.Errorf("no devices found for the home")
		}
		unified := make([]UnifiedDevice, 0, len(devices))
		for _, device := range devices {
			var offset *TemperatureOffset
			if device.Characteristics.Has(CapabilityInsideTemperature) {
				got, err := c.V3().TemperatureOffset(ctx, device.SerialNo)
				if err != nil {
					c.log.Error(err, "failed to get temperature offset", "serial", device.SerialNo)
				} else {
					offset = &got
				}
			}
			unified = append(unified, UnifiedFromV3(device, offset))
		}
		return unified, nil
	case LineX:
		rooms, err := c.X().RoomsAndDevices(ctx)
		if err != nil {
			return nil, err
		}
		var unified []UnifiedDevice
		for _, room := range rooms.Rooms {
			for _, device := range room.Devices {
				unified = append(unified, UnifiedFromX(device))
			}
		}
		for _, device := range rooms.OtherDevices {
			unified = append(unified, UnifiedFromX(device))
		}
		return unified, nil
	default:
		return nil, fmt.Errorf("unknown tado line %q: cannot list unified devices", line)
	}
}

func (c *Client) SetChildLock(ctx context.Context, serial string, enabled bool) error {
	_, err := c.request(ctx, http.MethodPut, EndpointAPI, "devices/"+serial+"/childLock", map[string]bool{"childLockEnabled": enabled})
	return err
}

// SetMeterReading records a gas meter reading. A zero date means today
// (UTC). The service reports a rejected reading, such as a second one for
// the same day, in the body of a successful response.
func (c *Client) SetMeterReading(ctx context.Context, reading int, date time.Time) error {
	if date.IsZero() {
		date = c.now().UTC()
	}
	homeID, err := c.HomeID(ctx)
	if err != nil {
		return err
	}
	payload := map[string]any{
		"date":    date.Format(time.DateOnly),
		"reading": reading,
	}
	data, err := c.request(ctx, http.MethodPost, EndpointEIQ, fmt.Sprintf("homes/%d/meterReadings", homeID), payload)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	resp, err := decode[meterReadingResponse](data, "MeterReading")
	if err != nil {
		return err
	}
	if resp.Message != nil {
		return fmt.Errorf("%w: %s", ErrReading, *resp.Message)
	}
	return nil
}

func (c *Client) homeGet(ctx context.Context, uri string) ([]byte, error) {
	homeID, err := c.HomeID(ctx)
	if err != nil {
		return nil, err
	}
	return c.get(ctx, homePath(homeID, uri))
}

func (c *Client) homeDo(ctx context.Context, method, uri string, body any) error {
	homeID, err := c.HomeID(ctx)
	if err != nil {
		return err
	}
	_, err = c.request(ctx, method, EndpointAPI, homePath(homeID, uri), body)
	return err
}

func homePath(homeID int, uri string) string {
	if uri == "" {
		return fmt.Sprintf("homes/%d", homeID)
	}
	return fmt.Sprintf("homes/%d/%s", homeID, uri)
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
