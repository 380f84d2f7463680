package exporter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshp123/gotado/tado"
)

type fakeSource struct {
	zones      []tado.Zone
	states     map[string]tado.ZoneState
	statesErr  error
	weatherErr error
	calls      int
}

func (f *fakeSource) Zones(context.Context) ([]tado.Zone, error) {
	f.calls++
	return f.zones, nil
}

func (f *fakeSource) ZoneStates(context.Context) (map[string]tado.ZoneState, error) {
	return f.states, f.statesErr
}

func (f *fakeSource) Weather(context.Context) (tado.Weather, error) {
	if f.weatherErr != nil {
		return tado.Weather{}, f.weatherErr
	}
	return tado.Weather{
		OutsideTemperature: tado.Temperature{Celsius: 7.5},
		SolarIntensity:     tado.SolarIntensity{Percentage: 42},
	}, nil
}

func f64(v float64) *float64 { return &v }
func str(v string) *string { return &v }

func newFakeSource() *fakeSource {
	return &fakeSource{
		zones: []tado.Zone{
			{ID: 1, Name: "Living", Type: tado.TypeHeating},
			{ID: 2, Name: "Bedroom", Type: tado.TypeAirConditioning},
		},
		states: map[string]tado.ZoneState{
			"1": {Derived: tado.ZoneView{
				CurrentTemp:            f64(20.5),
				CurrentTempTimestamp:   str("2024-08-04T09:00:00.000Z"),
				CurrentHumidity:        f64(55),
				TargetTemp:             f64(21),
				HeatingPowerPercentage: f64(30),
				CurrentHVACAction:      tado.ActionHeating,
				Power:                  tado.PowerOn,
				OverlayActive:          true,
				Available:              true,
			}},
			"2": {Derived: tado.ZoneView{
				CurrentTemp:       f64(24),
				CurrentHVACAction: tado.ActionOff,
				Power:             tado.PowerOff,
			}},
		},
	}
}

func newTestPoller(source Source, now time.Time) *Poller {
	p := NewPoller(source, time.Minute, logr.Discard())
	p.now = func() time.Time { return now }
	return p
}

func TestCollectorZoneGauges(t *testing.T) {
	now := time.Date(2024, 8, 4, 9, 5, 0, 0, time.UTC)
	poller := newTestPoller(newFakeSource(), now)
	snap := poller.Poll(context.Background())
	require.NoError(t, snap.Err)

	collector := NewCollector(poller)
	expected := `
# HELP gotado_inside_temperature_celsius Current inside temperature per zone
# TYPE gotado_inside_temperature_celsius gauge
gotado_inside_temperature_celsius{zone_id="1",zone_name="Living",zone_type="HEATING"} 20.5
gotado_inside_temperature_celsius{zone_id="2",zone_name="Bedroom",zone_type="AIR_CONDITIONING"} 24
# HELP gotado_heating_active_bool Zone currently heating (1=on, 0=off)
# TYPE gotado_heating_active_bool gauge
gotado_heating_active_bool{zone_id="1",zone_name="Living",zone_type="HEATING"} 1
gotado_heating_active_bool{zone_id="2",zone_name="Bedroom",zone_type="AIR_CONDITIONING"} 0
# HELP gotado_outside_temperature_celsius Outside temperature reported by tado
# TYPE gotado_outside_temperature_celsius gauge
gotado_outside_temperature_celsius 7.5
# HELP gotado_poll_success Last poll success (1=ok, 0=error)
# TYPE gotado_poll_success gauge
gotado_poll_success 1
# HELP gotado_zone_last_updated_timestamp_seconds Inside temperature timestamp per zone (epoch seconds)
# TYPE gotado_zone_last_updated_timestamp_seconds gauge
gotado_zone_last_updated_timestamp_seconds{zone_id="1",zone_name="Living",zone_type="HEATING"} 1.722762e+09
`
	err := testutil.CollectAndCompare(collector, strings.NewReader(expected),
		"gotado_inside_temperature_celsius",
		"gotado_heating_active_bool",
		"gotado_outside_temperature_celsius",
		"gotado_poll_success",
		"gotado_zone_last_updated_timestamp_seconds",
	)
	require.NoError(t, err)
}

func TestPollerKeepsLastGoodSnapshot(t *testing.T) {
	source := newFakeSource()
	poller := newTestPoller(source, time.Date(2024, 8, 4, 9, 5, 0, 0, time.UTC))

	var published int
	poller.OnUpdate(func(Snapshot) { published++ })

	poller.Poll(context.Background())
	source.statesErr = errors.New("boom")
	snap := poller.Poll(context.Background())

	require.Error(t, snap.Err)
	assert.Equal(t, 1, published)

	latest := poller.Latest()
	assert.Error(t, latest.Err)
	assert.Len(t, latest.States, 2)

	collector := NewCollector(poller)
	collector.update(latest)
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.success))
	assert.Equal(t, 20.5, testutil.ToFloat64(collector.temp.WithLabelValues("1", "Living", tado.TypeHeating)))
}

func TestPollerReusesZoneList(t *testing.T) {
	source := newFakeSource()
	now := time.Date(2024, 8, 4, 9, 5, 0, 0, time.UTC)
	poller := newTestPoller(source, now)

	poller.Poll(context.Background())
	poller.Poll(context.Background())
	assert.Equal(t, 1, source.calls)

	poller.now = func() time.Time { return now.Add(7 * time.Hour) }
	poller.Poll(context.Background())
	assert.Equal(t, 2, source.calls)
}

func TestPollerWeatherBestEffort(t *testing.T) {
	source := newFakeSource()
	source.weatherErr = errors.New("no weather")
	poller := newTestPoller(source, time.Now())

	snap := poller.Poll(context.Background())
	require.NoError(t, snap.Err)
	assert.Nil(t, snap.Weather)
}

func TestHealth(t *testing.T) {
	now := time.Date(2024, 8, 4, 9, 5, 0, 0, time.UTC)
	poller := newTestPoller(newFakeSource(), now)
	registry, err := NewRegistry(NewCollector(poller))
	require.NoError(t, err)
	handler := Handler(registry, poller, 10*time.Minute)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	assert.Equal(t, http.StatusServiceUnavailable, get("/health").Code)

	poller.Poll(context.Background())
	assert.Equal(t, http.StatusOK, get("/health").Code)

	poller.now = func() time.Time { return now.Add(11 * time.Minute) }
	assert.Equal(t, http.StatusServiceUnavailable, get("/health").Code)

	rec := get("/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gotado_setpoint_celsius")
}
