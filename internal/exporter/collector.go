package exporter

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/joshp123/gotado/tado"
)

// Collector turns the poller's latest snapshot into zone gauges.
type Collector struct {
	poller *Poller

	// mu serializes scrapes; update resets the vectors.
	mu sync.Mutex

	temp           *prometheus.GaugeVec
	humidity       *prometheus.GaugeVec
	setpoint       *prometheus.GaugeVec
	heatingPower   *prometheus.GaugeVec
	powerOn        *prometheus.GaugeVec
	overlay        *prometheus.GaugeVec
	heatingActive  *prometheus.GaugeVec
	available      *prometheus.GaugeVec
	openWindow     *prometheus.GaugeVec
	lastUpdated    *prometheus.GaugeVec
	outsideTemp    prometheus.Gauge
	solarIntensity prometheus.Gauge
	lastSuccess    prometheus.Gauge
	success        prometheus.Gauge
}

func NewCollector(poller *Poller) *Collector {
	labels := []string{"zone_id", "zone_name", "zone_type"}
	zoneGauge := func(name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, labels)
	}
	return &Collector{
		poller:        poller,
		temp:          zoneGauge("gotado_inside_temperature_celsius", "Current inside temperature per zone"),
		humidity:      zoneGauge("gotado_humidity_percent", "Current humidity per zone"),
		setpoint:      zoneGauge("gotado_setpoint_celsius", "Target temperature per zone"),
		heatingPower:  zoneGauge("gotado_heating_power_percent", "Heating power demand per zone"),
		powerOn:       zoneGauge("gotado_power_on_bool", "Power setting per zone (1=on, 0=off)"),
		overlay:       zoneGauge("gotado_overlay_active_bool", "Manual overlay active per zone (1=manual, 0=scheduled)"),
		heatingActive: zoneGauge("gotado_heating_active_bool", "Zone currently heating (1=on, 0=off)"),
		available:     zoneGauge("gotado_zone_available_bool", "Zone link online (1=online, 0=offline)"),
		openWindow:    zoneGauge("gotado_open_window_detected_bool", "Open window detected per zone"),
		lastUpdated:   zoneGauge("gotado_zone_last_updated_timestamp_seconds", "Inside temperature timestamp per zone (epoch seconds)"),
		outsideTemp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gotado_outside_temperature_celsius",
			Help: "Outside temperature reported by tado",
		}),
		solarIntensity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gotado_solar_intensity_percent",
			Help: "Solar intensity reported by tado",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gotado_last_success_timestamp_seconds",
			Help: "Last successful poll (epoch seconds)",
		}),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gotado_poll_success",
			Help: "Last poll success (1=ok, 0=error)",
		}),
	}
}

func (c *Collector) vecs() []*prometheus.GaugeVec {
	return []*prometheus.GaugeVec{
		c.temp, c.humidity, c.setpoint, c.heatingPower, c.powerOn,
		c.overlay, c.heatingActive, c.available, c.openWindow, c.lastUpdated,
	}
}

func (c *Collector) gauges() []prometheus.Gauge {
	return []prometheus.Gauge{c.outsideTemp, c.solarIntensity, c.lastSuccess, c.success}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, v := range c.vecs() {
		v.Describe(ch)
	}
	for _, g := range c.gauges() {
		g.Describe(ch)
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.update(c.poller.Latest())

	for _, v := range c.vecs() {
		v.Collect(ch)
	}
	for _, g := range c.gauges() {
		g.Collect(ch)
	}
}

func (c *Collector) update(snap Snapshot) {
	if snap.Err != nil || snap.At.IsZero() {
		c.success.Set(0)
	} else {
		c.success.Set(1)
	}
	if last := c.poller.LastSuccess(); !last.IsZero() {
		c.lastSuccess.Set(float64(last.Unix()))
	}
	if snap.States == nil {
		return
	}

	for _, v := range c.vecs() {
		v.Reset()
	}

	if snap.Weather != nil {
		c.outsideTemp.Set(snap.Weather.OutsideTemperature.Celsius)
		c.solarIntensity.Set(snap.Weather.SolarIntensity.Percentage)
	}

	for _, zone := range snap.Zones {
		id := strconv.Itoa(zone.ID)
		state, ok := snap.States[id]
		if !ok {
			continue
		}
		view := state.Derived
		labels := prometheus.Labels{"zone_id": id, "zone_name": zone.Name, "zone_type": zone.Type}

		if view.CurrentTemp != nil {
			c.temp.With(labels).Set(*view.CurrentTemp)
		}
		if view.CurrentHumidity != nil {
			c.humidity.With(labels).Set(*view.CurrentHumidity)
		}
		if view.TargetTemp != nil {
			c.setpoint.With(labels).Set(*view.TargetTemp)
		}
		if view.HeatingPowerPercentage != nil {
			c.heatingPower.With(labels).Set(*view.HeatingPowerPercentage)
		}
		if view.CurrentTempTimestamp != nil {
			if ts := parseTimestamp(*view.CurrentTempTimestamp); ts != nil {
				c.lastUpdated.With(labels).Set(float64(ts.Unix()))
			}
		}
		c.powerOn.With(labels).Set(boolToFloat(view.Power == tado.PowerOn))
		c.overlay.With(labels).Set(boolToFloat(view.OverlayActive))
		c.heatingActive.With(labels).Set(boolToFloat(view.CurrentHVACAction == tado.ActionHeating))
		c.available.With(labels).Set(boolToFloat(view.Available))
		c.openWindow.With(labels).Set(boolToFloat(view.OpenWindowDetected))
	}
}

func parseTimestamp(value string) *time.Time {
	if value == "" {
		return nil
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return &ts
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return &ts
	}
	return nil
}

func boolToFloat(value bool) float64 {
	if value {
		return 1
	}
	return 0
}
