package mqttbridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-logr/logr"

	"github.com/joshp123/gotado/internal/config"
	"github.com/joshp123/gotado/internal/exporter"
	"github.com/joshp123/gotado/tado"
)

const publishTimeout = 10 * time.Second

// publisher is the subset of mqtt.Client the bridge needs.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Bridge publishes zone views and weather under a topic prefix:
//
//	<prefix>/status             online | offline (last will)
//	<prefix>/zones/<id>/state   JSON zone payload
//	<prefix>/weather            JSON weather payload
type Bridge struct {
	client publisher
	prefix string
	retain bool
	log    logr.Logger
}

// Connect dials the broker from cfg and announces the bridge online.
func Connect(cfg config.MQTTConfig, log logr.Logger) (*Bridge, mqtt.Client, error) {
	prefix := strings.TrimSuffix(cfg.Topic, "/")

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		password, err := os.ReadFile(cfg.PasswordFile)
		if err != nil {
			return nil, nil, fmt.Errorf("read mqtt password: %w", err)
		}
		opts.SetUsername(cfg.Username)
		opts.SetPassword(strings.TrimSpace(string(password)))
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(publishTimeout)
	opts.SetWill(prefix+"/status", "offline", 1, true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, nil, fmt.Errorf("connect mqtt: %w", token.Error())
	}

	b := New(client, prefix, cfg.Retain, log)
	if err := b.publish(prefix+"/status", true, []byte("online")); err != nil {
		client.Disconnect(250)
		return nil, nil, err
	}
	return b, client, nil
}

func New(client publisher, prefix string, retain bool, log logr.Logger) *Bridge {
	return &Bridge{client: client, prefix: prefix, retain: retain, log: log.WithName("mqtt")}
}

type zonePayload struct {
	ID            int      `json:"id"`
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Temperature   *float64 `json:"current_temperature,omitempty"`
	Humidity      *float64 `json:"humidity,omitempty"`
	Target        *float64 `json:"target_temperature,omitempty"`
	HVACMode      string   `json:"hvac_mode"`
	HVACAction    string   `json:"hvac_action"`
	Power         string   `json:"power"`
	HeatingPower  *float64 `json:"heating_power,omitempty"`
	OverlayActive bool     `json:"overlay_active"`
	OverlayType   *string  `json:"overlay_termination,omitempty"`
	OpenWindow    bool     `json:"open_window"`
	Away          bool     `json:"away"`
	Available     bool     `json:"available"`
	UpdatedAt     *string  `json:"updated_at,omitempty"`
}

type weatherPayload struct {
	OutsideTemperature float64 `json:"outside_temperature"`
	SolarIntensity     float64 `json:"solar_intensity"`
	State              string  `json:"state"`
}

func zoneMessage(zone tado.Zone, view tado.ZoneView) zonePayload {
	return zonePayload{
		ID:            zone.ID,
		Name:          zone.Name,
		Type:          zone.Type,
		Temperature:   view.CurrentTemp,
		Humidity:      view.CurrentHumidity,
		Target:        view.TargetTemp,
		HVACMode:      view.CurrentHVACMode,
		HVACAction:    view.CurrentHVACAction,
		Power:         view.Power,
		HeatingPower:  view.HeatingPowerPercentage,
		OverlayActive: view.OverlayActive,
		OverlayType:   view.OverlayTerminationType,
		OpenWindow:    view.OpenWindowDetected,
		Away:          view.IsAway,
		Available:     view.Available,
		UpdatedAt:     view.CurrentTempTimestamp,
	}
}

// Publish sends one message per zone plus the weather. It keeps going
// after a failed message and returns the joined errors.
func (b *Bridge) Publish(snap exporter.Snapshot) error {
	var errs []error
	for _, zone := range snap.Zones {
		id := strconv.Itoa(zone.ID)
		state, ok := snap.States[id]
		if !ok {
			continue
		}
		payload, err := json.Marshal(zoneMessage(zone, state.Derived))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := b.publish(b.prefix+"/zones/"+id+"/state", b.retain, payload); err != nil {
			errs = append(errs, err)
		}
	}

	if snap.Weather != nil {
		payload, err := json.Marshal(weatherPayload{
			OutsideTemperature: snap.Weather.OutsideTemperature.Celsius,
			SolarIntensity:     snap.Weather.SolarIntensity.Percentage,
			State:              snap.Weather.WeatherState.Value,
		})
		if err == nil {
			err = b.publish(b.prefix+"/weather", b.retain, payload)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		b.log.Error(err, "publish failed")
		return err
	}
	b.log.V(1).Info("published", "zones", len(snap.Zones))
	return nil
}

func (b *Bridge) publish(topic string, retain bool, payload []byte) error {
	token := b.client.Publish(topic, 1, retain, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}
