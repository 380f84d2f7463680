package tado

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DayReport is the per-zone history tado keeps for one calendar day.
type DayReport struct {
	Interval     ReportInterval `json:"interval"`
	MeasuredData struct {
		InsideTemperature struct {
			DataPoints []TemperaturePoint `json:"dataPoints"`
		} `json:"insideTemperature"`
		Humidity struct {
			DataPoints []HumidityPoint `json:"dataPoints"`
		} `json:"humidity"`
	} `json:"measuredData"`
	CallForHeat struct {
		DataIntervals []CallForHeatInterval `json:"dataIntervals"`
	} `json:"callForHeat"`
	Settings struct {
		DataIntervals []SettingInterval `json:"dataIntervals"`
	} `json:"settings"`
}

func (r *DayReport) UnmarshalJSON(data []byte) error {
	type plain DayReport
	return unmarshalRequired(data, (*plain)(r), "DayReport", "interval", "measuredData")
}

type ReportInterval struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// TemperaturePoint accepts both a bare number and a {"celsius": n} object.
type TemperaturePoint struct {
	Timestamp string  `json:"timestamp"`
	Celsius   float64 `json:"celsius"`
}

func (p *TemperaturePoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		Timestamp string          `json:"timestamp"`
		Value     json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Timestamp = raw.Timestamp
	return numberOrField(raw.Value, "celsius", &p.Celsius)
}

// HumidityPoint holds a percentage; tado reports it as a 0..1 fraction.
type HumidityPoint struct {
	Timestamp  string  `json:"timestamp"`
	Percentage float64 `json:"percentage"`
}

func (p *HumidityPoint) UnmarshalJSON(data []byte) error {
	var raw struct {
		Timestamp string          `json:"timestamp"`
		Value     json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Timestamp = raw.Timestamp
	if err := numberOrField(raw.Value, "percentage", &p.Percentage); err != nil {
		return err
	}
	if p.Percentage <= 1 {
		p.Percentage *= 100
	}
	return nil
}

func numberOrField(data json.RawMessage, field string, out *float64) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err == nil {
		return nil
	}
	var obj map[string]*float64
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if v := obj[field]; v != nil {
		*out = *v
	}
	return nil
}

// CallForHeatInterval values are NONE, LOW, MEDIUM or HIGH.
type CallForHeatInterval struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
}

type SettingInterval struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value struct {
		Power       string `json:"power"`
		Temperature *struct {
			Celsius float64 `json:"celsius"`
		} `json:"temperature,omitempty"`
	} `json:"value"`
}

// DaySummary condenses a DayReport.
type DaySummary struct {
	Samples      int
	MinTemp      *float64
	MaxTemp      *float64
	MeanTemp     *float64
	MeanHumidity *float64
	// HeatingHours is the time the zone called for heat at any level.
	HeatingHours float64
	// HeatingDemand is the time-weighted call-for-heat level, in percent.
	HeatingDemand float64
}

func callForHeatPercent(value string) float64 {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "HIGH":
		return 100
	case "MEDIUM":
		return 66
	case "LOW":
		return 33
	default:
		return 0
	}
}

func (r DayReport) Summary() DaySummary {
	var s DaySummary

	var sum float64
	for _, pt := range r.MeasuredData.InsideTemperature.DataPoints {
		v := pt.Celsius
		if s.MinTemp == nil || v < *s.MinTemp {
			s.MinTemp = ptr(v)
		}
		if s.MaxTemp == nil || v > *s.MaxTemp {
			s.MaxTemp = ptr(v)
		}
		sum += v
		s.Samples++
	}
	if s.Samples > 0 {
		s.MeanTemp = ptr(sum / float64(s.Samples))
	}

	if points := r.MeasuredData.Humidity.DataPoints; len(points) > 0 {
		var total float64
		for _, pt := range points {
			total += pt.Percentage
		}
		s.MeanHumidity = ptr(total / float64(len(points)))
	}

	var covered, weighted float64
	for _, iv := range r.CallForHeat.DataIntervals {
		from, err1 := time.Parse(time.RFC3339, iv.From)
		to, err2 := time.Parse(time.RFC3339, iv.To)
		if err1 != nil || err2 != nil || !to.After(from) {
			continue
		}
		hours := to.Sub(from).Hours()
		level := callForHeatPercent(iv.Value)
		covered += hours
		weighted += hours * level
		if level > 0 {
			s.HeatingHours += hours
		}
	}
	if covered > 0 {
		s.HeatingDemand = weighted / covered
	}
	return s
}

// DayReport fetches the history of zone for the calendar day of day.
func (c *Client) DayReport(ctx context.Context, zone int, day time.Time) (DayReport, error) {
	data, err := c.homeGet(ctx, fmt.Sprintf("zones/%d/dayReport?date=%s", zone, day.Format(time.DateOnly)))
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return DayReport{}, fmt.Errorf("%w: zone %d on %s", ErrNoDayReport, zone, day.Format(time.DateOnly))
		}
		return DayReport{}, err
	}
	return decode[DayReport](data, "DayReport")
}
