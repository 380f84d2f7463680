package tado

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const dayReportJSON = `{
  "zoneType": "HEATING",
  "interval": {"from": "2024-08-03T22:00:00.000Z", "to": "2024-08-04T22:00:00.000Z"},
  "measuredData": {
    "insideTemperature": {"dataPoints": [
      {"timestamp": "2024-08-03T22:00:00.000Z", "value": {"celsius": 19.5, "fahrenheit": 67.1}},
      {"timestamp": "2024-08-03T22:15:00.000Z", "value": 20.5},
      {"timestamp": "2024-08-03T22:30:00.000Z", "value": {"celsius": 21.5}}
    ]},
    "humidity": {"dataPoints": [
      {"timestamp": "2024-08-03T22:00:00.000Z", "value": 0.5},
      {"timestamp": "2024-08-03T22:15:00.000Z", "value": 0.6}
    ]}
  },
  "callForHeat": {"dataIntervals": [
    {"from": "2024-08-03T22:00:00.000Z", "to": "2024-08-04T00:00:00.000Z", "value": "HIGH"},
    {"from": "2024-08-04T00:00:00.000Z", "to": "2024-08-04T02:00:00.000Z", "value": "NONE"}
  ]},
  "settings": {"dataIntervals": [
    {"from": "2024-08-03T22:00:00.000Z", "to": "2024-08-04T22:00:00.000Z",
     "value": {"type": "HEATING", "power": "ON", "temperature": {"celsius": 21}}}
  ]}
}`

func TestDayReport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assertAuth(t, r)
		switch r.URL.Path {
		case "/api/v2/homes/1234/zones/1/dayReport":
			if got := r.URL.Query().Get("date"); got != "2024-08-04" {
				t.Fatalf("unexpected date %q", got)
			}
			writeJSON(w, dayReportJSON)
		case "/api/v2/homes/1234/zones/2/dayReport":
			http.NotFound(w, r)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client, clock := newTestClient(t, server, WithHomeID(1234))
	report, err := client.DayReport(context.Background(), 1, clock.Now())
	if err != nil {
		t.Fatalf("day report: %v", err)
	}

	points := report.MeasuredData.InsideTemperature.DataPoints
	if len(points) != 3 || points[0].Celsius != 19.5 || points[1].Celsius != 20.5 {
		t.Fatalf("unexpected temperature points %+v", points)
	}
	if got := report.MeasuredData.Humidity.DataPoints[1].Percentage; got != 60 {
		t.Fatalf("humidity = %v, want 60", got)
	}
	if temp := report.Settings.DataIntervals[0].Value.Temperature; temp == nil || temp.Celsius != 21 {
		t.Fatalf("unexpected setting %+v", report.Settings.DataIntervals[0])
	}

	summary := report.Summary()
	if summary.Samples != 3 || *summary.MinTemp != 19.5 || *summary.MaxTemp != 21.5 || *summary.MeanTemp != 20.5 {
		t.Fatalf("unexpected temperature summary %+v", summary)
	}
	if *summary.MeanHumidity != 55 {
		t.Fatalf("mean humidity = %v", *summary.MeanHumidity)
	}
	if summary.HeatingHours != 2 || summary.HeatingDemand != 50 {
		t.Fatalf("unexpected heating summary %+v", summary)
	}

	_, err = client.DayReport(context.Background(), 2, clock.Now().Add(-24*time.Hour))
	if !errors.Is(err, ErrNoDayReport) {
		t.Fatalf("expected ErrNoDayReport, got %v", err)
	}
}

func TestDayReportSchema(t *testing.T) {
	if _, err := decode[DayReport]([]byte(`{"interval": {}}`), "DayReport"); !errors.Is(err, ErrSchema) {
		t.Fatalf("expected schema error, got %v", err)
	}
	var report DayReport
	if s := report.Summary(); s.MeanTemp != nil || s.HeatingDemand != 0 {
		t.Fatalf("empty report summary %+v", s)
	}
}
