package exporter

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/joshp123/gotado/tado"
)

// Source is the part of *tado.Client the poller reads.
type Source interface {
	Zones(ctx context.Context) ([]tado.Zone, error)
	ZoneStates(ctx context.Context) (map[string]tado.ZoneState, error)
	Weather(ctx context.Context) (tado.Weather, error)
}

// Snapshot is the result of one poll.
type Snapshot struct {
	Zones   []tado.Zone
	States  map[string]tado.ZoneState
	Weather *tado.Weather
	At      time.Time
	Err     error
}

// zonesTTL bounds how long the zone list is reused between polls.
const zonesTTL = 6 * time.Hour

// Poller fetches zone states on an interval so scrapes never hit the API.
type Poller struct {
	source   Source
	interval time.Duration
	log      logr.Logger
	now      func() time.Time

	zones   []tado.Zone
	zonesAt time.Time

	mu          sync.RWMutex
	latest      Snapshot
	lastSuccess time.Time
	listeners   []func(Snapshot)
}

func NewPoller(source Source, interval time.Duration, log logr.Logger) *Poller {
	return &Poller{
		source:   source,
		interval: interval,
		log:      log.WithName("poller"),
		now:      time.Now,
	}
}

// OnUpdate registers fn to run after every successful poll.
func (p *Poller) OnUpdate(fn func(Snapshot)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Run polls immediately and then on every tick until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		p.Poll(ctx)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Poll fetches one snapshot. Weather is best effort.
func (p *Poller) Poll(ctx context.Context) Snapshot {
	snap := Snapshot{At: p.now()}

	zones, err := p.zoneList(ctx, snap.At)
	if err == nil {
		snap.Zones = zones
		snap.States, err = p.source.ZoneStates(ctx)
	}
	if err != nil {
		snap.Err = err
		p.log.Error(err, "poll failed")
		p.mu.Lock()
		p.latest.Err = err
		p.latest.At = snap.At
		p.mu.Unlock()
		return snap
	}

	if weather, werr := p.source.Weather(ctx); werr == nil {
		snap.Weather = &weather
	} else {
		p.log.V(1).Info("weather unavailable", "err", werr.Error())
	}

	p.mu.Lock()
	p.latest = snap
	p.lastSuccess = snap.At
	listeners := append([]func(Snapshot){}, p.listeners...)
	p.mu.Unlock()

	p.log.V(1).Info("polled", "zones", len(snap.Zones))
	for _, fn := range listeners {
		fn(snap)
	}
	return snap
}

// zoneList is only called from Poll, which Run never overlaps.
func (p *Poller) zoneList(ctx context.Context, now time.Time) ([]tado.Zone, error) {
	if p.zones != nil && now.Sub(p.zonesAt) < zonesTTL {
		return p.zones, nil
	}
	zones, err := p.source.Zones(ctx)
	if err != nil {
		return nil, err
	}
	p.zones, p.zonesAt = zones, now
	return zones, nil
}

// Latest returns the last snapshot. After a failed poll the data of the
// last good one is kept and Err is set.
func (p *Poller) Latest() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

// LastSuccess is the zero time until the first good poll.
func (p *Poller) LastSuccess() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSuccess
}
