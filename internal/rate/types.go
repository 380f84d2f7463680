package rate

import (
	"strings"
	"time"
)

// Window is a rate-limit bucket.
type Window int

const (
	Minute Window = iota
	Day
)

func (w Window) String() string {
	switch w {
	case Minute:
		return "minute"
	case Day:
		return "day"
	default:
		return "unknown"
	}
}

func (w Window) duration() time.Duration {
	switch w {
	case Day:
		return 24 * time.Hour
	default:
		return time.Minute
	}
}

// Policy describes the request budget of one API account.
type Policy struct {
	// Name labels metrics and errors.
	Name string
	// Limits caps requests per window until the server reports its own
	// numbers through the RateLimit headers.
	Limits map[Window]int
	// Floor keeps a number of daily requests in reserve, for example for
	// interactive commands while an exporter is polling.
	Floor int
	// CacheTTL, when set, keeps successful GET responses around so they can
	// be served while the budget is exhausted.
	CacheTTL time.Duration
	// Exempt lists hosts outside the budget. Requests to them skip the
	// guard entirely.
	Exempt []string
}

func (p Policy) exempt(host string) bool {
	for _, h := range p.Exempt {
		if strings.EqualFold(h, host) {
			return true
		}
	}
	return false
}

// TadoPolicy is the budget of a tado account without an Auto-Assist
// subscription: 100 requests a day, a handful kept for manual commands.
// The login host has its own limits and is left alone.
func TadoPolicy() Policy {
	return Policy{
		Name:     "tado",
		Limits:   map[Window]int{Day: 100, Minute: 10},
		Floor:    5,
		CacheTTL: 10 * time.Minute,
		Exempt:   []string{"login.tado.com"},
	}
}
