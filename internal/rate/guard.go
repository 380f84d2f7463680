package rate

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitError is returned when a call is blocked and no cached response
// can stand in for it.
type RateLimitError struct {
	Name    string
	Reason  string
	RetryAt time.Time
}

func (e RateLimitError) Error() string {
	if e.RetryAt.IsZero() {
		return fmt.Sprintf("%s rate limited: %s", e.Name, e.Reason)
	}
	return fmt.Sprintf("%s rate limited: %s (retry at %s)", e.Name, e.Reason, e.RetryAt.UTC().Format(time.RFC3339))
}

type Decision struct {
	Allowed bool
	Reason  string
	RetryAt time.Time
}

type bucket struct {
	capacity int
	tokens   float64
	last     time.Time
}

type cacheEntry struct {
	status  int
	header  http.Header
	body    []byte
	expires time.Time
}

// Guard tracks the request budget. The server's RateLimit header, once
// seen, replaces the local day bucket.
type Guard struct {
	policy Policy
	now    func() time.Time

	mu        sync.Mutex
	buckets   map[Window]*bucket
	remaining int
	known     bool
	cooldown  time.Time
	cache     map[string]cacheEntry
}

func NewGuard(policy Policy) *Guard {
	g := &Guard{
		policy:  policy,
		now:     time.Now,
		buckets: make(map[Window]*bucket),
		cache:   make(map[string]cacheEntry),
	}
	for window, limit := range policy.Limits {
		g.buckets[window] = &bucket{capacity: limit, tokens: float64(limit)}
	}
	return g
}

// WrapHTTP returns a copy of base whose transport is guarded.
func WrapHTTP(guard *Guard, base *http.Client) *http.Client {
	if base == nil {
		base = &http.Client{}
	}
	client := *base
	transport := client.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	client.Transport = &roundTripper{base: transport, guard: guard}
	return &client
}

type roundTripper struct {
	base  http.RoundTripper
	guard *Guard
}

func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if rt.guard.policy.exempt(req.URL.Host) {
		return rt.base.RoundTrip(req)
	}
	decision := rt.guard.ShouldCall()
	if !decision.Allowed {
		blockedTotal.WithLabelValues(rt.guard.policy.Name, decision.Reason).Inc()
		if cached := rt.guard.cachedResponse(req); cached != nil {
			return cached, nil
		}
		return nil, RateLimitError{
			Name:    rt.guard.policy.Name,
			Reason:  decision.Reason,
			RetryAt: decision.RetryAt,
		}
	}

	resp, err := rt.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}
	rt.guard.RecordResponse(resp.StatusCode, resp.Header)
	return rt.guard.maybeCacheResponse(req, resp)
}

// ShouldCall consumes one unit of budget if the call may go out.
func (g *Guard) ShouldCall() Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if !g.cooldown.IsZero() && now.Before(g.cooldown) {
		return Decision{Reason: "cooldown", RetryAt: g.cooldown}
	}

	if g.known {
		if g.remaining <= g.policy.Floor {
			return Decision{Reason: "budget", RetryAt: g.cooldown}
		}
		g.remaining--
	} else if b, ok := g.buckets[Day]; ok && !consumeToken(b, Day.duration(), now) {
		return Decision{Reason: "budget", RetryAt: b.retryAt(Day.duration())}
	}

	if b, ok := g.buckets[Minute]; ok && !consumeToken(b, Minute.duration(), now) {
		return Decision{Reason: "budget", RetryAt: b.retryAt(Minute.duration())}
	}
	return Decision{Allowed: true}
}

// RecordResponse reads the RateLimit and Retry-After headers of a response.
func (g *Guard) RecordResponse(status int, header http.Header) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	lastStatusGauge.WithLabelValues(g.policy.Name).Set(float64(status))

	if seconds, ok := headerSeconds(header.Get("Retry-After")); ok {
		g.cooldown = now.Add(time.Duration(seconds) * time.Second)
		retryAfterGauge.WithLabelValues(g.policy.Name).Set(float64(seconds))
	}

	remaining, reset, ok := parseRateLimit(header.Get("RateLimit"))
	if !ok {
		return
	}
	g.remaining = remaining
	g.known = true
	remainingGauge.WithLabelValues(g.policy.Name, Day.String()).Set(float64(remaining))
	if remaining <= g.policy.Floor && reset > 0 {
		g.cooldown = now.Add(time.Duration(reset) * time.Second)
	}
	if status == http.StatusTooManyRequests && g.cooldown.Before(now) {
		g.cooldown = now.Add(time.Duration(reset) * time.Second)
	}
}

// Remaining reports the last budget the server announced.
func (g *Guard) Remaining() (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.remaining, g.known
}

func (g *Guard) cachedResponse(req *http.Request) *http.Response {
	if g.policy.CacheTTL <= 0 || req.Method != http.MethodGet {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	entry, ok := g.cache[cacheKey(req)]
	if !ok || g.now().After(entry.expires) {
		return nil
	}
	cacheHits.WithLabelValues(g.policy.Name).Inc()
	return cloneResponse(req, entry.status, entry.header, entry.body)
}

func (g *Guard) maybeCacheResponse(req *http.Request, resp *http.Response) (*http.Response, error) {
	if g.policy.CacheTTL <= 0 || req.Method != http.MethodGet || resp.StatusCode != http.StatusOK {
		return resp, nil
	}
	buf, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	clone := cloneResponse(req, resp.StatusCode, resp.Header, buf)
	g.mu.Lock()
	g.cache[cacheKey(req)] = cacheEntry{
		status:  resp.StatusCode,
		header:  resp.Header.Clone(),
		body:    buf,
		expires: g.now().Add(g.policy.CacheTTL),
	}
	g.mu.Unlock()
	return clone, nil
}

// parseRateLimit reads the structured RateLimit header tado sends, e.g.
// `"perday";r=19985;t=63331`, returning remaining requests and seconds
// until the window resets.
func parseRateLimit(value string) (remaining, reset int, ok bool) {
	if value == "" {
		return 0, 0, false
	}
	remaining = -1
	for _, part := range strings.Split(value, ";") {
		key, raw, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		n, err := strconv.Atoi(strings.Trim(raw, `"`))
		if err != nil {
			continue
		}
		switch key {
		case "r":
			remaining = n
		case "t":
			reset = n
		}
	}
	if remaining < 0 {
		return 0, 0, false
	}
	return remaining, reset, true
}

func headerSeconds(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func consumeToken(b *bucket, window time.Duration, now time.Time) bool {
	if b.capacity <= 0 {
		return false
	}
	if b.last.IsZero() {
		b.last = now
	}
	elapsed := now.Sub(b.last).Seconds()
	refillRate := float64(b.capacity) / window.Seconds()
	b.tokens = min(float64(b.capacity), b.tokens+elapsed*refillRate)
	b.last = now
	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

func (b *bucket) retryAt(window time.Duration) time.Time {
	if b.capacity <= 0 {
		return time.Time{}
	}
	return b.last.Add(window / time.Duration(b.capacity))
}

func cacheKey(req *http.Request) string {
	return req.Method + " " + req.URL.String()
}

func cloneResponse(req *http.Request, status int, header http.Header, body []byte) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Status:        fmt.Sprintf("%d %s", status, http.StatusText(status)),
		Header:        header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
