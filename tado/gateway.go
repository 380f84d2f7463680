package tado

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

var userAgent = "gotado/" + Version

// Endpoint selects the host a request goes to. Values other than the
// predefined ones are taken as a host name or base URL.
type Endpoint string

const (
	EndpointAPI Endpoint = "api"
	EndpointX   Endpoint = "x"
	EndpointEIQ Endpoint = "eiq"
)

// Endpoints holds the base URLs of every host the client talks to.
type Endpoints struct {
	API   string
	X     string
	EIQ   string
	OAuth oauth2.Endpoint
}

// DefaultEndpoints returns the production hosts.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		API: defaultAPIURL,
		X:   defaultXURL,
		EIQ: defaultEIQURL,
		OAuth: oauth2.Endpoint{
			TokenURL:      defaultTokenURL,
			DeviceAuthURL: defaultDeviceAuthURL,
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

// merge overrides e with the non-empty fields of o.
func (e Endpoints) merge(o Endpoints) Endpoints {
	if o.API != "" {
		e.API = o.API
	}
	if o.X != "" {
		e.X = o.X
	}
	if o.EIQ != "" {
		e.EIQ = o.EIQ
	}
	if o.OAuth.TokenURL != "" {
		e.OAuth.TokenURL = o.OAuth.TokenURL
	}
	if o.OAuth.DeviceAuthURL != "" {
		e.OAuth.DeviceAuthURL = o.OAuth.DeviceAuthURL
	}
	return e
}

func (c *Client) baseURL(endpoint Endpoint) (string, string) {
	switch endpoint {
	case EndpointAPI, "":
		return c.endpoints.API, string(EndpointAPI)
	case EndpointX:
		return c.endpoints.X, string(EndpointX)
	case EndpointEIQ:
		return c.endpoints.EIQ, string(EndpointEIQ)
	}
	host := string(endpoint)
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	return host, "custom"
}

func joinURL(base, uri string) string {
	base = strings.TrimRight(base, "/")
	uri = strings.TrimLeft(uri, "/")
	if uri == "" {
		return base
	}
	return base + "/" + uri
}

// request sends an authenticated call and returns the raw response body.
// body, when set, is encoded as JSON.
func (c *Client) request(ctx context.Context, method string, endpoint Endpoint, uri string, body any) ([]byte, error) {
	if err := c.EnsureValid(ctx); err != nil {
		return nil, err
	}

	base, label := c.baseURL(endpoint)
	target := joinURL(base, uri)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, uri, err)
		}
		reader = bytes.NewReader(payload)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	accessToken := c.token.AccessToken
	c.mu.Unlock()
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("User-Agent", userAgent)
	switch method {
	case http.MethodDelete:
		req.Header.Set("Content-Type", "text/plain;charset=UTF-8")
	case http.MethodPut, http.MethodPost:
		req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	}

	start := c.now()
	resp, err := c.session().Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(label, method, "0").Inc()
		c.log.V(1).Info("request failed", "method", method, "url", target, "error", err.Error())
		if isTimeout(err) {
			return nil, connectionError(fmt.Sprintf("%s %s timed out after %s", method, uri, c.timeout), err)
		}
		return nil, connectionError(method+" "+uri, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, connectionError("read "+uri, err)
	}
	requestsTotal.WithLabelValues(label, method, strconv.Itoa(resp.StatusCode)).Inc()
	c.log.V(1).Info("request", "method", method, "url", target, "status", resp.StatusCode, "elapsed", c.now().Sub(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(resp.StatusCode, string(data), false)
	}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := checkContentType(resp.Header.Get("Content-Type"), data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// checkContentType rejects bodies declared as anything but JSON. An empty
// content type is accepted.
func checkContentType(contentType string, body []byte) error {
	if contentType == "" || strings.Contains(contentType, "application/json") {
		return nil
	}
	return fmt.Errorf("%w: content type %q: %s", ErrProtocol, contentType, strings.TrimSpace(string(body)))
}

func (c *Client) get(ctx context.Context, uri string) ([]byte, error) {
	return c.request(ctx, http.MethodGet, EndpointAPI, uri, nil)
}

// session returns the HTTP client, creating an owned one on first use.
func (c *Client) session() *http.Client {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
		c.ownsClient = true
	}
	return c.httpClient
}

// Close releases the HTTP client if the Client created it. A client passed
// in with WithHTTPClient is left alone.
func (c *Client) Close() error {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	if c.httpClient != nil && c.ownsClient {
		c.httpClient.CloseIdleConnections()
		c.httpClient = nil
		c.ownsClient = false
	}
	return nil
}
