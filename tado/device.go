package tado

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

// ActivationStatus is the state of the device authorization flow.
type ActivationStatus string

const (
	StatusNotStarted ActivationStatus = "NOT_STARTED"
	StatusPending    ActivationStatus = "PENDING"
	StatusCompleted  ActivationStatus = "COMPLETED"
)

type deviceAuthorization struct {
	DeviceCode              string `json:"device_code"`
	UserCode                string `json:"user_code"`
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete"`
	ExpiresIn               int64  `json:"expires_in"`
	Interval                int64  `json:"interval"`
}

// StartDeviceAuthorization asks the login host for a device code. The
// user then visits VerificationURL while the caller polls.
func (c *Client) StartDeviceAuthorization(ctx context.Context) error {
	c.mu.Lock()
	status := c.status
	c.mu.Unlock()
	if status != StatusNotStarted {
		return fmt.Errorf("%w: cannot start device authorization while %s", ErrState, status)
	}

	form := url.Values{
		"client_id": {ClientID},
		"scope":     {"offline_access"},
	}
	resp, err := c.postForm(ctx, c.endpoints.OAuth.DeviceAuthURL, form)
	if err != nil {
		return err
	}
	if err := checkFormResponse(resp, true); err != nil {
		return fmt.Errorf("device authorize: %w", err)
	}
	var auth deviceAuthorization
	if err := json.Unmarshal(resp.body, &auth); err != nil {
		return fmt.Errorf("%w: decode device authorization: %w", ErrProtocol, err)
	}
	if auth.DeviceCode == "" {
		return fmt.Errorf("%w: device authorization missing device_code", ErrProtocol)
	}
	interval := time.Duration(auth.Interval) * time.Second
	if auth.Interval == 0 {
		interval = defaultDeviceInterval
	}
	expiresIn := time.Duration(auth.ExpiresIn) * time.Second
	if auth.ExpiresIn == 0 {
		expiresIn = defaultDeviceExpiry
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.device = &oauth2.DeviceAuthResponse{
		DeviceCode:              auth.DeviceCode,
		UserCode:                auth.UserCode,
		VerificationURI:         auth.VerificationURI,
		VerificationURIComplete: auth.VerificationURI + "?" + url.Values{"user_code": {auth.UserCode}}.Encode(),
		Expiry:                  c.now().Add(expiresIn),
		Interval:                int64(interval / time.Second),
	}
	c.status = StatusPending
	c.log.Info("device authorization started", "url", c.device.VerificationURIComplete, "expiry", c.device.Expiry)
	return nil
}

// PollDeviceAuthorization performs one poll step: it waits the interval the
// login host asked for and then tries the device code grant. It reports
// true once the user has approved the device.
func (c *Client) PollDeviceAuthorization(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.status != StatusPending || c.device == nil {
		status := c.status
		c.mu.Unlock()
		return false, fmt.Errorf("%w: cannot poll device authorization while %s", ErrState, status)
	}
	if c.now().After(c.device.Expiry) {
		c.device = nil
		c.status = StatusNotStarted
		c.mu.Unlock()
		return false, ErrActivationTimeout
	}
	interval := time.Duration(c.device.Interval) * time.Second
	deviceCode := c.device.DeviceCode
	c.mu.Unlock()

	if err := c.sleep(ctx, interval); err != nil {
		return false, err
	}

	form := url.Values{
		"client_id":   {ClientID},
		"device_code": {deviceCode},
		"grant_type":  {grantDeviceCode},
	}
	resp, err := c.postForm(ctx, c.endpoints.OAuth.TokenURL, form)
	if err != nil {
		return false, err
	}
	if resp.status == http.StatusBadRequest {
		var pending tokenResponse
		if json.Unmarshal(resp.body, &pending) == nil {
			switch pending.Error {
			case "authorization_pending":
				c.log.V(1).Info("authorization pending")
				return false, nil
			case "slow_down":
				c.mu.Lock()
				if c.device != nil {
					c.device.Interval += int64(slowDownStep / time.Second)
				}
				c.mu.Unlock()
				c.log.V(1).Info("slowing down device authorization polling")
				return false, nil
			}
		}
	}
	token, err := decodeTokenResponse(resp, true)
	if err != nil {
		return false, fmt.Errorf("device authorization: %w", err)
	}

	c.mu.Lock()
	c.storeToken(token)
	c.device = nil
	c.status = StatusCompleted
	c.mu.Unlock()
	c.log.Info("device authorized")
	return true, nil
}

// WaitForDeviceAuthorization polls until the user approves the device, the
// flow expires or ctx is done.
func (c *Client) WaitForDeviceAuthorization(ctx context.Context) error {
	for {
		done, err := c.PollDeviceAuthorization(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

func (c *Client) ActivationStatus() ActivationStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// VerificationURL is the page the user visits to approve this device. It
// is empty outside the pending state.
func (c *Client) VerificationURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return ""
	}
	return c.device.VerificationURIComplete
}

func (c *Client) UserCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return ""
	}
	return c.device.UserCode
}

// DeviceExpiry is the moment the pending device code stops being accepted.
func (c *Client) DeviceExpiry() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return time.Time{}
	}
	return c.device.Expiry
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
