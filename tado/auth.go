package tado

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const (
	grantPassword     = "password"
	grantRefreshToken = "refresh_token"
	grantDeviceCode   = "urn:ietf:params:oauth:grant-type:device_code"
)

type tokenResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	ExpiresIn    float64 `json:"expires_in"`
	TokenType    string  `json:"token_type"`
	Error        string  `json:"error"`
}

// formResponse is a raw answer from the login host.
type formResponse struct {
	status      int
	contentType string
	body        []byte
}

// Login exchanges a username and password for tokens.
func (c *Client) Login(ctx context.Context, username, password string) error {
	form := url.Values{
		"client_id":  {ClientID},
		"grant_type": {grantPassword},
		"scope":      {"home.user"},
		"username":   {username},
		"password":   {password},
	}
	resp, err := c.postForm(ctx, c.endpoints.OAuth.TokenURL, form)
	if err != nil {
		return err
	}
	token, err := decodeTokenResponse(resp, true)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	c.mu.Lock()
	c.storeToken(token)
	c.status = StatusCompleted
	c.mu.Unlock()
	c.log.Info("logged in", "user", username)
	return nil
}

// EnsureValid refreshes the access token unless it is valid for at least
// another 30 seconds.
func (c *Client) EnsureValid(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != nil && c.token.AccessToken != "" && c.now().Before(c.token.Expiry.Add(-tokenSafetyMargin)) {
		return nil
	}
	if c.token == nil || c.token.RefreshToken == "" {
		tokenValid.Set(0)
		return fmt.Errorf("%w: no refresh token, log in first", ErrAuthentication)
	}

	c.log.V(1).Info("refreshing access token")
	form := url.Values{
		"client_id":     {ClientID},
		"grant_type":    {grantRefreshToken},
		"refresh_token": {c.token.RefreshToken},
	}
	resp, err := c.postForm(ctx, c.endpoints.OAuth.TokenURL, form)
	if err != nil {
		refreshFailure.Inc()
		tokenValid.Set(0)
		return err
	}
	token, err := decodeTokenResponse(resp, false)
	if err != nil {
		refreshFailure.Inc()
		tokenValid.Set(0)
		return fmt.Errorf("refresh token: %w", err)
	}
	c.storeToken(token)
	refreshSuccess.Inc()
	c.log.V(1).Info("access token refreshed", "expiry", c.token.Expiry)
	return nil
}

// RefreshToken returns the current refresh token for the caller to persist.
func (c *Client) RefreshToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == nil {
		return ""
	}
	return c.token.RefreshToken
}

// TokenSource exposes the client's tokens as an oauth2.TokenSource. Each
// call refreshes the token when needed.
func (c *Client) TokenSource() oauth2.TokenSource {
	return clientTokenSource{client: c}
}

type clientTokenSource struct {
	client *Client
}

func (s clientTokenSource) Token() (*oauth2.Token, error) {
	if err := s.client.EnsureValid(context.Background()); err != nil {
		return nil, err
	}
	s.client.mu.Lock()
	defer s.client.mu.Unlock()
	token := *s.client.token
	return &token, nil
}

// storeToken must be called with c.mu held.
func (c *Client) storeToken(resp tokenResponse) {
	token := &oauth2.Token{
		AccessToken:  resp.AccessToken,
		TokenType:    resp.TokenType,
		RefreshToken: resp.RefreshToken,
		Expiry:       c.now().Add(time.Duration(resp.ExpiresIn * float64(time.Second))),
	}
	if token.RefreshToken == "" && c.token != nil {
		token.RefreshToken = c.token.RefreshToken
	}
	c.token = token
	tokenValid.Set(1)
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) (formResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return formResponse{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.session().Do(req)
	if err != nil {
		return formResponse{}, connectionError("post "+endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return formResponse{}, connectionError("read "+endpoint, err)
	}
	return formResponse{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        body,
	}, nil
}

func decodeTokenResponse(resp formResponse, login bool) (tokenResponse, error) {
	if err := checkFormResponse(resp, login); err != nil {
		return tokenResponse{}, err
	}
	var token tokenResponse
	if err := json.Unmarshal(resp.body, &token); err != nil {
		return tokenResponse{}, fmt.Errorf("%w: decode token: %w", ErrProtocol, err)
	}
	if token.AccessToken == "" {
		return tokenResponse{}, fmt.Errorf("%w: token response missing access_token", ErrProtocol)
	}
	return token, nil
}

// checkFormResponse rejects error statuses and bodies that are not JSON. An
// empty content type is accepted.
func checkFormResponse(resp formResponse, login bool) error {
	if resp.status < 200 || resp.status >= 300 {
		return statusError(resp.status, string(resp.body), login)
	}
	return checkContentType(resp.contentType, resp.body)
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
