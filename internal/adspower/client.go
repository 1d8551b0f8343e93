// Package adspower is a client for the AdsPower Local API, which starts and
// stops isolated browser profiles and hands back a CDP endpoint for each.
package adspower

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	startTimeout = 60 * time.Second
	stopTimeout  = 30 * time.Second
	checkTimeout = 15 * time.Second

	readyPollInterval = time.Second
)

// Client talks to a local AdsPower instance.
type Client struct {
	baseURL string
	httpc   *http.Client

	// Headless asks AdsPower to start profiles without a visible window.
	Headless bool
}

// NewClient creates a client for the given AdsPower base URL,
// e.g. http://localhost:50325.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
	}
}

// APIError is a failure reported by the AdsPower API itself, as opposed to a
// transport failure reaching it.
type APIError struct {
	Code int
	Msg  string
}

func (e *APIError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("adspower api error (code %d)", e.Code)
	}
	return e.Msg
}

// StartResult holds the connection details of a started profile.
type StartResult struct {
	// WSEndpoint is the CDP websocket URL for attaching an automation driver.
	WSEndpoint string
	// WebdriverPath is the chromedriver binary AdsPower ships, unused by the
	// CDP driver but reported for diagnostics.
	WebdriverPath string
}

// envelope is the common AdsPower response shape: code 0 means success.
type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values, timeout time.Duration) (*envelope, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed: status %s", resp.Status)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &env, nil
}

// Start starts the browser profile with the given serial number and returns
// its CDP endpoint. API-level failures (profile busy, quota exceeded) come
// back as *APIError.
func (c *Client) Start(ctx context.Context, serial string) (StartResult, error) {
	params := url.Values{"serial_number": {serial}}
	if c.Headless {
		params.Set("headless", "1")
	} else {
		params.Set("headless", "0")
	}

	env, err := c.get(ctx, "/api/v1/browser/start", params, startTimeout)
	if err != nil {
		return StartResult{}, err
	}
	if env.Code != 0 {
		return StartResult{}, &APIError{Code: env.Code, Msg: env.Msg}
	}

	var data struct {
		WS struct {
			Puppeteer string `json:"puppeteer"`
		} `json:"ws"`
		Webdriver string `json:"webdriver"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return StartResult{}, fmt.Errorf("decode start data: %w", err)
	}
	if data.WS.Puppeteer == "" {
		return StartResult{}, fmt.Errorf("start response missing CDP endpoint")
	}

	return StartResult{
		WSEndpoint:    data.WS.Puppeteer,
		WebdriverPath: data.Webdriver,
	}, nil
}

// Stop stops the browser profile with the given serial number.
func (c *Client) Stop(ctx context.Context, serial string) error {
	params := url.Values{"serial_number": {serial}}

	env, err := c.get(ctx, "/api/v1/browser/stop", params, stopTimeout)
	if err != nil {
		return err
	}
	if env.Code != 0 {
		return &APIError{Code: env.Code, Msg: env.Msg}
	}
	return nil
}

// CheckActive reports whether the profile's browser is currently running.
func (c *Client) CheckActive(ctx context.Context, serial string) (bool, error) {
	params := url.Values{"serial_number": {serial}}

	env, err := c.get(ctx, "/api/v1/browser/active", params, checkTimeout)
	if err != nil {
		return false, err
	}
	if env.Code != 0 {
		return false, nil
	}

	var data struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return false, fmt.Errorf("decode active data: %w", err)
	}
	return data.Status == "Active", nil
}

// WaitReady polls CheckActive until the profile reports active or the budget
// runs out. It returns false on timeout or cancellation.
func (c *Client) WaitReady(ctx context.Context, serial string, budget time.Duration) bool {
	deadline := time.Now().Add(budget)
	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	for {
		active, err := c.CheckActive(ctx, serial)
		if err == nil && active {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
		}
	}
}

// Ping checks that the AdsPower Local API is reachable.
func (c *Client) Ping(ctx context.Context) error {
	env, err := c.get(ctx, "/status", nil, checkTimeout)
	if err != nil {
		return err
	}
	if env.Code != 0 {
		return &APIError{Code: env.Code, Msg: env.Msg}
	}
	return nil
}
