package adspower

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/browser/start", r.URL.Path)
		assert.Equal(t, "123", r.URL.Query().Get("serial_number"))
		assert.Equal(t, "0", r.URL.Query().Get("headless"))
		fmt.Fprint(w, `{"code":0,"msg":"success","data":{"ws":{"puppeteer":"ws://127.0.0.1:9222/devtools/browser/abc"},"webdriver":"/tmp/chromedriver"}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	res, err := c.Start(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "ws://127.0.0.1:9222/devtools/browser/abc", res.WSEndpoint)
	assert.Equal(t, "/tmp/chromedriver", res.WebdriverPath)
}

func TestStartHeadless(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("headless"))
		fmt.Fprint(w, `{"code":0,"msg":"success","data":{"ws":{"puppeteer":"ws://x"}}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	c.Headless = true
	_, err := c.Start(context.Background(), "123")
	require.NoError(t, err)
}

func TestStartAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":-1,"msg":"quota exceeded"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Start(context.Background(), "123")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "quota exceeded", apiErr.Error())
}

func TestStartMissingEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":0,"msg":"success","data":{"ws":{}}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Start(context.Background(), "123")
	require.Error(t, err)
}

func TestStartUnreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1")
	_, err := c.Start(context.Background(), "123")
	require.Error(t, err)
}

func TestStop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/browser/stop", r.URL.Path)
		assert.Equal(t, "123", r.URL.Query().Get("serial_number"))
		fmt.Fprint(w, `{"code":0,"msg":"success"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	require.NoError(t, c.Stop(context.Background(), "123"))
}

func TestStopAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":-1,"msg":"profile not running"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	err := c.Stop(context.Background(), "123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "profile not running")
}

func TestCheckActive(t *testing.T) {
	active := `{"code":0,"msg":"success","data":{"status":"Active"}}`
	inactive := `{"code":0,"msg":"success","data":{"status":"Inactive"}}`

	for _, tt := range []struct {
		body string
		want bool
	}{
		{active, true},
		{inactive, false},
		{`{"code":-1,"msg":"unknown profile"}`, false},
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/browser/active", r.URL.Path)
			fmt.Fprint(w, tt.body)
		}))

		c := NewClient(srv.URL)
		got, err := c.CheckActive(context.Background(), "123")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		srv.Close()
	}
}

func TestWaitReady(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) >= 2 {
			fmt.Fprint(w, `{"code":0,"msg":"success","data":{"status":"Active"}}`)
			return
		}
		fmt.Fprint(w, `{"code":0,"msg":"success","data":{"status":"Inactive"}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	assert.True(t, c.WaitReady(context.Background(), "123", 5*time.Second))
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}

func TestWaitReadyTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":0,"msg":"success","data":{"status":"Inactive"}}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	assert.False(t, c.WaitReady(context.Background(), "123", 10*time.Millisecond))
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/status", r.URL.Path)
		fmt.Fprint(w, `{"code":0,"msg":"success"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	require.NoError(t, c.Ping(context.Background()))
}
