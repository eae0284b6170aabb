// Package network provides the HTTP clients shared by discovery and provider strategies.
package network

import (
	"net/http"
	"time"

	"github.com/vidlink-cli/vidlink/constant"
	"github.com/vidlink-cli/vidlink/key"
	"github.com/spf13/viper"
)

// Doer is the subset of *http.Client used across the application.
// Both the plain client and the browser-fingerprint client satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the singleton HTTP client shared across the application.
// Per-call deadlines come from the request context; the client timeout is only an upper bound.
var Client = NewClient(time.Minute)

// NewClient returns an http.Client with a tuned transport and the given overall timeout.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: newTransport(),
	}
}

// newTransport initializes a tuned http.Transport with optimized pool and timeout parameters.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	t.MaxConnsPerHost = 200
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = 30 * time.Second
	return t
}

// ForProviders returns the client provider strategies should talk through.
// The Chrome-fingerprint client is used when network.browser_tls is set.
func ForProviders() Doer {
	if viper.GetBool(key.NetworkBrowserTLS) {
		return Browser()
	}
	return Client
}

// UserAgent returns the configured User-Agent, falling back to the built-in one.
func UserAgent() string {
	if ua := viper.GetString(key.NetworkUserAgent); ua != "" {
		return ua
	}
	return constant.UserAgent
}
