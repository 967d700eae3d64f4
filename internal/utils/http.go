// Package utils provides common helpers shared by the internal packages.
//
// It holds the HTTP transport factory used by every outbound client
// and the address and URL checks used when parsing wallet responses
// and configuration.
package utils

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// CreateTransport creates an HTTP transport with connection pooling.
//
// Wallet endpoints and the auth service are long-lived peers, so idle
// connections are kept per host:
//   - MaxIdleConns / MaxIdleConnsPerHost: maxIdle
//   - IdleConnTimeout: idleTimeout
//   - ResponseHeaderTimeout: 10s
//
// Example:
//
//	client := &http.Client{Transport: CreateTransport(100, 90*time.Second)}
func CreateTransport(maxIdle int, idleTimeout time.Duration) *http.Transport {
	return &http.Transport{
		MaxIdleConns:          maxIdle,
		MaxIdleConnsPerHost:   maxIdle,
		IdleConnTimeout:       idleTimeout,
		ResponseHeaderTimeout: 10 * time.Second,
	}
}

// NewHTTPClient returns a client with the given timeout over a pooled transport.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: CreateTransport(100, 90*time.Second),
	}
}

// IsHTTPURL reports whether s is an absolute http or https URL with a host.
func IsHTTPURL(s string) bool {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Host != ""
}

// JoinURL appends path segments to a base endpoint, normalizing slashes.
//
// Example:
//
//	JoinURL("http://auth.local/", "/api/v1", "sessions") // http://auth.local/api/v1/sessions
func JoinURL(base string, segments ...string) string {
	out := strings.TrimSuffix(base, "/")
	for _, s := range segments {
		s = strings.Trim(s, "/")
		if s == "" {
			continue
		}
		out += "/" + s
	}
	return out
}
