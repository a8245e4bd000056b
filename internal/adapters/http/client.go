package http

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// NewClient builds an *http.Client whose transport negotiates HTTP/2 over
// TLS and falls back to HTTP/1.1.
func NewClient(timeout time.Duration) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if _, err := http2.ConfigureTransports(transport); err != nil {
		return nil, fmt.Errorf("configure http2: %w", err)
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}
