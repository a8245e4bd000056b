package http

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/atdevs/atrng/internal/ports"
	"github.com/atdevs/atrng/pkg/log"
)

// DefaultEntropyURL is the public randomness endpoint.
const DefaultEntropyURL = "https://rng-api.atdevs.org/random"

// DefaultMaxEntropyBytes caps how much of a response body is read.
const DefaultMaxEntropyBytes = 1 << 20

const errorExcerptBytes = 512

// EntropyFetcher implements ports.EntropyFetcher with a single HTTP GET.
type EntropyFetcher struct {
	client   ports.HTTPClient
	url      string
	maxBytes int64
	logger   log.Logger
}

// NewEntropyFetcher creates a fetcher for url. A non-positive maxBytes
// selects DefaultMaxEntropyBytes.
func NewEntropyFetcher(client ports.HTTPClient, url string, maxBytes int64, logger log.Logger) *EntropyFetcher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxEntropyBytes
	}
	return &EntropyFetcher{
		client:   client,
		url:      url,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Fetch returns the full response body. Non-2xx statuses and bodies larger
// than the cap are errors.
func (f *EntropyFetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, errorExcerptBytes))
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(excerpt))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("response exceeds %d bytes", f.maxBytes)
	}

	f.logger.Debug("fetched entropy",
		log.String("url", f.url),
		log.Int("bytes", len(body)),
		log.String("proto", resp.Proto),
	)
	return body, nil
}
