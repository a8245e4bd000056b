package ports

import "context"

// EntropyFetcher reads raw random bytes from a remote entropy source.
type EntropyFetcher interface {
	// Fetch performs one request and returns the full response payload.
	Fetch(ctx context.Context) ([]byte, error)
}
