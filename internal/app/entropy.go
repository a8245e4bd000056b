package app

import (
	"context"
	"fmt"
	"math/big"

	"github.com/atdevs/atrng/internal/domain"
	"github.com/atdevs/atrng/internal/ports"
	"github.com/atdevs/atrng/pkg/log"
)

// EntropyService turns bytes from the remote entropy source into digests.
// It runs in the caller's goroutine and never retries.
type EntropyService struct {
	fetcher ports.EntropyFetcher
	logger  log.Logger
}

// NewEntropyService creates a service backed by fetcher.
func NewEntropyService(fetcher ports.EntropyFetcher, logger log.Logger) *EntropyService {
	return &EntropyService{fetcher: fetcher, logger: logger}
}

// Digest fetches one payload and hashes it.
func (s *EntropyService) Digest(ctx context.Context) (domain.Digest, error) {
	data, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return domain.Digest{}, fmt.Errorf("%w: %w", domain.ErrFetch, err)
	}

	d, err := domain.Sum(data)
	if err != nil {
		return domain.Digest{}, err
	}

	s.logger.Debug("hashed entropy", log.Int("bytes", len(data)))
	return d, nil
}

// Text returns the digest of fresh entropy as 128 lowercase hex characters.
func (s *EntropyService) Text(ctx context.Context) (string, error) {
	d, err := s.Digest(ctx)
	if err != nil {
		return "", err
	}
	return d.Hex(), nil
}

// Number returns the digest of fresh entropy as an unsigned big integer.
func (s *EntropyService) Number(ctx context.Context) (*big.Int, error) {
	d, err := s.Digest(ctx)
	if err != nil {
		return nil, err
	}
	return d.BigInt(), nil
}
