package mwmt

import (
	"context"
	"errors"
	"time"

	"github.com/ZaguanLabs/mwmt/provider"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts
	BaseDelay  time.Duration // Initial delay between retries
	MaxDelay   time.Duration // Maximum delay between retries
}

// DefaultRetryConfig returns sensible defaults for retry behavior.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry executes a function with exponential backoff retry.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	var lastErr error
	var zero T

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}

		if attempt < cfg.MaxRetries {
			delay := cfg.BaseDelay * time.Duration(1<<attempt)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}

			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return zero, lastErr
}

// IsRetryable reports whether err is worth retrying: a provider.ProviderError
// flagged Retryable, or any error that wraps one.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var providerErr *provider.ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	return false
}

// RetryableProvider wraps a provider.Provider with retry logic.
type RetryableProvider struct {
	provider provider.Provider
	config   RetryConfig
}

// NewRetryableProvider creates a new provider with retry logic.
func NewRetryableProvider(p provider.Provider, cfg RetryConfig) *RetryableProvider {
	return &RetryableProvider{
		provider: p,
		config:   cfg,
	}
}

func (p *RetryableProvider) Name() string { return p.provider.Name() }

// TranslateBatch implements provider.Provider with retry logic.
func (p *RetryableProvider) TranslateBatch(ctx context.Context, req provider.Request) ([]string, error) {
	return WithRetry(ctx, p.config, func() ([]string, error) {
		return p.provider.TranslateBatch(ctx, req)
	})
}

var _ provider.Provider = (*RetryableProvider)(nil)
