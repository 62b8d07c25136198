package config

import (
	"time"

	"github.com/napi-rs/docsite/internal/foundation/normalization"
)

// RetryBackoffMode enumerates supported backoff strategies for retryable operations.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

var retryBackoffNormalizer = normalization.NewNormalizer(map[string]RetryBackoffMode{
	"fixed":       RetryBackoffFixed,
	"linear":      RetryBackoffLinear,
	"exponential": RetryBackoffExponential,
}, RetryBackoffLinear)

// NormalizeRetryBackoff maps raw onto a RetryBackoffMode, defaulting to linear.
func NormalizeRetryBackoff(raw string) RetryBackoffMode {
	return retryBackoffNormalizer.Normalize(raw)
}

// RetryConfig controls how often a failed sitemap generation is retried.
type RetryConfig struct {
	Backoff      RetryBackoffMode `yaml:"backoff"`
	InitialDelay time.Duration    `yaml:"initial_delay"`
	MaxDelay     time.Duration    `yaml:"max_delay"`
	MaxRetries   int              `yaml:"max_retries"` // Attempts after the first failure; 0 disables retries
}

func (r RetryConfig) isZero() bool {
	return r == RetryConfig{}
}
