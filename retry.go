package mqpasswd

import (
	"context"
	"log/slog"
	"time"

	"github.com/hengadev/mqpasswd/internal/monitoring"
	"github.com/hengadev/mqpasswd/internal/reliability"
)

const (
	DefaultRetryAttempts     = 3
	DefaultRetryInitialDelay = 200 * time.Millisecond
	MaxRetryAttempts         = 10
)

// RetryConfig controls how transient secret store and publish failures are retried.
type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
}

// DefaultRetryConfig returns 3 attempts starting at 200ms.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  DefaultRetryAttempts,
		InitialDelay: DefaultRetryInitialDelay,
	}
}

func (r RetryConfig) withDefaults() RetryConfig {
	if r.MaxAttempts == 0 {
		r.MaxAttempts = DefaultRetryAttempts
	}
	if r.InitialDelay == 0 {
		r.InitialDelay = DefaultRetryInitialDelay
	}
	return r
}

// Retry runs op, retrying with exponential backoff while it fails with an error
// IsRetryableError accepts.
func Retry(ctx context.Context, cfg RetryConfig, logger *slog.Logger, op func(context.Context) error) error {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = monitoring.Discard()
	}

	executor := reliability.NewRetryExecutor(reliability.NewExponentialBackoffPolicy(reliability.RetryConfig{
		MaxAttempts:  cfg.MaxAttempts,
		InitialDelay: cfg.InitialDelay,
		ShouldRetry: func(err error, _ int) bool {
			return IsRetryableError(err)
		},
	}))
	executor.SetOnRetryCallback(func(attempt int, delay time.Duration, err error) {
		logger.Warn("retrying after transient failure",
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()),
		)
	})

	return executor.Execute(ctx, op)
}

type retryingSource struct {
	source PasswordSource
	cfg    RetryConfig
	logger *slog.Logger
}

// WithRetry wraps source so transient lookup failures are retried according to cfg.
func WithRetry(source PasswordSource, cfg RetryConfig, logger *slog.Logger) PasswordSource {
	return &retryingSource{source: source, cfg: cfg, logger: logger}
}

func (s *retryingSource) Password(ctx context.Context, ref string) (string, error) {
	var password string
	err := Retry(ctx, s.cfg, s.logger, func(ctx context.Context) error {
		var err error
		password, err = s.source.Password(ctx, ref)
		return err
	})
	if err != nil {
		return "", err
	}
	return password, nil
}
