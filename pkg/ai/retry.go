package ai

import (
	"context"
	"errors"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Retrying repeats temporary failures of the wrapped Completer with exponential backoff
type Retrying struct {
	next            Completer
	maxRetries      uint64
	initialInterval time.Duration
	maxInterval     time.Duration
	logger          *zap.Logger
}

// NewRetrying wraps next with up to maxRetries extra attempts
func NewRetrying(next Completer, maxRetries uint64, logger *zap.Logger) *Retrying {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retrying{
		next:            next,
		maxRetries:      maxRetries,
		initialInterval: 2 * time.Second,
		maxInterval:     10 * time.Second,
		logger:          logger,
	}
}

// WithIntervals overrides the backoff intervals
func (r *Retrying) WithIntervals(initial, max time.Duration) *Retrying {
	r.initialInterval = initial
	r.maxInterval = max
	return r
}

func (r *Retrying) Name() string {
	return r.next.Name()
}

func (r *Retrying) Complete(ctx context.Context, prompt string) (string, error) {
	var out string
	attempt := 0

	op := func() error {
		attempt++
		text, err := r.next.Complete(ctx, prompt)
		if err == nil {
			out = text
			return nil
		}
		var se *ServiceError
		if errors.As(err, &se) && se.Temporary() {
			return err
		}
		return backoff.Permanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.initialInterval
	bo.MaxInterval = r.maxInterval
	bo.MaxElapsedTime = 0

	notify := func(err error, wait time.Duration) {
		r.logger.Warn("extraction call failed, retrying",
			zap.String("provider", r.next.Name()),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	err := backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(bo, r.maxRetries), ctx), notify)
	if err != nil {
		var se *ServiceError
		if errors.As(err, &se) {
			return "", err
		}
		// context expiry while waiting between attempts
		return "", newServiceError(r.next.Name(), 0, err)
	}
	return out, nil
}
