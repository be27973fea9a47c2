package scorer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Nishanth-cyber/Job-search/internal/logger"
)

// Retrying wrap a Scorer with an explicit retry-or-fail policy. MaxAttempts 1 fail on the first error.
type Retrying struct {
	Inner             Scorer
	MaxAttempts       int
	PerAttemptTimeout time.Duration
	Backoff           time.Duration
	log               *zap.Logger
}

// NewRetrying creates a new instance of Retrying
func NewRetrying(inner Scorer, maxAttempts int, perAttemptTimeout time.Duration, log *zap.Logger) *Retrying {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Retrying{
		Inner:             inner,
		MaxAttempts:       maxAttempts,
		PerAttemptTimeout: perAttemptTimeout,
		Backoff:           time.Second,
		log:               logger.OrNop(log),
	}
}

// Score implements Scorer
func (r *Retrying) Score(ctx context.Context, req Request) (*Result, error) {
	var lastErr error
	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		res, err := r.attempt(ctx, req)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if attempt == r.MaxAttempts || ctx.Err() != nil {
			break
		}
		r.log.Warn("scorer attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.MaxAttempts),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil, scorerError("scoring cancelled", ctx.Err())
		case <-time.After(r.Backoff * time.Duration(attempt)):
		}
	}
	return nil, lastErr
}

func (r *Retrying) attempt(ctx context.Context, req Request) (*Result, error) {
	if r.PerAttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.PerAttemptTimeout)
		defer cancel()
	}
	return r.Inner.Score(ctx, req)
}
