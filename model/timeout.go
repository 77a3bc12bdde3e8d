package model

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/time/rate"
)

type timeoutModel struct {
	next    Model
	timeout time.Duration
}

// WithTimeout bounds every Generate call on m by d. A call that runs out of
// time fails with ErrTimeout, distinct from ErrGeneration. Cancellation of
// the caller's context is reported as-is.
func WithTimeout(m Model, d time.Duration) Model {
	return &timeoutModel{next: m, timeout: d}
}

func (t *timeoutModel) Generate(ctx context.Context, req Request) (*Response, error) {
	cctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	resp, err := t.next.Generate(cctx, req)
	if err != nil {
		if ctx.Err() == nil && errors.Is(cctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s: %w", ErrTimeout, t.timeout, err)
		}
		return nil, err
	}
	return resp, nil
}

func (t *timeoutModel) Close() error {
	return closeModel(t.next)
}

type rateLimitedModel struct {
	next    Model
	limiter *rate.Limiter
}

// WithRateLimit makes every Generate call on m wait for a token from limiter.
func WithRateLimit(m Model, limiter *rate.Limiter) Model {
	return &rateLimitedModel{next: m, limiter: limiter}
}

func (r *rateLimitedModel) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return r.next.Generate(ctx, req)
}

func (r *rateLimitedModel) Close() error {
	return closeModel(r.next)
}

func closeModel(m Model) error {
	if c, ok := m.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
