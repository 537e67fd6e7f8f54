package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Chain tries providers in order. Each provider gets its own bounded retry
// budget for transient failures before the next one is tried.
type Chain struct {
	providers       []Provider
	maxRetries      uint64
	attemptTimeout  time.Duration
	initialInterval time.Duration
}

type ChainOption func(*Chain)

func WithMaxRetries(n uint64) ChainOption {
	return func(c *Chain) { c.maxRetries = n }
}

func WithAttemptTimeout(d time.Duration) ChainOption {
	return func(c *Chain) { c.attemptTimeout = d }
}

func WithInitialInterval(d time.Duration) ChainOption {
	return func(c *Chain) { c.initialInterval = d }
}

func NewChain(providers []Provider, opts ...ChainOption) *Chain {
	c := &Chain{
		providers:       providers,
		maxRetries:      1,
		attemptTimeout:  60 * time.Second,
		initialInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Chain) Name() string { return "chain" }

// Len returns the number of configured providers.
func (c *Chain) Len() int { return len(c.providers) }

// MaxDuration bounds one Complete call when every attempt of every provider
// runs to its timeout. Backoff waits are capped at a minute each.
func (c *Chain) MaxDuration() time.Duration {
	attempts := time.Duration(c.maxRetries + 1)
	perProvider := attempts*c.attemptTimeout + (attempts-1)*time.Minute
	return time.Duration(len(c.providers)) * perProvider
}

func (c *Chain) Complete(ctx context.Context, req Request) (string, error) {
	if len(c.providers) == 0 {
		return "", ErrNotConfigured
	}

	var errs []error
	for _, p := range c.providers {
		text, err := c.try(ctx, p, req)
		if err == nil {
			return text, nil
		}
		slog.Warn("completion provider failed", "provider", p.Name(), "tier", string(req.Tier), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	return "", fmt.Errorf("all completion providers failed: %w", errors.Join(errs...))
}

func (c *Chain) try(ctx context.Context, p Provider, req Request) (string, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.initialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, c.maxRetries), ctx)

	var text string
	op := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
		defer cancel()

		out, err := p.Complete(attemptCtx, req)
		if err != nil {
			if IsTransient(err) && ctx.Err() == nil {
				return err
			}
			return backoff.Permanent(err)
		}
		text = out
		return nil
	}

	if err := backoff.Retry(op, policy); err != nil {
		return "", err
	}
	return text, nil
}
