package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out a sequence of upstream calls. call is the zero-based
// position of the call within the current aggregation.
type Pacer interface {
	Wait(ctx context.Context, call int) error
}

// New builds the pacer for mode "off", "pause" or "limiter".
func New(mode string, every int, pause time.Duration, perSecond float64) (Pacer, error) {
	if every <= 0 {
		every = 1
	}
	switch mode {
	case "off", "":
		return Off{}, nil
	case "pause":
		return NewFixedPause(every, pause), nil
	case "limiter":
		if perSecond <= 0 {
			return nil, fmt.Errorf("ratelimit: limiter needs a positive rate, got %v", perSecond)
		}
		return NewTokenBucket(perSecond, every), nil
	default:
		return nil, fmt.Errorf("ratelimit: unknown mode %q", mode)
	}
}

// Off never waits. The pause is advisory only and enforces nothing.
type Off struct{}

func (Off) Wait(ctx context.Context, _ int) error { return ctx.Err() }

// FixedPause suspends for a fixed duration before every n-th call,
// starting with the first one.
type FixedPause struct {
	every int
	pause time.Duration
}

func NewFixedPause(every int, pause time.Duration) *FixedPause {
	if every <= 0 {
		every = 1
	}
	return &FixedPause{every: every, pause: pause}
}

func (p *FixedPause) Wait(ctx context.Context, call int) error {
	if call%p.every != 0 || p.pause <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(p.pause)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TokenBucket is a process-wide limiter shared by every aggregation,
// so concurrent requests are paced together.
type TokenBucket struct {
	lim *rate.Limiter
}

func NewTokenBucket(perSecond float64, burst int) *TokenBucket {
	return &TokenBucket{lim: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (b *TokenBucket) Wait(ctx context.Context, _ int) error {
	return b.lim.Wait(ctx)
}
