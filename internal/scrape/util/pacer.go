package util

import (
	"context"
	"math/rand/v2"
	"time"
)

// Pacer is the politeness policy between requests. Both methods block and
// return ctx.Err() if the context ends first.
type Pacer interface {
	AfterListing(ctx context.Context) error
	AfterPage(ctx context.Context) error
}

// Window is a closed delay interval. Min == Max means a fixed delay.
type Window struct {
	Min time.Duration
	Max time.Duration
}

func (w Window) pick(n func(int64) int64) time.Duration {
	if w.Max <= w.Min {
		return w.Min
	}
	return w.Min + time.Duration(n(int64(w.Max-w.Min)+1))
}

// RandomPacer sleeps for a uniformly drawn duration from each window.
type RandomPacer struct {
	Listing Window
	Page    Window

	sleep func(context.Context, time.Duration) error
	n     func(int64) int64
}

func NewRandomPacer(listing, page Window) *RandomPacer {
	return &RandomPacer{
		Listing: listing,
		Page:    page,
		sleep:   Sleep,
		n:       rand.Int64N,
	}
}

func (p *RandomPacer) AfterListing(ctx context.Context) error {
	return p.sleep(ctx, p.Listing.pick(p.n))
}

func (p *RandomPacer) AfterPage(ctx context.Context) error {
	return p.sleep(ctx, p.Page.pick(p.n))
}

// NoDelay never sleeps. Used by tests and dry runs.
type NoDelay struct{}

func (NoDelay) AfterListing(ctx context.Context) error { return ctx.Err() }
func (NoDelay) AfterPage(ctx context.Context) error    { return ctx.Err() }

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
