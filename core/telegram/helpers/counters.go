package helpers

import (
	"context"
	"sync/atomic"
)

type countersKey struct{}

// Counters tracks outbound activity of one update for its summary log line.
type Counters struct {
	messages atomic.Int32
	keyboard atomic.Bool
}

// WithCounters attaches fresh counters to ctx.
func WithCounters(ctx context.Context) context.Context {
	return context.WithValue(ctx, countersKey{}, &Counters{})
}

// CountersFrom returns the counters of ctx, or nil.
func CountersFrom(ctx context.Context) *Counters {
	if ctx == nil {
		return nil
	}
	c, _ := ctx.Value(countersKey{}).(*Counters)
	return c
}

// CountSent records a delivered message or edit.
func CountSent(ctx context.Context, withKeyboard bool) {
	c := CountersFrom(ctx)
	if c == nil {
		return
	}
	c.messages.Add(1)
	if withKeyboard {
		c.keyboard.Store(true)
	}
}

// Snapshot returns the message count and whether any of them carried a keyboard.
func (c *Counters) Snapshot() (int, bool) {
	if c == nil {
		return 0, false
	}
	return int(c.messages.Load()), c.keyboard.Load()
}
