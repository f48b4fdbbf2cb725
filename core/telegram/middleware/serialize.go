package middleware

import (
	"context"
	"strconv"
	"sync"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/portfoliobot/core/telegram/helpers"
)

// KeyedQueue runs functions one at a time per key, in arrival order.
type KeyedQueue struct {
	mu     sync.Mutex
	chains map[string]chan struct{}
}

// NewKeyedQueue returns an empty queue.
func NewKeyedQueue() *KeyedQueue {
	return &KeyedQueue{chains: map[string]chan struct{}{}}
}

// Run waits for earlier work on key, then runs fn. When ctx ends first, fn is skipped
// but the chain still advances once the earlier work finishes.
func (q *KeyedQueue) Run(ctx context.Context, key string, fn func(context.Context) error) error {
	q.mu.Lock()
	previous := q.chains[key]
	next := make(chan struct{})
	q.chains[key] = next
	q.mu.Unlock()

	release := func() {
		close(next)
		q.mu.Lock()
		if q.chains[key] == next {
			delete(q.chains, key)
		}
		q.mu.Unlock()
	}

	if previous != nil {
		select {
		case <-previous:
		case <-ctx.Done():
			go func() {
				<-previous
				release()
			}()
			return ctx.Err()
		}
	}
	defer release()
	return fn(ctx)
}

// Pending reports how many keys currently have work queued or running.
func (q *KeyedQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.chains)
}

// SerializeByUser processes updates of one sender strictly one after another.
func SerializeByUser(q *KeyedQueue) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil {
				return next(c)
			}
			ctx := tghelpers.BuildContext(c)
			return q.Run(ctx, strconv.FormatInt(user.ID, 10), func(context.Context) error {
				return next(c)
			})
		}
	}
}
