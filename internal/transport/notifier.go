package transport

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m3rciful/portfoliobot/core/logger"
	"github.com/m3rciful/portfoliobot/core/telegram/sender"
	"github.com/m3rciful/portfoliobot/internal/portfolio"
)

// Notifier delivers out-of-band messages through the sender queue, so a slow or
// blocked recipient does not hold up the update that triggered the notification.
type Notifier struct {
	queue *sender.Dispatcher
	tr    portfolio.Transport
}

// NewNotifier builds a notifier. With a nil queue every notification is sent inline.
func NewNotifier(queue *sender.Dispatcher, tr portfolio.Transport) *Notifier {
	return &Notifier{queue: queue, tr: tr}
}

var _ portfolio.Notifier = (*Notifier)(nil)

// Notify queues text for principal. A full queue falls back to an inline send.
func (n *Notifier) Notify(ctx context.Context, principal int64, text string) error {
	run := func(ctx context.Context) error {
		_, err := n.tr.SendText(ctx, principal, text, nil)
		return err
	}
	if n.queue == nil {
		return run(ctx)
	}

	err := n.queue.Enqueue(ctx, "notify", run)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sender.ErrQueueFull) {
		return err
	}
	logger.LogEvent(ctx, logger.TG, slog.LevelWarn, "notify.inline",
		slog.String("status", "retry"),
		slog.String("reason", "queue_full"),
		slog.Int64("to", principal),
	)
	return run(ctx)
}
