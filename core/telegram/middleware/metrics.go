package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/m3rciful/portfoliobot/core/telegram/helpers"
)

var (
	updatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portfoliobot",
		Subsystem: "tg",
		Name:      "updates_total",
		Help:      "Updates received, by kind.",
	}, []string{"kind"})
	updateDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "portfoliobot",
		Subsystem: "tg",
		Name:      "update_duration_seconds",
		Help:      "Time spent handling one update.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"kind"})
	messagesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "portfoliobot",
		Subsystem: "tg",
		Name:      "messages_sent_total",
		Help:      "Messages sent or edited in reply to updates.",
	})
	rateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portfoliobot",
		Subsystem: "tg",
		Name:      "rate_limited_total",
		Help:      "Updates dropped by the rate limiter.",
	}, []string{"kind"})
	panicsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "portfoliobot",
		Subsystem: "tg",
		Name:      "panics_total",
		Help:      "Handler panics recovered.",
	})
)

func init() {
	prometheus.MustRegister(updatesTotal, updateDuration, messagesSent, rateLimitedTotal, panicsTotal)
}

// MessageMetricsMiddleware attaches per-update send counters and records update metrics.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		kind := UpdateKind(c.Update())
		updatesTotal.WithLabelValues(kind).Inc()

		ctx := tghelpers.WithCounters(tghelpers.BuildContext(c))
		tghelpers.StoreContext(c, ctx)

		start := time.Now()
		err := next(c)
		updateDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		if n, _ := tghelpers.CountersFrom(ctx).Snapshot(); n > 0 {
			messagesSent.Add(float64(n))
		}
		return err
	}
}

// GetCounters reads message count and keyboard presence from the update context.
func GetCounters(c tele.Context) (int, bool) {
	ctx, ok := tghelpers.ContextFrom(c)
	if !ok {
		return 0, false
	}
	return tghelpers.CountersFrom(ctx).Snapshot()
}
