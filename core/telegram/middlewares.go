package telegram

import (
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/m3rciful/portfoliobot/core/config"
	"github.com/m3rciful/portfoliobot/core/telegram/middleware"
)

// DefaultMiddlewares builds the shared middleware chain, outermost first:
// recover, rate limit, logger, metrics, then per-user serialization.
func DefaultMiddlewares(cfg *coreconfig.Config, queue *middleware.KeyedQueue, onLimited tele.HandlerFunc) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}

	if cfg != nil {
		if interval := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond; interval > 0 {
			ex := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
			for _, t := range cfg.RateLimit.ExcludeUpdates {
				ex[strings.ToLower(t)] = struct{}{}
			}
			mws = append(mws, Middleware{
				Name: "rate_limit",
				Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
					Interval:  interval,
					Exclude:   ex,
					OnLimited: onLimited,
				}),
			})
		}
	}

	mws = append(mws,
		Middleware{Name: "logger", Use: middleware.LoggerMiddleware},
		Middleware{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	)
	if queue != nil {
		mws = append(mws, Middleware{Name: "serialize", Use: middleware.SerializeByUser(queue)})
	}
	return mws
}
