package portfolio

import "github.com/prometheus/client_golang/prometheus"

var (
	dialogueSteps = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portfoliobot",
		Subsystem: "dialogue",
		Name:      "steps_total",
		Help:      "Dialogue inputs by stage and result (advanced, invalid).",
	}, []string{"stage", "result"})
	itemsSubmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portfoliobot",
		Subsystem: "dialogue",
		Name:      "items_committed_total",
		Help:      "Portfolio items committed at the end of a dialogue.",
	}, []string{"flow"})
	windowsRendered = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portfoliobot",
		Subsystem: "browse",
		Name:      "windows_total",
		Help:      "Browsing windows by view and result (rendered, empty).",
	}, []string{"view", "result"})
	windowRefetches = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "portfoliobot",
		Subsystem: "browse",
		Name:      "refetches_total",
		Help:      "Window fetches repeated after the item set shrank mid-browse.",
	})
	moderationActions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portfoliobot",
		Subsystem: "moderation",
		Name:      "actions_total",
		Help:      "Moderation actions by action and result.",
	}, []string{"action", "result"})
	notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portfoliobot",
		Subsystem: "moderation",
		Name:      "notifications_total",
		Help:      "Best-effort notifications to submitters by result.",
	}, []string{"result"})
	deniedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "portfoliobot",
		Subsystem: "gate",
		Name:      "denied_total",
		Help:      "Admin entry points refused to other principals.",
	})
)

func init() {
	prometheus.MustRegister(dialogueSteps, itemsSubmitted, windowsRendered, windowRefetches,
		moderationActions, notificationsTotal, deniedTotal)
}

func flowLabel(privileged bool) string {
	if privileged {
		return "admin"
	}
	return "user"
}
