package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventProcessDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "guildmod_event_duration_sec",
	Help: "Total duration of trigger evaluation per event",
}, []string{"type"})

var eventProcessCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guildmod_event_processed",
	Help: "Number of events evaluated",
}, []string{"type"})

var eventErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guildmod_event_errors",
	Help: "Number of events which failed processing",
}, []string{"type"})

var triggerFiredCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guildmod_trigger_fired",
	Help: "Number of trigger firings",
}, []string{"kind"})

var matcherErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guildmod_matcher_errors",
	Help: "Number of matcher invocations which returned an error",
}, []string{"kind"})

var matcherTimeoutCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guildmod_matcher_timeouts",
	Help: "Number of matcher invocations which exceeded their wall-clock budget",
}, []string{"kind"})

var matcherPanicCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guildmod_matcher_panics",
	Help: "Number of matcher invocations recovered from a panic",
}, []string{"kind"})

var cooldownSkipCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guildmod_cooldown_skips",
	Help: "Number of trigger evaluations skipped by an active cooldown",
}, []string{"kind"})

var notifyErrorCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "guildmod_notify_errors",
	Help: "Number of match notifications which failed delivery",
})
