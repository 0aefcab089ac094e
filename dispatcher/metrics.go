package dispatcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var dispatchEventCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guildmod_dispatch_events",
	Help: "Number of normalized events admitted for evaluation",
}, []string{"type"})

var dispatchDroppedCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "guildmod_dispatch_dropped",
	Help: "Number of events dropped before evaluation",
}, []string{"reason"})
