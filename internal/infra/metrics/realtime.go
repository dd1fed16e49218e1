package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		realtimePhaseTransitionsTotal,
		realtimeEventsTotal,
		realtimeReconnectsTotal,
		realtimeOpenChannels,
	)
}

var (
	realtimePhaseTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lexa_realtime_phase_transitions_total",
			Help: "Realtime channel state machine transitions by target phase.",
		},
		[]string{"phase"},
	)

	realtimeEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lexa_realtime_events_total",
			Help: "Realtime events by direction (in/out) and result (accepted/dropped/failed).",
		},
		[]string{"direction", "result"},
	)

	realtimeReconnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lexa_realtime_reconnects_total",
			Help: "Reconnect attempts after an unexpected channel drop.",
		},
	)

	realtimeOpenChannels = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lexa_realtime_open_channels",
			Help: "Currently open realtime channels (0 or 1).",
		},
	)
)

func IncRealtimePhase(phase string) {
	realtimePhaseTransitionsTotal.WithLabelValues(norm(phase)).Inc()
}

func IncRealtimeEvent(direction, result string) {
	realtimeEventsTotal.WithLabelValues(norm(direction), norm(result)).Inc()
}

func IncRealtimeReconnect() {
	realtimeReconnectsTotal.Inc()
}

func ChannelOpened() { realtimeOpenChannels.Inc() }
func ChannelClosed() { realtimeOpenChannels.Dec() }
