package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(storeDispatchesTotal, clientStateRequestsTotal) }

var (
	storeDispatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lexa_store_dispatches_total",
			Help: "Actions applied to the client state container.",
		},
		[]string{"action"},
	)

	clientStateRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lexa_client_state_requests_total",
			Help: "Persisted client state operations by driver, op and result.",
		},
		[]string{"driver", "op", "result"}, // e.g., driver="redis", op="load", result="miss"
	)
)

func IncDispatch(action string) {
	storeDispatchesTotal.WithLabelValues(norm(action)).Inc()
}

func IncClientStateRequest(driver, op, result string) {
	clientStateRequestsTotal.WithLabelValues(norm(driver), norm(op), norm(result)).Inc()
}
