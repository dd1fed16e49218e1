package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(workerTasksTotal, sessionRefreshesTotal) }

var (
	workerTasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lexa_worker_tasks_total",
			Help: "Background intents run by the worker pool, by task and result.",
		},
		[]string{"task", "result"},
	)

	sessionRefreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lexa_session_refreshes_total",
			Help: "Periodic session revalidations, by result (valid|invalid).",
		},
		[]string{"result"},
	)
)

func IncWorkerTask(task, result string) {
	workerTasksTotal.WithLabelValues(norm(task), norm(result)).Inc()
}

func IncSessionRefresh(result string) {
	sessionRefreshesTotal.WithLabelValues(norm(result)).Inc()
}
