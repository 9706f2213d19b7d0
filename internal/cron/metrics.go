package cron

import "github.com/prometheus/client_golang/prometheus"

var (
	syncRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "churchbell_cron_sync_total",
			Help: "Successful crontab re-projections",
		})
	syncFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "churchbell_cron_sync_failures_total",
			Help: "Crontab read/write failures (swallowed, best-effort)",
		})
)

func init() {
	prometheus.MustRegister(syncRuns, syncFailures)
}
