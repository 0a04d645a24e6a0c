// Package metrics holds Prometheus instruments that are used across the
// pipeline.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ActiveAccounts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_accounts",
			Help: "Number of accounts currently loaded in memory.",
		})

	AccountLoadTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "account_load_total",
			Help: "Cumulative number of accounts successfully loaded.",
		})

	AccountLoadErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "account_load_errors_total",
			Help: "Cumulative number of account load errors.",
		})

	AccountEvictTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "account_evict_total",
			Help: "Cumulative number of accounts evicted from the registry.",
		})

	GateDenialsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gate_denials_total",
			Help: "Requests short-circuited by a pipeline gate, by gate name.",
		},
		[]string{"gate"})

	ActivityWriteTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_write_total",
			Help: "Audit records persisted successfully.",
		})

	ActivityWriteErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "activity_write_errors_total",
			Help: "Audit record writes that failed and were suppressed.",
		})
)

func init() {
	prometheus.MustRegister(
		ActiveAccounts,
		AccountLoadTotal,
		AccountLoadErrorsTotal,
		AccountEvictTotal,
		GateDenialsTotal,
		ActivityWriteTotal,
		ActivityWriteErrorsTotal,
	)
}
