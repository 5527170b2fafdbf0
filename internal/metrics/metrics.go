// Package metrics registers the prometheus collectors of the server and
// exposes the /metrics handler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	RequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_latency_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)

	MailsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mails_dispatched_total",
			Help: "Total mails handed to the mail transport",
		},
		[]string{"kind"},
	)
)

var Handler = promhttp.Handler

var registered = false

func Init() {
	if registered {
		return
	}
	registered = true

	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestLatency)
	prometheus.MustRegister(MailsDispatched)
}
