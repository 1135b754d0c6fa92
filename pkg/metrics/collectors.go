package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "initchain"

type collectors struct {
	linkCalls    *prometheus.CounterVec
	linkDuration *prometheus.HistogramVec
	passes       *prometheus.CounterVec
	passDuration *prometheus.HistogramVec
	lastPass     *prometheus.GaugeVec

	httpRequests *prometheus.CounterVec
	responseTime prometheus.Histogram
}

func newCollectors() collectors {
	return collectors{
		linkCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "link_calls_total", Help: "link callbacks by chain, op, level and outcome"},
			[]string{"chain", "op", "level", "outcome"},
		),
		linkDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "link_duration_seconds",
				Help:      "link callback latency.",
				Buckets:   []float64{0.0005, 0.005, 0.05, 0.5, 5, 30},
			},
			[]string{"chain", "op"},
		),
		passes: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "passes_total", Help: "run and reset passes by outcome"},
			[]string{"chain", "op", "outcome"},
		),
		passDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pass_duration_seconds",
				Help:      "whole pass latency.",
				Buckets:   []float64{0.001, 0.01, 0.1, 1, 10, 60},
			},
			[]string{"chain", "op"},
		),
		lastPass: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Namespace: namespace, Name: "last_pass_success", Help: "1 if the last pass of this op succeeded"},
			[]string{"chain", "op"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "admin http requests by code, uri and method"},
			[]string{"code", "uri", "method"},
		),
		responseTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_time_seconds",
				Help:      "admin http response time.",
				Buckets:   []float64{0.005, 0.05, 0.5, 1, 5, 30},
			},
		),
	}
}

func (c collectors) all() []prometheus.Collector {
	return []prometheus.Collector{
		c.linkCalls, c.linkDuration, c.passes, c.passDuration, c.lastPass,
		c.httpRequests, c.responseTime,
	}
}
