package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScanCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "monitor_scan_cycles_total",
		Help: "Completed watch-list scan rounds",
	})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "monitor_scan_duration_seconds",
		Help:    "Duration of one watch-list scan round",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	ScanErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "monitor_scan_errors_total",
		Help: "Isolated scan failures by stage",
	}, []string{"stage"})

	SignalsDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "monitor_signals_detected_total",
		Help: "Signal candidates produced by detectors",
	}, []string{"kind"})

	SignalsAccepted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "monitor_signals_accepted_total",
		Help: "Signals stored and forwarded as alerts",
	}, []string{"kind"})

	SignalsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "monitor_signals_rejected_total",
		Help: "Signals dropped by dedup or store failure",
	}, []string{"reason"})

	AlertsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "monitor_alerts_dropped_total",
		Help: "Oldest alerts discarded because the alert queue was full",
	})

	BreadthCounts = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "breadth_instruments",
		Help: "Instruments by direction in the last breadth cycle",
	}, []string{"direction"})

	BreadthErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "breadth_cycle_errors_total",
		Help: "Breadth cycles that kept the previous stats",
	})

	WSClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "web_ws_clients",
		Help: "Connected alert websocket clients",
	})
)
