package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveCalls = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "prepaid_active_calls",
		Help: "The number of currently connected calls",
	})

	RegisteredSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "prepaid_registered_subscribers",
		Help: "The number of registered phone numbers",
	})

	AdmissionResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prepaid_admission_results_total",
		Help: "Connect attempts by outcome",
	}, []string{"outcome"})

	ForcedDisconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prepaid_forced_disconnects_total",
		Help: "Calls torn down by credit exhaustion",
	})

	CreditPurchasedMs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prepaid_credit_purchased_ms_total",
		Help: "Total call-time credit sold, in milliseconds",
	})

	BilledDurationMs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prepaid_billed_duration_ms_total",
		Help: "Total connected duration billed, in milliseconds",
	})
)
