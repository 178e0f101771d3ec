package logger

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// PaymentsTotal counts payment attempts by method kind and outcome
	PaymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telbill_payments_total",
			Help: "Total number of payment attempts",
		},
		[]string{"method", "result"}, // result: "accepted" or "rejected"
	)

	// CallsRecordedTotal counts calls billed to accounts
	CallsRecordedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telbill_calls_recorded_total",
			Help: "Total number of calls recorded against accounts",
		},
	)

	// LedgerWriteFailuresTotal counts accepted payments whose ledger entry was not stored
	LedgerWriteFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telbill_ledger_write_failures_total",
			Help: "Total number of accepted payments missing a ledger entry",
		},
	)

	// ChargeQuotesTotal counts monthly charge quotes by plan type
	ChargeQuotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telbill_charge_quotes_total",
			Help: "Total number of monthly charge quotes",
		},
		[]string{"plan"},
	)

	// DeviceOperationsTotal counts connect/disconnect calls on managed devices
	DeviceOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telbill_device_operations_total",
			Help: "Total number of device operations",
		},
		[]string{"device", "operation"},
	)

	// StorageQueryDuration measures repository latency
	StorageQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "telbill_storage_query_duration_seconds",
			Help:    "Storage query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

var registerOnce sync.Once

// InitMetrics registers Prometheus metrics. Safe to call more than once.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(PaymentsTotal)
		prometheus.MustRegister(CallsRecordedTotal)
		prometheus.MustRegister(LedgerWriteFailuresTotal)
		prometheus.MustRegister(ChargeQuotesTotal)
		prometheus.MustRegister(DeviceOperationsTotal)
		prometheus.MustRegister(StorageQueryDuration)
	})
}

// MetricsHandler returns HTTP handler for Prometheus metrics
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
