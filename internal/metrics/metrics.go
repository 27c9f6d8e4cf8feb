package metrics

import (
	"database/sql"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "psa_"

	ResultSuccess = "success"
	ResultError   = "error"
	// ResultNoPlan marks billing runs rejected for lack of an active plan
	ResultNoPlan = "no_active_plan"
)

var (
	registerOnce sync.Once

	billingRuns       *prometheus.CounterVec
	billingRunLatency *prometheus.HistogramVec
	billingCharges    *prometheus.CounterVec

	rolloverEntries *prometheus.CounterVec

	timePeriodsGenerated prometheus.Counter
)

// Init registers the collectors. db may be nil, otherwise its pool stats are exported too.
func Init(db *sql.DB) {
	registerOnce.Do(func() {
		billingRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "billing_runs_total",
				Help: "Total billing runs by result",
			},
			[]string{"result"},
		)
		billingRunLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "billing_run_duration_seconds",
				Help:    "Billing run latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		billingCharges = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "billing_charges_total",
				Help: "Total charges produced by billing runs by charge type",
			},
			[]string{"type"},
		)
		rolloverEntries = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "rollover_entries_total",
				Help: "Total time entries handled by rollover by result",
			},
			[]string{"result"},
		)
		timePeriodsGenerated = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "time_periods_generated_total",
				Help: "Total time periods generated",
			},
		)

		prometheus.MustRegister(
			billingRuns,
			billingRunLatency,
			billingCharges,
			rolloverEntries,
			timePeriodsGenerated,
		)
		if db != nil {
			prometheus.MustRegister(collectors.NewDBStatsCollector(db, "psa"))
		}
	})
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveBillingRun records billing run duration and result.
func ObserveBillingRun(result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if billingRuns != nil {
		billingRuns.WithLabelValues(result).Inc()
	}
	if billingRunLatency != nil {
		billingRunLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// AddCharges counts charges of one type.
func AddCharges(chargeType string, count int) {
	if count <= 0 {
		return
	}
	if billingCharges != nil {
		billingCharges.WithLabelValues(chargeType).Add(float64(count))
	}
}

// AddRolloverEntries counts rolled over entries by result.
func AddRolloverEntries(result string, count int) {
	if count <= 0 {
		return
	}
	if rolloverEntries != nil {
		rolloverEntries.WithLabelValues(result).Add(float64(count))
	}
}

// AddTimePeriodsGenerated counts generated periods.
func AddTimePeriodsGenerated(count int) {
	if count <= 0 {
		return
	}
	if timePeriodsGenerated != nil {
		timePeriodsGenerated.Add(float64(count))
	}
}
