package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "wattcompare_"

// Result labels for observation calls.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	comparisonRuns = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    metricPrefix + "comparison_run_seconds",
			Help:    "Duration of offer-comparison runs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result", "window"},
	)
	offerPricings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "offer_pricing_total",
			Help: "Offers priced, by result",
		},
		[]string{"result"},
	)
	skippedRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "skipped_records_total",
			Help: "Records skipped in best-effort runs, by pipeline stage",
		},
		[]string{"stage"},
	)
	reportExports = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    metricPrefix + "report_export_seconds",
			Help:    "Duration of comparison report exports",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"format", "result"},
	)
)

func init() {
	prometheus.MustRegister(comparisonRuns, offerPricings, skippedRecords, reportExports)
}

// ObserveComparisonRun records one pipeline run.
func ObserveComparisonRun(result, window string, d time.Duration) {
	comparisonRuns.WithLabelValues(result, window).Observe(d.Seconds())
}

// CountOfferPricing records one priced offer.
func CountOfferPricing(result string) {
	offerPricings.WithLabelValues(result).Inc()
}

// CountSkippedRecords records records dropped by a best-effort run.
func CountSkippedRecords(stage string, n int) {
	if n > 0 {
		skippedRecords.WithLabelValues(stage).Add(float64(n))
	}
}

// ObserveReportExport records one report export.
func ObserveReportExport(format, result string, d time.Duration) {
	reportExports.WithLabelValues(format, result).Observe(d.Seconds())
}
