package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type DBMetrics struct {
	QueryDuration *prometheus.HistogramVec
}

type BusinessMetrics struct {
	LoansCreatedTotal     *prometheus.CounterVec
	RepaymentsTotal       *prometheus.CounterVec
	LoansDefaultedTotal   prometheus.Counter
	GoldItemsPledgedTotal *prometheus.CounterVec
}

var (
	DB = DBMetrics{
		QueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "goldloan_engine_db_query_duration_seconds",
				Help:    "Histogram of database query latencies.",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_name", "status"},
		),
	}

	Business = BusinessMetrics{
		LoansCreatedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goldloan_engine_loans_created_total",
				Help: "Total number of loans successfully created, by kind.",
			},
			[]string{"kind"},
		),
		RepaymentsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goldloan_engine_repayments_total",
				Help: "Total number of repayment attempts, by outcome.",
			},
			[]string{"status"},
		),
		LoansDefaultedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "goldloan_engine_loans_defaulted_total",
				Help: "Total number of loans marked defaulted by the overdue sweep.",
			},
		),
		GoldItemsPledgedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "goldloan_engine_gold_items_pledged_total",
				Help: "Total number of gold items pledged, by loan kind.",
			},
			[]string{"kind"},
		),
	}
)

func RecordDBQuery(queryName, status string, duration time.Duration) {
	DB.QueryDuration.WithLabelValues(queryName, status).Observe(duration.Seconds())
}

func RecordLoanCreated(kind string) {
	Business.LoansCreatedTotal.WithLabelValues(kind).Inc()
}

func RecordRepayment(status string) {
	Business.RepaymentsTotal.WithLabelValues(status).Inc()
}

func RecordLoanDefaulted() {
	Business.LoansDefaultedTotal.Inc()
}

func RecordGoldItemsPledged(kind string, n int) {
	Business.GoldItemsPledgedTotal.WithLabelValues(kind).Add(float64(n))
}
