package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	settleTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settle_runs_total",
			Help: "Total settlement runs by result",
		},
		[]string{"result"},
	)

	settleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "settle_run_duration_ms",
			Help:    "Settlement run duration in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 12),
		},
		[]string{"result"},
	)

	settleBetsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "settle_bets_processed_total",
			Help: "Total bets settled across all runs",
		},
	)

	settleBetsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "settle_bets_failed_total",
			Help: "Total bets that failed settlement and were left pending",
		},
	)

	settlePayoutTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "settle_payout_amount_total",
			Help: "Cumulative payout amount credited by settlement",
		},
	)
)

// RecordSettleRun 记录一次结算批次
// result: "success" | "fail"
func RecordSettleRun(result string, processed, failed int, payout float64, started time.Time) {
	res := result
	if res != "success" {
		res = "fail"
	}
	settleTotal.WithLabelValues(res).Inc()
	settleDuration.WithLabelValues(res).Observe(float64(time.Since(started).Milliseconds()))
	if processed > 0 {
		settleBetsProcessed.Add(float64(processed))
	}
	if failed > 0 {
		settleBetsFailed.Add(float64(failed))
	}
	if payout > 0 {
		settlePayoutTotal.Add(payout)
	}
}
