package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	drawTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "draw_publish_total",
			Help: "Total draw result publications by result",
		},
		[]string{"result"},
	)

	drawDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "draw_publish_duration_ms",
			Help:    "Draw result publication duration in milliseconds",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		},
		[]string{"result"},
	)
)

// RecordDrawPublish 记录开奖发布的业务指标
// result: "success" | "success_idempotent" | "fail"
func RecordDrawPublish(result string, started time.Time) {
	res := result
	if res != "success" && res != "success_idempotent" {
		res = "fail"
	}
	drawTotal.WithLabelValues(res).Inc()
	durMs := float64(time.Since(started).Milliseconds())
	drawDuration.WithLabelValues(res).Observe(durMs)
}
