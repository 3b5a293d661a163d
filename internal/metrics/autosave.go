package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	saveStartedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumesync",
			Subsystem: "autosave",
			Name:      "saves_started_total",
			Help:      "已发出的分区保存请求总数。",
		},
		[]string{"section"},
	)

	saveFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumesync",
			Subsystem: "autosave",
			Name:      "saves_failed_total",
			Help:      "分区保存失败总数。",
		},
		[]string{"section"},
	)

	saveDiscardedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumesync",
			Subsystem: "autosave",
			Name:      "responses_discarded_total",
			Help:      "因请求已被新请求取代而丢弃的响应数。",
		},
		[]string{"section"},
	)

	saveDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resumesync",
			Subsystem: "autosave",
			Name:      "save_duration_seconds",
			Help:      "分区保存请求耗时分布（秒）。",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"section", "outcome"},
	)
)

// Autosave 将自动保存生命周期事件记录为 Prometheus 指标，实现 autosave.Recorder。
type Autosave struct{}

func (Autosave) SaveStarted(section string) {
	saveStartedTotal.WithLabelValues(section).Inc()
}

func (Autosave) SaveFinished(section string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		saveFailedTotal.WithLabelValues(section).Inc()
	}
	saveDuration.WithLabelValues(section, outcome).Observe(elapsed.Seconds())
}

func (Autosave) SaveDiscarded(section string) {
	saveDiscardedTotal.WithLabelValues(section).Inc()
}
