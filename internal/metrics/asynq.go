package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	taskRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumesync",
			Subsystem: "worker",
			Name:      "task_runs_total",
			Help:      "后台任务执行次数，按任务类型与结果（ok / retry / skip）分类。",
		},
		[]string{"task_type", "result"},
	)

	taskLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resumesync",
			Subsystem: "worker",
			Name:      "task_duration_seconds",
			Help:      "后台任务单次执行耗时（秒）。",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"task_type"},
	)

	taskRetried = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumesync",
			Subsystem: "worker",
			Name:      "task_retried_runs_total",
			Help:      "重试中的任务执行次数（retry_count > 0）。",
		},
		[]string{"task_type"},
	)
)

// AsynqMetricsMiddleware 记录每次任务执行的耗时与结果。返回 asynq.SkipRetry 的任务记为 skip。
func AsynqMetricsMiddleware() asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
			taskType := task.Type()
			if n, ok := asynq.GetRetryCount(ctx); ok && n > 0 {
				taskRetried.WithLabelValues(taskType).Inc()
			}

			start := time.Now()
			err := next.ProcessTask(ctx, task)
			taskLatency.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
			taskRuns.WithLabelValues(taskType, taskResult(err)).Inc()
			return err
		})
	}
}

func taskResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, asynq.SkipRetry):
		return "skip"
	default:
		return "retry"
	}
}
