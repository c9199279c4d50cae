// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"advocacy-workers/internal/common/config"
	"advocacy-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// Workers opens job workers against one client and closes them together.
type Workers struct {
	client zbc.Client
	logger *zap.Logger
	open   []worker.JobWorker
	types  []string
}

func NewWorkers(client zbc.Client, logger *zap.Logger) *Workers {
	return &Workers{client: client, logger: logger}
}

// Start opens a job worker for taskType unless the worker is disabled.
func (w *Workers) Start(taskType string, wcfg config.WorkerConfig, handler worker.JobHandler) {
	if !wcfg.Enabled {
		w.logger.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	jw := w.client.NewJobWorker().
		JobType(taskType).
		Handler(w.guard(taskType, handler)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	w.open = append(w.open, jw)
	w.types = append(w.types, taskType)

	w.logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}

// TaskTypes lists the workers that were opened.
func (w *Workers) TaskTypes() []string {
	return append([]string(nil), w.types...)
}

// guard tracks in-flight jobs and turns a handler panic into a failed job
// with no retries.
func (w *Workers) guard(taskType string, handler worker.JobHandler) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		active := metrics.WorkerJobsActive.WithLabelValues(taskType)
		active.Inc()
		defer active.Dec()

		defer func() {
			r := recover()
			if r == nil {
				return
			}
			w.logger.Error("handler panicked",
				zap.String("taskType", taskType),
				zap.Int64("jobKey", job.Key),
				zap.Any("panic", r),
			)
			metrics.WorkerJobsFailed.WithLabelValues(taskType, "PANIC").Inc()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_, err := client.NewFailJobCommand().
				JobKey(job.Key).
				Retries(0).
				ErrorMessage(fmt.Sprintf("handler panic: %v", r)).
				Send(ctx)
			if err != nil {
				w.logger.Error("failed to fail panicked job", zap.Error(err))
			}
		}()

		handler(client, job)
	}
}

// Close stops every opened worker and waits for in-flight jobs.
func (w *Workers) Close() {
	for i, jw := range w.open {
		w.logger.Info("stopping worker", zap.String("taskType", w.types[i]))
		jw.Close()
		jw.AwaitClose()
	}
	w.open = nil
}
