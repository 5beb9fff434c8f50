package task

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go-sysadmin/internal/domain/model"
	"go-sysadmin/internal/logging"
	"go-sysadmin/internal/metrics"
	"go-sysadmin/internal/repository/dao"

	"go.uber.org/zap"
)

// Runner 两种消费端共用的执行封装：查表分发、panic 恢复、
// 执行状态落 task_result、metrics 上报。
type Runner struct {
	registry *Registry
	results  *dao.TaskResultDAO
	logger   *logging.Logger
}

func NewRunner(registry *Registry, results *dao.TaskResultDAO, logger *logging.Logger) *Runner {
	return &Runner{registry: registry, results: results, logger: logger}
}

// Process 执行一个任务。返回错误表示需要 broker 侧重试。
func (r *Runner) Process(ctx context.Context, p *Payload, retries int) (err error) {
	h, ok := r.registry.Lookup(p.Name)
	if !ok {
		// 未注册任务重试无意义，记失败后吞掉
		r.record(ctx, p, model.TaskStatusFailure, "", fmt.Sprintf("unknown task %q", p.Name), retries)
		metrics.TaskProcessTotal.WithLabelValues(p.Name, "unknown").Inc()
		r.logger.Logger.Warn("task not registered", zap.String("task", p.Name), zap.String("task_id", p.TaskID))
		return nil
	}
	r.record(ctx, p, model.TaskStatusStarted, "", "", retries)

	start := time.Now()
	defer func() {
		metrics.TaskProcessDuration.WithLabelValues(p.Name).Observe(time.Since(start).Seconds())
		if rec := recover(); rec != nil {
			err = fmt.Errorf("task %q panic: %v", p.Name, rec)
			r.record(ctx, p, model.TaskStatusFailure, "", fmt.Sprintf("panic: %v\n%s", rec, debug.Stack()), retries)
			metrics.TaskProcessTotal.WithLabelValues(p.Name, "panic").Inc()
		}
	}()

	result, err := h(ctx, p)
	if err != nil {
		r.record(ctx, p, model.TaskStatusRetry, "", err.Error(), retries)
		metrics.TaskProcessTotal.WithLabelValues(p.Name, "failure").Inc()
		r.logger.Logger.Error("task failed",
			zap.String("task", p.Name), zap.String("task_id", p.TaskID),
			zap.Int("retries", retries), zap.Error(err))
		return err
	}
	r.record(ctx, p, model.TaskStatusSuccess, result, "", retries)
	metrics.TaskProcessTotal.WithLabelValues(p.Name, "success").Inc()
	r.logger.Logger.Info("task done",
		zap.String("task", p.Name), zap.String("task_id", p.TaskID),
		zap.Duration("cost", time.Since(start)))
	return nil
}

func (r *Runner) record(ctx context.Context, p *Payload, status, result, traceback string, retries int) {
	row := &model.TaskResult{
		TaskID:  p.TaskID,
		Name:    &p.Name,
		Status:  status,
		Retries: retries,
	}
	if result != "" {
		row.Result = &result
	}
	if traceback != "" {
		row.Traceback = &traceback
	}
	if status == model.TaskStatusSuccess || status == model.TaskStatusFailure {
		now := time.Now()
		row.DateDone = &now
	}
	// 结果表写失败不影响任务本身
	if err := r.results.Upsert(ctx, row); err != nil {
		r.logger.Logger.Warn("task result upsert failed",
			zap.String("task_id", p.TaskID), zap.Error(err))
	}
}
