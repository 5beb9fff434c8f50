package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-sysadmin/internal/domain/model"
	"go-sysadmin/internal/logging"
	"go-sysadmin/internal/metrics"
	"go-sysadmin/internal/repository/dao"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// IntervalDuration interval 类型调度的周期换算
func IntervalDuration(every int, period string) (time.Duration, error) {
	if every <= 0 {
		return 0, fmt.Errorf("interval_every must be positive, got %d", every)
	}
	switch period {
	case model.PeriodDays:
		return time.Duration(every) * 24 * time.Hour, nil
	case model.PeriodHours:
		return time.Duration(every) * time.Hour, nil
	case model.PeriodMinutes:
		return time.Duration(every) * time.Minute, nil
	case model.PeriodSeconds:
		return time.Duration(every) * time.Second, nil
	default:
		return 0, fmt.Errorf("unknown interval_period %q", period)
	}
}

// NextRun 计算下一次应触发时刻。
// interval: 未跑过则立即到期（受 start_time 约束），否则上次执行 + 周期；
// crontab: 以上次执行（或 now）为基准取下一个 cron 命中点。
func NextRun(s *model.TaskScheduler, now time.Time) (time.Time, error) {
	base := now
	if s.LastRunTime != nil {
		base = *s.LastRunTime
	}
	switch s.Type {
	case model.SchedulerTypeInterval:
		if s.IntervalEvery == nil || s.IntervalPeriod == nil {
			return time.Time{}, fmt.Errorf("scheduler %q: interval fields missing", s.Name)
		}
		d, err := IntervalDuration(*s.IntervalEvery, *s.IntervalPeriod)
		if err != nil {
			return time.Time{}, fmt.Errorf("scheduler %q: %w", s.Name, err)
		}
		if s.LastRunTime == nil {
			next := now
			if s.StartTime != nil && s.StartTime.After(now) {
				next = *s.StartTime
			}
			return next, nil
		}
		return base.Add(d), nil
	case model.SchedulerTypeCrontab:
		sched, err := cron.ParseStandard(s.Crontab)
		if err != nil {
			return time.Time{}, fmt.Errorf("scheduler %q: bad crontab %q: %w", s.Name, s.Crontab, err)
		}
		return sched.Next(base), nil
	default:
		return time.Time{}, fmt.Errorf("scheduler %q: unknown type %d", s.Name, s.Type)
	}
}

// Beat 周期调度器。每个同步周期从 task_scheduler 拉取启用行，
// 到期的任务入队并回写 total_run_count/last_run_time，one_off 任务触发后停用。
// 多实例并发部署需外部保证单活（如 etcd 选主），Beat 自身不做抢锁。
type Beat struct {
	schedulers   *dao.TaskSchedulerDAO
	broker       Broker
	registry     *Registry
	logger       *logging.Logger
	interval     time.Duration
	defaultQueue string
	stop         chan struct{}
	done         chan struct{}
}

func NewBeat(schedulers *dao.TaskSchedulerDAO, broker Broker, registry *Registry, logger *logging.Logger, intervalSec int, defaultQueue string) *Beat {
	if intervalSec <= 0 {
		intervalSec = 5
	}
	if defaultQueue == "" {
		defaultQueue = QueueDefault
	}
	return &Beat{
		schedulers:   schedulers,
		broker:       broker,
		registry:     registry,
		logger:       logger,
		interval:     time.Duration(intervalSec) * time.Second,
		defaultQueue: defaultQueue,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

func (b *Beat) Run(ctx context.Context) error {
	defer close(b.done)
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()
	b.logger.Logger.Info("beat started",
		zap.Duration("sync_interval", b.interval),
		zap.Strings("registered_tasks", b.registry.Names()))
	for {
		select {
		case <-b.stop:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			b.tick(ctx, time.Now())
		}
	}
}

func (b *Beat) Shutdown() {
	close(b.stop)
	<-b.done
}

func (b *Beat) tick(ctx context.Context, now time.Time) {
	rows, err := b.schedulers.ListEnabled(ctx)
	if err != nil {
		metrics.TaskBeatTriggerTotal.WithLabelValues("sync_error").Inc()
		b.logger.Logger.Error("beat sync failed", zap.Error(err))
		return
	}
	for i := range rows {
		b.evaluate(ctx, &rows[i], now)
	}
}

func (b *Beat) evaluate(ctx context.Context, s *model.TaskScheduler, now time.Time) {
	if s.StartTime != nil && s.StartTime.After(now) {
		return
	}
	if s.ExpireTime != nil && now.After(*s.ExpireTime) {
		// 整体已过期：直接停用，避免每个同步周期都入队再被 broker 以过期拒绝
		metrics.TaskBeatTriggerTotal.WithLabelValues("expired").Inc()
		if err := b.schedulers.SetEnabled(ctx, s.ID, false); err != nil {
			b.logger.Logger.Error("beat disable expired scheduler failed",
				zap.String("name", s.Name), zap.Error(err))
			return
		}
		b.logger.Logger.Info("beat disabled expired scheduler",
			zap.String("name", s.Name), zap.Time("expire_time", *s.ExpireTime))
		return
	}
	next, err := NextRun(s, now)
	if err != nil {
		metrics.TaskBeatTriggerTotal.WithLabelValues("invalid").Inc()
		b.logger.Logger.Warn("beat skip invalid scheduler", zap.String("name", s.Name), zap.Error(err))
		return
	}
	if next.After(now) {
		return
	}
	if _, ok := b.registry.Lookup(s.Task); !ok {
		metrics.TaskBeatTriggerTotal.WithLabelValues("unregistered").Inc()
		b.logger.Logger.Warn("beat skip unregistered task",
			zap.String("name", s.Name), zap.String("task", s.Task))
		return
	}
	p := &Payload{
		TaskID:     uuid.NewString(),
		Name:       s.Task,
		EnqueuedAt: now,
	}
	if s.Args != nil {
		if err := json.Unmarshal([]byte(*s.Args), &p.Args); err != nil {
			metrics.TaskBeatTriggerTotal.WithLabelValues("invalid").Inc()
			b.logger.Logger.Warn("beat skip bad args", zap.String("name", s.Name), zap.Error(err))
			return
		}
	}
	if s.Kwargs != nil {
		if err := json.Unmarshal([]byte(*s.Kwargs), &p.Kwargs); err != nil {
			metrics.TaskBeatTriggerTotal.WithLabelValues("invalid").Inc()
			b.logger.Logger.Warn("beat skip bad kwargs", zap.String("name", s.Name), zap.Error(err))
			return
		}
	}
	opts := EnqueueOptions{Queue: b.defaultQueue, MaxRetry: 3}
	if s.Queue != nil && *s.Queue != "" {
		opts.Queue = *s.Queue
	}
	// expire_time 与 expire_seconds 互斥，建行时已校验
	if s.ExpireTime != nil {
		opts.ExpireAt = s.ExpireTime
	} else if s.ExpireSeconds != nil {
		t := now.Add(time.Duration(*s.ExpireSeconds) * time.Second)
		opts.ExpireAt = &t
	}
	if err := b.broker.Enqueue(ctx, p, opts); err != nil {
		metrics.TaskBeatTriggerTotal.WithLabelValues("enqueue_error").Inc()
		b.logger.Logger.Error("beat enqueue failed",
			zap.String("name", s.Name), zap.String("task", s.Task), zap.Error(err))
		return
	}
	if err := b.schedulers.MarkRun(ctx, s.ID, now, s.OneOff); err != nil {
		b.logger.Logger.Error("beat mark run failed", zap.String("name", s.Name), zap.Error(err))
	}
	metrics.TaskBeatTriggerTotal.WithLabelValues("ok").Inc()
	b.logger.Logger.Info("beat triggered",
		zap.String("name", s.Name), zap.String("task", s.Task),
		zap.String("task_id", p.TaskID), zap.String("queue", opts.Queue))
}
