package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-sysadmin/internal/domain/model"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type TaskSchedulerDAO struct{ DB *gorm.DB }

func NewTaskSchedulerDAO(db *gorm.DB) *TaskSchedulerDAO { return &TaskSchedulerDAO{DB: db} }

func (d *TaskSchedulerDAO) WithTx(tx *gorm.DB) *TaskSchedulerDAO {
	if tx == nil {
		return d
	}
	return &TaskSchedulerDAO{DB: tx}
}

func (d *TaskSchedulerDAO) tracer() trace.Tracer { return otel.Tracer("dao.task_scheduler") }

func (d *TaskSchedulerDAO) List(ctx context.Context, name string, offset, limit int) ([]model.TaskScheduler, int64, error) {
	q := d.DB.WithContext(ctx).Model(&model.TaskScheduler{})
	if name != "" {
		q = q.Where("name ILIKE ?", "%"+name+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count schedulers: %w", err)
	}
	if limit <= 0 {
		limit = 500
	}
	var list []model.TaskScheduler
	if err := q.Offset(offset).Limit(limit).Order("id ASC").Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list schedulers: %w", err)
	}
	return list, total, nil
}

// ListEnabled beat 每个同步周期拉取全部启用的调度
func (d *TaskSchedulerDAO) ListEnabled(ctx context.Context) ([]model.TaskScheduler, error) {
	ctx, span := d.tracer().Start(ctx, "TaskSchedulerDAO.ListEnabled")
	defer span.End()
	var list []model.TaskScheduler
	if err := d.DB.WithContext(ctx).Where("enabled = ?", true).Order("id ASC").Find(&list).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list enabled schedulers: %w", err)
	}
	return list, nil
}

func (d *TaskSchedulerDAO) FindByID(ctx context.Context, id int64) (*model.TaskScheduler, error) {
	var s model.TaskScheduler
	if err := d.DB.WithContext(ctx).First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find scheduler id=%d: %w", id, err)
	}
	return &s, nil
}

func (d *TaskSchedulerDAO) FindByName(ctx context.Context, name string) (*model.TaskScheduler, error) {
	var s model.TaskScheduler
	if err := d.DB.WithContext(ctx).Where("name = ?", name).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find scheduler name=%s: %w", name, err)
	}
	return &s, nil
}

func (d *TaskSchedulerDAO) Create(ctx context.Context, s *model.TaskScheduler) error {
	ctx, span := d.tracer().Start(ctx, "TaskSchedulerDAO.Create")
	defer span.End()
	if err := d.DB.WithContext(ctx).Create(s).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("create scheduler: %w", err)
	}
	return nil
}

func (d *TaskSchedulerDAO) Update(ctx context.Context, s *model.TaskScheduler) error {
	ctx, span := d.tracer().Start(ctx, "TaskSchedulerDAO.Update")
	defer span.End()
	if err := d.DB.WithContext(ctx).Model(&model.TaskScheduler{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"name":            s.Name,
		"task":            s.Task,
		"args":            s.Args,
		"kwargs":          s.Kwargs,
		"queue":           s.Queue,
		"exchange":        s.Exchange,
		"routing_key":     s.RoutingKey,
		"start_time":      s.StartTime,
		"expire_time":     s.ExpireTime,
		"expire_seconds":  s.ExpireSeconds,
		"type":            s.Type,
		"interval_every":  s.IntervalEvery,
		"interval_period": s.IntervalPeriod,
		"crontab":         s.Crontab,
		"one_off":         s.OneOff,
		"remark":          s.Remark,
	}).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("update scheduler id=%d: %w", s.ID, err)
	}
	return nil
}

func (d *TaskSchedulerDAO) Delete(ctx context.Context, id int64) error {
	if err := d.DB.WithContext(ctx).Delete(&model.TaskScheduler{}, id).Error; err != nil {
		return fmt.Errorf("delete scheduler id=%d: %w", id, err)
	}
	return nil
}

func (d *TaskSchedulerDAO) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	if err := d.DB.WithContext(ctx).Model(&model.TaskScheduler{}).Where("id = ?", id).
		Update("enabled", enabled).Error; err != nil {
		return fmt.Errorf("set scheduler enabled id=%d: %w", id, err)
	}
	return nil
}

// MarkRun 触发后累计次数并记录时间；one_off 任务同时停用
func (d *TaskSchedulerDAO) MarkRun(ctx context.Context, id int64, at time.Time, disable bool) error {
	updates := map[string]interface{}{
		"total_run_count": gorm.Expr("total_run_count + 1"),
		"last_run_time":   at,
	}
	if disable {
		updates["enabled"] = false
	}
	if err := d.DB.WithContext(ctx).Model(&model.TaskScheduler{}).Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("mark scheduler run id=%d: %w", id, err)
	}
	return nil
}
