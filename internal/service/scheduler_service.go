package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-sysadmin/internal/domain/model"
	"go-sysadmin/internal/repository/dao"
	"go-sysadmin/internal/task"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

var (
	ErrSchedulerNameTaken = errors.New("scheduler name already taken")
	ErrExpireConflict     = errors.New("expire_time and expire_seconds are mutually exclusive")
)

// SchedulerService 周期任务定义管理 + 手动触发
type SchedulerService struct {
	DAO      *dao.TaskSchedulerDAO
	Results  *dao.TaskResultDAO
	Broker   task.Broker
	Registry *task.Registry
}

func NewSchedulerService(d *dao.TaskSchedulerDAO, results *dao.TaskResultDAO, broker task.Broker, registry *task.Registry) *SchedulerService {
	return &SchedulerService{DAO: d, Results: results, Broker: broker, Registry: registry}
}

func (s *SchedulerService) List(ctx context.Context, name string, page, pageSize int) ([]model.TaskScheduler, int64, error) {
	offset, limit := pageWindow(page, pageSize)
	return s.DAO.List(ctx, name, offset, limit)
}

func (s *SchedulerService) Get(ctx context.Context, id int64) (*model.TaskScheduler, error) {
	row, err := s.DAO.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNotFound
	}
	return row, nil
}

type SchedulerParams struct {
	Name           string
	Task           string
	Args           *string
	Kwargs         *string
	Queue          *string
	StartTime      *time.Time
	ExpireTime     *time.Time
	ExpireSeconds  *int
	Type           int
	IntervalEvery  *int
	IntervalPeriod *string
	Crontab        string
	OneOff         bool
	Remark         *string
}

func (p SchedulerParams) validate(registry *task.Registry) error {
	if p.ExpireTime != nil && p.ExpireSeconds != nil {
		return ErrExpireConflict
	}
	switch p.Type {
	case model.SchedulerTypeInterval:
		if p.IntervalEvery == nil || p.IntervalPeriod == nil {
			return errors.New("interval scheduler requires interval_every and interval_period")
		}
		if _, err := task.IntervalDuration(*p.IntervalEvery, *p.IntervalPeriod); err != nil {
			return err
		}
	case model.SchedulerTypeCrontab:
		if _, err := cron.ParseStandard(p.Crontab); err != nil {
			return fmt.Errorf("bad crontab %q: %w", p.Crontab, err)
		}
	default:
		return fmt.Errorf("unknown scheduler type %d", p.Type)
	}
	if registry != nil {
		if _, ok := registry.Lookup(p.Task); !ok {
			return fmt.Errorf("task %q is not registered", p.Task)
		}
	}
	return nil
}

func (s *SchedulerService) Add(ctx context.Context, p SchedulerParams) (*model.TaskScheduler, error) {
	if err := p.validate(s.Registry); err != nil {
		return nil, err
	}
	if exist, err := s.DAO.FindByName(ctx, p.Name); err != nil {
		return nil, err
	} else if exist != nil {
		return nil, ErrSchedulerNameTaken
	}
	row := &model.TaskScheduler{
		Name: p.Name, Task: p.Task, Args: p.Args, Kwargs: p.Kwargs, Queue: p.Queue,
		StartTime: p.StartTime, ExpireTime: p.ExpireTime, ExpireSeconds: p.ExpireSeconds,
		Type: p.Type, IntervalEvery: p.IntervalEvery, IntervalPeriod: p.IntervalPeriod,
		OneOff: p.OneOff, Enabled: true, Remark: p.Remark,
	}
	if p.Type == model.SchedulerTypeCrontab {
		row.Crontab = p.Crontab
	}
	if err := s.DAO.Create(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

func (s *SchedulerService) Edit(ctx context.Context, id int64, p SchedulerParams) error {
	if err := p.validate(s.Registry); err != nil {
		return err
	}
	cur, err := s.DAO.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return ErrNotFound
	}
	if exist, err := s.DAO.FindByName(ctx, p.Name); err != nil {
		return err
	} else if exist != nil && exist.ID != id {
		return ErrSchedulerNameTaken
	}
	cur.Name = p.Name
	cur.Task = p.Task
	cur.Args = p.Args
	cur.Kwargs = p.Kwargs
	cur.Queue = p.Queue
	cur.StartTime = p.StartTime
	cur.ExpireTime = p.ExpireTime
	cur.ExpireSeconds = p.ExpireSeconds
	cur.Type = p.Type
	cur.IntervalEvery = p.IntervalEvery
	cur.IntervalPeriod = p.IntervalPeriod
	if p.Type == model.SchedulerTypeCrontab {
		cur.Crontab = p.Crontab
	}
	cur.OneOff = p.OneOff
	cur.Remark = p.Remark
	return s.DAO.Update(ctx, cur)
}

func (s *SchedulerService) Delete(ctx context.Context, id int64) error {
	cur, err := s.DAO.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return ErrNotFound
	}
	return s.DAO.Delete(ctx, id)
}

func (s *SchedulerService) SetEnabled(ctx context.Context, id int64, enabled bool) error {
	cur, err := s.DAO.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return ErrNotFound
	}
	return s.DAO.SetEnabled(ctx, id, enabled)
}

// RunNow 绕过调度立即入队一次，返回 task_id
func (s *SchedulerService) RunNow(ctx context.Context, id int64) (string, error) {
	cur, err := s.DAO.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if cur == nil {
		return "", ErrNotFound
	}
	if s.Registry != nil {
		if _, ok := s.Registry.Lookup(cur.Task); !ok {
			return "", fmt.Errorf("task %q is not registered", cur.Task)
		}
	}
	p := &task.Payload{TaskID: uuid.NewString(), Name: cur.Task, EnqueuedAt: time.Now()}
	if cur.Args != nil {
		if err := jsonUnmarshal(*cur.Args, &p.Args); err != nil {
			return "", fmt.Errorf("bad args json: %w", err)
		}
	}
	if cur.Kwargs != nil {
		if err := jsonUnmarshal(*cur.Kwargs, &p.Kwargs); err != nil {
			return "", fmt.Errorf("bad kwargs json: %w", err)
		}
	}
	opts := task.EnqueueOptions{Queue: task.QueueDefault, MaxRetry: 3}
	if cur.Queue != nil && *cur.Queue != "" {
		opts.Queue = *cur.Queue
	}
	if err := s.Broker.Enqueue(ctx, p, opts); err != nil {
		return "", err
	}
	if err := s.DAO.MarkRun(ctx, id, time.Now(), false); err != nil {
		return "", err
	}
	return p.TaskID, nil
}

// ===== 任务结果 =====

func (s *SchedulerService) ListResults(ctx context.Context, name, taskID string, page, pageSize int) ([]model.TaskResult, int64, error) {
	offset, limit := pageWindow(page, pageSize)
	return s.Results.List(ctx, name, taskID, offset, limit)
}

func (s *SchedulerService) DeleteResults(ctx context.Context, ids []int64) error {
	return s.Results.DeleteByIDs(ctx, ids)
}
