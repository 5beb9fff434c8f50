package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-sysadmin/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskResultDAO struct{ DB *gorm.DB }

func NewTaskResultDAO(db *gorm.DB) *TaskResultDAO { return &TaskResultDAO{DB: db} }

// Upsert 以 task_id 为键写入/覆盖执行状态（重试路径会多次更新同一行）
func (d *TaskResultDAO) Upsert(ctx context.Context, r *model.TaskResult) error {
	err := d.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "task_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "status", "result", "traceback", "retries", "date_done",
		}),
	}).Create(r).Error
	if err != nil {
		return fmt.Errorf("upsert task result: %w", err)
	}
	return nil
}

func (d *TaskResultDAO) FindByTaskID(ctx context.Context, taskID string) (*model.TaskResult, error) {
	var r model.TaskResult
	if err := d.DB.WithContext(ctx).Where("task_id = ?", taskID).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find task result task_id=%s: %w", taskID, err)
	}
	return &r, nil
}

func (d *TaskResultDAO) List(ctx context.Context, name, taskID string, offset, limit int) ([]model.TaskResult, int64, error) {
	q := d.DB.WithContext(ctx).Model(&model.TaskResult{})
	if name != "" {
		q = q.Where("name ILIKE ?", "%"+name+"%")
	}
	if taskID != "" {
		q = q.Where("task_id = ?", taskID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count task results: %w", err)
	}
	if limit <= 0 {
		limit = 500
	}
	var list []model.TaskResult
	if err := q.Offset(offset).Limit(limit).Order("id DESC").Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list task results: %w", err)
	}
	return list, total, nil
}

func (d *TaskResultDAO) DeleteByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := d.DB.WithContext(ctx).Delete(&model.TaskResult{}, ids).Error; err != nil {
		return fmt.Errorf("delete task results: %w", err)
	}
	return nil
}

// DeleteBefore 清理保留期外的结果行（定时任务使用）
func (d *TaskResultDAO) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res := d.DB.WithContext(ctx).Where("created_time < ?", before).Delete(&model.TaskResult{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge task results: %w", res.Error)
	}
	return res.RowsAffected, nil
}
