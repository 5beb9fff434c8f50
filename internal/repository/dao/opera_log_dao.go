package dao

import (
	"context"
	"fmt"
	"time"

	"go-sysadmin/internal/domain/model"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type OperaLogDAO struct{ DB *gorm.DB }

func NewOperaLogDAO(db *gorm.DB) *OperaLogDAO { return &OperaLogDAO{DB: db} }

func (d *OperaLogDAO) tracer() trace.Tracer { return otel.Tracer("dao.opera_log") }

// BatchCreate 消费端批量落库
func (d *OperaLogDAO) BatchCreate(ctx context.Context, logs []model.SysOperaLog) error {
	if len(logs) == 0 {
		return nil
	}
	ctx, span := d.tracer().Start(ctx, "OperaLogDAO.BatchCreate")
	defer span.End()
	if err := d.DB.WithContext(ctx).CreateInBatches(logs, 200).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("batch create opera logs: %w", err)
	}
	return nil
}

func (d *OperaLogDAO) List(ctx context.Context, username, ip string, status *int8, offset, limit int) ([]model.SysOperaLog, int64, error) {
	q := d.DB.WithContext(ctx).Model(&model.SysOperaLog{})
	if username != "" {
		q = q.Where("username ILIKE ?", "%"+username+"%")
	}
	if ip != "" {
		q = q.Where("ip LIKE ?", ip+"%")
	}
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count opera logs: %w", err)
	}
	if limit <= 0 {
		limit = 500
	}
	var list []model.SysOperaLog
	if err := q.Offset(offset).Limit(limit).Order("opera_time DESC").Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list opera logs: %w", err)
	}
	return list, total, nil
}

func (d *OperaLogDAO) DeleteByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := d.DB.WithContext(ctx).Delete(&model.SysOperaLog{}, ids).Error; err != nil {
		return fmt.Errorf("delete opera logs: %w", err)
	}
	return nil
}

// DeleteBefore 清理保留期外的日志，返回删除行数（定时任务使用）
func (d *OperaLogDAO) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res := d.DB.WithContext(ctx).Where("opera_time < ?", before).Delete(&model.SysOperaLog{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge opera logs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (d *OperaLogDAO) DeleteAll(ctx context.Context) error {
	if err := d.DB.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.SysOperaLog{}).Error; err != nil {
		return fmt.Errorf("truncate opera logs: %w", err)
	}
	return nil
}
