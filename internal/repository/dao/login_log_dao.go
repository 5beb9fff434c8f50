package dao

import (
	"context"
	"fmt"
	"time"

	"go-sysadmin/internal/domain/model"

	"gorm.io/gorm"
)

type LoginLogDAO struct{ DB *gorm.DB }

func NewLoginLogDAO(db *gorm.DB) *LoginLogDAO { return &LoginLogDAO{DB: db} }

func (d *LoginLogDAO) Create(ctx context.Context, l *model.SysLoginLog) error {
	if err := d.DB.WithContext(ctx).Create(l).Error; err != nil {
		return fmt.Errorf("create login log: %w", err)
	}
	return nil
}

func (d *LoginLogDAO) List(ctx context.Context, username, ip string, status *int8, offset, limit int) ([]model.SysLoginLog, int64, error) {
	q := d.DB.WithContext(ctx).Model(&model.SysLoginLog{})
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
		return nil, 0, fmt.Errorf("count login logs: %w", err)
	}
	if limit <= 0 {
		limit = 500
	}
	var list []model.SysLoginLog
	if err := q.Offset(offset).Limit(limit).Order("login_time DESC").Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list login logs: %w", err)
	}
	return list, total, nil
}

func (d *LoginLogDAO) DeleteByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := d.DB.WithContext(ctx).Delete(&model.SysLoginLog{}, ids).Error; err != nil {
		return fmt.Errorf("delete login logs: %w", err)
	}
	return nil
}

// DeleteBefore 清理保留期外的日志，返回删除行数（定时任务使用）
func (d *LoginLogDAO) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res := d.DB.WithContext(ctx).Where("login_time < ?", before).Delete(&model.SysLoginLog{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge login logs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (d *LoginLogDAO) DeleteAll(ctx context.Context) error {
	if err := d.DB.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.SysLoginLog{}).Error; err != nil {
		return fmt.Errorf("truncate login logs: %w", err)
	}
	return nil
}
