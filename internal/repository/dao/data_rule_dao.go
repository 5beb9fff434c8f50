package dao

import (
	"context"
	"errors"
	"fmt"

	"go-sysadmin/internal/domain/model"

	"gorm.io/gorm"
)

type DataRuleDAO struct{ DB *gorm.DB }

func NewDataRuleDAO(db *gorm.DB) *DataRuleDAO { return &DataRuleDAO{DB: db} }

func (d *DataRuleDAO) WithTx(tx *gorm.DB) *DataRuleDAO {
	if tx == nil {
		return d
	}
	return &DataRuleDAO{DB: tx}
}

func (d *DataRuleDAO) List(ctx context.Context, name string, offset, limit int) ([]model.SysDataRule, int64, error) {
	q := d.DB.WithContext(ctx).Model(&model.SysDataRule{})
	if name != "" {
		q = q.Where("name ILIKE ?", "%"+name+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count data rules: %w", err)
	}
	if limit <= 0 {
		limit = 500
	}
	var list []model.SysDataRule
	if err := q.Offset(offset).Limit(limit).Order("id ASC").Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list data rules: %w", err)
	}
	return list, total, nil
}

func (d *DataRuleDAO) FindByID(ctx context.Context, id int64) (*model.SysDataRule, error) {
	var r model.SysDataRule
	if err := d.DB.WithContext(ctx).First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find data rule id=%d: %w", id, err)
	}
	return &r, nil
}

func (d *DataRuleDAO) FindByIDs(ctx context.Context, ids []int64) ([]model.SysDataRule, error) {
	if len(ids) == 0 {
		return []model.SysDataRule{}, nil
	}
	var list []model.SysDataRule
	if err := d.DB.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("find data rules: %w", err)
	}
	return list, nil
}

func (d *DataRuleDAO) Create(ctx context.Context, r *model.SysDataRule) error {
	if err := d.DB.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("create data rule: %w", err)
	}
	return nil
}

func (d *DataRuleDAO) Update(ctx context.Context, r *model.SysDataRule) error {
	if err := d.DB.WithContext(ctx).Model(&model.SysDataRule{}).Where("id = ?", r.ID).Updates(map[string]interface{}{
		"name":       r.Name,
		"model":      r.Model,
		"column":     r.Column,
		"operator":   r.Operator,
		"expression": r.Expression,
		"value":      r.Value,
	}).Error; err != nil {
		return fmt.Errorf("update data rule id=%d: %w", r.ID, err)
	}
	return nil
}

// Delete 连带清理范围绑定
func (d *DataRuleDAO) Delete(ctx context.Context, id int64) error {
	db := d.DB.WithContext(ctx)
	if err := db.Where("data_rule_id = ?", id).Delete(&model.SysDataScopeRule{}).Error; err != nil {
		return fmt.Errorf("delete rule binds id=%d: %w", id, err)
	}
	if err := db.Delete(&model.SysDataRule{}, id).Error; err != nil {
		return fmt.Errorf("delete data rule id=%d: %w", id, err)
	}
	return nil
}
