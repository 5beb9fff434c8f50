package dao

import (
	"context"
	"errors"
	"fmt"

	"go-sysadmin/internal/domain/model"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type DataScopeDAO struct{ DB *gorm.DB }

func NewDataScopeDAO(db *gorm.DB) *DataScopeDAO { return &DataScopeDAO{DB: db} }

func (d *DataScopeDAO) WithTx(tx *gorm.DB) *DataScopeDAO {
	if tx == nil {
		return d
	}
	return &DataScopeDAO{DB: tx}
}

func (d *DataScopeDAO) tracer() trace.Tracer { return otel.Tracer("dao.data_scope") }

func (d *DataScopeDAO) List(ctx context.Context, name string, status *int8, offset, limit int) ([]model.SysDataScope, int64, error) {
	ctx, span := d.tracer().Start(ctx, "DataScopeDAO.List")
	defer span.End()
	q := d.DB.WithContext(ctx).Model(&model.SysDataScope{})
	if name != "" {
		q = q.Where("name ILIKE ?", "%"+name+"%")
	}
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("count data scopes: %w", err)
	}
	if limit <= 0 {
		limit = 500
	}
	var list []model.SysDataScope
	if err := q.Offset(offset).Limit(limit).Order("id ASC").Find(&list).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("list data scopes: %w", err)
	}
	return list, total, nil
}

func (d *DataScopeDAO) FindByID(ctx context.Context, id int64) (*model.SysDataScope, error) {
	var s model.SysDataScope
	if err := d.DB.WithContext(ctx).First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find data scope id=%d: %w", id, err)
	}
	return &s, nil
}

func (d *DataScopeDAO) Create(ctx context.Context, s *model.SysDataScope) error {
	if err := d.DB.WithContext(ctx).Create(s).Error; err != nil {
		return fmt.Errorf("create data scope: %w", err)
	}
	return nil
}

func (d *DataScopeDAO) Update(ctx context.Context, s *model.SysDataScope) error {
	if err := d.DB.WithContext(ctx).Model(&model.SysDataScope{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"name":   s.Name,
		"status": s.Status,
	}).Error; err != nil {
		return fmt.Errorf("update data scope id=%d: %w", s.ID, err)
	}
	return nil
}

// Delete 连带清理规则绑定与角色绑定
func (d *DataScopeDAO) Delete(ctx context.Context, id int64) error {
	ctx, span := d.tracer().Start(ctx, "DataScopeDAO.Delete")
	defer span.End()
	db := d.DB.WithContext(ctx)
	if err := db.Where("data_scope_id = ?", id).Delete(&model.SysDataScopeRule{}).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("delete scope rules id=%d: %w", id, err)
	}
	if err := db.Where("data_scope_id = ?", id).Delete(&model.SysRoleDataScope{}).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("delete scope role binds id=%d: %w", id, err)
	}
	if err := db.Delete(&model.SysDataScope{}, id).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("delete data scope id=%d: %w", id, err)
	}
	return nil
}

// RuleIDs 数据范围绑定的规则 id
func (d *DataScopeDAO) RuleIDs(ctx context.Context, scopeID int64) ([]int64, error) {
	var ids []int64
	if err := d.DB.WithContext(ctx).Model(&model.SysDataScopeRule{}).
		Where("data_scope_id = ?", scopeID).Pluck("data_rule_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("scope rule ids id=%d: %w", scopeID, err)
	}
	return ids, nil
}

// ReplaceRules 全量替换数据范围的规则绑定
func (d *DataScopeDAO) ReplaceRules(ctx context.Context, scopeID int64, ruleIDs []int64) error {
	ctx, span := d.tracer().Start(ctx, "DataScopeDAO.ReplaceRules")
	defer span.End()
	db := d.DB.WithContext(ctx)
	if err := db.Where("data_scope_id = ?", scopeID).Delete(&model.SysDataScopeRule{}).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("clear scope rules id=%d: %w", scopeID, err)
	}
	if len(ruleIDs) == 0 {
		return nil
	}
	rows := make([]model.SysDataScopeRule, 0, len(ruleIDs))
	for _, rid := range ruleIDs {
		rows = append(rows, model.SysDataScopeRule{DataScopeID: scopeID, DataRuleID: rid})
	}
	if err := db.Create(&rows).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("bind scope rules id=%d: %w", scopeID, err)
	}
	return nil
}

// RulesForRoles 角色集合 -> 启用范围下的全部规则（数据权限过滤入口查询）
func (d *DataScopeDAO) RulesForRoles(ctx context.Context, roleIDs []int64) ([]model.SysDataRule, error) {
	if len(roleIDs) == 0 {
		return []model.SysDataRule{}, nil
	}
	ctx, span := d.tracer().Start(ctx, "DataScopeDAO.RulesForRoles")
	defer span.End()
	var rules []model.SysDataRule
	err := d.DB.WithContext(ctx).
		Distinct("sys_data_rule.*").
		Joins("JOIN sys_data_scope_rule sr ON sr.data_rule_id = sys_data_rule.id").
		Joins("JOIN sys_data_scope s ON s.id = sr.data_scope_id AND s.status = 1").
		Joins("JOIN sys_role_data_scope rs ON rs.data_scope_id = s.id").
		Where("rs.role_id IN ?", roleIDs).
		Order("sys_data_rule.id ASC").
		Find(&rules).Error
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("rules for roles: %w", err)
	}
	return rules, nil
}
