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

type RoleDAO struct{ DB *gorm.DB }

func NewRoleDAO(db *gorm.DB) *RoleDAO { return &RoleDAO{DB: db} }

func (d *RoleDAO) WithTx(tx *gorm.DB) *RoleDAO {
	if tx == nil {
		return d
	}
	return &RoleDAO{DB: tx}
}

func (d *RoleDAO) tracer() trace.Tracer { return otel.Tracer("dao.role") }

func (d *RoleDAO) List(ctx context.Context, name string, status *int8, offset, limit int) ([]model.SysRole, int64, error) {
	ctx, span := d.tracer().Start(ctx, "RoleDAO.List")
	defer span.End()
	q := d.DB.WithContext(ctx).Model(&model.SysRole{})
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
		return nil, 0, fmt.Errorf("count roles: %w", err)
	}
	if limit <= 0 {
		limit = 500
	}
	var list []model.SysRole
	if err := q.Offset(offset).Limit(limit).Order("id ASC").Find(&list).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("list roles: %w", err)
	}
	return list, total, nil
}

func (d *RoleDAO) FindByID(ctx context.Context, id int64) (*model.SysRole, error) {
	var r model.SysRole
	if err := d.DB.WithContext(ctx).First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find role id=%d: %w", id, err)
	}
	return &r, nil
}

func (d *RoleDAO) FindByName(ctx context.Context, name string) (*model.SysRole, error) {
	var r model.SysRole
	if err := d.DB.WithContext(ctx).Where("name = ?", name).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find role name=%s: %w", name, err)
	}
	return &r, nil
}

func (d *RoleDAO) Create(ctx context.Context, r *model.SysRole) error {
	ctx, span := d.tracer().Start(ctx, "RoleDAO.Create")
	defer span.End()
	if err := d.DB.WithContext(ctx).Create(r).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

func (d *RoleDAO) Update(ctx context.Context, r *model.SysRole) error {
	ctx, span := d.tracer().Start(ctx, "RoleDAO.Update")
	defer span.End()
	if err := d.DB.WithContext(ctx).Model(&model.SysRole{}).Where("id = ?", r.ID).Updates(map[string]interface{}{
		"name":             r.Name,
		"status":           r.Status,
		"is_filter_scopes": r.IsFilterScopes,
		"remark":           r.Remark,
	}).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("update role id=%d: %w", r.ID, err)
	}
	return nil
}

// Delete 连带清理角色的菜单与数据范围绑定，调用方负责包事务
func (d *RoleDAO) Delete(ctx context.Context, id int64) error {
	ctx, span := d.tracer().Start(ctx, "RoleDAO.Delete")
	defer span.End()
	db := d.DB.WithContext(ctx)
	if err := db.Where("role_id = ?", id).Delete(&model.SysRoleMenu{}).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("delete role menus id=%d: %w", id, err)
	}
	if err := db.Where("role_id = ?", id).Delete(&model.SysRoleDataScope{}).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("delete role scopes id=%d: %w", id, err)
	}
	if err := db.Delete(&model.SysRole{}, id).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("delete role id=%d: %w", id, err)
	}
	return nil
}

// MenuIDs 角色绑定的菜单 id
func (d *RoleDAO) MenuIDs(ctx context.Context, roleID int64) ([]int64, error) {
	var ids []int64
	if err := d.DB.WithContext(ctx).Model(&model.SysRoleMenu{}).
		Where("role_id = ?", roleID).Pluck("menu_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("role menu ids id=%d: %w", roleID, err)
	}
	return ids, nil
}

// ReplaceMenus 全量替换角色菜单绑定
func (d *RoleDAO) ReplaceMenus(ctx context.Context, roleID int64, menuIDs []int64) error {
	ctx, span := d.tracer().Start(ctx, "RoleDAO.ReplaceMenus")
	defer span.End()
	db := d.DB.WithContext(ctx)
	if err := db.Where("role_id = ?", roleID).Delete(&model.SysRoleMenu{}).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("clear role menus id=%d: %w", roleID, err)
	}
	if len(menuIDs) == 0 {
		return nil
	}
	rows := make([]model.SysRoleMenu, 0, len(menuIDs))
	for _, mid := range menuIDs {
		rows = append(rows, model.SysRoleMenu{RoleID: roleID, MenuID: mid})
	}
	if err := db.Create(&rows).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("bind role menus id=%d: %w", roleID, err)
	}
	return nil
}

// ScopeIDs 角色绑定的数据范围 id
func (d *RoleDAO) ScopeIDs(ctx context.Context, roleID int64) ([]int64, error) {
	var ids []int64
	if err := d.DB.WithContext(ctx).Model(&model.SysRoleDataScope{}).
		Where("role_id = ?", roleID).Pluck("data_scope_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("role scope ids id=%d: %w", roleID, err)
	}
	return ids, nil
}

// ReplaceScopes 全量替换角色数据范围绑定
func (d *RoleDAO) ReplaceScopes(ctx context.Context, roleID int64, scopeIDs []int64) error {
	ctx, span := d.tracer().Start(ctx, "RoleDAO.ReplaceScopes")
	defer span.End()
	db := d.DB.WithContext(ctx)
	if err := db.Where("role_id = ?", roleID).Delete(&model.SysRoleDataScope{}).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("clear role scopes id=%d: %w", roleID, err)
	}
	if len(scopeIDs) == 0 {
		return nil
	}
	rows := make([]model.SysRoleDataScope, 0, len(scopeIDs))
	for _, sid := range scopeIDs {
		rows = append(rows, model.SysRoleDataScope{RoleID: roleID, DataScopeID: sid})
	}
	if err := db.Create(&rows).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("bind role scopes id=%d: %w", roleID, err)
	}
	return nil
}

// UserIDs 绑定了该角色的用户 id（权限缓存失效用）
func (d *RoleDAO) UserIDs(ctx context.Context, roleID int64) ([]int64, error) {
	var ids []int64
	if err := d.DB.WithContext(ctx).Model(&model.SysUserRole{}).
		Where("role_id = ?", roleID).Pluck("user_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("role user ids id=%d: %w", roleID, err)
	}
	return ids, nil
}
