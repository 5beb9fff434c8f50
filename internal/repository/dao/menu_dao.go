package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go-sysadmin/internal/domain/model"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type MenuDAO struct{ DB *gorm.DB }

func NewMenuDAO(db *gorm.DB) *MenuDAO { return &MenuDAO{DB: db} }

func (d *MenuDAO) WithTx(tx *gorm.DB) *MenuDAO {
	if tx == nil {
		return d
	}
	return &MenuDAO{DB: tx}
}

func (d *MenuDAO) tracer() trace.Tracer { return otel.Tracer("dao.menu") }

// List 菜单列表，title 模糊、status 精确，按 sort 升序
func (d *MenuDAO) List(ctx context.Context, title string, status *int8) ([]model.SysMenu, error) {
	ctx, span := d.tracer().Start(ctx, "MenuDAO.List")
	defer span.End()
	q := d.DB.WithContext(ctx).Model(&model.SysMenu{})
	if title != "" {
		q = q.Where("title ILIKE ?", "%"+title+"%")
	}
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var list []model.SysMenu
	if err := q.Order("sort ASC, id ASC").Find(&list).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list menus: %w", err)
	}
	return list, nil
}

func (d *MenuDAO) FindByID(ctx context.Context, id int64) (*model.SysMenu, error) {
	var m model.SysMenu
	if err := d.DB.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find menu id=%d: %w", id, err)
	}
	return &m, nil
}

func (d *MenuDAO) Create(ctx context.Context, m *model.SysMenu) error {
	ctx, span := d.tracer().Start(ctx, "MenuDAO.Create")
	defer span.End()
	if err := d.DB.WithContext(ctx).Create(m).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("create menu: %w", err)
	}
	return nil
}

func (d *MenuDAO) Update(ctx context.Context, m *model.SysMenu) error {
	ctx, span := d.tracer().Start(ctx, "MenuDAO.Update")
	defer span.End()
	if err := d.DB.WithContext(ctx).Model(&model.SysMenu{}).Where("id = ?", m.ID).Updates(m).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("update menu id=%d: %w", m.ID, err)
	}
	return nil
}

func (d *MenuDAO) Delete(ctx context.Context, id int64) error {
	ctx, span := d.tracer().Start(ctx, "MenuDAO.Delete")
	defer span.End()
	if err := d.DB.WithContext(ctx).Delete(&model.SysMenu{}, id).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("delete menu id=%d: %w", id, err)
	}
	return nil
}

func (d *MenuDAO) CountChildren(ctx context.Context, id int64) (int64, error) {
	var n int64
	if err := d.DB.WithContext(ctx).Model(&model.SysMenu{}).Where("parent_id = ?", id).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count menu children id=%d: %w", id, err)
	}
	return n, nil
}

// FindByRoleIDs 聚合角色绑定的菜单（去重），按钮也包含在内供鉴权使用
func (d *MenuDAO) FindByRoleIDs(ctx context.Context, roleIDs []int64) ([]model.SysMenu, error) {
	if len(roleIDs) == 0 {
		return []model.SysMenu{}, nil
	}
	ctx, span := d.tracer().Start(ctx, "MenuDAO.FindByRoleIDs")
	defer span.End()
	var list []model.SysMenu
	err := d.DB.WithContext(ctx).
		Distinct("sys_menu.*").
		Joins("JOIN sys_role_menu rm ON rm.menu_id = sys_menu.id").
		Where("rm.role_id IN ?", roleIDs).
		Order("sys_menu.sort ASC, sys_menu.id ASC").
		Find(&list).Error
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("find menus by roles: %w", err)
	}
	return list, nil
}

// BuildMenuTree 列表转树。parent_id 为空或指向不存在节点的作为根。
func BuildMenuTree(list []model.SysMenu) []map[string]interface{} {
	known := make(map[int64]struct{}, len(list))
	for _, m := range list {
		known[m.ID] = struct{}{}
	}
	items := make([]map[string]interface{}, 0, len(list))
	children := map[int64][]map[string]interface{}{}
	var roots []map[string]interface{}
	for _, m := range list {
		item := map[string]interface{}{
			"id": m.ID, "title": m.Title, "name": m.Name, "path": m.Path,
			"type": m.Type, "sort": m.Sort, "icon": m.Icon, "component": m.Component,
			"perms": m.Perms, "status": m.Status, "display": m.Display,
			"cache": m.Cache, "link": m.Link, "remark": m.Remark,
		}
		if m.ParentID != nil {
			item["parent_id"] = *m.ParentID
		}
		items = append(items, item)
		if m.ParentID != nil {
			if _, ok := known[*m.ParentID]; ok {
				children[*m.ParentID] = append(children[*m.ParentID], item)
				continue
			}
		}
		roots = append(roots, item)
	}
	for _, it := range items {
		id := it["id"].(int64)
		if ch, ok := children[id]; ok {
			it["children"] = ch
		}
	}
	return roots
}

// DecodeCachedTree 缓存 JSON 反序列化，损坏返回 nil 让上层回源
func DecodeCachedTree(s string) interface{} {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil
	}
	return v
}
