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

type DeptDAO struct{ DB *gorm.DB }

func NewDeptDAO(db *gorm.DB) *DeptDAO { return &DeptDAO{DB: db} }

func (d *DeptDAO) WithTx(tx *gorm.DB) *DeptDAO {
	if tx == nil {
		return d
	}
	return &DeptDAO{DB: tx}
}

func (d *DeptDAO) tracer() trace.Tracer { return otel.Tracer("dao.dept") }

// List 部门列表，默认过滤已软删；name/leader/phone 模糊，status 精确；
// scopes 追加行级数据权限条件
func (d *DeptDAO) List(ctx context.Context, name, leader, phone string, status *int8, scopes ...func(*gorm.DB) *gorm.DB) ([]model.SysDept, error) {
	ctx, span := d.tracer().Start(ctx, "DeptDAO.List")
	defer span.End()
	q := d.DB.WithContext(ctx).Model(&model.SysDept{}).Scopes(scopes...).Where("del_flag = ?", false)
	if name != "" {
		q = q.Where("name ILIKE ?", "%"+name+"%")
	}
	if leader != "" {
		q = q.Where("leader ILIKE ?", "%"+leader+"%")
	}
	if phone != "" {
		q = q.Where("phone LIKE ?", phone+"%")
	}
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var list []model.SysDept
	if err := q.Order("sort ASC, id ASC").Find(&list).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list depts: %w", err)
	}
	return list, nil
}

func (d *DeptDAO) FindByID(ctx context.Context, id int64) (*model.SysDept, error) {
	var dept model.SysDept
	if err := d.DB.WithContext(ctx).Where("del_flag = ?", false).First(&dept, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find dept id=%d: %w", id, err)
	}
	return &dept, nil
}

func (d *DeptDAO) Create(ctx context.Context, dept *model.SysDept) error {
	ctx, span := d.tracer().Start(ctx, "DeptDAO.Create")
	defer span.End()
	if err := d.DB.WithContext(ctx).Create(dept).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("create dept: %w", err)
	}
	return nil
}

func (d *DeptDAO) Update(ctx context.Context, dept *model.SysDept) error {
	ctx, span := d.tracer().Start(ctx, "DeptDAO.Update")
	defer span.End()
	if err := d.DB.WithContext(ctx).Model(&model.SysDept{}).Where("id = ?", dept.ID).Updates(map[string]interface{}{
		"name":      dept.Name,
		"sort":      dept.Sort,
		"leader":    dept.Leader,
		"phone":     dept.Phone,
		"email":     dept.Email,
		"status":    dept.Status,
		"parent_id": dept.ParentID,
	}).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("update dept id=%d: %w", dept.ID, err)
	}
	return nil
}

// Delete 软删：置 del_flag，保留行用于审计
func (d *DeptDAO) Delete(ctx context.Context, id int64) error {
	ctx, span := d.tracer().Start(ctx, "DeptDAO.Delete")
	defer span.End()
	if err := d.DB.WithContext(ctx).Model(&model.SysDept{}).Where("id = ?", id).Update("del_flag", true).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("delete dept id=%d: %w", id, err)
	}
	return nil
}

// CountChildren 有效子部门数（删除前校验用）
func (d *DeptDAO) CountChildren(ctx context.Context, id int64) (int64, error) {
	var n int64
	if err := d.DB.WithContext(ctx).Model(&model.SysDept{}).
		Where("parent_id = ? AND del_flag = ?", id, false).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count dept children id=%d: %w", id, err)
	}
	return n, nil
}

// CountUsers 部门下用户数（删除前校验用）
func (d *DeptDAO) CountUsers(ctx context.Context, id int64) (int64, error) {
	var n int64
	if err := d.DB.WithContext(ctx).Model(&model.SysUser{}).Where("dept_id = ?", id).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count dept users id=%d: %w", id, err)
	}
	return n, nil
}

// DescendantIDs 递归收集部门及全部下级 id（数据权限 scope=部门及以下 使用）
func (d *DeptDAO) DescendantIDs(ctx context.Context, rootID int64) ([]int64, error) {
	ctx, span := d.tracer().Start(ctx, "DeptDAO.DescendantIDs")
	defer span.End()
	var all []model.SysDept
	if err := d.DB.WithContext(ctx).Select("id", "parent_id").
		Where("del_flag = ?", false).Find(&all).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("load dept ids: %w", err)
	}
	children := map[int64][]int64{}
	for _, dept := range all {
		if dept.ParentID != nil {
			children[*dept.ParentID] = append(children[*dept.ParentID], dept.ID)
		}
	}
	ids := []int64{rootID}
	for i := 0; i < len(ids); i++ {
		ids = append(ids, children[ids[i]]...)
	}
	return ids, nil
}
