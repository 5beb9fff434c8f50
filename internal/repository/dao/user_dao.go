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

type UserDAO struct{ DB *gorm.DB }

func NewUserDAO(db *gorm.DB) *UserDAO { return &UserDAO{DB: db} }

func (d *UserDAO) WithTx(tx *gorm.DB) *UserDAO {
	if tx == nil {
		return d
	}
	return &UserDAO{DB: tx}
}

func (d *UserDAO) tracer() trace.Tracer { return otel.Tracer("dao.user") }

func (d *UserDAO) FindByUsername(ctx context.Context, username string) (*model.SysUser, error) {
	ctx, span := d.tracer().Start(ctx, "UserDAO.FindByUsername")
	defer span.End()
	var u model.SysUser
	if err := d.DB.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &u, nil
}

func (d *UserDAO) FindByEmail(ctx context.Context, email string) (*model.SysUser, error) {
	ctx, span := d.tracer().Start(ctx, "UserDAO.FindByEmail")
	defer span.End()
	var u model.SysUser
	if err := d.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &u, nil
}

func (d *UserDAO) FindByID(ctx context.Context, id int64) (*model.SysUser, error) {
	var u model.SysUser
	if err := d.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user id=%d: %w", id, err)
	}
	return &u, nil
}

func (d *UserDAO) Create(ctx context.Context, u *model.SysUser) error {
	ctx, span := d.tracer().Start(ctx, "UserDAO.Create")
	defer span.End()
	if err := d.DB.WithContext(ctx).Create(u).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (d *UserDAO) Update(ctx context.Context, u *model.SysUser) error {
	ctx, span := d.tracer().Start(ctx, "UserDAO.Update")
	defer span.End()
	if err := d.DB.WithContext(ctx).Model(&model.SysUser{}).Where("id = ?", u.ID).Updates(map[string]interface{}{
		"nickname":       u.Nickname,
		"email":          u.Email,
		"phone":          u.Phone,
		"avatar":         u.Avatar,
		"status":         u.Status,
		"is_staff":       u.IsStaff,
		"is_multi_login": u.IsMultiLogin,
		"dept_id":        u.DeptID,
	}).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("update user id=%d: %w", u.ID, err)
	}
	return nil
}

func (d *UserDAO) Delete(ctx context.Context, id int64) error {
	ctx, span := d.tracer().Start(ctx, "UserDAO.Delete")
	defer span.End()
	db := d.DB.WithContext(ctx)
	if err := db.Where("user_id = ?", id).Delete(&model.SysUserRole{}).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("delete user roles id=%d: %w", id, err)
	}
	if err := db.Delete(&model.SysUser{}, id).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("delete user id=%d: %w", id, err)
	}
	return nil
}

// UpdatePassword 存储已哈希的口令与新盐
func (d *UserDAO) UpdatePassword(ctx context.Context, id int64, hashed string, salt []byte) error {
	return d.DB.WithContext(ctx).Model(&model.SysUser{}).Where("id = ?", id).Updates(map[string]interface{}{
		"password": hashed,
		"salt":     salt,
	}).Error
}

func (d *UserDAO) UpdateStatus(ctx context.Context, id int64, status int) error {
	return d.DB.WithContext(ctx).Model(&model.SysUser{}).Where("id = ?", id).Update("status", status).Error
}

func (d *UserDAO) UpdateSuperuser(ctx context.Context, id int64, super bool) error {
	return d.DB.WithContext(ctx).Model(&model.SysUser{}).Where("id = ?", id).Update("is_superuser", super).Error
}

func (d *UserDAO) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	return d.DB.WithContext(ctx).Model(&model.SysUser{}).Where("id = ?", id).Update("last_login_time", at).Error
}

// List 用户分页，username 模糊，dept 过滤含其下级由调用方展开 deptIDs；
// scopes 追加行级数据权限条件
func (d *UserDAO) List(ctx context.Context, username string, deptIDs []int64, status *int8, offset, limit int, scopes ...func(*gorm.DB) *gorm.DB) ([]model.SysUser, int64, error) {
	ctx, span := d.tracer().Start(ctx, "UserDAO.List")
	defer span.End()
	q := d.DB.WithContext(ctx).Model(&model.SysUser{}).Scopes(scopes...)
	if username != "" {
		q = q.Where("username ILIKE ?", "%"+username+"%")
	}
	if len(deptIDs) > 0 {
		q = q.Where("dept_id IN ?", deptIDs)
	}
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	if limit <= 0 {
		limit = 500
	}
	var list []model.SysUser
	if err := q.Offset(offset).Limit(limit).Order("join_time DESC").Find(&list).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return list, total, nil
}

// RoleIDs 用户绑定的角色 id
func (d *UserDAO) RoleIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	if err := d.DB.WithContext(ctx).Model(&model.SysUserRole{}).
		Where("user_id = ?", userID).Pluck("role_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("user role ids id=%d: %w", userID, err)
	}
	return ids, nil
}

// ReplaceRoles 全量替换用户角色绑定
func (d *UserDAO) ReplaceRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	ctx, span := d.tracer().Start(ctx, "UserDAO.ReplaceRoles")
	defer span.End()
	db := d.DB.WithContext(ctx)
	if err := db.Where("user_id = ?", userID).Delete(&model.SysUserRole{}).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("clear user roles id=%d: %w", userID, err)
	}
	if len(roleIDs) == 0 {
		return nil
	}
	rows := make([]model.SysUserRole, 0, len(roleIDs))
	for _, rid := range roleIDs {
		rows = append(rows, model.SysUserRole{UserID: userID, RoleID: rid})
	}
	if err := db.Create(&rows).Error; err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("bind user roles id=%d: %w", userID, err)
	}
	return nil
}
