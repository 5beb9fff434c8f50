package service

import (
	"context"
	"errors"
	"time"

	"go-sysadmin/internal/domain/model"
	"go-sysadmin/internal/repository/dao"
	"go-sysadmin/pkg/crypto"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already taken")
)

type UserService struct {
	DAO   *dao.UserDAO
	Depts *dao.DeptDAO
	Roles *dao.RoleDAO
	Perms *PermissionService
}

func NewUserService(d *dao.UserDAO, depts *dao.DeptDAO, roles *dao.RoleDAO, perms *PermissionService) *UserService {
	return &UserService{DAO: d, Depts: depts, Roles: roles, Perms: perms}
}

type UserView struct {
	model.SysUser
	RoleIDs []int64 `json:"role_ids"`
}

func (s *UserService) Get(ctx context.Context, id int64) (*UserView, error) {
	u, err := s.DAO.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	roleIDs, err := s.DAO.RoleIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return &UserView{SysUser: *u, RoleIDs: roleIDs}, nil
}

// List deptID 不为 nil 时连同下级部门一起过滤；scopes 追加行级数据权限
func (s *UserService) List(ctx context.Context, username string, deptID *int64, status *int8, page, pageSize int, scopes ...func(*gorm.DB) *gorm.DB) ([]model.SysUser, int64, error) {
	var deptIDs []int64
	if deptID != nil {
		ids, err := s.Depts.DescendantIDs(ctx, *deptID)
		if err != nil {
			return nil, 0, err
		}
		deptIDs = ids
	}
	offset, limit := pageWindow(page, pageSize)
	return s.DAO.List(ctx, username, deptIDs, status, offset, limit, scopes...)
}

type AddUserParams struct {
	Username string
	Nickname string
	Password string
	Email    *string
	Phone    *string
	DeptID   *int64
	RoleIDs  []int64
	IsStaff  bool
}

func (s *UserService) Add(ctx context.Context, p AddUserParams) (*model.SysUser, error) {
	if exist, err := s.DAO.FindByUsername(ctx, p.Username); err != nil {
		return nil, err
	} else if exist != nil {
		return nil, ErrUsernameTaken
	}
	if p.Email != nil && *p.Email != "" {
		if exist, err := s.DAO.FindByEmail(ctx, *p.Email); err != nil {
			return nil, err
		} else if exist != nil {
			return nil, ErrEmailTaken
		}
	}
	salt := crypto.NewSalt()
	hashed, err := crypto.HashPassword(p.Password, salt)
	if err != nil {
		return nil, err
	}
	u := &model.SysUser{
		UUID:     uuid.NewString(),
		Username: p.Username,
		Nickname: p.Nickname,
		Password: &hashed,
		Salt:     salt,
		Email:    p.Email,
		Phone:    p.Phone,
		Status:   1,
		IsStaff:  p.IsStaff,
		JoinTime: time.Now(),
		DeptID:   p.DeptID,
	}
	if err := s.DAO.Create(ctx, u); err != nil {
		return nil, err
	}
	if len(p.RoleIDs) > 0 {
		if err := s.DAO.ReplaceRoles(ctx, u.ID, p.RoleIDs); err != nil {
			return nil, err
		}
	}
	return u, nil
}

type EditUserParams struct {
	Nickname     string
	Email        *string
	Phone        *string
	Avatar       *string
	Status       int
	IsStaff      bool
	IsMultiLogin bool
	DeptID       *int64
	RoleIDs      []int64 // nil 表示不改
}

func (s *UserService) Edit(ctx context.Context, id int64, p EditUserParams) error {
	cur, err := s.DAO.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return ErrNotFound
	}
	if p.Email != nil && *p.Email != "" && (cur.Email == nil || *cur.Email != *p.Email) {
		if exist, err := s.DAO.FindByEmail(ctx, *p.Email); err != nil {
			return err
		} else if exist != nil && exist.ID != id {
			return ErrEmailTaken
		}
	}
	cur.Nickname = p.Nickname
	cur.Email = p.Email
	cur.Phone = p.Phone
	cur.Avatar = p.Avatar
	cur.Status = p.Status
	cur.IsStaff = p.IsStaff
	cur.IsMultiLogin = p.IsMultiLogin
	cur.DeptID = p.DeptID
	if err := s.DAO.Update(ctx, cur); err != nil {
		return err
	}
	if p.RoleIDs != nil {
		if err := s.DAO.ReplaceRoles(ctx, id, p.RoleIDs); err != nil {
			return err
		}
		s.Perms.Invalidate(ctx, id)
	}
	return nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	cur, err := s.DAO.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return ErrNotFound
	}
	if cur.IsSuperuser {
		return errors.New("superuser cannot be deleted")
	}
	if err := s.DAO.Delete(ctx, id); err != nil {
		return err
	}
	s.Perms.Invalidate(ctx, id)
	return nil
}

// ResetPassword 换盐重哈希
func (s *UserService) ResetPassword(ctx context.Context, id int64, newPassword string) error {
	cur, err := s.DAO.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return ErrNotFound
	}
	salt := crypto.NewSalt()
	hashed, err := crypto.HashPassword(newPassword, salt)
	if err != nil {
		return err
	}
	return s.DAO.UpdatePassword(ctx, id, hashed, salt)
}

// ChangePassword 本人修改，需验证旧口令
func (s *UserService) ChangePassword(ctx context.Context, id int64, oldPassword, newPassword string) error {
	cur, err := s.DAO.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return ErrNotFound
	}
	if cur.Password == nil || !crypto.VerifyPassword(oldPassword, cur.Salt, *cur.Password) {
		return ErrInvalidCredentials
	}
	salt := crypto.NewSalt()
	hashed, err := crypto.HashPassword(newPassword, salt)
	if err != nil {
		return err
	}
	return s.DAO.UpdatePassword(ctx, id, hashed, salt)
}

func (s *UserService) SetStatus(ctx context.Context, id int64, status int) error {
	return s.DAO.UpdateStatus(ctx, id, status)
}

func pageWindow(page, pageSize int) (offset, limit int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 500 {
		pageSize = 20
	}
	return (page - 1) * pageSize, pageSize
}
