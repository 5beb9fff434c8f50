package service

import (
	"context"
	"errors"

	"go-sysadmin/internal/domain/model"
	"go-sysadmin/internal/repository/dao"
)

var ErrRoleNameTaken = errors.New("role name already taken")

type RoleService struct {
	DAO   *dao.RoleDAO
	Perms *PermissionService
}

func NewRoleService(d *dao.RoleDAO, perms *PermissionService) *RoleService {
	return &RoleService{DAO: d, Perms: perms}
}

func (s *RoleService) List(ctx context.Context, name string, status *int8, page, pageSize int) ([]model.SysRole, int64, error) {
	offset, limit := pageWindow(page, pageSize)
	return s.DAO.List(ctx, name, status, offset, limit)
}

type RoleView struct {
	model.SysRole
	MenuIDs  []int64 `json:"menu_ids"`
	ScopeIDs []int64 `json:"scope_ids"`
}

func (s *RoleService) Get(ctx context.Context, id int64) (*RoleView, error) {
	r, err := s.DAO.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrNotFound
	}
	menuIDs, err := s.DAO.MenuIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	scopeIDs, err := s.DAO.ScopeIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RoleView{SysRole: *r, MenuIDs: menuIDs, ScopeIDs: scopeIDs}, nil
}

type RoleParams struct {
	Name           string
	Status         int
	IsFilterScopes bool
	Remark         *string
}

func (s *RoleService) Add(ctx context.Context, p RoleParams) (*model.SysRole, error) {
	if exist, err := s.DAO.FindByName(ctx, p.Name); err != nil {
		return nil, err
	} else if exist != nil {
		return nil, ErrRoleNameTaken
	}
	r := &model.SysRole{Name: p.Name, Status: p.Status, IsFilterScopes: p.IsFilterScopes, Remark: p.Remark}
	if err := s.DAO.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RoleService) Edit(ctx context.Context, id int64, p RoleParams) error {
	cur, err := s.DAO.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return ErrNotFound
	}
	if exist, err := s.DAO.FindByName(ctx, p.Name); err != nil {
		return err
	} else if exist != nil && exist.ID != id {
		return ErrRoleNameTaken
	}
	cur.Name = p.Name
	cur.Status = p.Status
	cur.IsFilterScopes = p.IsFilterScopes
	cur.Remark = p.Remark
	if err := s.DAO.Update(ctx, cur); err != nil {
		return err
	}
	s.Perms.InvalidateByRole(ctx, id)
	return nil
}

func (s *RoleService) Delete(ctx context.Context, id int64) error {
	cur, err := s.DAO.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return ErrNotFound
	}
	s.Perms.InvalidateByRole(ctx, id)
	return s.DAO.Delete(ctx, id)
}

// BindMenus 全量替换并失效相关用户权限码
func (s *RoleService) BindMenus(ctx context.Context, id int64, menuIDs []int64) error {
	if err := s.DAO.ReplaceMenus(ctx, id, menuIDs); err != nil {
		return err
	}
	s.Perms.InvalidateByRole(ctx, id)
	return nil
}

func (s *RoleService) BindScopes(ctx context.Context, id int64, scopeIDs []int64) error {
	return s.DAO.ReplaceScopes(ctx, id, scopeIDs)
}
