package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"go-sysadmin/internal/domain/model"
	"go-sysadmin/internal/pkg/cache"
	"go-sysadmin/internal/repository/dao"
)

var ErrMenuHasChildren = errors.New("menu has children")

// MenuService 菜单树与侧边栏。key:
// menu:tree          -> 全量菜单树（title 为空时）
// menu:sidebar:<uid> -> 用户侧边栏
type MenuService struct {
	DAO   *dao.MenuDAO
	Users *dao.UserDAO
	Cache cache.Cache
	Perms *PermissionService
}

func NewMenuService(d *dao.MenuDAO, u *dao.UserDAO, c cache.Cache, perms *PermissionService) *MenuService {
	if c == nil {
		c = cache.NewSimpleAdapter(cache.New(120 * time.Second))
	}
	return &MenuService{DAO: d, Users: u, Cache: c, Perms: perms}
}

// Tree 管理端菜单树；有过滤条件时返回扁平列表
func (s *MenuService) Tree(ctx context.Context, title string, status *int8) (interface{}, error) {
	if title == "" && status == nil {
		if v, _ := s.Cache.Get(ctx, "menu:tree"); v != "" {
			if tree := dao.DecodeCachedTree(v); tree != nil {
				return tree, nil
			}
		}
	}
	menus, err := s.DAO.List(ctx, title, status)
	if err != nil {
		return nil, err
	}
	if title != "" || status != nil {
		return menus, nil
	}
	tree := dao.BuildMenuTree(menus)
	if b, err := json.Marshal(tree); err == nil {
		_ = s.Cache.SetEX(ctx, "menu:tree", string(b), cache.JitterTTL(120*time.Second))
	}
	return tree, nil
}

// Sidebar 用户可见菜单树：超级管理员全量，其余按角色；按钮类型不出现在侧边栏
func (s *MenuService) Sidebar(ctx context.Context, user *model.SysUser) (interface{}, error) {
	key := "menu:sidebar:" + strconv.FormatInt(user.ID, 10)
	if v, _ := s.Cache.Get(ctx, key); v != "" {
		if tree := dao.DecodeCachedTree(v); tree != nil {
			return tree, nil
		}
	}
	var menus []model.SysMenu
	var err error
	if user.IsSuperuser {
		menus, err = s.DAO.List(ctx, "", nil)
	} else {
		var roleIDs []int64
		roleIDs, err = s.Users.RoleIDs(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		menus, err = s.DAO.FindByRoleIDs(ctx, roleIDs)
	}
	if err != nil {
		return nil, err
	}
	visible := menus[:0]
	for _, m := range menus {
		if m.Type == model.MenuTypeButton || m.Status != 1 {
			continue
		}
		visible = append(visible, m)
	}
	tree := dao.BuildMenuTree(visible)
	if b, err := json.Marshal(tree); err == nil {
		_ = s.Cache.SetEX(ctx, key, string(b), cache.JitterTTL(120*time.Second))
	}
	return tree, nil
}

type MenuParams struct {
	Title     string
	Name      string
	ParentID  *int64
	Path      *string
	Sort      int
	Icon      *string
	Type      int
	Component *string
	Perms     *string
	Status    int
	Display   int
	Cache     int
	Link      *string
	Remark    *string
}

func (s *MenuService) Add(ctx context.Context, p MenuParams) (*model.SysMenu, error) {
	if p.Type < model.MenuTypeDirectory || p.Type > model.MenuTypeLink {
		return nil, errors.New("invalid menu type")
	}
	if p.Type == model.MenuTypeButton && (p.Perms == nil || *p.Perms == "") {
		return nil, errors.New("button menu requires perms code")
	}
	if p.ParentID != nil {
		parent, err := s.DAO.FindByID(ctx, *p.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrNotFound
		}
		if parent.Type == model.MenuTypeButton {
			return nil, errors.New("button menu cannot have children")
		}
	}
	m := &model.SysMenu{
		Title: p.Title, Name: p.Name, ParentID: p.ParentID, Path: p.Path,
		Sort: p.Sort, Icon: p.Icon, Type: p.Type, Component: p.Component,
		Perms: p.Perms, Status: p.Status, Display: p.Display, Cache: p.Cache,
		Link: p.Link, Remark: p.Remark,
	}
	if err := s.DAO.Create(ctx, m); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return m, nil
}

func (s *MenuService) Edit(ctx context.Context, id int64, p MenuParams) error {
	cur, err := s.DAO.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return ErrNotFound
	}
	if p.ParentID != nil && *p.ParentID == id {
		return errors.New("menu cannot be its own parent")
	}
	cur.Title = p.Title
	cur.Name = p.Name
	cur.ParentID = p.ParentID
	cur.Path = p.Path
	cur.Sort = p.Sort
	cur.Icon = p.Icon
	cur.Type = p.Type
	cur.Component = p.Component
	cur.Perms = p.Perms
	cur.Status = p.Status
	cur.Display = p.Display
	cur.Cache = p.Cache
	cur.Link = p.Link
	cur.Remark = p.Remark
	if err := s.DAO.Update(ctx, cur); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *MenuService) Delete(ctx context.Context, id int64) error {
	if n, err := s.DAO.CountChildren(ctx, id); err != nil {
		return err
	} else if n > 0 {
		return ErrMenuHasChildren
	}
	if err := s.DAO.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// 菜单变化影响全部侧边栏与权限码缓存；sidebar key 逐用户，
// 这里只清树缓存，sidebar 靠短 TTL 过期
func (s *MenuService) invalidate(ctx context.Context) {
	_ = s.Cache.Del(ctx, "menu:tree")
}
