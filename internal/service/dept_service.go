package service

import (
	"context"
	"errors"

	"go-sysadmin/internal/domain/model"
	"go-sysadmin/internal/repository/dao"

	"gorm.io/gorm"
)

var (
	ErrDeptHasChildren = errors.New("dept has children")
	ErrDeptHasUsers    = errors.New("dept has users")
	ErrNotFound        = errors.New("not found")
)

type DeptService struct {
	DAO *dao.DeptDAO
}

func NewDeptService(d *dao.DeptDAO) *DeptService { return &DeptService{DAO: d} }

// DeptNode 树节点
type DeptNode struct {
	model.SysDept
	Children []*DeptNode `json:"children,omitempty"`
}

// Tree 过滤后的部门树。父节点被过滤掉时子节点上浮为根。
// scopes 追加行级数据权限条件。
func (s *DeptService) Tree(ctx context.Context, name, leader, phone string, status *int8, scopes ...func(*gorm.DB) *gorm.DB) ([]*DeptNode, error) {
	list, err := s.DAO.List(ctx, name, leader, phone, status, scopes...)
	if err != nil {
		return nil, err
	}
	return BuildDeptTree(list), nil
}

func BuildDeptTree(list []model.SysDept) []*DeptNode {
	nodes := make(map[int64]*DeptNode, len(list))
	for i := range list {
		nodes[list[i].ID] = &DeptNode{SysDept: list[i]}
	}
	var roots []*DeptNode
	for _, n := range nodes {
		if n.ParentID != nil {
			if parent, ok := nodes[*n.ParentID]; ok {
				parent.Children = append(parent.Children, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	sortDeptNodes(roots)
	for _, n := range nodes {
		sortDeptNodes(n.Children)
	}
	return roots
}

func sortDeptNodes(nodes []*DeptNode) {
	for i := 1; i < len(nodes); i++ {
		for j := i; j > 0; j-- {
			a, b := nodes[j-1], nodes[j]
			if a.Sort > b.Sort || (a.Sort == b.Sort && a.ID > b.ID) {
				nodes[j-1], nodes[j] = b, a
			}
		}
	}
}

func (s *DeptService) Get(ctx context.Context, id int64) (*model.SysDept, error) {
	d, err := s.DAO.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNotFound
	}
	return d, nil
}

type DeptParams struct {
	Name     string
	ParentID *int64
	Sort     int
	Leader   *string
	Phone    *string
	Email    *string
	Status   int
}

func (s *DeptService) Add(ctx context.Context, p DeptParams) (*model.SysDept, error) {
	if p.ParentID != nil {
		parent, err := s.DAO.FindByID(ctx, *p.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrNotFound
		}
	}
	d := &model.SysDept{
		Name: p.Name, ParentID: p.ParentID, Sort: p.Sort,
		Leader: p.Leader, Phone: p.Phone, Email: p.Email, Status: p.Status,
	}
	if err := s.DAO.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DeptService) Edit(ctx context.Context, id int64, p DeptParams) error {
	cur, err := s.DAO.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return ErrNotFound
	}
	if p.ParentID != nil {
		if *p.ParentID == id {
			return errors.New("dept cannot be its own parent")
		}
		// 不允许挂到自己的子树下
		ids, err := s.DAO.DescendantIDs(ctx, id)
		if err != nil {
			return err
		}
		for _, did := range ids {
			if did == *p.ParentID {
				return errors.New("dept cannot move under its descendant")
			}
		}
	}
	cur.Name = p.Name
	cur.ParentID = p.ParentID
	cur.Sort = p.Sort
	cur.Leader = p.Leader
	cur.Phone = p.Phone
	cur.Email = p.Email
	cur.Status = p.Status
	return s.DAO.Update(ctx, cur)
}

// Delete 软删。有有效子部门或在编用户时拒绝。
func (s *DeptService) Delete(ctx context.Context, id int64) error {
	cur, err := s.DAO.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return ErrNotFound
	}
	if n, err := s.DAO.CountChildren(ctx, id); err != nil {
		return err
	} else if n > 0 {
		return ErrDeptHasChildren
	}
	if n, err := s.DAO.CountUsers(ctx, id); err != nil {
		return err
	} else if n > 0 {
		return ErrDeptHasUsers
	}
	return s.DAO.Delete(ctx, id)
}
