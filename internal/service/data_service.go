package service

import (
	"context"
	"errors"

	"go-sysadmin/internal/domain/model"
	"go-sysadmin/internal/repository/dao"
)

// DataScopeAdminService 数据范围策略管理
type DataScopeAdminService struct {
	Scopes *dao.DataScopeDAO
	Rules  *dao.DataRuleDAO
}

func NewDataScopeAdminService(s *dao.DataScopeDAO, r *dao.DataRuleDAO) *DataScopeAdminService {
	return &DataScopeAdminService{Scopes: s, Rules: r}
}

func (s *DataScopeAdminService) List(ctx context.Context, name string, status *int8, page, pageSize int) ([]model.SysDataScope, int64, error) {
	offset, limit := pageWindow(page, pageSize)
	return s.Scopes.List(ctx, name, status, offset, limit)
}

type DataScopeView struct {
	model.SysDataScope
	Rules []model.SysDataRule `json:"rules"`
}

func (s *DataScopeAdminService) Get(ctx context.Context, id int64) (*DataScopeView, error) {
	sc, err := s.Scopes.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sc == nil {
		return nil, ErrNotFound
	}
	ruleIDs, err := s.Scopes.RuleIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	rules, err := s.Rules.FindByIDs(ctx, ruleIDs)
	if err != nil {
		return nil, err
	}
	return &DataScopeView{SysDataScope: *sc, Rules: rules}, nil
}

func (s *DataScopeAdminService) Add(ctx context.Context, name string, status int) (*model.SysDataScope, error) {
	sc := &model.SysDataScope{Name: name, Status: status}
	if err := s.Scopes.Create(ctx, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s *DataScopeAdminService) Edit(ctx context.Context, id int64, name string, status int) error {
	cur, err := s.Scopes.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return ErrNotFound
	}
	cur.Name = name
	cur.Status = status
	return s.Scopes.Update(ctx, cur)
}

func (s *DataScopeAdminService) Delete(ctx context.Context, id int64) error {
	cur, err := s.Scopes.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return ErrNotFound
	}
	return s.Scopes.Delete(ctx, id)
}

// BindRules 全量替换范围下的规则，引用缺失直接报错。
// 入参去重后再落库，避免重复 id 撞 uk_data_scope_rule 唯一键。
func (s *DataScopeAdminService) BindRules(ctx context.Context, id int64, ruleIDs []int64) error {
	uniq := dedup(ruleIDs)
	rules, err := s.Rules.FindByIDs(ctx, uniq)
	if err != nil {
		return err
	}
	if len(rules) != len(uniq) {
		return errors.New("some rule ids do not exist")
	}
	return s.Scopes.ReplaceRules(ctx, id, uniq)
}

// DataRuleAdminService 数据规则管理
type DataRuleAdminService struct {
	Rules *dao.DataRuleDAO
}

func NewDataRuleAdminService(r *dao.DataRuleDAO) *DataRuleAdminService {
	return &DataRuleAdminService{Rules: r}
}

func (s *DataRuleAdminService) List(ctx context.Context, name string, page, pageSize int) ([]model.SysDataRule, int64, error) {
	offset, limit := pageWindow(page, pageSize)
	return s.Rules.List(ctx, name, offset, limit)
}

func (s *DataRuleAdminService) Get(ctx context.Context, id int64) (*model.SysDataRule, error) {
	r, err := s.Rules.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrNotFound
	}
	return r, nil
}

type DataRuleParams struct {
	Name       string
	Model      string
	Column     string
	Operator   int
	Expression int
	Value      string
}

// 建/改规则时就地编译一次，把坏规则挡在入库前
func (p DataRuleParams) validate() error {
	_, err := CompileRule(model.SysDataRule{
		Name: p.Name, Model: p.Model, Column: p.Column,
		Operator: p.Operator, Expression: p.Expression, Value: p.Value,
	})
	return err
}

func (s *DataRuleAdminService) Add(ctx context.Context, p DataRuleParams) (*model.SysDataRule, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	r := &model.SysDataRule{
		Name: p.Name, Model: p.Model, Column: p.Column,
		Operator: p.Operator, Expression: p.Expression, Value: p.Value,
	}
	if err := s.Rules.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *DataRuleAdminService) Edit(ctx context.Context, id int64, p DataRuleParams) error {
	if err := p.validate(); err != nil {
		return err
	}
	cur, err := s.Rules.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return ErrNotFound
	}
	cur.Name = p.Name
	cur.Model = p.Model
	cur.Column = p.Column
	cur.Operator = p.Operator
	cur.Expression = p.Expression
	cur.Value = p.Value
	return s.Rules.Update(ctx, cur)
}

func (s *DataRuleAdminService) Delete(ctx context.Context, id int64) error {
	cur, err := s.Rules.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if cur == nil {
		return ErrNotFound
	}
	return s.Rules.Delete(ctx, id)
}

// dedup 保序去重，不改写入参切片
func dedup(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
