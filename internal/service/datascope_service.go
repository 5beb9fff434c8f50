package service

import (
	"context"
	"fmt"
	"strings"

	"go-sysadmin/internal/domain/model"
	"go-sysadmin/internal/repository/dao"

	"gorm.io/gorm"
)

// filterableColumns 数据规则允许作用的模型与列白名单。
// 规则行的 model/column 来自管理端输入，必须收口，否则等于任意 SQL 注入点。
var filterableColumns = map[string]map[string]struct{}{
	"sys_dept": {
		"id": {}, "name": {}, "leader": {}, "status": {}, "parent_id": {},
	},
	"sys_user": {
		"id": {}, "username": {}, "nickname": {}, "status": {}, "dept_id": {},
	},
}

// RuleCondition 一条规则编译出的 SQL 片段
type RuleCondition struct {
	Query string
	Arg   interface{}
	Or    bool
}

// CompileRule 规则 -> 参数化条件。in/not_in 的 value 逗号拆分。
func CompileRule(r model.SysDataRule) (*RuleCondition, error) {
	cols, ok := filterableColumns[r.Model]
	if !ok {
		return nil, fmt.Errorf("data rule %q: model %q not filterable", r.Name, r.Model)
	}
	if _, ok := cols[r.Column]; !ok {
		return nil, fmt.Errorf("data rule %q: column %q not allowed for %q", r.Name, r.Column, r.Model)
	}
	var op string
	var arg interface{} = r.Value
	switch r.Expression {
	case model.RuleExprEq:
		op = "="
	case model.RuleExprNe:
		op = "<>"
	case model.RuleExprGt:
		op = ">"
	case model.RuleExprGe:
		op = ">="
	case model.RuleExprLt:
		op = "<"
	case model.RuleExprLe:
		op = "<="
	case model.RuleExprIn, model.RuleExprNotIn:
		parts := strings.Split(r.Value, ",")
		vals := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				vals = append(vals, p)
			}
		}
		if len(vals) == 0 {
			return nil, fmt.Errorf("data rule %q: empty in-list", r.Name)
		}
		kw := "IN"
		if r.Expression == model.RuleExprNotIn {
			kw = "NOT IN"
		}
		return &RuleCondition{
			Query: fmt.Sprintf("%s %s ?", r.Column, kw),
			Arg:   vals,
			Or:    r.Operator == model.RuleOperatorOr,
		}, nil
	default:
		return nil, fmt.Errorf("data rule %q: unknown expression %d", r.Name, r.Expression)
	}
	return &RuleCondition{
		Query: fmt.Sprintf("%s %s ?", r.Column, op),
		Arg:   arg,
		Or:    r.Operator == model.RuleOperatorOr,
	}, nil
}

// CompileRules 逐条编译，非法规则跳过并收集错误
func CompileRules(rules []model.SysDataRule, targetModel string) ([]RuleCondition, []error) {
	var conds []RuleCondition
	var errs []error
	for _, r := range rules {
		if r.Model != targetModel {
			continue
		}
		c, err := CompileRule(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		conds = append(conds, *c)
	}
	return conds, errs
}

// ApplyConditions 把条件挂到 gorm 查询上。
// 条件间按各自 operator 组合：AND 用 Where，OR 用 Or。
func ApplyConditions(db *gorm.DB, conds []RuleCondition) *gorm.DB {
	for _, c := range conds {
		if c.Or {
			db = db.Or(c.Query, c.Arg)
		} else {
			db = db.Where(c.Query, c.Arg)
		}
	}
	return db
}

// DataScopeService 行级数据权限：把用户角色关联的启用数据范围
// 编译成 gorm 过滤条件。
type DataScopeService struct {
	Users  *dao.UserDAO
	Roles  *dao.RoleDAO
	Scopes *dao.DataScopeDAO
}

func NewDataScopeService(u *dao.UserDAO, r *dao.RoleDAO, s *dao.DataScopeDAO) *DataScopeService {
	return &DataScopeService{Users: u, Roles: r, Scopes: s}
}

// FilterFor 返回应用到目标模型查询上的 scope。
// 超级管理员、或任一角色关闭了 is_filter_scopes 时不过滤。
func (s *DataScopeService) FilterFor(ctx context.Context, user *model.SysUser, targetModel string) (func(*gorm.DB) *gorm.DB, error) {
	identity := func(db *gorm.DB) *gorm.DB { return db }
	if user == nil || user.IsSuperuser {
		return identity, nil
	}
	roleIDs, err := s.Users.RoleIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(roleIDs) == 0 {
		return identity, nil
	}
	for _, rid := range roleIDs {
		role, err := s.Roles.FindByID(ctx, rid)
		if err != nil {
			return nil, err
		}
		if role != nil && role.Status == 1 && !role.IsFilterScopes {
			return identity, nil
		}
	}
	rules, err := s.Scopes.RulesForRoles(ctx, roleIDs)
	if err != nil {
		return nil, err
	}
	conds, errs := CompileRules(rules, targetModel)
	if len(errs) > 0 {
		// 非法规则跳过不致命，返回首个错误供上层记日志
		err = errs[0]
	}
	if len(conds) == 0 {
		return identity, err
	}
	return func(db *gorm.DB) *gorm.DB { return ApplyConditions(db, conds) }, err
}
