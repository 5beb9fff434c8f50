package service

import (
	"testing"

	"go-sysadmin/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileRuleExpressions(t *testing.T) {
	cases := []struct {
		name  string
		expr  int
		value string
		query string
	}{
		{"eq", model.RuleExprEq, "测试", "name = ?"},
		{"ne", model.RuleExprNe, "测试", "name <> ?"},
		{"gt", model.RuleExprGt, "5", "name > ?"},
		{"ge", model.RuleExprGe, "5", "name >= ?"},
		{"lt", model.RuleExprLt, "5", "name < ?"},
		{"le", model.RuleExprLe, "5", "name <= ?"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := CompileRule(model.SysDataRule{
				Name: tc.name, Model: "sys_dept", Column: "name",
				Operator: model.RuleOperatorAnd, Expression: tc.expr, Value: tc.value,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.query, c.Query)
			assert.Equal(t, tc.value, c.Arg)
			assert.False(t, c.Or)
		})
	}
}

func TestCompileRuleInList(t *testing.T) {
	c, err := CompileRule(model.SysDataRule{
		Name: "in", Model: "sys_user", Column: "dept_id",
		Operator: model.RuleOperatorOr, Expression: model.RuleExprIn, Value: "1, 2 ,3,",
	})
	require.NoError(t, err)
	assert.Equal(t, "dept_id IN ?", c.Query)
	assert.Equal(t, []string{"1", "2", "3"}, c.Arg)
	assert.True(t, c.Or)

	c, err = CompileRule(model.SysDataRule{
		Name: "not_in", Model: "sys_user", Column: "dept_id",
		Operator: model.RuleOperatorAnd, Expression: model.RuleExprNotIn, Value: "4",
	})
	require.NoError(t, err)
	assert.Equal(t, "dept_id NOT IN ?", c.Query)

	_, err = CompileRule(model.SysDataRule{
		Name: "empty", Model: "sys_user", Column: "dept_id",
		Expression: model.RuleExprIn, Value: " , ,",
	})
	assert.ErrorContains(t, err, "empty in-list")
}

func TestCompileRuleWhitelist(t *testing.T) {
	_, err := CompileRule(model.SysDataRule{
		Name: "bad model", Model: "sys_role", Column: "name",
		Expression: model.RuleExprEq, Value: "x",
	})
	assert.ErrorContains(t, err, "not filterable")

	_, err = CompileRule(model.SysDataRule{
		Name: "bad column", Model: "sys_user", Column: "password",
		Expression: model.RuleExprEq, Value: "x",
	})
	assert.ErrorContains(t, err, "not allowed")

	_, err = CompileRule(model.SysDataRule{
		Name: "bad expr", Model: "sys_user", Column: "id",
		Expression: 99, Value: "x",
	})
	assert.ErrorContains(t, err, "unknown expression")
}

func TestCompileRulesSkipsInvalid(t *testing.T) {
	rules := []model.SysDataRule{
		{Name: "ok", Model: "sys_dept", Column: "name", Expression: model.RuleExprEq, Value: "测试"},
		{Name: "other model", Model: "sys_user", Column: "id", Expression: model.RuleExprEq, Value: "1"},
		{Name: "broken", Model: "sys_dept", Column: "secret", Expression: model.RuleExprEq, Value: "x"},
	}
	conds, errs := CompileRules(rules, "sys_dept")
	require.Len(t, conds, 1)
	assert.Equal(t, "name = ?", conds[0].Query)
	require.Len(t, errs, 1)
	assert.ErrorContains(t, errs[0], "not allowed")
}
