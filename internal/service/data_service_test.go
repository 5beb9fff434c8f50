package service

import (
	"context"
	"testing"

	"go-sysadmin/internal/domain/model"
	"go-sysadmin/internal/repository/dao"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDedup(t *testing.T) {
	assert.Equal(t, []int64{1, 2}, dedup([]int64{1, 1, 2}))
	assert.Equal(t, []int64{3, 1, 2}, dedup([]int64{3, 1, 3, 2, 1}))
	assert.Empty(t, dedup(nil))
}

// 去重不得改写入参：绑定流程后续还会使用原切片长度做存在性校验
func TestDedupKeepsInputIntact(t *testing.T) {
	in := []int64{1, 1, 2}
	out := dedup(in)
	assert.Equal(t, []int64{1, 1, 2}, in)
	assert.Equal(t, []int64{1, 2}, out)

	// 返回的切片与入参不共享底层数组
	out[0] = 99
	assert.Equal(t, int64(1), in[0])
}

// 绑定请求带重复 id 时落库前去重，不得撞 uk_data_scope_rule 唯一键
func TestBindRulesDeduplicates(t *testing.T) {
	db := newTestDB(t, &model.SysDataScope{}, &model.SysDataRule{}, &model.SysDataScopeRule{})
	scopeDAO := dao.NewDataScopeDAO(db)
	ruleDAO := dao.NewDataRuleDAO(db)
	svc := NewDataScopeAdminService(scopeDAO, ruleDAO)
	ctx := context.Background()

	sc, err := svc.Add(ctx, "测试部门数据权限", 1)
	require.NoError(t, err)
	r1 := &model.SysDataRule{Name: "r1", Model: "sys_dept", Column: "name",
		Expression: model.RuleExprEq, Value: "测试"}
	r2 := &model.SysDataRule{Name: "r2", Model: "sys_dept", Column: "id",
		Expression: model.RuleExprLe, Value: "5"}
	require.NoError(t, ruleDAO.Create(ctx, r1))
	require.NoError(t, ruleDAO.Create(ctx, r2))

	require.NoError(t, svc.BindRules(ctx, sc.ID, []int64{r1.ID, r1.ID, r2.ID}))

	ids, err := scopeDAO.RuleIDs(ctx, sc.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{r1.ID, r2.ID}, ids)

	// 引用缺失仍要报错
	assert.ErrorContains(t, svc.BindRules(ctx, sc.ID, []int64{r1.ID, 999}), "do not exist")
}
