package seed

import (
	"testing"

	"go-sysadmin/internal/domain/model"
	"go-sysadmin/internal/repository/dao"
	"go-sysadmin/internal/service"
	"go-sysadmin/internal/task"
	"go-sysadmin/internal/task/tasks"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectMenuNames(t *testing.T, fixtures []menuFixture, into map[string]menuFixture) {
	t.Helper()
	for _, m := range fixtures {
		_, dup := into[m.Name]
		require.False(t, dup, "menu name %q duplicated", m.Name)
		into[m.Name] = m
		collectMenuNames(t, m.Children, into)
	}
}

func collectDeptNames(fixtures []deptFixture, into map[string]struct{}) {
	for _, d := range fixtures {
		into[d.Name] = struct{}{}
		collectDeptNames(d.Children, into)
	}
}

func TestMenuFixturesConsistent(t *testing.T) {
	menus := map[string]menuFixture{}
	collectMenuNames(t, menuFixtures, menus)

	for name, m := range menus {
		switch m.Type {
		case model.MenuTypeButton:
			assert.NotEmpty(t, m.Perms, "button %q needs perms", name)
			assert.Empty(t, m.Children, "button %q cannot have children", name)
		case model.MenuTypeMenu:
			assert.NotEmpty(t, m.Component, "menu %q needs component", name)
		case model.MenuTypeLink, model.MenuTypeEmbedded:
			assert.NotEmpty(t, m.Link, "link %q needs link", name)
		}
	}
}

func TestRoleFixturesResolve(t *testing.T) {
	menus := map[string]menuFixture{}
	collectMenuNames(t, menuFixtures, menus)
	scopes := map[string]struct{}{}
	for _, s := range scopeFixtures {
		scopes[s.Name] = struct{}{}
	}
	for _, r := range roleFixtures {
		for _, m := range r.Menus {
			_, ok := menus[m]
			assert.True(t, ok, "role %q references unknown menu %q", r.Name, m)
		}
		for _, s := range r.Scopes {
			_, ok := scopes[s]
			assert.True(t, ok, "role %q references unknown scope %q", r.Name, s)
		}
	}
}

func TestScopeFixturesResolve(t *testing.T) {
	rules := map[string]struct{}{}
	for _, r := range ruleFixtures {
		rules[r.Name] = struct{}{}
	}
	for _, s := range scopeFixtures {
		for _, rn := range s.Rules {
			_, ok := rules[rn]
			assert.True(t, ok, "scope %q references unknown rule %q", s.Name, rn)
		}
	}
}

// 规则固定数据必须通过编译白名单，否则播种即埋下无效规则
func TestRuleFixturesCompile(t *testing.T) {
	for _, r := range ruleFixtures {
		_, err := service.CompileRule(model.SysDataRule{
			Name: r.Name, Model: r.Model, Column: r.Column,
			Operator: r.Operator, Expression: r.Expression, Value: r.Value,
		})
		assert.NoError(t, err, "rule %q", r.Name)
	}
}

func TestUserFixturesResolve(t *testing.T) {
	depts := map[string]struct{}{}
	collectDeptNames(deptFixtures, depts)
	roles := map[string]struct{}{}
	for _, r := range roleFixtures {
		roles[r.Name] = struct{}{}
	}
	seenAdmin := false
	for _, u := range userFixtures {
		if u.Dept != "" {
			_, ok := depts[u.Dept]
			assert.True(t, ok, "user %q references unknown dept %q", u.Username, u.Dept)
		}
		for _, rn := range u.Roles {
			_, ok := roles[rn]
			assert.True(t, ok, "user %q references unknown role %q", u.Username, rn)
		}
		assert.NotEmpty(t, u.Password, "user %q", u.Username)
		if u.Username == "admin" {
			seenAdmin = true
			assert.True(t, u.Superuser)
		}
	}
	// 播种幂等性探针依赖 admin 账号存在
	assert.True(t, seenAdmin)
}

func TestSchedulerFixturesValid(t *testing.T) {
	// 固定调度引用的任务名必须全部由任务包注册
	reg, err := tasks.Build(tasks.PackageNames(), tasks.Deps{
		LoginLogs: dao.NewLoginLogDAO(nil),
		OperaLogs: dao.NewOperaLogDAO(nil),
	})
	require.NoError(t, err)
	registered := map[string]struct{}{}
	for _, n := range reg.Names() {
		registered[n] = struct{}{}
	}

	names := map[string]struct{}{}
	for _, s := range schedulerFixtures {
		_, dup := names[s.Name]
		require.False(t, dup, "scheduler name %q duplicated", s.Name)
		names[s.Name] = struct{}{}

		_, ok := registered[s.Task]
		assert.True(t, ok, "scheduler %q references unregistered task %q", s.Name, s.Task)

		assert.False(t, s.ExpireTime != nil && s.ExpireSeconds != nil,
			"scheduler %q sets both expire_time and expire_seconds", s.Name)

		switch s.Type {
		case model.SchedulerTypeInterval:
			require.NotNil(t, s.IntervalEvery, "scheduler %q", s.Name)
			require.NotNil(t, s.IntervalPeriod, "scheduler %q", s.Name)
			_, err := task.IntervalDuration(*s.IntervalEvery, *s.IntervalPeriod)
			assert.NoError(t, err, "scheduler %q", s.Name)
		case model.SchedulerTypeCrontab:
			_, err := cron.ParseStandard(s.Crontab)
			assert.NoError(t, err, "scheduler %q crontab %q", s.Name, s.Crontab)
		default:
			t.Errorf("scheduler %q: unknown type %d", s.Name, s.Type)
		}
	}
}
