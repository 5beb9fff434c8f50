package seed

import "go-sysadmin/internal/domain/model"

// 初始化固定数据。关联一律走名字引用，落库时由 seeder 解析成外键，
// 保证同批次内引用必然可解析。

type deptFixture struct {
	Name     string
	Sort     int
	Leader   string
	Phone    string
	Email    string
	Children []deptFixture
}

type menuFixture struct {
	Title     string
	Name      string // 唯一，角色绑定按 Name 引用
	Path      string
	Sort      int
	Icon      string
	Type      int
	Component string
	Perms     string
	Display   int
	Cache     int
	Link      string
	Remark    string
	Children  []menuFixture
}

type ruleFixture struct {
	Name       string
	Model      string
	Column     string
	Operator   int
	Expression int
	Value      string
}

type scopeFixture struct {
	Name  string
	Rules []string // ruleFixture.Name
}

type roleFixture struct {
	Name           string
	Remark         string
	IsFilterScopes bool
	Menus          []string // menuFixture.Name
	Scopes         []string // scopeFixture.Name
}

type userFixture struct {
	Username  string
	Nickname  string
	Password  string // 明文，seeder 写库前加盐哈希
	Email     string
	Superuser bool
	Staff     bool
	Dept      string   // deptFixture.Name
	Roles     []string // roleFixture.Name
}

var deptFixtures = []deptFixture{
	{Name: "总部", Sort: 0, Leader: "admin", Children: []deptFixture{
		{Name: "研发部", Sort: 1, Leader: "li", Phone: "13800000001", Email: "dev@example.com"},
		{Name: "测试", Sort: 2, Leader: "wang", Phone: "13800000002", Email: "qa@example.com"},
	}},
}

var menuFixtures = []menuFixture{
	{Title: "概览", Name: "Dashboard", Path: "/dashboard", Sort: 0, Icon: "ant-design:dashboard-outlined",
		Type: model.MenuTypeMenu, Component: "/dashboard/index", Display: 1, Cache: 1},
	{Title: "系统管理", Name: "System", Path: "/system", Sort: 1, Icon: "eos-icons:admin",
		Type: model.MenuTypeDirectory, Display: 1, Cache: 1, Children: []menuFixture{
			{Title: "部门管理", Name: "SysDept", Path: "/system/dept", Sort: 0, Icon: "mingcute:department-line",
				Type: model.MenuTypeMenu, Component: "/system/dept/index", Display: 1, Cache: 1, Children: []menuFixture{
					{Title: "新增部门", Name: "AddSysDept", Type: model.MenuTypeButton, Perms: "sys:dept:add", Sort: 0},
					{Title: "编辑部门", Name: "EditSysDept", Type: model.MenuTypeButton, Perms: "sys:dept:edit", Sort: 1},
					{Title: "删除部门", Name: "DeleteSysDept", Type: model.MenuTypeButton, Perms: "sys:dept:del", Sort: 2},
				}},
			{Title: "用户管理", Name: "SysUser", Path: "/system/user", Sort: 1, Icon: "ant-design:user-outlined",
				Type: model.MenuTypeMenu, Component: "/system/user/index", Display: 1, Cache: 1, Children: []menuFixture{
					{Title: "新增用户", Name: "AddSysUser", Type: model.MenuTypeButton, Perms: "sys:user:add", Sort: 0},
					{Title: "编辑用户", Name: "EditSysUser", Type: model.MenuTypeButton, Perms: "sys:user:edit", Sort: 1},
					{Title: "删除用户", Name: "DeleteSysUser", Type: model.MenuTypeButton, Perms: "sys:user:del", Sort: 2},
					{Title: "重置密码", Name: "ResetSysUserPassword", Type: model.MenuTypeButton, Perms: "sys:user:pwd", Sort: 3},
				}},
			{Title: "角色管理", Name: "SysRole", Path: "/system/role", Sort: 2, Icon: "carbon:user-role",
				Type: model.MenuTypeMenu, Component: "/system/role/index", Display: 1, Cache: 1, Children: []menuFixture{
					{Title: "新增角色", Name: "AddSysRole", Type: model.MenuTypeButton, Perms: "sys:role:add", Sort: 0},
					{Title: "编辑角色", Name: "EditSysRole", Type: model.MenuTypeButton, Perms: "sys:role:edit", Sort: 1},
					{Title: "删除角色", Name: "DeleteSysRole", Type: model.MenuTypeButton, Perms: "sys:role:del", Sort: 2},
					{Title: "分配菜单", Name: "BindSysRoleMenu", Type: model.MenuTypeButton, Perms: "sys:role:menu", Sort: 3},
					{Title: "分配数据范围", Name: "BindSysRoleScope", Type: model.MenuTypeButton, Perms: "sys:role:scope", Sort: 4},
				}},
			{Title: "菜单管理", Name: "SysMenu", Path: "/system/menu", Sort: 3, Icon: "material-symbols:menu",
				Type: model.MenuTypeMenu, Component: "/system/menu/index", Display: 1, Cache: 1, Children: []menuFixture{
					{Title: "新增菜单", Name: "AddSysMenu", Type: model.MenuTypeButton, Perms: "sys:menu:add", Sort: 0},
					{Title: "编辑菜单", Name: "EditSysMenu", Type: model.MenuTypeButton, Perms: "sys:menu:edit", Sort: 1},
					{Title: "删除菜单", Name: "DeleteSysMenu", Type: model.MenuTypeButton, Perms: "sys:menu:del", Sort: 2},
				}},
			{Title: "数据权限", Name: "SysData", Path: "/system/data", Sort: 4, Icon: "icon-park-outline:permissions",
				Type: model.MenuTypeDirectory, Display: 1, Cache: 1, Children: []menuFixture{
					{Title: "数据范围", Name: "SysDataScope", Path: "/system/data/scope", Sort: 0,
						Type: model.MenuTypeMenu, Component: "/system/data-scope/index", Display: 1, Cache: 1, Children: []menuFixture{
							{Title: "新增数据范围", Name: "AddSysDataScope", Type: model.MenuTypeButton, Perms: "data:scope:add", Sort: 0},
							{Title: "编辑数据范围", Name: "EditSysDataScope", Type: model.MenuTypeButton, Perms: "data:scope:edit", Sort: 1},
							{Title: "删除数据范围", Name: "DeleteSysDataScope", Type: model.MenuTypeButton, Perms: "data:scope:del", Sort: 2},
							{Title: "绑定规则", Name: "BindSysDataScopeRule", Type: model.MenuTypeButton, Perms: "data:scope:rule", Sort: 3},
						}},
					{Title: "数据规则", Name: "SysDataRule", Path: "/system/data/rule", Sort: 1,
						Type: model.MenuTypeMenu, Component: "/system/data-rule/index", Display: 1, Cache: 1, Children: []menuFixture{
							{Title: "新增数据规则", Name: "AddSysDataRule", Type: model.MenuTypeButton, Perms: "data:rule:add", Sort: 0},
							{Title: "编辑数据规则", Name: "EditSysDataRule", Type: model.MenuTypeButton, Perms: "data:rule:edit", Sort: 1},
							{Title: "删除数据规则", Name: "DeleteSysDataRule", Type: model.MenuTypeButton, Perms: "data:rule:del", Sort: 2},
						}},
				}},
		}},
	{Title: "日志", Name: "Log", Path: "/log", Sort: 2, Icon: "carbon:cloud-logging",
		Type: model.MenuTypeDirectory, Display: 1, Cache: 1, Children: []menuFixture{
			{Title: "登录日志", Name: "LoginLog", Path: "/log/login", Sort: 0,
				Type: model.MenuTypeMenu, Component: "/log/login/index", Display: 1, Cache: 1, Children: []menuFixture{
					{Title: "删除登录日志", Name: "DeleteLoginLog", Type: model.MenuTypeButton, Perms: "log:login:del", Sort: 0},
				}},
			{Title: "操作日志", Name: "OperaLog", Path: "/log/opera", Sort: 1,
				Type: model.MenuTypeMenu, Component: "/log/opera/index", Display: 1, Cache: 1, Children: []menuFixture{
					{Title: "删除操作日志", Name: "DeleteOperaLog", Type: model.MenuTypeButton, Perms: "log:opera:del", Sort: 0},
				}},
		}},
	{Title: "任务调度", Name: "Task", Path: "/task", Sort: 3, Icon: "ix:scheduler",
		Type: model.MenuTypeDirectory, Display: 1, Cache: 1, Children: []menuFixture{
			{Title: "调度管理", Name: "TaskScheduler", Path: "/task/scheduler", Sort: 0,
				Type: model.MenuTypeMenu, Component: "/task/scheduler/index", Display: 1, Cache: 1, Children: []menuFixture{
					{Title: "新增调度", Name: "AddTaskScheduler", Type: model.MenuTypeButton, Perms: "task:scheduler:add", Sort: 0},
					{Title: "编辑调度", Name: "EditTaskScheduler", Type: model.MenuTypeButton, Perms: "task:scheduler:edit", Sort: 1},
					{Title: "删除调度", Name: "DeleteTaskScheduler", Type: model.MenuTypeButton, Perms: "task:scheduler:del", Sort: 2},
					{Title: "执行任务", Name: "RunTaskScheduler", Type: model.MenuTypeButton, Perms: "task:scheduler:run", Sort: 3},
				}},
			{Title: "任务结果", Name: "TaskResult", Path: "/task/result", Sort: 1,
				Type: model.MenuTypeMenu, Component: "/task/result/index", Display: 1, Cache: 1, Children: []menuFixture{
					{Title: "删除任务结果", Name: "DeleteTaskResult", Type: model.MenuTypeButton, Perms: "task:result:del", Sort: 0},
				}},
		}},
	{Title: "接口文档", Name: "ApiDoc", Path: "/doc", Sort: 8, Icon: "bx:bxs-book-open",
		Type: model.MenuTypeEmbedded, Link: "http://127.0.0.1:8000/docs", Display: 1, Cache: 0},
	{Title: "项目仓库", Name: "Repository", Path: "/repo", Sort: 9, Icon: "mdi:git",
		Type: model.MenuTypeLink, Link: "https://github.com/go-sysadmin/go-sysadmin", Display: 1, Cache: 0},
}

var ruleFixtures = []ruleFixture{
	{Name: "部门名称等于测试", Model: "sys_dept", Column: "name",
		Operator: model.RuleOperatorAnd, Expression: model.RuleExprEq, Value: "测试"},
	{Name: "部门 ID 不大于 5", Model: "sys_dept", Column: "id",
		Operator: model.RuleOperatorOr, Expression: model.RuleExprLe, Value: "5"},
	{Name: "用户状态正常", Model: "sys_user", Column: "status",
		Operator: model.RuleOperatorAnd, Expression: model.RuleExprEq, Value: "1"},
}

var scopeFixtures = []scopeFixture{
	{Name: "测试部门数据权限", Rules: []string{"部门名称等于测试"}},
	{Name: "测试部门及以下数据权限", Rules: []string{"部门名称等于测试", "部门 ID 不大于 5"}},
	{Name: "正常用户数据权限", Rules: []string{"用户状态正常"}},
}

var roleFixtures = []roleFixture{
	{Name: "测试", Remark: "测试角色", IsFilterScopes: true,
		Menus: []string{
			"Dashboard",
			"System", "SysDept", "SysUser", "SysRole", "SysMenu",
			"SysData", "SysDataScope", "SysDataRule",
			"Log", "LoginLog", "OperaLog",
		},
		Scopes: []string{"测试部门数据权限"}},
	{Name: "运维", Remark: "任务调度与日志清理", IsFilterScopes: false,
		Menus: []string{
			"Dashboard",
			"Task", "TaskScheduler", "AddTaskScheduler", "EditTaskScheduler",
			"DeleteTaskScheduler", "RunTaskScheduler", "TaskResult", "DeleteTaskResult",
			"Log", "LoginLog", "DeleteLoginLog", "OperaLog", "DeleteOperaLog",
		}},
}

var userFixtures = []userFixture{
	{Username: "admin", Nickname: "超级管理员", Password: "123456", Email: "admin@example.com",
		Superuser: true, Staff: true, Dept: "测试", Roles: []string{"测试"}},
	{Username: "test", Nickname: "测试用户", Password: "123456", Email: "test@example.com",
		Superuser: false, Staff: false, Dept: "测试", Roles: []string{"测试"}},
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func intPtr(v int) *int { return &v }

// schedulerFixtures 默认周期任务，与 task 包注册的任务名对应
var schedulerFixtures = []model.TaskScheduler{
	{
		Name: "测试同步任务", Task: "task_demo",
		Type: model.SchedulerTypeInterval, IntervalEvery: intPtr(30), IntervalPeriod: strPtr(model.PeriodSeconds),
		Enabled: false, Remark: strPtr("演示任务，默认停用"),
	},
	{
		Name: "测试传参任务", Task: "task_demo_params",
		Args: strPtr(`["Hello,"]`), Kwargs: strPtr(`{"world": "world"}`),
		Type: model.SchedulerTypeCrontab, Crontab: "1 * * * *",
		Enabled: false, Remark: strPtr("演示任务，默认停用"),
	},
	{
		Name: "清理操作日志", Task: "delete_db_opera_log",
		Type: model.SchedulerTypeCrontab, Crontab: "0 0 * * 6",
		Enabled: true,
	},
	{
		Name: "清理登录日志", Task: "delete_db_login_log",
		Type: model.SchedulerTypeCrontab, Crontab: "0 0 15 * *",
		Enabled: true,
	},
}
