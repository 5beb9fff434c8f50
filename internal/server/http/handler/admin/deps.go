package admin

import (
	"go-sysadmin/internal/config"
	"go-sysadmin/internal/logging"
	"go-sysadmin/internal/pkg/cache"
	"go-sysadmin/internal/security/jwt"
	"go-sysadmin/internal/service"
)

// Dependencies admin 子包依赖集合
type Dependencies struct {
	Auth      *service.AuthService
	Users     *service.UserService
	Depts     *service.DeptService
	Menus     *service.MenuService
	Roles     *service.RoleService
	Perms     *service.PermissionService
	Scopes    *service.DataScopeAdminService
	Rules     *service.DataRuleAdminService
	DataScope *service.DataScopeService
	Scheduler *service.SchedulerService
	Logs      *service.LogService
	JWT       *jwt.Manager
	Config    *config.Config
	Cache     cache.Cache
	Logger    *logging.Logger
}
