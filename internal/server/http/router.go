package http

import (
	"context"
	"time"

	"go-sysadmin/internal/config"
	"go-sysadmin/internal/discovery/etcd"
	"go-sysadmin/internal/logging"
	"go-sysadmin/internal/mq/kafka"
	"go-sysadmin/internal/repository/dao"
	redisrepo "go-sysadmin/internal/repository/redis"
	"go-sysadmin/internal/security/jwt"
	handlerset "go-sysadmin/internal/server/http/handler"
	adm "go-sysadmin/internal/server/http/handler/admin"
	"go-sysadmin/internal/server/http/middleware"
	obs "go-sysadmin/internal/server/http/middleware/observability"
	sec "go-sysadmin/internal/server/http/middleware/security"
	"go-sysadmin/internal/service"
	"go-sysadmin/internal/task"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// RouterDeps router 装配所需的全部依赖
type RouterDeps struct {
	Config   *config.Config
	Logger   *logging.Logger
	JWT      *jwt.Manager
	DB       *gorm.DB
	Redis    *redisrepo.Client
	Producer *kafka.Producer
	OpSender *kafka.OperaLogSender
	EtcdCli  *etcd.Client
	Broker   task.Broker
	Users    *dao.UserDAO

	Auth      *service.AuthService
	UserSvc   *service.UserService
	Depts     *service.DeptService
	Menus     *service.MenuService
	Roles     *service.RoleService
	Perms     *service.PermissionService
	Scopes    *service.DataScopeAdminService
	Rules     *service.DataRuleAdminService
	DataScope *service.DataScopeService
	Scheduler *service.SchedulerService
	Logs      *service.LogService
}

// NewRouter 仅负责分组与中间件装配，具体业务放在 handler 层
func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ConfigInjector(d.Config), gin.Recovery(), middleware.CORS(),
		obs.TraceMiddleware(), obs.LoggerContextMiddleware(d.Logger),
		middleware.ResponseWrapper(), obs.Metrics())

	// 健康检查
	hc := NewHealthChecker(d.DB, d.Redis, d.Producer, d.EtcdCli, d.Broker)
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, hc.Liveness()) })
	r.GET("/readyz", func(c *gin.Context) {
		if c.Query("refresh") == "1" {
			hc.cacheMu.Lock()
			hc.cacheExpiry = time.Time{}
			hc.cacheMu.Unlock()
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()
		res, code := hc.Readiness(ctx)
		c.JSON(code, res)
	})
	// Prometheus
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	ad := adm.Dependencies{
		Auth: d.Auth, Users: d.UserSvc, Depts: d.Depts, Menus: d.Menus, Roles: d.Roles,
		Perms: d.Perms, Scopes: d.Scopes, Rules: d.Rules, DataScope: d.DataScope,
		Scheduler: d.Scheduler, Logs: d.Logs,
		JWT: d.JWT, Config: d.Config, Cache: d.Menus.Cache, Logger: d.Logger,
	}
	h := handlerset.NewHandlerSet(ad)

	auth := sec.NewAuthMiddleware(d.JWT, d.Users, d.Redis, d.Config.Redis.JTIPrefix, d.Logger)
	authed := auth.Handler()
	oplog := obs.OperaLog(d.OpSender)
	perm := func(codes ...string) gin.HandlerFunc { return sec.RequirePerm(d.Perms, codes...) }

	v1 := r.Group("/api/v1")

	// 公共接口
	v1.POST("/auth/login", oplog, h.Auth.Login)

	// 需认证 + 操作日志
	api := v1.Group("", authed, oplog)
	{
		api.POST("/auth/logout", h.Auth.Logout)
		api.POST("/auth/refresh", h.Auth.Refresh)
		api.GET("/auth/userinfo", h.Auth.UserInfo)
		api.GET("/auth/sidebar", h.Auth.Sidebar)
		api.PUT("/auth/password", h.User.ChangePassword)

		// 查询类仅要求登录；写操作对应种子菜单里的按钮权限码
		dept := api.Group("/sys/depts")
		{
			dept.GET("", h.Dept.Tree)
			dept.GET("/:id", h.Dept.Get)
			dept.POST("", perm("sys:dept:add"), h.Dept.Add)
			dept.PUT("/:id", perm("sys:dept:edit"), h.Dept.Edit)
			dept.DELETE("/:id", perm("sys:dept:del"), h.Dept.Delete)
		}
		user := api.Group("/sys/users")
		{
			user.GET("", h.User.List)
			user.GET("/:id", h.User.Get)
			user.POST("", perm("sys:user:add"), h.User.Add)
			user.PUT("/:id", perm("sys:user:edit"), h.User.Edit)
			user.DELETE("/:id", perm("sys:user:del"), h.User.Delete)
			user.PUT("/:id/status", perm("sys:user:edit"), h.User.SetStatus)
			user.PUT("/:id/password", perm("sys:user:pwd"), h.User.ResetPassword)
		}
		role := api.Group("/sys/roles")
		{
			role.GET("", h.Role.List)
			role.GET("/:id", h.Role.Get)
			role.POST("", perm("sys:role:add"), h.Role.Add)
			role.PUT("/:id", perm("sys:role:edit"), h.Role.Edit)
			role.DELETE("/:id", perm("sys:role:del"), h.Role.Delete)
			role.PUT("/:id/menus", perm("sys:role:menu"), h.Role.BindMenus)
			role.PUT("/:id/scopes", perm("sys:role:scope"), h.Role.BindScopes)
		}
		menu := api.Group("/sys/menus")
		{
			menu.GET("", h.Menu.Tree)
			menu.POST("", perm("sys:menu:add"), h.Menu.Add)
			menu.PUT("/:id", perm("sys:menu:edit"), h.Menu.Edit)
			menu.DELETE("/:id", perm("sys:menu:del"), h.Menu.Delete)
		}
		scope := api.Group("/sys/data-scopes")
		{
			scope.GET("", h.Data.ListScopes)
			scope.GET("/:id", h.Data.GetScope)
			scope.POST("", perm("data:scope:add"), h.Data.AddScope)
			scope.PUT("/:id", perm("data:scope:edit"), h.Data.EditScope)
			scope.DELETE("/:id", perm("data:scope:del"), h.Data.DeleteScope)
			scope.PUT("/:id/rules", perm("data:scope:rule"), h.Data.BindRules)
		}
		rule := api.Group("/sys/data-rules")
		{
			rule.GET("", h.Data.ListRules)
			rule.GET("/:id", h.Data.GetRule)
			rule.POST("", perm("data:rule:add"), h.Data.AddRule)
			rule.PUT("/:id", perm("data:rule:edit"), h.Data.EditRule)
			rule.DELETE("/:id", perm("data:rule:del"), h.Data.DeleteRule)
		}
		sched := api.Group("/task/schedulers")
		{
			sched.GET("", h.Scheduler.List)
			sched.GET("/:id", h.Scheduler.Get)
			sched.POST("", perm("task:scheduler:add"), h.Scheduler.Add)
			sched.PUT("/:id", perm("task:scheduler:edit"), h.Scheduler.Edit)
			sched.DELETE("/:id", perm("task:scheduler:del"), h.Scheduler.Delete)
			sched.PUT("/:id/status", perm("task:scheduler:edit"), h.Scheduler.SetEnabled)
			sched.POST("/:id/run", perm("task:scheduler:run"), h.Scheduler.RunNow)
		}
		result := api.Group("/task/results")
		{
			result.GET("", h.Scheduler.ListResults)
			result.DELETE("", perm("task:result:del"), h.Scheduler.DeleteResults)
		}
		logGrp := api.Group("/log")
		{
			logGrp.GET("/login", h.Log.ListLogin)
			logGrp.DELETE("/login", perm("log:login:del"), h.Log.DeleteLogin)
			logGrp.DELETE("/login/all", perm("log:login:del"), h.Log.ClearLogin)
			logGrp.GET("/opera", h.Log.ListOpera)
			logGrp.DELETE("/opera", perm("log:opera:del"), h.Log.DeleteOpera)
			logGrp.DELETE("/opera/all", perm("log:opera:del"), h.Log.ClearOpera)
		}
	}

	// 统一 404
	r.NoRoute(func(c *gin.Context) {
		c.JSON(200, gin.H{"code": -8, "msg": "不存在", "data": gin.H{}})
	})
	return r
}
