package boot

import (
	"fmt"
	"time"

	"go-sysadmin/internal/config"
	"go-sysadmin/internal/database/seed"
	"go-sysadmin/internal/discovery/etcd"
	"go-sysadmin/internal/logging"
	"go-sysadmin/internal/mq/kafka"
	"go-sysadmin/internal/pkg/cache"
	"go-sysadmin/internal/repository/dao"
	redisrepo "go-sysadmin/internal/repository/redis"
	jwtsec "go-sysadmin/internal/security/jwt"
	httpSrv "go-sysadmin/internal/server/http"
	"go-sysadmin/internal/service"
	"go-sysadmin/internal/task"
	"go-sysadmin/internal/task/tasks"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"gorm.io/gorm"
)

// ProvideConfig wraps config.Load for wire with external path param
func ProvideConfig(path string) (*config.Config, error) { return config.Load(path) }

// ProvideLayeredCache 通用 LayeredCache（L1 本地 60s, L2 Redis）
func ProvideLayeredCache(r *redisrepo.Client) cache.Cache {
	l1 := cache.NewSimpleAdapter(cache.New(60 * time.Second))
	l2 := cache.NewRedisAdapter(r)
	return cache.NewLayered(l1, l2)
}

func ProvideSeeder(db *gorm.DB, l *logging.Logger) *seed.Seeder { return seed.New(db, l) }

// ProvideRegistry 按配置装载任务包；API 侧也需要（校验调度定义、RunNow）
func ProvideRegistry(c *config.Config, ll *dao.LoginLogDAO, ol *dao.OperaLogDAO, tr *dao.TaskResultDAO, l *logging.Logger) (*task.Registry, error) {
	names := c.Task.Packages
	if len(names) == 0 {
		names = tasks.PackageNames()
	}
	return tasks.Build(names, tasks.Deps{LoginLogs: ll, OperaLogs: ol, TaskResults: tr, Logger: l})
}

// ProvideBroker broker 二选一：redis(asynq) / rabbitmq(amqp)
func ProvideBroker(c *config.Config, r *redisrepo.Client) (task.Broker, error) {
	switch c.Task.Broker {
	case config.TaskBrokerRabbitMQ:
		exchange := c.Task.RabbitMQ.Exchange
		if exchange == "" {
			exchange = "sysadmin.tasks"
		}
		return task.NewRabbitMQBroker(c.Task.RabbitMQ.URL, exchange)
	case config.TaskBrokerRedis:
		return task.NewAsynqBroker(r.Client), nil
	default:
		return nil, fmt.Errorf("unknown task broker %q", c.Task.Broker)
	}
}

func ProvideOperaLogSender(p *kafka.Producer, l *logging.Logger) *kafka.OperaLogSender {
	s := kafka.NewOperaLogSender(p, l, 0, 2, 0, 0)
	s.Start()
	return s
}

func ProvideAuthService(u *dao.UserDAO, ll *dao.LoginLogDAO, j *jwtsec.Manager, r *redisrepo.Client, c *config.Config, l *logging.Logger) *service.AuthService {
	return service.NewAuthService(u, ll, j, r, c.Redis.JTIPrefix, l)
}

// RouterBundle 路由装配依赖；wire.Struct 一次性填充
type RouterBundle struct {
	Logger   *logging.Logger
	JWT      *jwtsec.Manager
	DB       *gorm.DB
	Redis    *redisrepo.Client
	Producer *kafka.Producer
	OpSender *kafka.OperaLogSender
	Etcd     *etcd.Client
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

func ProvideRouter(c *config.Config, deps RouterBundle) *gin.Engine {
	return httpSrv.NewRouter(httpSrv.RouterDeps{
		Config: c, Logger: deps.Logger, JWT: deps.JWT, DB: deps.DB, Redis: deps.Redis,
		Producer: deps.Producer, OpSender: deps.OpSender, EtcdCli: deps.Etcd,
		Broker: deps.Broker, Users: deps.Users,
		Auth: deps.Auth, UserSvc: deps.UserSvc, Depts: deps.Depts, Menus: deps.Menus,
		Roles: deps.Roles, Perms: deps.Perms, Scopes: deps.Scopes, Rules: deps.Rules,
		DataScope: deps.DataScope, Scheduler: deps.Scheduler, Logs: deps.Logs,
	})
}

var ProviderSet = wire.NewSet(
	ProvideConfig,
	NewLogger,
	NewPostgres,
	NewRedis,
	NewKafkaProducer,
	NewEtcd,
	NewJWTManager,
	ProvideLayeredCache,
	ProvideSeeder,
	ProvideOperaLogSender,
	ProvideRegistry,
	ProvideBroker,
	// DAO
	dao.NewUserDAO,
	dao.NewDeptDAO,
	dao.NewMenuDAO,
	dao.NewRoleDAO,
	dao.NewDataScopeDAO,
	dao.NewDataRuleDAO,
	dao.NewLoginLogDAO,
	dao.NewOperaLogDAO,
	dao.NewTaskSchedulerDAO,
	dao.NewTaskResultDAO,
	// Service
	ProvideAuthService,
	service.NewPermissionService,
	service.NewUserService,
	service.NewDeptService,
	service.NewMenuService,
	service.NewRoleService,
	service.NewDataScopeAdminService,
	service.NewDataRuleAdminService,
	service.NewDataScopeService,
	service.NewSchedulerService,
	service.NewLogService,
	wire.Struct(new(RouterBundle), "*"),
	ProvideRouter,
	ProvideApp,
)
