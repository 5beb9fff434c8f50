package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// 任务队列 broker 取值
const (
	TaskBrokerRedis    = "redis"
	TaskBrokerRabbitMQ = "rabbitmq"
)

type Config struct {
	HTTP struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"http"`
	Postgres struct {
		DSN         string `mapstructure:"dsn"`
		MaxOpen     int    `mapstructure:"max_open"`
		MaxIdle     int    `mapstructure:"max_idle"`
		AutoMigrate bool   `mapstructure:"auto_migrate"`
	} `mapstructure:"postgres"`
	Redis struct {
		Addr           string `mapstructure:"addr"`
		Password       string `mapstructure:"password"`
		DB             int    `mapstructure:"db"`
		JTIPrefix      string `mapstructure:"jti_prefix"`
		DialTimeoutMS  int    `mapstructure:"dial_timeout_ms"`
		ReadTimeoutMS  int    `mapstructure:"read_timeout_ms"`
		WriteTimeoutMS int    `mapstructure:"write_timeout_ms"`
		PingTimeoutMS  int    `mapstructure:"ping_timeout_ms"`
		HeartbeatSec   int    `mapstructure:"heartbeat_sec"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers       []string `mapstructure:"brokers"`
		OperaLogTopic string   `mapstructure:"opera_log_topic"`
		GroupID       string   `mapstructure:"group_id"`
	} `mapstructure:"kafka"`
	Etcd struct {
		Endpoints []string `mapstructure:"endpoints"`
		TTL       int      `mapstructure:"ttl"`
	} `mapstructure:"etcd"`
	JWT struct {
		Secret        string `mapstructure:"secret"`
		ExpireSeconds int    `mapstructure:"expire_seconds"`
		Issuer        string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	AppMeta struct {
		Name    string `mapstructure:"name"`
		Env     string `mapstructure:"env"`
		Version string `mapstructure:"version"`
	} `mapstructure:"app_meta"`
	// Task 后台/周期任务队列配置。
	// broker 二选一：redis(asynq) 或 rabbitmq(amqp)。
	// packages 为注册的任务包列表，worker 启动时按名装载（见 internal/task/tasks）。
	Task struct {
		Broker          string         `mapstructure:"broker"`
		Packages        []string       `mapstructure:"packages"`
		Concurrency     int            `mapstructure:"concurrency"`
		DefaultQueue    string         `mapstructure:"default_queue"`
		Queues          map[string]int `mapstructure:"queues"`
		BeatIntervalSec int            `mapstructure:"beat_interval_sec"`
		RabbitMQ        struct {
			URL      string `mapstructure:"url"`
			Exchange string `mapstructure:"exchange"`
		} `mapstructure:"rabbitmq"`
	} `mapstructure:"task"`
	OTel struct {
		Endpoint     string  `mapstructure:"endpoint"`
		Insecure     bool    `mapstructure:"insecure"`
		SamplerRatio float64 `mapstructure:"sampler_ratio"`
		Enable       bool    `mapstructure:"enable"`
	} `mapstructure:"otel"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	// 默认值
	v.SetDefault("app_meta.name", "go-sysadmin")
	v.SetDefault("app_meta.env", "dev")
	v.SetDefault("app_meta.version", "v1")
	v.SetDefault("kafka.opera_log_topic", "sysadmin_opera_log")
	v.SetDefault("kafka.group_id", "sysadmin-opera-log")
	v.SetDefault("task.broker", TaskBrokerRedis)
	v.SetDefault("task.concurrency", 10)
	v.SetDefault("task.default_queue", "default")
	v.SetDefault("task.beat_interval_sec", 5)
	v.SetDefault("otel.enable", false)
	v.SetDefault("otel.sampler_ratio", 1.0)
	v.SetDefault("otel.insecure", true)
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	// ===== 逻辑校验 =====
	if c.HTTP.Addr == "" {
		return nil, errors.New("http.addr required")
	}
	if c.JWT.Secret == "" || len(c.JWT.Secret) < 16 {
		return nil, fmt.Errorf("jwt.secret too short (>=16)")
	}
	if c.JWT.ExpireSeconds <= 0 {
		return nil, fmt.Errorf("jwt.expire_seconds must >0")
	}
	switch c.Task.Broker {
	case TaskBrokerRedis:
	case TaskBrokerRabbitMQ:
		if c.Task.RabbitMQ.URL == "" {
			return nil, errors.New("task.rabbitmq.url required when task.broker=rabbitmq")
		}
	default:
		return nil, fmt.Errorf("task.broker must be %q or %q", TaskBrokerRedis, TaskBrokerRabbitMQ)
	}
	if c.OTel.Enable {
		if c.OTel.Endpoint == "" {
			return nil, errors.New("otel.endpoint required when otel.enable=true")
		}
		if c.OTel.SamplerRatio < 0 || c.OTel.SamplerRatio > 1 {
			return nil, errors.New("otel.sampler_ratio must be in [0,1]")
		}
	}
	if len(c.Redis.JTIPrefix) == 0 {
		c.Redis.JTIPrefix = "jwt:jti:"
	}
	return &c, nil
}
