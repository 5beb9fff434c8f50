package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-sysadmin/internal/boot"
	"go-sysadmin/internal/config"
	"go-sysadmin/internal/logging"
	"go-sysadmin/internal/repository/dao"
	"go-sysadmin/internal/task"
	"go-sysadmin/internal/task/tasks"

	"go.uber.org/zap"
)

// worker 进程：消费任务队列 + 内置 beat 调度循环。
// 与 API 进程共享 broker 配置，可多实例部署（beat 需外部保证单活）。
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/config.dev.yaml"
	}
	if _, err := os.Stat(cfgPath); err != nil {
		fallback := "configs/config.example.yaml"
		if _, err2 := os.Stat(fallback); err2 == nil {
			log.Printf("config %s not found, fallback to %s", cfgPath, fallback)
			cfgPath = fallback
		} else {
			log.Fatalf("config file not found: %s", cfgPath)
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	db, err := boot.NewPostgres(cfg)
	if err != nil {
		logger.Logger.Fatal("postgres init failed", zap.Error(err))
	}
	rdb := boot.NewRedis(cfg)

	loginLogs := dao.NewLoginLogDAO(db)
	operaLogs := dao.NewOperaLogDAO(db)
	results := dao.NewTaskResultDAO(db)
	schedulers := dao.NewTaskSchedulerDAO(db)

	names := cfg.Task.Packages
	if len(names) == 0 {
		names = tasks.PackageNames()
	}
	registry, err := tasks.Build(names, tasks.Deps{
		LoginLogs: loginLogs, OperaLogs: operaLogs, TaskResults: results, Logger: logger,
	})
	if err != nil {
		logger.Logger.Fatal("task registry build failed", zap.Error(err))
	}
	logger.Logger.Info("task packages loaded",
		zap.Strings("packages", names), zap.Strings("tasks", registry.Names()))

	runner := task.NewRunner(registry, results, logger)

	var (
		broker task.Broker
		worker task.Worker
	)
	switch cfg.Task.Broker {
	case config.TaskBrokerRabbitMQ:
		exchange := cfg.Task.RabbitMQ.Exchange
		if exchange == "" {
			exchange = "sysadmin.tasks"
		}
		broker, err = task.NewRabbitMQBroker(cfg.Task.RabbitMQ.URL, exchange)
		if err != nil {
			logger.Logger.Fatal("rabbitmq broker init failed", zap.Error(err))
		}
		worker, err = task.NewRabbitMQWorker(cfg.Task.RabbitMQ.URL, exchange, cfg.Task.Queues, runner, logger)
		if err != nil {
			logger.Logger.Fatal("rabbitmq worker init failed", zap.Error(err))
		}
	default:
		broker = task.NewAsynqBroker(rdb.Client)
		worker = task.NewAsynqWorker(rdb.Client, runner, cfg.Task.Concurrency, cfg.Task.Queues, logger)
	}

	beat := task.NewBeat(schedulers, broker, registry, logger, cfg.Task.BeatIntervalSec, cfg.Task.DefaultQueue)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)
	go func() { errCh <- worker.Run(ctx) }()
	go func() { errCh <- beat.Run(ctx) }()
	logger.Logger.Info("worker started", zap.String("broker", cfg.Task.Broker))

	select {
	case <-ctx.Done():
		logger.Logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Logger.Error("worker stopped with error", zap.Error(err))
		}
	}
	beat.Shutdown()
	worker.Shutdown()
	if err := broker.Close(); err != nil {
		logger.Logger.Error("broker close failed", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = rdb.Close()
	// 留一点时间给在途任务落结果
	time.Sleep(200 * time.Millisecond)
	logger.Logger.Info("worker exited")
}
