package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-sysadmin/internal/boot"
	"go-sysadmin/internal/config"
	"go-sysadmin/internal/consumer/operalog"
	"go-sysadmin/internal/logging"
	"go-sysadmin/internal/repository/dao"

	"go.uber.org/zap"
)

// consumer 进程：消费 kafka 操作日志事件批量落库。
// 独立于 API 部署，可按分区数横向扩容。
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/config.dev.yaml"
	}
	if _, err := os.Stat(cfgPath); err != nil {
		fallback := "configs/config.example.yaml"
		if _, err2 := os.Stat(fallback); err2 == nil {
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

	c := operalog.NewConsumer(operalog.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.OperaLogTopic,
		GroupID: cfg.Kafka.GroupID,
	}, dao.NewOperaLogDAO(db), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Logger.Info("opera log consumer started",
		zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.OperaLogTopic))
	if err := c.Run(ctx); err != nil {
		logger.Logger.Error("consumer stopped with error", zap.Error(err))
	}
	_ = c.Close()
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Logger.Info("consumer exited")
}
