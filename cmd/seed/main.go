package main

import (
	"context"
	"log"
	"os"
	"time"

	"go-sysadmin/internal/boot"
	"go-sysadmin/internal/config"
	"go-sysadmin/internal/database/seed"
	"go-sysadmin/internal/logging"

	"go.uber.org/zap"
)

// seed 进程：建表 + 空库播种后退出。
// 幂等：已有 admin 用户则跳过播种，可反复执行。
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
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	s := seed.New(db, logger)
	if err := s.Migrate(ctx); err != nil {
		logger.Logger.Fatal("migrate failed", zap.Error(err))
	}
	if err := s.Run(ctx); err != nil {
		logger.Logger.Fatal("seed failed", zap.Error(err))
	}
	logger.Logger.Info("seed done")
}
