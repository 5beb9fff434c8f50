package http

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-sysadmin/internal/discovery/etcd"
	"go-sysadmin/internal/metrics"
	"go-sysadmin/internal/mq/kafka"
	redisrepo "go-sysadmin/internal/repository/redis"
	"go-sysadmin/internal/task"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// depCheck 单个依赖的探测项
type depCheck struct {
	name    string
	timeout time.Duration
	gauge   prometheus.Gauge
	probe   func(ctx context.Context) error
}

// HealthChecker 聚合健康检查（liveness / readiness）。
// readiness 覆盖 db/redis/kafka/etcd 与任务 broker，结果短暂缓存。
type HealthChecker struct {
	checks []depCheck

	cacheMu     sync.Mutex
	cacheResult map[string]interface{}
	cacheExpiry time.Time
	cacheTTL    time.Duration
}

func NewHealthChecker(db *gorm.DB, r *redisrepo.Client, p *kafka.Producer, e *etcd.Client, broker task.Broker) *HealthChecker {
	checks := []depCheck{
		{name: "db", timeout: 300 * time.Millisecond, gauge: metrics.DBUp, probe: func(ctx context.Context) error {
			if db == nil {
				return errors.New("nil")
			}
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}},
		{name: "redis", timeout: 250 * time.Millisecond, gauge: metrics.RedisUp, probe: func(ctx context.Context) error {
			if r == nil {
				return errors.New("nil")
			}
			return r.Ping(ctx)
		}},
		{name: "kafka", timeout: 250 * time.Millisecond, gauge: metrics.KafkaUp, probe: func(ctx context.Context) error {
			if p == nil {
				return errors.New("nil")
			}
			return p.WriteMessages(ctx)
		}},
		{name: "etcd", timeout: 250 * time.Millisecond, gauge: metrics.EtcdUp, probe: func(ctx context.Context) error {
			if e == nil {
				return errors.New("nil")
			}
			_, err := e.Get(ctx, "health")
			return err
		}},
		{name: "broker", timeout: 250 * time.Millisecond, gauge: metrics.BrokerUp, probe: func(ctx context.Context) error {
			if broker == nil {
				return errors.New("nil")
			}
			return broker.Ping(ctx)
		}},
	}
	return &HealthChecker{checks: checks, cacheTTL: 2 * time.Second}
}

// Liveness 仅表示进程活着，不依赖外部组件
func (h *HealthChecker) Liveness() map[string]interface{} {
	return map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}
}

type depResult struct {
	name string
	up   bool
	err  string
	dur  time.Duration
}

func (h *HealthChecker) runCheck(ctx context.Context, c depCheck) depResult {
	start := time.Now()
	ctx2, cancel := context.WithTimeout(ctx, c.timeout)
	err := c.probe(ctx2)
	cancel()
	out := depResult{name: c.name, up: err == nil, dur: time.Since(start)}
	if err != nil {
		out.err = err.Error()
	}
	metrics.DependencyCheckDuration.WithLabelValues(c.name).Observe(out.dur.Seconds())
	if out.up {
		c.gauge.Set(1)
	} else {
		c.gauge.Set(0)
	}
	return out
}

// Readiness 并发检测外部依赖，带缓存与耗时指标
func (h *HealthChecker) Readiness(ctx context.Context) (map[string]interface{}, int) {
	// 缓存命中
	h.cacheMu.Lock()
	if time.Now().Before(h.cacheExpiry) && h.cacheResult != nil {
		res := h.cacheResult
		h.cacheMu.Unlock()
		statusCode := 200
		if res["status"] != "ok" { // degraded
			statusCode = 503
		}
		return res, statusCode
	}
	h.cacheMu.Unlock()

	res := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
		"detail": []map[string]interface{}{},
	}

	results := make(chan depResult, len(h.checks))
	var wg sync.WaitGroup
	wg.Add(len(h.checks))
	for _, c := range h.checks {
		go func(c depCheck) {
			defer wg.Done()
			results <- h.runCheck(ctx, c)
		}(c)
	}
	wg.Wait()
	close(results)

	upTotal := 0
	for r := range results {
		if r.up {
			res[r.name] = "up"
			upTotal++
		} else if r.err == "" {
			res[r.name] = "down"
		} else {
			res[r.name] = r.err
		}
		ms := float64(r.dur.Microseconds()) / 1000.0
		res[r.name+"_duration_ms"] = ms
		res["detail"] = append(res["detail"].([]map[string]interface{}),
			map[string]interface{}{"dep": r.name, "up": r.up, "error": r.err, "duration_ms": ms})
	}
	if upTotal < len(h.checks) {
		res["status"] = "degraded"
	}

	// 写缓存
	h.cacheMu.Lock()
	h.cacheResult = res
	h.cacheExpiry = time.Now().Add(h.cacheTTL)
	h.cacheMu.Unlock()

	statusCode := 200
	if res["status"] != "ok" {
		statusCode = 503
	}
	return res, statusCode
}
