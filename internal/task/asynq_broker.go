package task

import (
	"context"
	"fmt"
	"time"

	"go-sysadmin/internal/logging"
	"go-sysadmin/internal/metrics"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisConnOptWrapper 复用已有 redis 客户端实现 asynq.RedisConnOpt
type redisConnOptWrapper struct {
	client redis.UniversalClient
}

func (r *redisConnOptWrapper) MakeRedisClient() interface{} { return r.client }

// AsynqBroker redis 后端入队实现
type AsynqBroker struct {
	client *asynq.Client
}

func NewAsynqBroker(rdb redis.UniversalClient) *AsynqBroker {
	return &AsynqBroker{client: asynq.NewClient(&redisConnOptWrapper{client: rdb})}
}

func (b *AsynqBroker) Enqueue(ctx context.Context, p *Payload, opts EnqueueOptions) error {
	data, err := p.Marshal()
	if err != nil {
		metrics.TaskEnqueueTotal.WithLabelValues("redis", opts.Queue, "error").Inc()
		return err
	}
	queue := opts.Queue
	if queue == "" {
		queue = QueueDefault
	}
	aopts := []asynq.Option{
		asynq.Queue(queue),
		asynq.TaskID(p.TaskID),
		asynq.MaxRetry(opts.MaxRetry),
	}
	if opts.Timeout > 0 {
		aopts = append(aopts, asynq.Timeout(opts.Timeout))
	}
	if opts.ExpireAt != nil {
		aopts = append(aopts, asynq.Deadline(*opts.ExpireAt))
	}
	if _, err := b.client.EnqueueContext(ctx, asynq.NewTask(p.Name, data), aopts...); err != nil {
		metrics.TaskEnqueueTotal.WithLabelValues("redis", queue, "error").Inc()
		return fmt.Errorf("asynq enqueue %q: %w", p.Name, err)
	}
	metrics.TaskEnqueueTotal.WithLabelValues("redis", queue, "ok").Inc()
	return nil
}

// Ping 透传到底层 redis
func (b *AsynqBroker) Ping(_ context.Context) error { return b.client.Ping() }

func (b *AsynqBroker) Close() error { return b.client.Close() }

// AsynqWorker redis 后端消费实现，重试交给 asynq 自身
type AsynqWorker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewAsynqWorker(rdb redis.UniversalClient, runner *Runner, concurrency int, queues map[string]int, logger *logging.Logger) *AsynqWorker {
	if concurrency <= 0 {
		concurrency = 10
	}
	if len(queues) == 0 {
		queues = map[string]int{QueueHigh: 6, QueueDefault: 3, QueueLow: 1}
	}
	server := asynq.NewServer(&redisConnOptWrapper{client: rdb}, asynq.Config{
		Concurrency:     concurrency,
		Queues:          queues,
		ShutdownTimeout: 10 * time.Second,
		Logger:          &asynqZapAdapter{logger: logger},
	})
	mux := asynq.NewServeMux()
	for _, name := range runner.registry.Names() {
		mux.HandleFunc(name, func(ctx context.Context, t *asynq.Task) error {
			p, err := UnmarshalPayload(t.Payload())
			if err != nil {
				// 载荷损坏无法重试
				logger.Logger.Error("drop malformed task payload", zap.String("type", t.Type()), zap.Error(err))
				return nil
			}
			retries, _ := asynq.GetRetryCount(ctx)
			return runner.Process(ctx, p, retries)
		})
	}
	return &AsynqWorker{server: server, mux: mux}
}

func (w *AsynqWorker) Run(_ context.Context) error { return w.server.Run(w.mux) }

func (w *AsynqWorker) Shutdown() { w.server.Shutdown() }

// asynqZapAdapter 把 asynq 内部日志接到 zap
type asynqZapAdapter struct {
	logger *logging.Logger
}

func (a *asynqZapAdapter) Debug(args ...interface{}) { a.logger.Logger.Debug(fmt.Sprint(args...)) }
func (a *asynqZapAdapter) Info(args ...interface{})  { a.logger.Logger.Info(fmt.Sprint(args...)) }
func (a *asynqZapAdapter) Warn(args ...interface{})  { a.logger.Logger.Warn(fmt.Sprint(args...)) }
func (a *asynqZapAdapter) Error(args ...interface{}) { a.logger.Logger.Error(fmt.Sprint(args...)) }
func (a *asynqZapAdapter) Fatal(args ...interface{}) { a.logger.Logger.Fatal(fmt.Sprint(args...)) }
