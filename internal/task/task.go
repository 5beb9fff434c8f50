package task

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// 队列名
const (
	QueueDefault = "default"
	QueueLow     = "low"
	QueueHigh    = "high"
)

// Payload 任务载荷，入队前序列化为 JSON。
// args/kwargs 对齐 task_scheduler 表的两个 json 列。
type Payload struct {
	TaskID     string                 `json:"task_id"`
	Name       string                 `json:"name"`
	Args       []interface{}          `json:"args,omitempty"`
	Kwargs     map[string]interface{} `json:"kwargs,omitempty"`
	EnqueuedAt time.Time              `json:"enqueued_at"`
}

func (p *Payload) Marshal() ([]byte, error) { return json.Marshal(p) }

func UnmarshalPayload(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal task payload: %w", err)
	}
	return &p, nil
}

// Handler 任务处理函数，返回值作为 task_result.result 落库
type Handler func(ctx context.Context, p *Payload) (string, error)

// Registry 任务名 -> 处理函数。各任务包通过 Register 注册，
// 包的启用集合由配置 task.packages 决定。
type Registry struct {
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

func (r *Registry) Register(name string, h Handler) error {
	if name == "" {
		return fmt.Errorf("task name is empty")
	}
	if _, dup := r.handlers[name]; dup {
		return fmt.Errorf("task %q registered twice", name)
	}
	r.handlers[name] = h
	return nil
}

func (r *Registry) Lookup(name string) (Handler, bool) {
	h, ok := r.handlers[name]
	return h, ok
}

// Names 已注册任务名（排序，用于日志与调度校验）
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.handlers))
	for n := range r.handlers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// EnqueueOptions 入队选项
type EnqueueOptions struct {
	Queue    string
	MaxRetry int
	Timeout  time.Duration
	ExpireAt *time.Time // 超过该时刻未被执行则放弃
}

// Broker 入队端抽象，redis(asynq) 与 rabbitmq 两种实现。
// Ping 供就绪探针检测后端连通性。
type Broker interface {
	Enqueue(ctx context.Context, p *Payload, opts EnqueueOptions) error
	Ping(ctx context.Context) error
	Close() error
}

// Worker 消费端抽象
type Worker interface {
	Run(ctx context.Context) error
	Shutdown()
}
