package operalog

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go-sysadmin/internal/domain/model"
	"go-sysadmin/internal/logging"
	"go-sysadmin/internal/mq/kafka"
	"go-sysadmin/internal/repository/dao"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Consumer 消费 kafka 操作日志事件并批量落 sys_opera_log。
// 攒批：达到 batchSize 或 flushEvery 到期即写库。
type Consumer struct {
	inner  *kafka.Consumer
	dao    *dao.OperaLogDAO
	logger *logging.Logger

	batchSize  int
	flushEvery time.Duration

	mu    sync.Mutex
	batch []model.SysOperaLog
}

// event 与 oplog 中间件产出的字段对齐
type event struct {
	TraceID   string  `json:"trace_id"`
	Username  *string `json:"username,omitempty"`
	Method    string  `json:"method"`
	Title     string  `json:"title"`
	Path      string  `json:"path"`
	IP        string  `json:"ip"`
	UserAgent string  `json:"user_agent"`
	Args      string  `json:"args"`
	Status    int     `json:"status"`
	Code      int     `json:"code"`
	Msg       *string `json:"msg,omitempty"`
	CostTime  float64 `json:"cost_time"`
	OperaTime string  `json:"opera_time"`
}

func NewConsumer(cfg Config, d *dao.OperaLogDAO, logger *logging.Logger) *Consumer {
	inner := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.Brokers,
		GroupID: cfg.GroupID,
		Topics:  []string{cfg.Topic},
	})
	return &Consumer{
		inner: inner, dao: d, logger: logger,
		batchSize: 100, flushEvery: time.Second,
		batch: make([]model.SysOperaLog, 0, 100),
	}
}

// Run 阻塞消费直到 ctx 取消。后台 ticker 兜底 flush 低流量期的尾批。
func (c *Consumer) Run(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(c.flushEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				close(done)
				return
			case <-ticker.C:
				c.flush(context.Background())
			}
		}
	}()
	err := c.inner.Start(ctx, func(msgCtx context.Context, m kafkaGo.Message) error {
		row, derr := decode(m.Value)
		if derr != nil {
			c.logger.Logger.Warn("skip malformed opera log event", zap.Error(derr))
			return nil
		}
		c.mu.Lock()
		c.batch = append(c.batch, *row)
		full := len(c.batch) >= c.batchSize
		c.mu.Unlock()
		if full {
			c.flush(msgCtx)
		}
		return nil
	})
	<-done
	c.flush(context.Background())
	return err
}

func (c *Consumer) flush(ctx context.Context) {
	c.mu.Lock()
	if len(c.batch) == 0 {
		c.mu.Unlock()
		return
	}
	rows := c.batch
	c.batch = make([]model.SysOperaLog, 0, c.batchSize)
	c.mu.Unlock()
	if err := c.dao.BatchCreate(ctx, rows); err != nil {
		c.logger.Logger.Error("opera log batch insert failed",
			zap.Int("size", len(rows)), zap.Error(err))
	}
}

func decode(data []byte) (*model.SysOperaLog, error) {
	var e event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	operaTime := time.Now()
	if t, err := time.Parse(time.RFC3339, e.OperaTime); err == nil {
		operaTime = t
	}
	row := &model.SysOperaLog{
		TraceID:   e.TraceID,
		Username:  e.Username,
		Method:    e.Method,
		Title:     e.Title,
		Path:      e.Path,
		IP:        e.IP,
		UserAgent: e.UserAgent,
		Status:    e.Status,
		Code:      itoa(e.Code),
		Msg:       e.Msg,
		CostTime:  e.CostTime,
		OperaTime: operaTime,
	}
	if e.Args != "" {
		args := truncate(e.Args, 2000)
		row.Args = &args
	}
	return row, nil
}

func (c *Consumer) Close() error { return c.inner.Close() }

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func itoa(code int) string {
	if code == 0 {
		return "200"
	}
	b := [8]byte{}
	i := len(b)
	for code > 0 {
		i--
		b[i] = byte('0' + code%10)
		code /= 10
	}
	return string(b[i:])
}
