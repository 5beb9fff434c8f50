package task

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go-sysadmin/internal/logging"
	"go-sysadmin/internal/metrics"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const rabbitMaxRetryHeader = "x-task-max-retry"
const rabbitRetryHeader = "x-task-retry"

// RabbitMQBroker rabbitmq 后端入队实现。topic exchange，
// routing key 即队列名，每个队列一条绑定。
type RabbitMQBroker struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	mu       sync.Mutex
}

func NewRabbitMQBroker(url, exchange string) (*RabbitMQBroker, error) {
	if exchange == "" {
		exchange = "sysadmin.tasks"
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}
	return &RabbitMQBroker{conn: conn, channel: ch, exchange: exchange}, nil
}

func (b *RabbitMQBroker) Enqueue(ctx context.Context, p *Payload, opts EnqueueOptions) error {
	data, err := p.Marshal()
	if err != nil {
		metrics.TaskEnqueueTotal.WithLabelValues("rabbitmq", opts.Queue, "error").Inc()
		return err
	}
	queue := opts.Queue
	if queue == "" {
		queue = QueueDefault
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		Body:         data,
		MessageId:    p.TaskID,
		Type:         p.Name,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers:      amqp.Table{rabbitMaxRetryHeader: int32(opts.MaxRetry)},
	}
	if opts.ExpireAt != nil {
		ttl := time.Until(*opts.ExpireAt)
		if ttl <= 0 {
			metrics.TaskEnqueueTotal.WithLabelValues("rabbitmq", queue, "expired").Inc()
			return fmt.Errorf("task %q already expired", p.Name)
		}
		pub.Expiration = strconv.FormatInt(ttl.Milliseconds(), 10)
	}
	b.mu.Lock()
	err = b.channel.PublishWithContext(ctx, b.exchange, queue, false, false, pub)
	b.mu.Unlock()
	if err != nil {
		metrics.TaskEnqueueTotal.WithLabelValues("rabbitmq", queue, "error").Inc()
		return fmt.Errorf("rabbitmq publish %q: %w", p.Name, err)
	}
	metrics.TaskEnqueueTotal.WithLabelValues("rabbitmq", queue, "ok").Inc()
	return nil
}

// Ping 连接或信道被服务端关闭即视为不可用
func (b *RabbitMQBroker) Ping(_ context.Context) error {
	if b.conn.IsClosed() {
		return fmt.Errorf("rabbitmq connection closed")
	}
	b.mu.Lock()
	closed := b.channel.IsClosed()
	b.mu.Unlock()
	if closed {
		return fmt.Errorf("rabbitmq channel closed")
	}
	return nil
}

func (b *RabbitMQBroker) Close() error {
	if err := b.channel.Close(); err != nil {
		_ = b.conn.Close()
		return err
	}
	return b.conn.Close()
}

// RabbitMQWorker rabbitmq 后端消费实现。每个配置队列起一个 goroutine 消费，
// 失败 republish 自增重试头，超过上限 ack 丢弃（结果表已记失败）。
type RabbitMQWorker struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	queues   []string
	runner   *Runner
	logger   *logging.Logger
	stop     chan struct{}
	wg       sync.WaitGroup
	pubMu    sync.Mutex
}

func NewRabbitMQWorker(url, exchange string, queues map[string]int, runner *Runner, logger *logging.Logger) (*RabbitMQWorker, error) {
	if exchange == "" {
		exchange = "sysadmin.tasks"
	}
	names := make([]string, 0, len(queues))
	for q := range queues {
		names = append(names, q)
	}
	if len(names) == 0 {
		names = []string{QueueHigh, QueueDefault, QueueLow}
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq qos: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}
	for _, q := range names {
		queueName := exchange + "." + q
		if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("declare queue %q: %w", queueName, err)
		}
		if err := ch.QueueBind(queueName, q, exchange, false, nil); err != nil {
			_ = ch.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("bind queue %q: %w", queueName, err)
		}
	}
	return &RabbitMQWorker{
		conn: conn, channel: ch, exchange: exchange, queues: names,
		runner: runner, logger: logger, stop: make(chan struct{}),
	}, nil
}

func (w *RabbitMQWorker) Run(ctx context.Context) error {
	for _, q := range w.queues {
		routingKey := q
		deliveries, err := w.channel.Consume(w.exchange+"."+q, "", false, false, false, false, nil)
		if err != nil {
			return fmt.Errorf("consume queue %q: %w", q, err)
		}
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for {
				select {
				case <-w.stop:
					return
				case <-ctx.Done():
					return
				case d, ok := <-deliveries:
					if !ok {
						return
					}
					w.handle(ctx, routingKey, d)
				}
			}
		}()
	}
	w.wg.Wait()
	return nil
}

func (w *RabbitMQWorker) handle(ctx context.Context, routingKey string, d amqp.Delivery) {
	p, err := UnmarshalPayload(d.Body)
	if err != nil {
		w.logger.Logger.Error("drop malformed task payload", zap.Error(err))
		_ = d.Ack(false)
		return
	}
	retries := headerInt(d.Headers, rabbitRetryHeader)
	maxRetry := headerInt(d.Headers, rabbitMaxRetryHeader)
	if err := w.runner.Process(ctx, p, retries); err != nil {
		if retries < maxRetry {
			w.republish(ctx, routingKey, d, retries+1)
		}
		_ = d.Ack(false)
		return
	}
	_ = d.Ack(false)
}

func (w *RabbitMQWorker) republish(ctx context.Context, routingKey string, d amqp.Delivery, retry int) {
	headers := amqp.Table{}
	for k, v := range d.Headers {
		headers[k] = v
	}
	headers[rabbitRetryHeader] = int32(retry)
	pub := amqp.Publishing{
		ContentType:  d.ContentType,
		Body:         d.Body,
		MessageId:    d.MessageId,
		Type:         d.Type,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Headers:      headers,
	}
	w.pubMu.Lock()
	err := w.channel.PublishWithContext(ctx, w.exchange, routingKey, false, false, pub)
	w.pubMu.Unlock()
	if err != nil {
		w.logger.Logger.Error("task retry republish failed",
			zap.String("task_id", d.MessageId), zap.Error(err))
	}
}

func (w *RabbitMQWorker) Shutdown() {
	close(w.stop)
	_ = w.channel.Close()
	w.wg.Wait()
	_ = w.conn.Close()
}

func headerInt(t amqp.Table, key string) int {
	if t == nil {
		return 0
	}
	switch v := t[key].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}
