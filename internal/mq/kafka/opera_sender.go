package kafka

import (
	"context"
	"sync"
	"time"

	"go-sysadmin/internal/logging"
	"go-sysadmin/internal/metrics"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// AsyncMessage 异步发送单元；EnqueueAt 用于观测队列滞留
type AsyncMessage struct {
	Ctx       context.Context
	Key       []byte
	Value     []byte
	Headers   map[string]string
	EnqueueAt time.Time
}

// OperaLogSender 操作日志有界异步发送 + 批量聚合：多 worker 从 channel 取消息，
// 达到 maxBatch 或等待超过 maxWait 即 flush 写 Kafka。
// 队列满直接丢（metrics.OperaLogKafkaEnqueue result="dropped"），
// 批量写失败降级为逐条重试。
type OperaLogSender struct {
	producer *Producer
	logger   *logging.Logger
	queue    chan AsyncMessage
	workers  int
	wg       sync.WaitGroup
	stopCh   chan struct{}

	maxBatch int
	maxWait  time.Duration
}

func NewOperaLogSender(p *Producer, l *logging.Logger, queueSize, workers, maxBatch int, maxWait time.Duration) *OperaLogSender {
	if queueSize <= 0 {
		queueSize = 10000
	}
	if workers <= 0 {
		workers = 1
	}
	if maxBatch <= 0 {
		maxBatch = 50
	}
	if maxWait <= 0 {
		maxWait = 20 * time.Millisecond
	}
	return &OperaLogSender{
		producer: p,
		logger:   l,
		queue:    make(chan AsyncMessage, queueSize),
		workers:  workers,
		stopCh:   make(chan struct{}),
		maxBatch: maxBatch,
		maxWait:  maxWait,
	}
}

func (s *OperaLogSender) Start() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			batch := make([]AsyncMessage, 0, s.maxBatch)
			var timer *time.Timer
			var timerCh <-chan time.Time
			stopTimer := func() {
				if timer != nil {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timerCh = nil
				}
			}
			flush := func(reason string) {
				if len(batch) == 0 {
					return
				}
				start := time.Now()
				var totalDelay, maxDelay time.Duration
				for _, bm := range batch {
					if !bm.EnqueueAt.IsZero() {
						d := start.Sub(bm.EnqueueAt)
						totalDelay += d
						if d > maxDelay {
							maxDelay = d
						}
					}
				}
				metrics.OperaLogKafkaQueueDelayAvg.Observe(totalDelay.Seconds() / float64(len(batch)))
				metrics.OperaLogKafkaQueueDelayMax.Observe(maxDelay.Seconds())

				msgs := make([]kafkaGo.Message, 0, len(batch))
				spans := make([]trace.Span, 0, len(batch))
				for _, m := range batch {
					ctxSpan, span := s.producer.startSpan(m.Ctx)
					var hs []kafkaGo.Header
					if len(m.Headers) > 0 {
						hs = make([]kafkaGo.Header, 0, len(m.Headers))
						for k, v := range m.Headers {
							hs = append(hs, kafkaGo.Header{Key: k, Value: []byte(v)})
						}
					}
					hs = s.producer.injectHeaders(ctxSpan, hs)
					msgs = append(msgs, kafkaGo.Message{Key: m.Key, Value: m.Value, Time: time.Now(), Headers: hs})
					spans = append(spans, span)
				}
				writeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				err := s.producer.Writer.WriteMessages(writeCtx, msgs...)
				cancel()
				if err != nil {
					for _, sp := range spans {
						sp.SetStatus(codes.Error, err.Error())
						sp.RecordError(err)
						sp.End()
					}
					metrics.OperaLogKafkaErrors.Add(float64(len(batch)))
					// 逐条回退
					for _, msg := range batch {
						if len(msg.Headers) > 0 {
							_ = s.producer.SendWithHeaders(msg.Ctx, msg.Key, msg.Value, msg.Headers)
						} else {
							_ = s.producer.Send(msg.Ctx, msg.Key, msg.Value)
						}
					}
				} else {
					for _, sp := range spans {
						sp.End()
					}
				}
				metrics.OperaLogKafkaBatchFlushTotal.WithLabelValues(reason).Inc()
				metrics.OperaLogKafkaBatchSize.Observe(float64(len(batch)))
				metrics.OperaLogKafkaSendDuration.Observe(time.Since(start).Seconds())
				batch = batch[:0]
				stopTimer()
			}
			for {
				select {
				case <-s.stopCh:
					// 停机先清空缓冲队列再退出，不丢已入队事件
					for {
						pending := s.takePending(s.maxBatch - len(batch))
						if len(pending) == 0 && len(batch) == 0 {
							return
						}
						batch = append(batch, pending...)
						flush("shutdown")
					}
				case msg, ok := <-s.queue:
					if !ok {
						flush("shutdown")
						return
					}
					metrics.OperaLogKafkaQueueDepth.Dec()
					batch = append(batch, msg)
					if len(batch) == 1 {
						if timer == nil {
							timer = time.NewTimer(s.maxWait)
						} else {
							stopTimer()
							timer.Reset(s.maxWait)
						}
						timerCh = timer.C
					}
					if len(batch) >= s.maxBatch {
						flush("size")
					}
				case <-timerCh:
					flush("timeout")
				}
			}
		}()
	}
}

// takePending 非阻塞取出队列剩余消息，最多 max 条
func (s *OperaLogSender) takePending(max int) []AsyncMessage {
	out := make([]AsyncMessage, 0, max)
	for len(out) < max {
		select {
		case msg := <-s.queue:
			metrics.OperaLogKafkaQueueDepth.Dec()
			out = append(out, msg)
		default:
			return out
		}
	}
	return out
}

// Enqueue 非阻塞放入，满则丢弃；停机后入队同样按丢弃计
func (s *OperaLogSender) Enqueue(m AsyncMessage) {
	select {
	case <-s.stopCh:
		metrics.OperaLogKafkaEnqueue.WithLabelValues("dropped").Inc()
		return
	default:
	}
	if m.EnqueueAt.IsZero() {
		m.EnqueueAt = time.Now()
	}
	select {
	case s.queue <- m:
		metrics.OperaLogKafkaEnqueue.WithLabelValues("ok").Inc()
		metrics.OperaLogKafkaQueueDepth.Inc()
	default:
		metrics.OperaLogKafkaEnqueue.WithLabelValues("dropped").Inc()
	}
}

// Close 停止 worker，队列中尚未发送的消息会在退出前刷完
func (s *OperaLogSender) Close(_ context.Context) error {
	close(s.stopCh)
	s.wg.Wait()
	return nil
}
