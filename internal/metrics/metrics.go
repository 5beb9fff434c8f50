package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency distribution",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method"})
	RequestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"path", "method", "status"})
	Inflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_inflight_requests",
		Help: "In-flight HTTP requests",
	})
	DBUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_up",
		Help: "Database connectivity (1=up,0=down)",
	})
	RedisUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "redis_up",
		Help: "Redis connectivity (1=up,0=down)",
	})
	KafkaUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kafka_up",
		Help: "Kafka connectivity (1=up,0=down)",
	})
	EtcdUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "etcd_up",
		Help: "Etcd connectivity (1=up,0=down)",
	})
	BrokerUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "task_broker_up",
		Help: "Task broker connectivity (1=up,0=down)",
	})
	DependencyCheckDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dependency_check_duration_seconds",
		Help:    "Latency of dependency health checks",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.2, 0.4, 0.8, 1},
	}, []string{"dep"})

	// ===== 缓存/权限 =====
	CacheNilHit = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_nil_sentinel_hits_total",
		Help: "Cache nil-sentinel hits (penetration guard)",
	}, []string{"scope"})
	PermissionInvalidateTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "permission_invalidate_total",
		Help: "Permission cache invalidations",
	}, []string{"mode"})
	PermissionInvalidateUsersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "permission_invalidate_users_total",
		Help: "Users affected by permission cache invalidation",
	})

	// ===== 操作日志 Kafka 异步发送 =====
	OperaLogKafkaEnqueue = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opera_log_kafka_enqueue_total",
		Help: "Opera log kafka enqueue attempts",
	}, []string{"result"})
	OperaLogKafkaQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "opera_log_kafka_queue_depth",
		Help: "Pending opera log messages in async queue",
	})
	OperaLogKafkaErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "opera_log_kafka_errors_total",
		Help: "Opera log kafka write errors",
	})
	OperaLogKafkaBatchFlushTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "opera_log_kafka_batch_flush_total",
		Help: "Opera log batch flushes by trigger reason",
	}, []string{"reason"})
	OperaLogKafkaBatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "opera_log_kafka_batch_size",
		Help:    "Opera log flush batch size",
		Buckets: []float64{1, 5, 10, 25, 50, 100},
	})
	OperaLogKafkaSendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "opera_log_kafka_send_duration_seconds",
		Help:    "Opera log kafka batch write latency",
		Buckets: prometheus.DefBuckets,
	})
	OperaLogKafkaQueueDelayAvg = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "opera_log_kafka_queue_delay_avg_seconds",
		Help:    "Average queue residency of flushed opera log batches",
		Buckets: []float64{0.001, 0.005, 0.02, 0.05, 0.1, 0.5, 1},
	})
	OperaLogKafkaQueueDelayMax = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "opera_log_kafka_queue_delay_max_seconds",
		Help:    "Max queue residency of flushed opera log batches",
		Buckets: []float64{0.001, 0.005, 0.02, 0.05, 0.1, 0.5, 1},
	})

	// ===== 任务队列 =====
	TaskEnqueueTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "task_enqueue_total",
		Help: "Task enqueue attempts by broker and result",
	}, []string{"broker", "queue", "result"})
	TaskProcessTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "task_process_total",
		Help: "Processed tasks by name and status",
	}, []string{"task", "status"})
	TaskProcessDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "task_process_duration_seconds",
		Help:    "Task handler execution latency",
		Buckets: []float64{0.01, 0.05, 0.2, 1, 5, 30, 120},
	}, []string{"task"})
	TaskBeatTriggerTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "task_beat_trigger_total",
		Help: "Beat scheduler triggers by result",
	}, []string{"result"})
)
