package http

import (
	"context"
	"errors"
	"testing"

	"go-sysadmin/internal/task"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBroker struct{ pingErr error }

func (b *stubBroker) Enqueue(context.Context, *task.Payload, task.EnqueueOptions) error { return nil }
func (b *stubBroker) Ping(context.Context) error                                       { return b.pingErr }
func (b *stubBroker) Close() error                                                     { return nil }

func TestReadinessReportsBroker(t *testing.T) {
	hc := NewHealthChecker(nil, nil, nil, nil, &stubBroker{})
	res, code := hc.Readiness(context.Background())

	// broker 正常，其余依赖缺失 -> degraded
	assert.Equal(t, 503, code)
	assert.Equal(t, "degraded", res["status"])
	assert.Equal(t, "up", res["broker"])
	assert.Contains(t, res, "broker_duration_ms")
}

func TestReadinessBrokerDown(t *testing.T) {
	hc := NewHealthChecker(nil, nil, nil, nil, &stubBroker{pingErr: errors.New("rabbitmq connection closed")})
	res, code := hc.Readiness(context.Background())

	assert.Equal(t, 503, code)
	assert.Equal(t, "rabbitmq connection closed", res["broker"])
}

func TestReadinessCaches(t *testing.T) {
	hc := NewHealthChecker(nil, nil, nil, nil, &stubBroker{})
	first, _ := hc.Readiness(context.Background())
	second, _ := hc.Readiness(context.Background())
	require.NotNil(t, second)
	// TTL 内命中缓存，返回同一结果
	assert.Equal(t, first["time"], second["time"])
}
