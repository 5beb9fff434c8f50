package kafka

import (
	"context"
	"testing"
	"time"

	"go-sysadmin/internal/logging"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSender(t *testing.T, queueSize, maxBatch int) *OperaLogSender {
	t.Helper()
	l, err := logging.New("error", "console")
	require.NoError(t, err)
	// 端口 0 不可达，写入立即失败，只校验发送编排不校验落盘
	p := &Producer{&kafkaGo.Writer{
		Addr:         kafkaGo.TCP("127.0.0.1:0"),
		Topic:        "test-opera-log",
		MaxAttempts:  1,
		BatchTimeout: time.Millisecond,
	}}
	return NewOperaLogSender(p, l, queueSize, 1, maxBatch, time.Hour)
}

func TestTakePending(t *testing.T) {
	s := newTestSender(t, 16, 10)
	for i := 0; i < 5; i++ {
		s.Enqueue(AsyncMessage{Ctx: context.Background(), Value: []byte{byte(i)}})
	}

	got := s.takePending(2)
	assert.Len(t, got, 2)
	assert.Equal(t, []byte{0}, got[0].Value)
	assert.Equal(t, []byte{1}, got[1].Value)

	got = s.takePending(10)
	assert.Len(t, got, 3)
	assert.Empty(t, s.takePending(10))
}

// 关闭时队列里尚未被 worker 取走的消息要全部刷出，不能丢
func TestCloseDrainsQueuedMessages(t *testing.T) {
	s := newTestSender(t, 64, 10)
	for i := 0; i < 40; i++ {
		s.Enqueue(AsyncMessage{Ctx: context.Background(), Value: []byte("event")})
	}
	s.Start()
	require.NoError(t, s.Close(context.Background()))
	assert.Empty(t, s.queue)
}

func TestEnqueueAfterCloseDropped(t *testing.T) {
	s := newTestSender(t, 4, 10)
	require.NoError(t, s.Close(context.Background()))
	s.Enqueue(AsyncMessage{Ctx: context.Background(), Value: []byte("late")})
	assert.Empty(t, s.queue)
}
