package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleCacheTTL(t *testing.T) {
	c := New(50 * time.Millisecond)
	c.Set("k", "v")
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	time.Sleep(80 * time.Millisecond)
	_, ok = c.Get("k")
	assert.False(t, ok)
}

func TestSimpleCacheDelFlush(t *testing.T) {
	c := New(time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Del("a")
	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Len(t, c.Keys(), 1)
	c.Flush()
	assert.Empty(t, c.Keys())
}

func TestSimpleAdapter(t *testing.T) {
	ctx := context.Background()
	a := NewSimpleAdapter(New(time.Minute))

	require.NoError(t, a.SetEX(ctx, "k", "v", time.Minute))
	v, err := a.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	// miss 返回空串不报错
	v, err = a.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, a.Del(ctx, "k"))
	v, _ = a.Get(ctx, "k")
	assert.Empty(t, v)
}

func TestLayeredBackfill(t *testing.T) {
	ctx := context.Background()
	l1 := NewSimpleAdapter(New(time.Minute))
	l2 := NewSimpleAdapter(New(time.Minute))
	c := NewLayered(l1, l2)

	// 只写 L2，读取应命中 L2 并回填 L1
	require.NoError(t, l2.SetEX(ctx, "k", "v", time.Minute))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	v, err = l1.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	m := c.SnapshotMetrics()
	assert.Equal(t, uint64(1), m.HitsL2)
	assert.Equal(t, uint64(1), m.BackfillL1)

	// 第二次读命中 L1
	_, _ = c.Get(ctx, "k")
	m = c.SnapshotMetrics()
	assert.Equal(t, uint64(1), m.HitsL1)
	assert.InDelta(t, 1.0, m.HitRate, 0.001)
}

func TestLayeredMissAndDel(t *testing.T) {
	ctx := context.Background()
	l1 := NewSimpleAdapter(New(time.Minute))
	l2 := NewSimpleAdapter(New(time.Minute))
	c := NewLayered(l1, l2)

	v, err := c.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, v)
	assert.Equal(t, uint64(1), c.SnapshotMetrics().Miss)

	require.NoError(t, c.SetEX(ctx, "k", "v", time.Minute))
	require.NoError(t, c.Del(ctx, "k"))
	for _, layer := range []Cache{l1, l2} {
		got, _ := layer.Get(ctx, "k")
		assert.Empty(t, got)
	}

	c.ResetMetrics()
	assert.Equal(t, uint64(0), c.SnapshotMetrics().ReqTotal)
}

func TestNilSentinel(t *testing.T) {
	assert.True(t, IsNilSentinel(WrapNil(true)))
	assert.False(t, IsNilSentinel("v"))
	assert.False(t, IsNilSentinel(""))
}

func TestJitterTTL(t *testing.T) {
	base := 10 * time.Minute
	for i := 0; i < 100; i++ {
		got := JitterTTL(base)
		assert.GreaterOrEqual(t, got, 9*time.Minute)
		assert.LessOrEqual(t, got, 11*time.Minute)
	}
	assert.Equal(t, time.Duration(0), JitterTTL(0))
	assert.Equal(t, time.Nanosecond, JitterTTL(time.Nanosecond))
}
