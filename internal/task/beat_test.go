package task

import (
	"context"
	"testing"
	"time"

	"go-sysadmin/internal/domain/model"
	"go-sysadmin/internal/logging"
	"go-sysadmin/internal/repository/dao"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIntervalDuration(t *testing.T) {
	cases := []struct {
		every  int
		period string
		want   time.Duration
	}{
		{2, model.PeriodDays, 48 * time.Hour},
		{3, model.PeriodHours, 3 * time.Hour},
		{15, model.PeriodMinutes, 15 * time.Minute},
		{30, model.PeriodSeconds, 30 * time.Second},
	}
	for _, tc := range cases {
		d, err := IntervalDuration(tc.every, tc.period)
		require.NoError(t, err)
		assert.Equal(t, tc.want, d)
	}

	_, err := IntervalDuration(0, model.PeriodSeconds)
	assert.ErrorContains(t, err, "must be positive")
	_, err = IntervalDuration(1, "weeks")
	assert.ErrorContains(t, err, "unknown interval_period")
}

func intPtr(v int) *int           { return &v }
func strPtr(s string) *string     { return &s }
func tPtr(t time.Time) *time.Time { return &t }

func TestNextRunInterval(t *testing.T) {
	now := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	// 从未执行：立即到期
	s := &model.TaskScheduler{
		Name: "测试同步任务", Type: model.SchedulerTypeInterval,
		IntervalEvery: intPtr(30), IntervalPeriod: strPtr(model.PeriodSeconds),
	}
	next, err := NextRun(s, now)
	require.NoError(t, err)
	assert.Equal(t, now, next)

	// 从未执行且 start_time 在未来：等到 start_time
	s.StartTime = tPtr(now.Add(time.Hour))
	next, err = NextRun(s, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), next)

	// 已执行过：上次执行 + 周期
	s.StartTime = nil
	s.LastRunTime = tPtr(now.Add(-10 * time.Second))
	next, err = NextRun(s, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(20*time.Second), next)

	s.IntervalPeriod = nil
	_, err = NextRun(s, now)
	assert.ErrorContains(t, err, "interval fields missing")
}

func TestNextRunCrontab(t *testing.T) {
	now := time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC)

	s := &model.TaskScheduler{
		Name: "测试传参任务", Type: model.SchedulerTypeCrontab, Crontab: "1 * * * *",
	}
	next, err := NextRun(s, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 25, 11, 1, 0, 0, time.UTC), next)

	// 以上次执行为基准
	s.LastRunTime = tPtr(time.Date(2026, 8, 25, 9, 1, 0, 0, time.UTC))
	next, err = NextRun(s, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 25, 10, 1, 0, 0, time.UTC), next)

	s.Crontab = "bad"
	_, err = NextRun(s, now)
	assert.ErrorContains(t, err, "bad crontab")

	s.Type = 9
	_, err = NextRun(s, now)
	assert.ErrorContains(t, err, "unknown type")
}

// captureBroker 只记录入队的载荷
type captureBroker struct{ payloads []*Payload }

func (c *captureBroker) Enqueue(_ context.Context, p *Payload, _ EnqueueOptions) error {
	c.payloads = append(c.payloads, p)
	return nil
}
func (c *captureBroker) Ping(context.Context) error { return nil }
func (c *captureBroker) Close() error               { return nil }

func newTestBeat(t *testing.T) (*Beat, *dao.TaskSchedulerDAO, *captureBroker) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.TaskScheduler{}))
	l, err := logging.New("error", "console")
	require.NoError(t, err)
	reg := NewRegistry()
	require.NoError(t, reg.Register("task_demo", func(context.Context, *Payload) (string, error) {
		return "", nil
	}))
	schedulers := dao.NewTaskSchedulerDAO(db)
	broker := &captureBroker{}
	return NewBeat(schedulers, broker, reg, l, 5, ""), schedulers, broker
}

// expire_time 已过的调度行要被停用，不能每个同步周期都再入队
func TestTickDisablesExpiredScheduler(t *testing.T) {
	b, schedulers, broker := newTestBeat(t)
	ctx := context.Background()
	now := time.Now()

	expired := &model.TaskScheduler{
		Name: "过期巡检", Task: "task_demo",
		Type: model.SchedulerTypeCrontab, Crontab: "* * * * *",
		Enabled:     true,
		ExpireTime:  tPtr(now.Add(-time.Hour)),
		LastRunTime: tPtr(now.Add(-2 * time.Hour)),
	}
	require.NoError(t, schedulers.Create(ctx, expired))

	b.tick(ctx, now)
	assert.Empty(t, broker.payloads)

	got, err := schedulers.FindByID(ctx, expired.ID)
	require.NoError(t, err)
	assert.False(t, got.Enabled)

	// 停用后不再出现在启用列表，后续 tick 彻底安静
	b.tick(ctx, now)
	assert.Empty(t, broker.payloads)
}

func TestTickTriggersDueScheduler(t *testing.T) {
	b, schedulers, broker := newTestBeat(t)
	ctx := context.Background()
	now := time.Now()

	due := &model.TaskScheduler{
		Name: "到期同步", Task: "task_demo",
		Type:          model.SchedulerTypeInterval,
		IntervalEvery: intPtr(30), IntervalPeriod: strPtr(model.PeriodSeconds),
		Enabled: true,
	}
	require.NoError(t, schedulers.Create(ctx, due))

	b.tick(ctx, now)
	require.Len(t, broker.payloads, 1)
	assert.Equal(t, "task_demo", broker.payloads[0].Name)

	got, err := schedulers.FindByID(ctx, due.ID)
	require.NoError(t, err)
	assert.True(t, got.Enabled)
	require.NotNil(t, got.LastRunTime)
}
