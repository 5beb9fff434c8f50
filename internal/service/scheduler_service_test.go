package service

import (
	"testing"
	"time"

	"go-sysadmin/internal/domain/model"
	"go-sysadmin/internal/task"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry(t *testing.T) *task.Registry {
	t.Helper()
	r := task.NewRegistry()
	require.NoError(t, r.Register("task_demo", nil))
	return r
}

func intervalParams() SchedulerParams {
	every := 30
	period := model.PeriodSeconds
	return SchedulerParams{
		Name: "测试同步任务", Task: "task_demo",
		Type: model.SchedulerTypeInterval, IntervalEvery: &every, IntervalPeriod: &period,
	}
}

func TestSchedulerParamsValidate(t *testing.T) {
	r := testRegistry(t)

	assert.NoError(t, intervalParams().validate(r))

	p := intervalParams()
	p.IntervalPeriod = nil
	assert.ErrorContains(t, p.validate(r), "interval_period")

	p = intervalParams()
	bad := -1
	p.IntervalEvery = &bad
	assert.ErrorContains(t, p.validate(r), "must be positive")

	cron := SchedulerParams{Name: "清理操作日志", Task: "task_demo", Type: model.SchedulerTypeCrontab, Crontab: "0 0 * * 6"}
	assert.NoError(t, cron.validate(r))

	cron.Crontab = "not a cron"
	assert.ErrorContains(t, cron.validate(r), "bad crontab")

	p = intervalParams()
	p.Type = 9
	assert.ErrorContains(t, p.validate(r), "unknown scheduler type")
}

func TestSchedulerParamsExpireConflict(t *testing.T) {
	r := testRegistry(t)
	p := intervalParams()
	at := time.Now().Add(time.Hour)
	sec := 600
	p.ExpireTime = &at
	p.ExpireSeconds = &sec
	assert.ErrorIs(t, p.validate(r), ErrExpireConflict)

	// 只设其一合法
	p.ExpireSeconds = nil
	assert.NoError(t, p.validate(r))
	p.ExpireTime = nil
	p.ExpireSeconds = &sec
	assert.NoError(t, p.validate(r))
}

func TestSchedulerParamsUnregisteredTask(t *testing.T) {
	r := testRegistry(t)
	p := intervalParams()
	p.Task = "no_such_task"
	assert.ErrorContains(t, p.validate(r), "not registered")
}
