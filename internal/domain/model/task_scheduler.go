package model

import "time"

// 调度类型
const (
	SchedulerTypeInterval = 0
	SchedulerTypeCrontab  = 1
)

// 间隔周期单位
const (
	PeriodDays    = "days"
	PeriodHours   = "hours"
	PeriodMinutes = "minutes"
	PeriodSeconds = "seconds"
)

// TaskScheduler 对应 task_scheduler 表（周期任务定义，beat 读取并触发入队）
// expire_time 与 expire_seconds 互斥，二者最多设置一个

type TaskScheduler struct {
	ID             int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string     `gorm:"size:50;uniqueIndex:uk_task_scheduler_name;not null" json:"name"`
	Task           string     `gorm:"size:255;not null" json:"task"`
	Args           *string    `gorm:"type:json" json:"args,omitempty"`
	Kwargs         *string    `gorm:"type:json" json:"kwargs,omitempty"`
	Queue          *string    `gorm:"size:255" json:"queue,omitempty"`
	Exchange       *string    `gorm:"size:255" json:"exchange,omitempty"`
	RoutingKey     *string    `gorm:"column:routing_key;size:255" json:"routing_key,omitempty"`
	StartTime      *time.Time `gorm:"column:start_time" json:"start_time,omitempty"`
	ExpireTime     *time.Time `gorm:"column:expire_time" json:"expire_time,omitempty"`
	ExpireSeconds  *int       `gorm:"column:expire_seconds" json:"expire_seconds,omitempty"`
	Type           int        `gorm:"not null" json:"type"` // 0 interval 1 crontab
	IntervalEvery  *int       `gorm:"column:interval_every" json:"interval_every,omitempty"`
	IntervalPeriod *string    `gorm:"column:interval_period;size:255" json:"interval_period,omitempty"`
	Crontab        string     `gorm:"size:50;default:'* * * * *'" json:"crontab"`
	OneOff         bool       `gorm:"column:one_off;default:false" json:"one_off"`
	Enabled        bool       `gorm:"default:true" json:"enabled"`
	TotalRunCount  int        `gorm:"column:total_run_count;default:0" json:"total_run_count"`
	LastRunTime    *time.Time `gorm:"column:last_run_time" json:"last_run_time,omitempty"`
	Remark         *string    `gorm:"type:text" json:"remark,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_time" json:"created_time"`
	UpdatedAt      time.Time  `gorm:"column:updated_time" json:"updated_time"`
}

func (TaskScheduler) TableName() string { return "task_scheduler" }
