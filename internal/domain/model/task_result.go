package model

import "time"

// 任务执行状态
const (
	TaskStatusPending = "PENDING"
	TaskStatusStarted = "STARTED"
	TaskStatusSuccess = "SUCCESS"
	TaskStatusFailure = "FAILURE"
	TaskStatusRetry   = "RETRY"
)

// TaskResult 任务执行结果

type TaskResult struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	TaskID    string     `gorm:"column:task_id;size:155;uniqueIndex:uk_task_result_task_id;not null" json:"task_id"`
	Name      *string    `gorm:"size:255" json:"name,omitempty"`
	Status    string     `gorm:"size:50;not null" json:"status"`
	Result    *string    `gorm:"type:text" json:"result,omitempty"`
	Traceback *string    `gorm:"type:text" json:"traceback,omitempty"`
	Retries   int        `gorm:"default:0" json:"retries"`
	DateDone  *time.Time `gorm:"column:date_done" json:"date_done,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_time" json:"created_time"`
}

func (TaskResult) TableName() string { return "task_result" }
