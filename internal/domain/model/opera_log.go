package model

import "time"

// SysOperaLog 操作日志（由 kafka 消费端落库）

type SysOperaLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID   string    `gorm:"column:trace_id;size:64" json:"trace_id"`
	Username  *string   `gorm:"size:20" json:"username,omitempty"`
	Method    string    `gorm:"size:20;not null" json:"method"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	Path      string    `gorm:"size:500;not null" json:"path"`
	IP        string    `gorm:"size:50;not null" json:"ip"`
	UserAgent string    `gorm:"column:user_agent;size:255;not null" json:"user_agent"`
	Args      *string   `gorm:"type:text" json:"args,omitempty"`
	Status    int       `gorm:"default:0" json:"status"` // HTTP 状态归一: 0 异常 1 正常
	Code      string    `gorm:"size:20;default:200" json:"code"`
	Msg       *string   `gorm:"type:text" json:"msg,omitempty"`
	CostTime  float64   `gorm:"column:cost_time;default:0" json:"cost_time"` // 毫秒
	OperaTime time.Time `gorm:"column:opera_time;not null" json:"opera_time"`
	CreatedAt time.Time `gorm:"column:created_time" json:"created_time"`
}

func (SysOperaLog) TableName() string { return "sys_opera_log" }
