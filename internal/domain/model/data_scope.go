package model

import "time"

// SysDataScope 对应 sys_data_scope 表（数据范围策略）

type SysDataScope struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:50;uniqueIndex:uk_data_scope_name;not null" json:"name"`
	Status    int       `gorm:"default:1" json:"status"` // 0 禁用 1 正常
	CreatedAt time.Time `gorm:"column:created_time" json:"created_time"`
	UpdatedAt time.Time `gorm:"column:updated_time" json:"updated_time"`
}

func (SysDataScope) TableName() string { return "sys_data_scope" }
