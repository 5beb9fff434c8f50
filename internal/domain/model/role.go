package model

import "time"

// SysRole 对应 sys_role 表
// is_filter_scopes: 是否按数据范围过滤行级数据

type SysRole struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string    `gorm:"size:20;uniqueIndex:uk_role_name;not null" json:"name"`
	Status         int       `gorm:"default:1" json:"status"` // 0 禁用 1 正常
	IsFilterScopes bool      `gorm:"column:is_filter_scopes;default:true" json:"is_filter_scopes"`
	Remark         *string   `gorm:"type:text" json:"remark,omitempty"`
	CreatedAt      time.Time `gorm:"column:created_time" json:"created_time"`
	UpdatedAt      time.Time `gorm:"column:updated_time" json:"updated_time"`
}

func (SysRole) TableName() string { return "sys_role" }
