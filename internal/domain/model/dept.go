package model

import "time"

// SysDept 对应 sys_dept 表（部门树，parent_id 自引用）
// del_flag 软删除：false 正常 true 已删除

type SysDept struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:50;not null" json:"name"`
	Sort      int       `gorm:"default:0" json:"sort"`
	Leader    *string   `gorm:"size:20" json:"leader,omitempty"`
	Phone     *string   `gorm:"size:11" json:"phone,omitempty"`
	Email     *string   `gorm:"size:50" json:"email,omitempty"`
	Status    int       `gorm:"default:1" json:"status"` // 0 停用 1 正常
	DelFlag   bool      `gorm:"column:del_flag;default:false" json:"del_flag"`
	ParentID  *int64    `gorm:"column:parent_id;index" json:"parent_id,omitempty"`
	CreatedAt time.Time `gorm:"column:created_time" json:"created_time"`
	UpdatedAt time.Time `gorm:"column:updated_time" json:"updated_time"`
}

func (SysDept) TableName() string { return "sys_dept" }
