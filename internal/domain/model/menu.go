package model

import "time"

// 菜单类型
const (
	MenuTypeDirectory = 0 // 目录
	MenuTypeMenu      = 1 // 菜单
	MenuTypeButton    = 2 // 按钮权限
	MenuTypeEmbedded  = 3 // 内嵌 iframe
	MenuTypeLink      = 4 // 外链
)

// SysMenu 对应 sys_menu 表（目录/菜单 + 按钮级权限共用一张树）
// perms 为权限标识（按钮类型必填），display/cache 为前端展示与 keep-alive 标记

type SysMenu struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title     string    `gorm:"size:50;not null" json:"title"`
	Name      string    `gorm:"size:50;not null" json:"name"`
	Path      *string   `gorm:"size:200" json:"path,omitempty"`
	Sort      int       `gorm:"default:0" json:"sort"`
	Icon      *string   `gorm:"size:100" json:"icon,omitempty"`
	Type      int       `gorm:"default:0" json:"type"`
	Component *string   `gorm:"size:255" json:"component,omitempty"`
	Perms     *string   `gorm:"size:100" json:"perms,omitempty"`
	Status    int       `gorm:"default:1" json:"status"`  // 0 禁用 1 正常
	Display   int       `gorm:"default:1" json:"display"` // 0 隐藏 1 显示
	Cache     int       `gorm:"default:1" json:"cache"`   // 0 不缓存 1 缓存
	Link      *string   `gorm:"type:text" json:"link,omitempty"`
	Remark    *string   `gorm:"type:text" json:"remark,omitempty"`
	ParentID  *int64    `gorm:"column:parent_id;index" json:"parent_id,omitempty"`
	CreatedAt time.Time `gorm:"column:created_time" json:"created_time"`
	UpdatedAt time.Time `gorm:"column:updated_time" json:"updated_time"`
}

func (SysMenu) TableName() string { return "sys_menu" }
