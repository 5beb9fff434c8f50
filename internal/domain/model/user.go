package model

import "time"

// SysUser 对应 sys_user 表
// password 存 bcrypt 哈希，salt 为用户级随机盐（参与哈希输入，列保持 bytea 兼容旧库）

type SysUser struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID          string     `gorm:"size:50;uniqueIndex:uk_user_uuid;not null" json:"uuid"`
	Username      string     `gorm:"size:20;uniqueIndex:uk_username;not null" json:"username"`
	Nickname      string     `gorm:"size:20;not null" json:"nickname"`
	Password      *string    `gorm:"size:255" json:"-"`
	Salt          []byte     `gorm:"type:bytea" json:"-"`
	Email         *string    `gorm:"size:50;uniqueIndex:uk_user_email" json:"email,omitempty"`
	Phone         *string    `gorm:"size:11" json:"phone,omitempty"`
	Avatar        *string    `gorm:"size:255" json:"avatar,omitempty"`
	Status        int        `gorm:"default:1;index" json:"status"` // 0 禁用 1 正常
	IsSuperuser   bool       `gorm:"column:is_superuser;default:false" json:"is_superuser"`
	IsStaff       bool       `gorm:"column:is_staff;default:false" json:"is_staff"`
	IsMultiLogin  bool       `gorm:"column:is_multi_login;default:false" json:"is_multi_login"`
	JoinTime      time.Time  `gorm:"column:join_time" json:"join_time"`
	LastLoginTime *time.Time `gorm:"column:last_login_time" json:"last_login_time,omitempty"`
	DeptID        *int64     `gorm:"column:dept_id" json:"dept_id,omitempty"`
}

func (SysUser) TableName() string { return "sys_user" }
