package model

import "time"

// SysLoginLog 登录日志

type SysLoginLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserUUID  string    `gorm:"column:user_uuid;size:50;not null" json:"user_uuid"`
	Username  string    `gorm:"size:20;not null" json:"username"`
	Status    int       `gorm:"default:0" json:"status"` // 0 失败 1 成功
	IP        string    `gorm:"size:50;not null" json:"ip"`
	UserAgent string    `gorm:"column:user_agent;size:255;not null" json:"user_agent"`
	Msg       string    `gorm:"type:text;not null" json:"msg"`
	LoginTime time.Time `gorm:"column:login_time;not null" json:"login_time"`
	CreatedAt time.Time `gorm:"column:created_time" json:"created_time"`
}

func (SysLoginLog) TableName() string { return "sys_login_log" }
