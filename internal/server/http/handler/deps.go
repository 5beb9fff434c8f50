package handler

import (
	adminh "go-sysadmin/internal/server/http/handler/admin"
)

// HandlerSet 聚合 admin 子包的 handler，供 router 使用
type HandlerSet struct {
	Auth      *adminh.AuthHandler
	User      *adminh.UserHandler
	Dept      *adminh.DeptHandler
	Menu      *adminh.MenuHandler
	Role      *adminh.RoleHandler
	Data      *adminh.DataHandler
	Scheduler *adminh.SchedulerHandler
	Log       *adminh.LogHandler
}

func NewHandlerSet(ad adminh.Dependencies) *HandlerSet {
	return &HandlerSet{
		Auth:      adminh.NewAuthHandler(ad),
		User:      adminh.NewUserHandler(ad),
		Dept:      adminh.NewDeptHandler(ad),
		Menu:      adminh.NewMenuHandler(ad),
		Role:      adminh.NewRoleHandler(ad),
		Data:      adminh.NewDataHandler(ad),
		Scheduler: adminh.NewSchedulerHandler(ad),
		Log:       adminh.NewLogHandler(ad),
	}
}
