package service

import (
	"context"

	"go-sysadmin/internal/domain/model"
	"go-sysadmin/internal/repository/dao"
)

// LogService 登录日志与操作日志查询/清理
type LogService struct {
	LoginLogs *dao.LoginLogDAO
	OperaLogs *dao.OperaLogDAO
}

func NewLogService(ll *dao.LoginLogDAO, ol *dao.OperaLogDAO) *LogService {
	return &LogService{LoginLogs: ll, OperaLogs: ol}
}

func (s *LogService) ListLoginLogs(ctx context.Context, username, ip string, status *int8, page, pageSize int) ([]model.SysLoginLog, int64, error) {
	offset, limit := pageWindow(page, pageSize)
	return s.LoginLogs.List(ctx, username, ip, status, offset, limit)
}

func (s *LogService) DeleteLoginLogs(ctx context.Context, ids []int64) error {
	return s.LoginLogs.DeleteByIDs(ctx, ids)
}

func (s *LogService) ClearLoginLogs(ctx context.Context) error {
	return s.LoginLogs.DeleteAll(ctx)
}

func (s *LogService) ListOperaLogs(ctx context.Context, username, ip string, status *int8, page, pageSize int) ([]model.SysOperaLog, int64, error) {
	offset, limit := pageWindow(page, pageSize)
	return s.OperaLogs.List(ctx, username, ip, status, offset, limit)
}

func (s *LogService) DeleteOperaLogs(ctx context.Context, ids []int64) error {
	return s.OperaLogs.DeleteByIDs(ctx, ids)
}

func (s *LogService) ClearOperaLogs(ctx context.Context) error {
	return s.OperaLogs.DeleteAll(ctx)
}
