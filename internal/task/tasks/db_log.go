package tasks

import (
	"context"
	"fmt"
	"time"

	"go-sysadmin/internal/task"

	"go.uber.org/zap"
)

// db_log 包：数据库日志清理

func registerDBLog(r *task.Registry, d Deps) error {
	if d.LoginLogs == nil || d.OperaLogs == nil {
		return fmt.Errorf("db_log package requires log DAOs")
	}
	if err := r.Register("delete_db_opera_log", func(ctx context.Context, p *task.Payload) (string, error) {
		if days := keepDays(p); days > 0 {
			n, err := d.OperaLogs.DeleteBefore(ctx, time.Now().AddDate(0, 0, -days))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("deleted %d opera logs older than %d days", n, days), nil
		}
		if err := d.OperaLogs.DeleteAll(ctx); err != nil {
			return "", err
		}
		return "deleted all opera logs", nil
	}); err != nil {
		return err
	}
	return r.Register("delete_db_login_log", func(ctx context.Context, p *task.Payload) (string, error) {
		if days := keepDays(p); days > 0 {
			n, err := d.LoginLogs.DeleteBefore(ctx, time.Now().AddDate(0, 0, -days))
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("deleted %d login logs older than %d days", n, days), nil
		}
		if err := d.LoginLogs.DeleteAll(ctx); err != nil {
			return "", err
		}
		d.Logger.Logger.Info("login log table truncated", zap.String("task_id", p.TaskID))
		return "deleted all login logs", nil
	})
}

// keepDays kwargs["keep_days"] 保留天数，缺省 0 表示全量清理
func keepDays(p *task.Payload) int {
	v, ok := p.Kwargs["keep_days"]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}
