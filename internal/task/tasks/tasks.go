// Package tasks 聚合各任务包。启用哪些包由配置 task.packages 决定，
// 新增任务包：实现 register 函数并在 packages 表登记一行。
package tasks

import (
	"fmt"

	"go-sysadmin/internal/logging"
	"go-sysadmin/internal/repository/dao"
	"go-sysadmin/internal/task"
)

// Deps 任务包可用的依赖
type Deps struct {
	LoginLogs   *dao.LoginLogDAO
	OperaLogs   *dao.OperaLogDAO
	TaskResults *dao.TaskResultDAO
	Logger      *logging.Logger
}

var packages = map[string]func(r *task.Registry, d Deps) error{
	"demo":   registerDemo,
	"db_log": registerDBLog,
}

// Build 按包名列表构建任务注册表，未知包名直接报错
func Build(names []string, d Deps) (*task.Registry, error) {
	r := task.NewRegistry()
	for _, name := range names {
		register, ok := packages[name]
		if !ok {
			return nil, fmt.Errorf("unknown task package %q", name)
		}
		if err := register(r, d); err != nil {
			return nil, fmt.Errorf("register task package %q: %w", name, err)
		}
	}
	return r, nil
}

// PackageNames 全部可用包名（配置校验用）
func PackageNames() []string {
	names := make([]string, 0, len(packages))
	for n := range packages {
		names = append(names, n)
	}
	return names
}
