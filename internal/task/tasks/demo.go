package tasks

import (
	"context"
	"fmt"
	"time"

	"go-sysadmin/internal/task"
)

// demo 包：联调用示例任务

func registerDemo(r *task.Registry, _ Deps) error {
	if err := r.Register("task_demo", taskDemo); err != nil {
		return err
	}
	return r.Register("task_demo_params", taskDemoParams)
}

// taskDemo 模拟耗时操作
func taskDemo(ctx context.Context, _ *task.Payload) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(30 * time.Second):
	}
	return "test", nil
}

// taskDemoParams 模拟参数传递：args[0] 与 kwargs["world"] 拼接
func taskDemoParams(_ context.Context, p *task.Payload) (string, error) {
	if len(p.Args) == 0 {
		return "", fmt.Errorf("task_demo_params: args[0] required")
	}
	hello, ok := p.Args[0].(string)
	if !ok {
		return "", fmt.Errorf("task_demo_params: args[0] must be a string")
	}
	world, _ := p.Kwargs["world"].(string)
	return hello + world, nil
}
