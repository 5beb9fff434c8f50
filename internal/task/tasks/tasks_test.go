package tasks

import (
	"context"
	"testing"

	"go-sysadmin/internal/repository/dao"
	"go-sysadmin/internal/task"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	d := Deps{LoginLogs: dao.NewLoginLogDAO(nil), OperaLogs: dao.NewOperaLogDAO(nil)}
	r, err := Build([]string{"demo", "db_log"}, d)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"delete_db_login_log", "delete_db_opera_log",
		"task_demo", "task_demo_params",
	}, r.Names())

	_, err = Build([]string{"demo", "nope"}, d)
	assert.ErrorContains(t, err, `unknown task package "nope"`)

	_, err = Build([]string{"db_log"}, Deps{})
	assert.ErrorContains(t, err, "requires log DAOs")
}

func TestPackageNames(t *testing.T) {
	names := PackageNames()
	assert.ElementsMatch(t, []string{"demo", "db_log"}, names)
}

func TestTaskDemoParams(t *testing.T) {
	r, err := Build([]string{"demo"}, Deps{})
	require.NoError(t, err)
	h, ok := r.Lookup("task_demo_params")
	require.True(t, ok)

	out, err := h(context.Background(), &task.Payload{
		Args:   []interface{}{"Hello,"},
		Kwargs: map[string]interface{}{"world": "world"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello,world", out)

	_, err = h(context.Background(), &task.Payload{})
	assert.ErrorContains(t, err, "args[0] required")

	_, err = h(context.Background(), &task.Payload{Args: []interface{}{42}})
	assert.ErrorContains(t, err, "must be a string")
}
