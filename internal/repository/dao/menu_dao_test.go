package dao

import (
	"testing"

	"go-sysadmin/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i64(v int64) *int64 { return &v }

func TestBuildMenuTree(t *testing.T) {
	list := []model.SysMenu{
		{ID: 1, Title: "系统管理", Name: "System", Type: model.MenuTypeDirectory},
		{ID: 2, Title: "用户管理", Name: "SysUser", Type: model.MenuTypeMenu, ParentID: i64(1)},
		{ID: 3, Title: "新增用户", Name: "AddSysUser", Type: model.MenuTypeButton, ParentID: i64(2)},
		{ID: 4, Title: "概览", Name: "Dashboard", Type: model.MenuTypeMenu},
	}
	roots := BuildMenuTree(list)
	require.Len(t, roots, 2)

	system := roots[0]
	assert.Equal(t, "System", system["name"])
	children := system["children"].([]map[string]interface{})
	require.Len(t, children, 1)
	assert.Equal(t, "SysUser", children[0]["name"])
	buttons := children[0]["children"].([]map[string]interface{})
	require.Len(t, buttons, 1)
	assert.Equal(t, "AddSysUser", buttons[0]["name"])

	_, hasChildren := roots[1]["children"]
	assert.False(t, hasChildren)
}

func TestBuildMenuTreeOrphanAsRoot(t *testing.T) {
	list := []model.SysMenu{
		{ID: 10, Title: "孤儿菜单", Name: "Orphan", ParentID: i64(999)},
	}
	roots := BuildMenuTree(list)
	require.Len(t, roots, 1)
	assert.Equal(t, "Orphan", roots[0]["name"])
}

func TestDecodeCachedTree(t *testing.T) {
	assert.Nil(t, DecodeCachedTree(""))
	assert.Nil(t, DecodeCachedTree("  "))
	assert.Nil(t, DecodeCachedTree("{broken"))

	v := DecodeCachedTree(`[{"id":1,"name":"System"}]`)
	require.NotNil(t, v)
	arr, ok := v.([]interface{})
	require.True(t, ok)
	assert.Len(t, arr, 1)
}
