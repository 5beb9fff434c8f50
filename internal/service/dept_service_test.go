package service

import (
	"testing"

	"go-sysadmin/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func TestBuildDeptTree(t *testing.T) {
	list := []model.SysDept{
		{ID: 1, Name: "总部", Sort: 0},
		{ID: 2, Name: "研发部", ParentID: int64Ptr(1), Sort: 1},
		{ID: 3, Name: "测试", ParentID: int64Ptr(1), Sort: 0},
		{ID: 4, Name: "前端组", ParentID: int64Ptr(2), Sort: 0},
	}
	roots := BuildDeptTree(list)
	require.Len(t, roots, 1)
	assert.Equal(t, "总部", roots[0].Name)

	require.Len(t, roots[0].Children, 2)
	// 同级按 sort 升序
	assert.Equal(t, "测试", roots[0].Children[0].Name)
	assert.Equal(t, "研发部", roots[0].Children[1].Name)
	require.Len(t, roots[0].Children[1].Children, 1)
	assert.Equal(t, "前端组", roots[0].Children[1].Children[0].Name)
}

func TestBuildDeptTreeOrphanPromoted(t *testing.T) {
	// 父节点被状态/数据权限过滤掉时，子节点上浮为根
	list := []model.SysDept{
		{ID: 5, Name: "孤儿部门", ParentID: int64Ptr(99), Sort: 0},
		{ID: 6, Name: "正常根", Sort: 1},
	}
	roots := BuildDeptTree(list)
	require.Len(t, roots, 2)
	assert.Equal(t, "孤儿部门", roots[0].Name)
	assert.Equal(t, "正常根", roots[1].Name)
}

func TestBuildDeptTreeSameSortOrderedByID(t *testing.T) {
	list := []model.SysDept{
		{ID: 3, Name: "c", Sort: 0},
		{ID: 1, Name: "a", Sort: 0},
		{ID: 2, Name: "b", Sort: 0},
	}
	roots := BuildDeptTree(list)
	require.Len(t, roots, 3)
	assert.Equal(t, int64(1), roots[0].ID)
	assert.Equal(t, int64(2), roots[1].ID)
	assert.Equal(t, int64(3), roots[2].ID)
}
