package service

import (
	"context"
	"testing"

	"go-sysadmin/internal/domain/model"
	"go-sysadmin/internal/repository/dao"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserTestService(t *testing.T) *UserService {
	db := newTestDB(t, &model.SysUser{}, &model.SysUserRole{}, &model.SysDept{}, &model.SysRole{})
	return NewUserService(dao.NewUserDAO(db), dao.NewDeptDAO(db), dao.NewRoleDAO(db), nil)
}

func strPtrU(s string) *string { return &s }

// 邮箱重复要返回明确的业务错误，不能等落库撞唯一键
func TestAddUserDuplicateEmail(t *testing.T) {
	svc := newUserTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, AddUserParams{
		Username: "alice", Nickname: "Alice", Password: "secret01",
		Email: strPtrU("alice@example.com"),
	})
	require.NoError(t, err)

	_, err = svc.Add(ctx, AddUserParams{
		Username: "bob", Nickname: "Bob", Password: "secret01",
		Email: strPtrU("alice@example.com"),
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	// 邮箱可空，不参与查重
	_, err = svc.Add(ctx, AddUserParams{
		Username: "carol", Nickname: "Carol", Password: "secret01",
	})
	assert.NoError(t, err)
}

func TestEditUserDuplicateEmail(t *testing.T) {
	svc := newUserTestService(t)
	ctx := context.Background()

	a, err := svc.Add(ctx, AddUserParams{
		Username: "alice", Nickname: "Alice", Password: "secret01",
		Email: strPtrU("alice@example.com"),
	})
	require.NoError(t, err)
	b, err := svc.Add(ctx, AddUserParams{
		Username: "bob", Nickname: "Bob", Password: "secret01",
		Email: strPtrU("bob@example.com"),
	})
	require.NoError(t, err)

	// 改成别人的邮箱
	err = svc.Edit(ctx, b.ID, EditUserParams{
		Nickname: "Bob", Email: strPtrU("alice@example.com"), Status: 1,
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	// 保留自己的邮箱不算重复
	err = svc.Edit(ctx, a.ID, EditUserParams{
		Nickname: "Alice2", Email: strPtrU("alice@example.com"), Status: 1,
	})
	assert.NoError(t, err)
}
