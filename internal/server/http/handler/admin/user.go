package admin

import (
	"errors"
	"strings"

	"go-sysadmin/internal/service"
	"go-sysadmin/internal/util/retcode"
	"go-sysadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct{ d Dependencies }

func NewUserHandler(d Dependencies) *UserHandler { return &UserHandler{d: d} }

// List 支持 dept_id 过滤（含子部门），非超管叠加数据权限
func (h *UserHandler) List(c *gin.Context) {
	page, size := pageLimit(c)
	var deptID *int64
	if v := c.Query("dept_id"); v != "" {
		id := qInt64Query(c, "dept_id")
		deptID = &id
	}
	scope, err := h.d.DataScope.FilterFor(c.Request.Context(), currentUser(c), "sys_user")
	if err != nil {
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	list, total, err := h.d.Users.List(c.Request.Context(), c.Query("username"), deptID, qInt8Ptr(c, "status"), page, size, scope)
	if err != nil {
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	response.Success(c, gin.H{"list": list, "total": total})
}

func (h *UserHandler) Get(c *gin.Context) {
	view, err := h.d.Users.Get(c.Request.Context(), pathID(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Error(c, retcode.RECORD_NOT_FOUND, "user not found")
			return
		}
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	response.Success(c, view)
}

func (h *UserHandler) Add(c *gin.Context) {
	var req struct {
		Username string  `json:"username" binding:"required"`
		Nickname string  `json:"nickname" binding:"required"`
		Password string  `json:"password" binding:"required,min=6"`
		Email    *string `json:"email"`
		Phone    *string `json:"phone"`
		DeptID   *int64  `json:"dept_id"`
		RoleIDs  []int64 `json:"role_ids"`
		IsStaff  bool    `json:"is_staff"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	u, err := h.d.Users.Add(c.Request.Context(), service.AddUserParams{
		Username: strings.TrimSpace(req.Username), Nickname: req.Nickname, Password: req.Password,
		Email: req.Email, Phone: req.Phone, DeptID: req.DeptID, RoleIDs: req.RoleIDs, IsStaff: req.IsStaff,
	})
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) || errors.Is(err, service.ErrEmailTaken) {
			response.Error(c, retcode.DATA_EXISTS, err.Error())
			return
		}
		response.Error(c, retcode.ADD_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"id": u.ID})
}

func (h *UserHandler) Edit(c *gin.Context) {
	var req struct {
		Nickname     string  `json:"nickname" binding:"required"`
		Email        *string `json:"email"`
		Phone        *string `json:"phone"`
		Avatar       *string `json:"avatar"`
		Status       int     `json:"status"`
		IsStaff      bool    `json:"is_staff"`
		IsMultiLogin bool    `json:"is_multi_login"`
		DeptID       *int64  `json:"dept_id"`
		RoleIDs      []int64 `json:"role_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	err := h.d.Users.Edit(c.Request.Context(), pathID(c), service.EditUserParams{
		Nickname: req.Nickname, Email: req.Email, Phone: req.Phone, Avatar: req.Avatar,
		Status: req.Status, IsStaff: req.IsStaff, IsMultiLogin: req.IsMultiLogin,
		DeptID: req.DeptID, RoleIDs: req.RoleIDs,
	})
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Error(c, retcode.RECORD_NOT_FOUND, "user not found")
			return
		}
		if errors.Is(err, service.ErrEmailTaken) {
			response.Error(c, retcode.DATA_EXISTS, err.Error())
			return
		}
		response.Error(c, retcode.UPDATE_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.d.Users.Delete(c.Request.Context(), pathID(c)); err != nil {
		response.Error(c, retcode.DELETE_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *UserHandler) SetStatus(c *gin.Context) {
	var req struct {
		Status int `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	if err := h.d.Users.SetStatus(c.Request.Context(), pathID(c), req.Status); err != nil {
		response.Error(c, retcode.UPDATE_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"ok": true})
}

// ResetPassword 管理员重置，不校验旧口令
func (h *UserHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	if err := h.d.Users.ResetPassword(c.Request.Context(), pathID(c), req.Password); err != nil {
		response.Error(c, retcode.UPDATE_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"ok": true})
}

// ChangePassword 当前用户修改自己的口令
func (h *UserHandler) ChangePassword(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, retcode.AUTH_ERROR, "unauthorized")
		return
	}
	var req struct {
		OldPassword string `json:"old_password" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	if err := h.d.Users.ChangePassword(c.Request.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		response.Error(c, retcode.UPDATE_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"ok": true})
}
