package admin

import (
	"errors"

	"go-sysadmin/internal/service"
	"go-sysadmin/internal/util/retcode"
	"go-sysadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct{ d Dependencies }

func NewRoleHandler(d Dependencies) *RoleHandler { return &RoleHandler{d: d} }

func (h *RoleHandler) List(c *gin.Context) {
	page, size := pageLimit(c)
	list, total, err := h.d.Roles.List(c.Request.Context(), c.Query("name"), qInt8Ptr(c, "status"), page, size)
	if err != nil {
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	response.Success(c, gin.H{"list": list, "total": total})
}

func (h *RoleHandler) Get(c *gin.Context) {
	view, err := h.d.Roles.Get(c.Request.Context(), pathID(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Error(c, retcode.RECORD_NOT_FOUND, "role not found")
			return
		}
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	response.Success(c, view)
}

type roleBody struct {
	Name           string  `json:"name" binding:"required"`
	Status         int     `json:"status"`
	IsFilterScopes bool    `json:"is_filter_scopes"`
	Remark         *string `json:"remark"`
}

func (h *RoleHandler) Add(c *gin.Context) {
	var req roleBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	r, err := h.d.Roles.Add(c.Request.Context(), service.RoleParams{
		Name: req.Name, Status: req.Status, IsFilterScopes: req.IsFilterScopes, Remark: req.Remark,
	})
	if err != nil {
		if errors.Is(err, service.ErrRoleNameTaken) {
			response.Error(c, retcode.DATA_EXISTS, err.Error())
			return
		}
		response.Error(c, retcode.ADD_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"id": r.ID})
}

func (h *RoleHandler) Edit(c *gin.Context) {
	var req roleBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	err := h.d.Roles.Edit(c.Request.Context(), pathID(c), service.RoleParams{
		Name: req.Name, Status: req.Status, IsFilterScopes: req.IsFilterScopes, Remark: req.Remark,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.Error(c, retcode.RECORD_NOT_FOUND, "role not found")
		case errors.Is(err, service.ErrRoleNameTaken):
			response.Error(c, retcode.DATA_EXISTS, err.Error())
		default:
			response.Error(c, retcode.UPDATE_FAILED, err.Error())
		}
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *RoleHandler) Delete(c *gin.Context) {
	if err := h.d.Roles.Delete(c.Request.Context(), pathID(c)); err != nil {
		response.Error(c, retcode.DELETE_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"ok": true})
}

// BindMenus 全量替换角色的菜单授权
func (h *RoleHandler) BindMenus(c *gin.Context) {
	var req struct {
		MenuIDs []int64 `json:"menu_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	if err := h.d.Roles.BindMenus(c.Request.Context(), pathID(c), req.MenuIDs); err != nil {
		response.Error(c, retcode.DB_SAVE_ERROR, err.Error())
		return
	}
	response.Success(c, gin.H{"ok": true})
}

// BindScopes 全量替换角色的数据范围授权
func (h *RoleHandler) BindScopes(c *gin.Context) {
	var req struct {
		ScopeIDs []int64 `json:"scope_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	if err := h.d.Roles.BindScopes(c.Request.Context(), pathID(c), req.ScopeIDs); err != nil {
		response.Error(c, retcode.DB_SAVE_ERROR, err.Error())
		return
	}
	response.Success(c, gin.H{"ok": true})
}
