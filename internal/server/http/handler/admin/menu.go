package admin

import (
	"errors"

	"go-sysadmin/internal/service"
	"go-sysadmin/internal/util/retcode"
	"go-sysadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type MenuHandler struct{ d Dependencies }

func NewMenuHandler(d Dependencies) *MenuHandler { return &MenuHandler{d: d} }

func (h *MenuHandler) Tree(c *gin.Context) {
	tree, err := h.d.Menus.Tree(c.Request.Context(), c.Query("title"), qInt8Ptr(c, "status"))
	if err != nil {
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	response.Success(c, tree)
}

type menuBody struct {
	Title     string  `json:"title" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	ParentID  *int64  `json:"parent_id"`
	Path      *string `json:"path"`
	Sort      int     `json:"sort"`
	Icon      *string `json:"icon"`
	Type      int     `json:"type"`
	Component *string `json:"component"`
	Perms     *string `json:"perms"`
	Status    int     `json:"status"`
	Display   int     `json:"display"`
	Cache     int     `json:"cache"`
	Link      *string `json:"link"`
	Remark    *string `json:"remark"`
}

func (b menuBody) params() service.MenuParams {
	return service.MenuParams{
		Title: b.Title, Name: b.Name, ParentID: b.ParentID, Path: b.Path, Sort: b.Sort,
		Icon: b.Icon, Type: b.Type, Component: b.Component, Perms: b.Perms,
		Status: b.Status, Display: b.Display, Cache: b.Cache, Link: b.Link, Remark: b.Remark,
	}
}

func (h *MenuHandler) Add(c *gin.Context) {
	var req menuBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	m, err := h.d.Menus.Add(c.Request.Context(), req.params())
	if err != nil {
		response.Error(c, retcode.ADD_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"id": m.ID})
}

func (h *MenuHandler) Edit(c *gin.Context) {
	var req menuBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	if err := h.d.Menus.Edit(c.Request.Context(), pathID(c), req.params()); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Error(c, retcode.RECORD_NOT_FOUND, "menu not found")
			return
		}
		response.Error(c, retcode.UPDATE_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *MenuHandler) Delete(c *gin.Context) {
	err := h.d.Menus.Delete(c.Request.Context(), pathID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMenuHasChildren):
			response.Error(c, retcode.INVALID, err.Error())
		case errors.Is(err, service.ErrNotFound):
			response.Error(c, retcode.RECORD_NOT_FOUND, "menu not found")
		default:
			response.Error(c, retcode.DELETE_FAILED, err.Error())
		}
		return
	}
	response.Success(c, gin.H{"ok": true})
}
