package admin

import (
	"errors"

	"go-sysadmin/internal/service"
	"go-sysadmin/internal/util/retcode"
	"go-sysadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type DeptHandler struct{ d Dependencies }

func NewDeptHandler(d Dependencies) *DeptHandler { return &DeptHandler{d: d} }

// Tree 非超管叠加数据权限过滤
func (h *DeptHandler) Tree(c *gin.Context) {
	scope, err := h.d.DataScope.FilterFor(c.Request.Context(), currentUser(c), "sys_dept")
	if err != nil {
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	tree, err := h.d.Depts.Tree(c.Request.Context(), c.Query("name"), c.Query("leader"), c.Query("phone"), qInt8Ptr(c, "status"), scope)
	if err != nil {
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	response.Success(c, tree)
}

func (h *DeptHandler) Get(c *gin.Context) {
	dept, err := h.d.Depts.Get(c.Request.Context(), pathID(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Error(c, retcode.RECORD_NOT_FOUND, "dept not found")
			return
		}
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	response.Success(c, dept)
}

type deptBody struct {
	Name     string  `json:"name" binding:"required"`
	ParentID *int64  `json:"parent_id"`
	Sort     int     `json:"sort"`
	Leader   *string `json:"leader"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Status   int     `json:"status"`
}

func (b deptBody) params() service.DeptParams {
	return service.DeptParams{
		Name: b.Name, ParentID: b.ParentID, Sort: b.Sort,
		Leader: b.Leader, Phone: b.Phone, Email: b.Email, Status: b.Status,
	}
}

func (h *DeptHandler) Add(c *gin.Context) {
	var req deptBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	dept, err := h.d.Depts.Add(c.Request.Context(), req.params())
	if err != nil {
		response.Error(c, retcode.ADD_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"id": dept.ID})
}

func (h *DeptHandler) Edit(c *gin.Context) {
	var req deptBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	if err := h.d.Depts.Edit(c.Request.Context(), pathID(c), req.params()); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Error(c, retcode.RECORD_NOT_FOUND, "dept not found")
			return
		}
		response.Error(c, retcode.UPDATE_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *DeptHandler) Delete(c *gin.Context) {
	err := h.d.Depts.Delete(c.Request.Context(), pathID(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDeptHasChildren), errors.Is(err, service.ErrDeptHasUsers):
			response.Error(c, retcode.INVALID, err.Error())
		case errors.Is(err, service.ErrNotFound):
			response.Error(c, retcode.RECORD_NOT_FOUND, "dept not found")
		default:
			response.Error(c, retcode.DELETE_FAILED, err.Error())
		}
		return
	}
	response.Success(c, gin.H{"ok": true})
}
