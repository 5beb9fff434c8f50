package admin

import (
	"go-sysadmin/internal/util/retcode"
	"go-sysadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

// LogHandler 登录日志 / 操作日志
type LogHandler struct{ d Dependencies }

func NewLogHandler(d Dependencies) *LogHandler { return &LogHandler{d: d} }

func (h *LogHandler) ListLogin(c *gin.Context) {
	page, size := pageLimit(c)
	list, total, err := h.d.Logs.ListLoginLogs(c.Request.Context(), c.Query("username"), c.Query("ip"), qInt8Ptr(c, "status"), page, size)
	if err != nil {
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	response.Success(c, gin.H{"list": list, "total": total})
}

func (h *LogHandler) DeleteLogin(c *gin.Context) {
	var req idsBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	if err := h.d.Logs.DeleteLoginLogs(c.Request.Context(), req.IDs); err != nil {
		response.Error(c, retcode.DELETE_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *LogHandler) ClearLogin(c *gin.Context) {
	if err := h.d.Logs.ClearLoginLogs(c.Request.Context()); err != nil {
		response.Error(c, retcode.DELETE_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *LogHandler) ListOpera(c *gin.Context) {
	page, size := pageLimit(c)
	list, total, err := h.d.Logs.ListOperaLogs(c.Request.Context(), c.Query("username"), c.Query("ip"), qInt8Ptr(c, "status"), page, size)
	if err != nil {
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	response.Success(c, gin.H{"list": list, "total": total})
}

func (h *LogHandler) DeleteOpera(c *gin.Context) {
	var req idsBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	if err := h.d.Logs.DeleteOperaLogs(c.Request.Context(), req.IDs); err != nil {
		response.Error(c, retcode.DELETE_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *LogHandler) ClearOpera(c *gin.Context) {
	if err := h.d.Logs.ClearOperaLogs(c.Request.Context()); err != nil {
		response.Error(c, retcode.DELETE_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"ok": true})
}
