package admin

import (
	"errors"

	"go-sysadmin/internal/service"
	"go-sysadmin/internal/util/retcode"
	"go-sysadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

// DataHandler 数据范围 + 数据规则管理
type DataHandler struct{ d Dependencies }

func NewDataHandler(d Dependencies) *DataHandler { return &DataHandler{d: d} }

// ===== 数据范围 =====

func (h *DataHandler) ListScopes(c *gin.Context) {
	page, size := pageLimit(c)
	list, total, err := h.d.Scopes.List(c.Request.Context(), c.Query("name"), qInt8Ptr(c, "status"), page, size)
	if err != nil {
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	response.Success(c, gin.H{"list": list, "total": total})
}

func (h *DataHandler) GetScope(c *gin.Context) {
	view, err := h.d.Scopes.Get(c.Request.Context(), pathID(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Error(c, retcode.RECORD_NOT_FOUND, "scope not found")
			return
		}
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	response.Success(c, view)
}

type scopeBody struct {
	Name   string `json:"name" binding:"required"`
	Status int    `json:"status"`
}

func (h *DataHandler) AddScope(c *gin.Context) {
	var req scopeBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	sc, err := h.d.Scopes.Add(c.Request.Context(), req.Name, req.Status)
	if err != nil {
		response.Error(c, retcode.ADD_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"id": sc.ID})
}

func (h *DataHandler) EditScope(c *gin.Context) {
	var req scopeBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	if err := h.d.Scopes.Edit(c.Request.Context(), pathID(c), req.Name, req.Status); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Error(c, retcode.RECORD_NOT_FOUND, "scope not found")
			return
		}
		response.Error(c, retcode.UPDATE_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *DataHandler) DeleteScope(c *gin.Context) {
	if err := h.d.Scopes.Delete(c.Request.Context(), pathID(c)); err != nil {
		response.Error(c, retcode.DELETE_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"ok": true})
}

// BindRules 全量替换范围下挂的规则
func (h *DataHandler) BindRules(c *gin.Context) {
	var req struct {
		RuleIDs []int64 `json:"rule_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	if err := h.d.Scopes.BindRules(c.Request.Context(), pathID(c), req.RuleIDs); err != nil {
		response.Error(c, retcode.DB_SAVE_ERROR, err.Error())
		return
	}
	response.Success(c, gin.H{"ok": true})
}

// ===== 数据规则 =====

func (h *DataHandler) ListRules(c *gin.Context) {
	page, size := pageLimit(c)
	list, total, err := h.d.Rules.List(c.Request.Context(), c.Query("name"), page, size)
	if err != nil {
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	response.Success(c, gin.H{"list": list, "total": total})
}

func (h *DataHandler) GetRule(c *gin.Context) {
	rule, err := h.d.Rules.Get(c.Request.Context(), pathID(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Error(c, retcode.RECORD_NOT_FOUND, "rule not found")
			return
		}
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	response.Success(c, rule)
}

type ruleBody struct {
	Name       string `json:"name" binding:"required"`
	Model      string `json:"model" binding:"required"`
	Column     string `json:"column" binding:"required"`
	Operator   int    `json:"operator"`
	Expression int    `json:"expression"`
	Value      string `json:"value" binding:"required"`
}

func (b ruleBody) params() service.DataRuleParams {
	return service.DataRuleParams{
		Name: b.Name, Model: b.Model, Column: b.Column,
		Operator: b.Operator, Expression: b.Expression, Value: b.Value,
	}
}

func (h *DataHandler) AddRule(c *gin.Context) {
	var req ruleBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	rule, err := h.d.Rules.Add(c.Request.Context(), req.params())
	if err != nil {
		// 规则编译失败也走这里，提示信息含具体原因
		response.Error(c, retcode.ADD_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"id": rule.ID})
}

func (h *DataHandler) EditRule(c *gin.Context) {
	var req ruleBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	if err := h.d.Rules.Edit(c.Request.Context(), pathID(c), req.params()); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Error(c, retcode.RECORD_NOT_FOUND, "rule not found")
			return
		}
		response.Error(c, retcode.UPDATE_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *DataHandler) DeleteRule(c *gin.Context) {
	if err := h.d.Rules.Delete(c.Request.Context(), pathID(c)); err != nil {
		response.Error(c, retcode.DELETE_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"ok": true})
}
