package admin

import (
	"errors"
	"time"

	"go-sysadmin/internal/service"
	"go-sysadmin/internal/util/retcode"
	"go-sysadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

// SchedulerHandler 周期任务定义与结果查询
type SchedulerHandler struct{ d Dependencies }

func NewSchedulerHandler(d Dependencies) *SchedulerHandler { return &SchedulerHandler{d: d} }

func (h *SchedulerHandler) List(c *gin.Context) {
	page, size := pageLimit(c)
	list, total, err := h.d.Scheduler.List(c.Request.Context(), c.Query("name"), page, size)
	if err != nil {
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	response.Success(c, gin.H{"list": list, "total": total})
}

func (h *SchedulerHandler) Get(c *gin.Context) {
	row, err := h.d.Scheduler.Get(c.Request.Context(), pathID(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Error(c, retcode.RECORD_NOT_FOUND, "scheduler not found")
			return
		}
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	response.Success(c, row)
}

type schedulerBody struct {
	Name           string     `json:"name" binding:"required"`
	Task           string     `json:"task" binding:"required"`
	Args           *string    `json:"args"`
	Kwargs         *string    `json:"kwargs"`
	Queue          *string    `json:"queue"`
	StartTime      *time.Time `json:"start_time"`
	ExpireTime     *time.Time `json:"expire_time"`
	ExpireSeconds  *int       `json:"expire_seconds"`
	Type           int        `json:"type"`
	IntervalEvery  *int       `json:"interval_every"`
	IntervalPeriod *string    `json:"interval_period"`
	Crontab        string     `json:"crontab"`
	OneOff         bool       `json:"one_off"`
	Remark         *string    `json:"remark"`
}

func (b schedulerBody) params() service.SchedulerParams {
	return service.SchedulerParams{
		Name: b.Name, Task: b.Task, Args: b.Args, Kwargs: b.Kwargs, Queue: b.Queue,
		StartTime: b.StartTime, ExpireTime: b.ExpireTime, ExpireSeconds: b.ExpireSeconds,
		Type: b.Type, IntervalEvery: b.IntervalEvery, IntervalPeriod: b.IntervalPeriod,
		Crontab: b.Crontab, OneOff: b.OneOff, Remark: b.Remark,
	}
}

func (h *SchedulerHandler) Add(c *gin.Context) {
	var req schedulerBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	row, err := h.d.Scheduler.Add(c.Request.Context(), req.params())
	if err != nil {
		if errors.Is(err, service.ErrSchedulerNameTaken) {
			response.Error(c, retcode.DATA_EXISTS, err.Error())
			return
		}
		response.Error(c, retcode.ADD_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"id": row.ID})
}

func (h *SchedulerHandler) Edit(c *gin.Context) {
	var req schedulerBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	if err := h.d.Scheduler.Edit(c.Request.Context(), pathID(c), req.params()); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			response.Error(c, retcode.RECORD_NOT_FOUND, "scheduler not found")
		case errors.Is(err, service.ErrSchedulerNameTaken):
			response.Error(c, retcode.DATA_EXISTS, err.Error())
		default:
			response.Error(c, retcode.UPDATE_FAILED, err.Error())
		}
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *SchedulerHandler) Delete(c *gin.Context) {
	if err := h.d.Scheduler.Delete(c.Request.Context(), pathID(c)); err != nil {
		response.Error(c, retcode.DELETE_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"ok": true})
}

func (h *SchedulerHandler) SetEnabled(c *gin.Context) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	if err := h.d.Scheduler.SetEnabled(c.Request.Context(), pathID(c), req.Enabled); err != nil {
		response.Error(c, retcode.UPDATE_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"ok": true})
}

// RunNow 立即触发一次，返回本次 task_id
func (h *SchedulerHandler) RunNow(c *gin.Context) {
	taskID, err := h.d.Scheduler.RunNow(c.Request.Context(), pathID(c))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Error(c, retcode.RECORD_NOT_FOUND, "scheduler not found")
			return
		}
		response.Error(c, retcode.TASK_ENQUEUE_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"task_id": taskID})
}

// ===== 任务结果 =====

func (h *SchedulerHandler) ListResults(c *gin.Context) {
	page, size := pageLimit(c)
	list, total, err := h.d.Scheduler.ListResults(c.Request.Context(), c.Query("name"), c.Query("task_id"), page, size)
	if err != nil {
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	response.Success(c, gin.H{"list": list, "total": total})
}

func (h *SchedulerHandler) DeleteResults(c *gin.Context) {
	var req idsBody
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	if err := h.d.Scheduler.DeleteResults(c.Request.Context(), req.IDs); err != nil {
		response.Error(c, retcode.DELETE_FAILED, err.Error())
		return
	}
	response.Success(c, gin.H{"ok": true})
}
