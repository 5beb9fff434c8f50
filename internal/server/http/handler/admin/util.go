package admin

import (
	"strconv"

	"go-sysadmin/internal/domain/model"

	"github.com/gin-gonic/gin"
)

// currentUser 认证中间件写入的当前用户；未认证路由返回 nil
func currentUser(c *gin.Context) *model.SysUser {
	if v, ok := c.Get("user"); ok {
		if u, ok2 := v.(*model.SysUser); ok2 {
			return u
		}
	}
	return nil
}

func qInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	return def
}

func qInt64Query(c *gin.Context, key string) int64 {
	i, _ := strconv.ParseInt(c.Query(key), 10, 64)
	return i
}

func pathID(c *gin.Context) int64 {
	i, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	return i
}

func qInt8Ptr(c *gin.Context, key string) *int8 {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	iv, err := strconv.ParseInt(v, 10, 8)
	if err != nil {
		return nil
	}
	vv := int8(iv)
	return &vv
}

func pageLimit(c *gin.Context) (int, int) { return qInt(c, "page", 1), qInt(c, "size", 20) }

// idsBody 批量删除类接口统一请求体
type idsBody struct {
	IDs []int64 `json:"ids" binding:"required"`
}
