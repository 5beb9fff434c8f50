package security

import (
	"go-sysadmin/internal/domain/model"
	"go-sysadmin/internal/service"
	"go-sysadmin/internal/util/retcode"
	"go-sysadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequirePerm 校验当前用户是否持有任一权限标识（形如 sys:user:add）。
// 超级管理员直接放行。
func RequirePerm(permSvc *service.PermissionService, codes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userAny, ok := c.Get("user")
		if !ok {
			response.Error(c, retcode.AUTH_ERROR, "unauthorized")
			c.Abort()
			return
		}
		user := userAny.(*model.SysUser)
		if user.IsSuperuser {
			c.Next()
			return
		}
		for _, code := range codes {
			if permSvc.HasPerm(c.Request.Context(), user.ID, code) {
				c.Next()
				return
			}
		}
		response.Error(c, retcode.AUTH_ERROR, "forbidden")
		c.Abort()
	}
}
