package security

import (
	"strings"

	"go-sysadmin/internal/logging"
	"go-sysadmin/internal/repository/dao"
	redisrepo "go-sysadmin/internal/repository/redis"
	"go-sysadmin/internal/security/jwt"
	"go-sysadmin/internal/util/retcode"
	"go-sysadmin/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthMiddleware struct {
	JWT    *jwt.Manager
	Users  *dao.UserDAO
	Redis  *redisrepo.Client
	Prefix string // jti 白名单键前缀
	Logger *logging.Logger
}

func NewAuthMiddleware(j *jwt.Manager, users *dao.UserDAO, rdb *redisrepo.Client, prefix string, lg *logging.Logger) *AuthMiddleware {
	if prefix == "" {
		prefix = "jwt:jti:"
	}
	return &AuthMiddleware{JWT: j, Users: users, Redis: rdb, Prefix: prefix, Logger: lg}
}

// Handler 认证：Bearer 解析 -> JTI 白名单 -> 加载用户。
// 退出登录即删除 JTI，令牌立刻失效，无需等过期。
func (m *AuthMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(strings.ToLower(auth), "bearer ") {
			response.Error(c, retcode.AUTH_ERROR, "missing token")
			c.Abort()
			return
		}
		claims, err := m.JWT.Parse(strings.TrimSpace(auth[7:]))
		if err != nil {
			response.Error(c, retcode.AUTH_ERROR, "invalid token")
			c.Abort()
			return
		}
		if m.Redis != nil {
			if m.Redis.Get(c.Request.Context(), m.Prefix+claims.JTI) == "" {
				response.Error(c, retcode.ACCESS_TOKEN_TIMEOUT, "token expired")
				c.Abort()
				return
			}
		}
		user, err := m.Users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			m.Logger.Logger.Error("auth load user failed", zap.Int64("uid", claims.UserID), zap.Error(err))
			response.Error(c, retcode.DB_READ_ERROR, "load user failed")
			c.Abort()
			return
		}
		if user == nil || user.Status != 1 {
			response.Error(c, retcode.AUTH_ERROR, "user disabled")
			c.Abort()
			return
		}
		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Set("username", user.Username)
		c.Set("roles", claims.Roles)
		c.Set("jti", claims.JTI)
		c.Next()
	}
}
