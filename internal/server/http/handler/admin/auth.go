package admin

import (
	"errors"

	"go-sysadmin/internal/service"
	"go-sysadmin/internal/util/retcode"
	"go-sysadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ d Dependencies }

func NewAuthHandler(d Dependencies) *AuthHandler { return &AuthHandler{d: d} }

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, retcode.JSON_PARSE_FAIL, "invalid body")
		return
	}
	res, err := h.d.Auth.Login(c.Request.Context(), req.Username, req.Password, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials),
			errors.Is(err, service.ErrUserDisabled),
			errors.Is(err, service.ErrNotStaff):
			response.Error(c, retcode.LOGIN_ERROR, err.Error())
		default:
			response.Error(c, retcode.EXCEPTION, err.Error())
		}
		return
	}
	response.Success(c, gin.H{
		"token":     res.Token,
		"expire_in": res.ExpireIn,
		"user":      res.User,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	uid := c.GetInt64("user_id")
	jti := c.GetString("jti")
	if err := h.d.Auth.Logout(c.Request.Context(), uid, jti); err != nil {
		response.Error(c, retcode.CACHE_SAVE_ERROR, err.Error())
		return
	}
	response.Success(c, gin.H{"ok": true})
}

// Refresh 换发 token，旧 token 即时失效
func (h *AuthHandler) Refresh(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, retcode.AUTH_ERROR, "unauthorized")
		return
	}
	res, err := h.d.Auth.Refresh(c.Request.Context(), user, c.GetString("jti"))
	if err != nil {
		if errors.Is(err, service.ErrUserDisabled) {
			response.Error(c, retcode.LOGIN_ERROR, err.Error())
			return
		}
		response.Error(c, retcode.EXCEPTION, err.Error())
		return
	}
	response.Success(c, gin.H{"token": res.Token, "expire_in": res.ExpireIn})
}

// UserInfo 返回当前用户档案、角色与权限码集合
func (h *AuthHandler) UserInfo(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, retcode.AUTH_ERROR, "unauthorized")
		return
	}
	view, err := h.d.Users.Get(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	perms := []string{}
	if user.IsSuperuser {
		perms = append(perms, "*")
	} else {
		set, _ := h.d.Perms.GetUserPerms(c.Request.Context(), user.ID)
		for p := range set {
			perms = append(perms, p)
		}
	}
	response.Success(c, gin.H{"user": view, "perms": perms})
}

// Sidebar 当前用户可见菜单树（按钮与禁用项已过滤）
func (h *AuthHandler) Sidebar(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		response.Error(c, retcode.AUTH_ERROR, "unauthorized")
		return
	}
	tree, err := h.d.Menus.Sidebar(c.Request.Context(), user)
	if err != nil {
		response.Error(c, retcode.DB_READ_ERROR, err.Error())
		return
	}
	response.Success(c, tree)
}
