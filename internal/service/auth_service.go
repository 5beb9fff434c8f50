package service

import (
	"context"
	"errors"
	"time"

	"go-sysadmin/internal/domain/model"
	"go-sysadmin/internal/logging"
	"go-sysadmin/internal/repository/dao"
	redisrepo "go-sysadmin/internal/repository/redis"
	"go-sysadmin/internal/security/jwt"
	"go-sysadmin/pkg/crypto"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user disabled")
	ErrNotStaff           = errors.New("user is not backend staff")
)

// AuthService 登录/登出。JTI 白名单放 redis：
// 登录写入 jti key，校验中间件查 key 存在性，登出删 key 即时失效。
// 非多端登录用户在新登录时吊销旧 JTI。
type AuthService struct {
	Users     *dao.UserDAO
	LoginLogs *dao.LoginLogDAO
	JWT       *jwt.Manager
	Redis     *redisrepo.Client
	jtiPrefix string
	logger    *logging.Logger
}

func NewAuthService(u *dao.UserDAO, ll *dao.LoginLogDAO, j *jwt.Manager, r *redisrepo.Client, jtiPrefix string, logger *logging.Logger) *AuthService {
	if jtiPrefix == "" {
		jtiPrefix = "jwt:jti:"
	}
	return &AuthService{Users: u, LoginLogs: ll, JWT: j, Redis: r, jtiPrefix: jtiPrefix, logger: logger}
}

type LoginResult struct {
	Token    string         `json:"token"`
	User     *model.SysUser `json:"user"`
	ExpireIn int64          `json:"expire_in"`
}

// Login 校验口令并签发 token，成功失败都会记录登录日志
func (s *AuthService) Login(ctx context.Context, username, password, ip, userAgent string) (*LoginResult, error) {
	user, err := s.Users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Password == nil || !crypto.VerifyPassword(password, user.Salt, *user.Password) {
		s.writeLoginLog(user, username, ip, userAgent, 0, "invalid credentials")
		return nil, ErrInvalidCredentials
	}
	if user.Status != 1 {
		s.writeLoginLog(user, username, ip, userAgent, 0, "user disabled")
		return nil, ErrUserDisabled
	}
	if !user.IsStaff {
		s.writeLoginLog(user, username, ip, userAgent, 0, "not staff")
		return nil, ErrNotStaff
	}
	roleIDs, err := s.Users.RoleIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	jti := uuid.NewString()
	token, err := s.JWT.Generate(user.ID, roleIDs, jti)
	if err != nil {
		return nil, err
	}
	if s.Redis != nil {
		if !user.IsMultiLogin {
			if prev := s.Redis.Get(ctx, s.userJTIKey(user.ID)); prev != "" {
				s.Redis.Del(ctx, s.jtiPrefix+prev)
			}
		}
		_ = s.Redis.SetTTL(ctx, s.jtiPrefix+jti, user.ID, s.JWT.ExpireDuration())
		_ = s.Redis.SetTTL(ctx, s.userJTIKey(user.ID), jti, s.JWT.ExpireDuration())
	}
	now := time.Now()
	_ = s.Users.TouchLastLogin(ctx, user.ID, now)
	s.writeLoginLog(user, username, ip, userAgent, 1, "login ok")
	return &LoginResult{
		Token:    token,
		User:     user,
		ExpireIn: int64(s.JWT.ExpireDuration().Seconds()),
	}, nil
}

// Refresh 以当前有效会话换发新 token：签发新 JTI 并吊销旧 JTI，
// 有效期重新起算。多端登录用户各端各自换发互不影响。
func (s *AuthService) Refresh(ctx context.Context, user *model.SysUser, oldJTI string) (*LoginResult, error) {
	if user.Status != 1 {
		return nil, ErrUserDisabled
	}
	roleIDs, err := s.Users.RoleIDs(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	jti := uuid.NewString()
	token, err := s.JWT.Generate(user.ID, roleIDs, jti)
	if err != nil {
		return nil, err
	}
	if s.Redis != nil {
		_ = s.Redis.SetTTL(ctx, s.jtiPrefix+jti, user.ID, s.JWT.ExpireDuration())
		if cur := s.Redis.Get(ctx, s.userJTIKey(user.ID)); cur == oldJTI {
			_ = s.Redis.SetTTL(ctx, s.userJTIKey(user.ID), jti, s.JWT.ExpireDuration())
		}
		if oldJTI != "" {
			s.Redis.Del(ctx, s.jtiPrefix+oldJTI)
		}
	}
	return &LoginResult{
		Token:    token,
		User:     user,
		ExpireIn: int64(s.JWT.ExpireDuration().Seconds()),
	}, nil
}

// Logout 吊销当前 JTI
func (s *AuthService) Logout(ctx context.Context, uid int64, jti string) error {
	if jti == "" || s.Redis == nil {
		return nil
	}
	s.Redis.Del(ctx, s.jtiPrefix+jti)
	if cur := s.Redis.Get(ctx, s.userJTIKey(uid)); cur == jti {
		s.Redis.Del(ctx, s.userJTIKey(uid))
	}
	return nil
}

// TokenActive JTI 是否仍在白名单
func (s *AuthService) TokenActive(ctx context.Context, jti string) bool {
	if s.Redis == nil {
		return true
	}
	return s.Redis.Get(ctx, s.jtiPrefix+jti) != ""
}

func (s *AuthService) userJTIKey(uid int64) string {
	return s.jtiPrefix + "user:" + jwtUID(uid)
}

// 日志写入不阻塞登录路径
func (s *AuthService) writeLoginLog(user *model.SysUser, username, ip, userAgent string, status int, msg string) {
	row := &model.SysLoginLog{
		Username:  username,
		Status:    status,
		IP:        ip,
		UserAgent: userAgent,
		Msg:       msg,
		LoginTime: time.Now(),
	}
	if user != nil {
		row.UserUUID = user.UUID
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := s.LoginLogs.Create(ctx, row); err != nil && s.logger != nil {
			s.logger.Logger.Warn("write login log failed", zap.Error(err))
		}
	}()
}
