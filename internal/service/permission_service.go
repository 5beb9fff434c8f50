package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go-sysadmin/internal/metrics"
	"go-sysadmin/internal/pkg/cache"
	"go-sysadmin/internal/repository/dao"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PermissionService 用户权限码集合的加载与缓存。
// 权限码 = 角色绑定菜单的 perms 字段（逗号分隔可含多码），统一小写。
// 超级管理员不查库，中间件直接放行。
// 缓存为 LayeredCache(L1 本地 + L2 redis)，空结果写 sentinel 防穿透。
type PermissionService struct {
	Users *dao.UserDAO
	Menus *dao.MenuDAO
	Roles *dao.RoleDAO
	Cache cache.Cache

	ttl         time.Duration
	redisPrefix string

	metricHit    uint64
	metricDBLoad uint64
}

func NewPermissionService(u *dao.UserDAO, m *dao.MenuDAO, r *dao.RoleDAO, c cache.Cache) *PermissionService {
	return &PermissionService{
		Users: u, Menus: m, Roles: r, Cache: c,
		ttl: 5 * time.Minute, redisPrefix: "perm:user:",
	}
}

func (p *PermissionService) tracer() trace.Tracer { return otel.Tracer("service.permission") }

// GetUserPerms 返回用户权限码集合
func (p *PermissionService) GetUserPerms(ctx context.Context, uid int64) (map[string]struct{}, error) {
	ctx, span := p.tracer().Start(ctx, "PermissionService.GetUserPerms")
	defer span.End()
	key := p.redisKey(uid)
	if p.Cache != nil {
		if v, _ := p.Cache.Get(ctx, key); v != "" {
			if cache.IsNilSentinel(v) {
				metrics.CacheNilHit.WithLabelValues("perm").Inc()
				atomic.AddUint64(&p.metricHit, 1)
				return map[string]struct{}{}, nil
			}
			var arr []string
			if json.Unmarshal([]byte(v), &arr) == nil {
				atomic.AddUint64(&p.metricHit, 1)
				return toSet(arr), nil
			}
		}
	}
	roleIDs, err := p.Users.RoleIDs(ctx, uid)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	atomic.AddUint64(&p.metricDBLoad, 1)
	if len(roleIDs) == 0 {
		p.setCache(ctx, key, cache.WrapNil(true), 15*time.Second)
		return map[string]struct{}{}, nil
	}
	menus, err := p.Menus.FindByRoleIDs(ctx, roleIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	arr := make([]string, 0, len(menus))
	seen := map[string]struct{}{}
	for _, m := range menus {
		if m.Status != 1 || m.Perms == nil {
			continue
		}
		for _, code := range strings.Split(*m.Perms, ",") {
			code = strings.ToLower(strings.TrimSpace(code))
			if code == "" {
				continue
			}
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			arr = append(arr, code)
		}
	}
	if len(arr) == 0 {
		p.setCache(ctx, key, cache.WrapNil(true), 15*time.Second)
		return map[string]struct{}{}, nil
	}
	if b, err := json.Marshal(arr); err == nil {
		p.setCache(ctx, key, string(b), p.ttl)
	}
	return seen, nil
}

// HasPerm 权限码判定，code 已小写
func (p *PermissionService) HasPerm(ctx context.Context, uid int64, code string) bool {
	perms, err := p.GetUserPerms(ctx, uid)
	if err != nil {
		return false
	}
	_, ok := perms[strings.ToLower(code)]
	return ok
}

// Invalidate 单用户失效（改用户角色后调用）
func (p *PermissionService) Invalidate(ctx context.Context, uid int64) {
	metrics.PermissionInvalidateTotal.WithLabelValues("single").Inc()
	if p.Cache != nil {
		_ = p.Cache.Del(ctx, p.redisKey(uid))
	}
}

// InvalidateByRole 角色的菜单绑定变化后，失效该角色全部用户
func (p *PermissionService) InvalidateByRole(ctx context.Context, roleID int64) {
	ctx, span := p.tracer().Start(ctx, "PermissionService.InvalidateByRole")
	defer span.End()
	uids, err := p.Roles.UserIDs(ctx, roleID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	metrics.PermissionInvalidateTotal.WithLabelValues("role").Inc()
	if len(uids) > 0 {
		metrics.PermissionInvalidateUsersTotal.Add(float64(len(uids)))
	}
	if p.Cache == nil {
		return
	}
	for _, uid := range uids {
		_ = p.Cache.Del(ctx, p.redisKey(uid))
	}
}

func (p *PermissionService) setCache(ctx context.Context, key, val string, ttl time.Duration) {
	if p.Cache != nil {
		_ = p.Cache.SetEX(ctx, key, val, cache.JitterTTL(ttl))
	}
}

func (p *PermissionService) redisKey(uid int64) string {
	return p.redisPrefix + strconv.FormatInt(uid, 10)
}

// PermissionMetrics 命中计数快照
type PermissionMetrics struct {
	CacheHit uint64  `json:"cache_hit"`
	DBLoad   uint64  `json:"db_load"`
	HitRate  float64 `json:"hit_rate"`
}

func (p *PermissionService) SnapshotMetrics() PermissionMetrics {
	hit := atomic.LoadUint64(&p.metricHit)
	db := atomic.LoadUint64(&p.metricDBLoad)
	rate := 0.0
	if hit+db > 0 {
		rate = float64(hit) / float64(hit+db)
	}
	return PermissionMetrics{CacheHit: hit, DBLoad: db, HitRate: rate}
}

func toSet(arr []string) map[string]struct{} {
	set := make(map[string]struct{}, len(arr))
	for _, s := range arr {
		set[s] = struct{}{}
	}
	return set
}
