package cache

import (
	"math/rand"
	"time"
)

// 空值 sentinel：防缓存穿透。DB 回源为空时写入该占位值并带短 TTL，
// 读到 sentinel 视为"确认为空"，不再回源。
const nilSentinel = "__nil__"

func WrapNil(_ bool) string { return nilSentinel }

func IsNilSentinel(v string) bool { return v == nilSentinel }

// JitterTTL 给 TTL 增加 ±10% 抖动，避免批量 key 同时过期造成回源风暴
func JitterTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	delta := int64(float64(ttl) * 0.1)
	if delta == 0 {
		return ttl
	}
	return ttl + time.Duration(rand.Int63n(2*delta)-delta)
}
