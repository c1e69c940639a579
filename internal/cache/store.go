// Package cache 首页 feed 的渲染结果缓存
package cache

import (
	"context"
	"time"
)

// Store 带逐条 TTL 的字节 KV；key 不存在或已过期时 Get 返回 ok=false
type Store interface {
	Get(ctx context.Context, key string) (val []byte, ok bool, err error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix 删除所有以 prefix 开头的 key
	DeletePrefix(ctx context.Context, prefix string) error
}
