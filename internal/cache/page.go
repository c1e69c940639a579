package cache

import (
	"context"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/d60-Lab/yatube/pkg/logger"
)

// RenderFunc 未命中时生成响应内容
type RenderFunc func(ctx context.Context) ([]byte, error)

// PageCache 缓存渲染好的页面；key 不含访问者，过期前所有客户端拿到同一份内容
type PageCache struct {
	store Store
	group singleflight.Group

	hits    atomic.Int64
	renders atomic.Int64
}

func NewPageCache(store Store) *PageCache {
	return &PageCache{store: store}
}

// PageKey 生成 prefix:<page>，同一 prefix 下的各页可一起失效
func PageKey(prefix string, page int) string {
	return prefix + ":" + strconv.Itoa(page)
}

// GetOrRender 命中直接返回，否则渲染并按 ttl 写入。同一 key 的并发未命中只渲染一次，
// 渲染不受首个请求取消的影响；存储出错只记日志，照常返回新渲染的内容
func (c *PageCache) GetOrRender(ctx context.Context, key string, ttl time.Duration, render RenderFunc) ([]byte, error) {
	if body, ok, err := c.store.Get(ctx, key); err != nil {
		logger.Warn("page cache get failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		c.hits.Add(1)
		return body, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		c.renders.Add(1)
		rctx := context.WithoutCancel(ctx)
		body, err := render(rctx)
		if err != nil {
			return nil, err
		}
		if err := c.store.Set(rctx, key, body, ttl); err != nil {
			logger.Warn("page cache set failed", zap.String("key", key), zap.Error(err))
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Invalidate 删除 key 以及由 PageKey 派生的各页
func (c *PageCache) Invalidate(ctx context.Context, key string) error {
	if err := c.store.Delete(ctx, key); err != nil {
		return err
	}
	return c.store.DeletePrefix(ctx, key+":")
}

// Counters 自上次重置以来的命中与渲染次数
func (c *PageCache) Counters() PageCounters {
	return PageCounters{Hits: c.hits.Load(), Renders: c.renders.Load()}
}

func (c *PageCache) ResetCounters() {
	c.hits.Store(0)
	c.renders.Store(0)
}

type PageCounters struct {
	Hits    int64
	Renders int64
}
