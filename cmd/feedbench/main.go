package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/yatube/internal/api/handler"
	"github.com/d60-Lab/yatube/internal/cache"
	"github.com/d60-Lab/yatube/internal/media"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/database"
	"github.com/d60-Lab/yatube/web"
)

const (
	indexKey = "index_page"
	indexTTL = 20 * time.Second
	pageSize = 10
)

func main() {
	ctx := context.Background()

	authors := envInt("AUTHORS", 200)
	postsPerAuthor := envInt("POSTS", 50)
	requests := envInt("REQUESTS", 5000)

	// DATABASE_URL 指向 postgres；未设置时用临时 sqlite 文件
	var dialector gorm.Dialector
	driver := "sqlite"
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		dialector = postgres.Open(dsn)
		driver = "postgres"
	} else {
		dir := must(os.MkdirTemp("", "feedbench"))
		defer os.RemoveAll(dir)
		dialector = sqlite.Open(filepath.Join(dir, "feedbench.db"))
	}
	db := must(gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Discard}))

	if driver == "postgres" {
		mustDo(db.Exec("DROP TABLE IF EXISTS comments, follows, posts, groups, users CASCADE").Error)
	}
	mustDo(database.Migrate(db))

	fmt.Println("Setting up test data...")
	users := make([]model.User, authors)
	for i := range users {
		users[i] = model.User{Username: fmt.Sprintf("author_%d", i), Email: fmt.Sprintf("author_%d@example.com", i), Password: "x"}
	}
	mustDo(db.CreateInBatches(&users, 500).Error)

	groups := []model.Group{
		{Title: "Cats", Slug: "cats", Description: "cats"},
		{Title: "Dogs", Slug: "dogs", Description: "dogs"},
	}
	mustDo(db.Create(&groups).Error)

	rows := make([]model.Post, 0, authors*postsPerAuthor)
	base := time.Now()
	for i := 0; i < authors*postsPerAuthor; i++ {
		p := model.Post{
			Text:      "post " + uuid.NewString(),
			AuthorID:  users[i%authors].ID,
			CreatedAt: base.Add(-time.Duration(i) * time.Second),
		}
		if i%3 == 0 {
			p.GroupID = &groups[i%2].ID
		}
		rows = append(rows, p)
	}
	mustDo(db.Omit("Author", "Group").CreateInBatches(&rows, 1000).Error)
	fmt.Printf("Test data ready: %d authors, %d posts (%s)\n", authors, len(rows), driver)

	// REDIS_ADDR 指向真实 redis；未设置时起一个进程内 miniredis
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		mr := must(miniredis.Run())
		defer mr.Close()
		redisAddr = mr.Addr()
	}
	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis at %s: %v", redisAddr, err))
	}

	storage := media.NewStorage(os.TempDir(), "/media/")
	views := must(handler.NewRenderer(web.Templates, storage.URL))
	feed := service.NewFeedService(
		repository.NewPostRepository(db),
		repository.NewGroupRepository(db),
		repository.NewUserRepository(db),
		pageSize,
	)
	render := func(ctx context.Context, page int) ([]byte, error) {
		p, err := feed.All(ctx, page)
		if err != nil {
			return nil, err
		}
		return views.Fragment("feed", p)
	}

	reqs := makeRequests(requests)

	noCache := runScenario(ctx, reqs, nil, render)
	memory := runScenario(ctx, reqs, cache.NewPageCache(cache.NewMemoryStore()), render)
	mustDo(client.FlushAll(ctx).Err())
	redisRun := runScenario(ctx, reqs, cache.NewPageCache(cache.NewRedisStore(client)), render)
	redisRun.cacheKeys = len(must(client.Keys(ctx, indexKey+":*").Result()))
	if info, err := client.Info(ctx, "memory").Result(); err == nil {
		redisRun.memoryBytes = parseRedisMemory(info)
	}

	fmt.Printf("\nHome feed latency (%d req, %d posts, %s)\n", len(reqs), len(rows), driver)
	for _, r := range []struct {
		name string
		res  scenarioResult
	}{
		{"No cache", noCache},
		{"Memory page cache", memory},
		{"Redis page cache", redisRun},
	} {
		fmt.Printf("%-18s avg=%v p95=%v p99=%v renders=%d hits=%d cache_keys=%d mem=%s\n",
			r.name, avg(r.res.durations), pct(r.res.durations, 0.95), pct(r.res.durations, 0.99),
			r.res.counters.Renders, r.res.counters.Hits, r.res.cacheKeys, formatBytes(r.res.memoryBytes),
		)
	}
}

type scenarioResult struct {
	durations   []time.Duration
	counters    cache.PageCounters
	cacheKeys   int
	memoryBytes int64
}

// runScenario 依次请求各页；pages 为 nil 时每次都直接渲染
func runScenario(ctx context.Context, reqs []int, pages *cache.PageCache, render func(context.Context, int) ([]byte, error)) scenarioResult {
	var counters cache.PageCounters
	out := make([]time.Duration, 0, len(reqs))
	fmt.Print("  Running benchmark...")
	for _, page := range reqs {
		start := time.Now()
		if pages == nil {
			_ = must(render(ctx, page))
			counters.Renders++
		} else {
			_, err := pages.GetOrRender(ctx, cache.PageKey(indexKey, page), indexTTL, func(ctx context.Context) ([]byte, error) {
				return render(ctx, page)
			})
			mustDo(err)
		}
		out = append(out, time.Since(start))
	}
	fmt.Println(" done")
	if pages != nil {
		counters = pages.Counters()
	}
	return scenarioResult{durations: out, counters: counters}
}

// makeRequests 多数请求落在第一页，其余分散到深分页
func makeRequests(n int) []int {
	out := make([]int, n)
	rnd := rand.New(rand.NewSource(42))
	for i := range out {
		page := 1
		if rnd.Float64() > 0.72 {
			page = 2 + rnd.Intn(120)
		}
		out[i] = page
	}
	return out
}

// parseRedisMemory extracts used_memory from Redis INFO
func parseRedisMemory(info string) int64 {
	for _, line := range strings.Split(info, "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), "used_memory:"); ok {
			n, err := strconv.ParseInt(v, 10, 64)
			if err == nil {
				return n
			}
		}
	}
	return 0
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}
