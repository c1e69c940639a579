package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/yatube/config"
	"github.com/d60-Lab/yatube/internal/api/handler"
	"github.com/d60-Lab/yatube/internal/api/middleware"
	"github.com/d60-Lab/yatube/internal/cache"
	"github.com/d60-Lab/yatube/internal/media"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/auth"
	"github.com/d60-Lab/yatube/pkg/database"
	"github.com/d60-Lab/yatube/web"
)

var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

// testApp 一个完整装配的站点：内存 sqlite + 可控时钟的页面缓存
type testApp struct {
	t        *testing.T
	engine   *gin.Engine
	db       *gorm.DB
	now      time.Time
	pages    *cache.PageCache
	tokens   *auth.TokenService
	mediaDir string

	users   repository.UserRepository
	groups  repository.GroupRepository
	posts   repository.PostRepository
	follows repository.FollowRepository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		Server: config.ServerConfig{
			Mode:     gin.TestMode,
			LoginURL: "/auth/login/",
			MediaDir: t.TempDir(),
			MediaURL: "/media/",
		},
		Cache: config.CacheConfig{IndexKey: "index_page", IndexTTL: 20 * time.Second},
		Feed:  config.FeedConfig{PageSize: 10},
		JWT:   config.JWTConfig{Secret: "router-test-secret-0123456789", TTL: time.Hour, CookieName: "session"},
	}

	app := &testApp{
		t:        t,
		db:       db,
		now:      time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		mediaDir: cfg.Server.MediaDir,
		users:    repository.NewUserRepository(db),
		groups:   repository.NewGroupRepository(db),
		posts:    repository.NewPostRepository(db),
		follows:  repository.NewFollowRepository(db),
	}
	comments := repository.NewCommentRepository(db)

	store := cache.NewMemoryStore().WithClock(func() time.Time { return app.now })
	app.pages = cache.NewPageCache(store)
	app.tokens, err = auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.TTL)
	require.NoError(t, err)

	storage := media.NewStorage(cfg.Server.MediaDir, cfg.Server.MediaURL)
	views, err := handler.NewRenderer(web.Templates, storage.URL)
	require.NoError(t, err)

	userSvc := service.NewUserService(app.users)
	h := handler.New(handler.Deps{
		Feed:      service.NewFeedService(app.posts, app.groups, app.users, cfg.Feed.PageSize),
		Posts:     service.NewPostService(app.posts, app.groups),
		Comments:  service.NewCommentService(comments, app.posts),
		Relations: service.NewRelationshipService(app.follows, app.posts, cfg.Feed.PageSize),
		Users:     userSvc,
		Groups:    service.NewGroupService(app.groups),
		Pages:     app.pages,
		Media:     storage,
		Tokens:    app.tokens,
		Views:     views,
		DB:        sqlDB,
		Options: handler.Options{
			IndexKey:   cfg.Cache.IndexKey,
			IndexTTL:   cfg.Cache.IndexTTL,
			LoginURL:   cfg.Server.LoginURL,
			CookieName: cfg.JWT.CookieName,
		},
	})
	app.engine = NewRouter(cfg, h, middleware.LoadUser(app.tokens, userSvc, cfg.JWT.CookieName))
	return app
}

func (a *testApp) user(name string) *model.User {
	a.t.Helper()
	u := &model.User{Username: name, Password: "x"}
	require.NoError(a.t, a.users.Create(context.Background(), u))
	return u
}

func (a *testApp) group(slug string) *model.Group {
	a.t.Helper()
	g := &model.Group{Title: "Group " + slug, Slug: slug, Description: "about " + slug}
	require.NoError(a.t, a.groups.Create(context.Background(), g))
	return g
}

func (a *testApp) post(author *model.User, group *model.Group, text string) *model.Post {
	a.t.Helper()
	p := &model.Post{Text: text, AuthorID: author.ID}
	if group != nil {
		p.GroupID = &group.ID
	}
	require.NoError(a.t, a.posts.Create(context.Background(), p))
	return p
}

func (a *testApp) session(u *model.User) *http.Cookie {
	a.t.Helper()
	token, err := a.tokens.Generate(u.ID)
	require.NoError(a.t, err)
	return &http.Cookie{Name: "session", Value: token}
}

func (a *testApp) do(req *http.Request, as *model.User) *httptest.ResponseRecorder {
	a.t.Helper()
	if as != nil {
		req.AddCookie(a.session(as))
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *testApp) get(path string, as *model.User) *httptest.ResponseRecorder {
	return a.do(httptest.NewRequest(http.MethodGet, path, nil), as)
}

func (a *testApp) postForm(path string, form url.Values, as *model.User) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return a.do(req, as)
}

func (a *testApp) postMultipart(path string, fields map[string]string, image []byte, as *model.User) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(a.t, mw.WriteField(k, v))
	}
	if image != nil {
		fw, err := mw.CreateFormFile("image", "small.gif")
		require.NoError(a.t, err)
		_, err = io.Copy(fw, bytes.NewReader(image))
		require.NoError(a.t, err)
	}
	require.NoError(a.t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return a.do(req, as)
}

func (a *testApp) countPosts() int64 {
	a.t.Helper()
	n, err := a.posts.Count(context.Background(), repository.PostFilter{})
	require.NoError(a.t, err)
	return n
}

func countCards(body string) int { return strings.Count(body, `class="post"`) }
