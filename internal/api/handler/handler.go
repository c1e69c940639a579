// Package handler 站点的 HTTP 处理函数
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/internal/api/middleware"
	"github.com/d60-Lab/yatube/internal/cache"
	"github.com/d60-Lab/yatube/internal/media"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/apperror"
	"github.com/d60-Lab/yatube/pkg/auth"
	"github.com/d60-Lab/yatube/pkg/logger"
)

// Pinger 健康检查用，*sql.DB 满足
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options 来自配置的运行参数
type Options struct {
	IndexKey     string
	IndexTTL     time.Duration
	LoginURL     string
	CookieName   string
	CookieSecure bool
}

// Deps 组装 Handler 所需的全部依赖
type Deps struct {
	Feed      service.FeedService
	Posts     service.PostService
	Comments  service.CommentService
	Relations service.RelationshipService
	Users     service.UserService
	Groups    service.GroupService
	Pages     *cache.PageCache
	Media     *media.Storage
	Tokens    *auth.TokenService
	Views     *Renderer
	DB        Pinger
	Options   Options
}

type Handler struct {
	feedService    service.FeedService
	postService    service.PostService
	commentService service.CommentService
	relService     service.RelationshipService
	userService    service.UserService
	groupService   service.GroupService
	pages          *cache.PageCache
	media          *media.Storage
	tokens         *auth.TokenService
	views          *Renderer
	db             Pinger
	opts           Options
}

func New(d Deps) *Handler {
	return &Handler{
		feedService:    d.Feed,
		postService:    d.Posts,
		commentService: d.Comments,
		relService:     d.Relations,
		userService:    d.Users,
		groupService:   d.Groups,
		pages:          d.Pages,
		media:          d.Media,
		tokens:         d.Tokens,
		views:          d.Views,
		db:             d.DB,
		opts:           d.Options,
	}
}

// baseView 每个页面都需要的上下文
type baseView struct {
	User *model.User
}

func viewFor(c *gin.Context) baseView {
	u, _ := middleware.CurrentUser(c)
	return baseView{User: u}
}

func (h *Handler) html(c *gin.Context, status int, name string, data any) {
	body, err := h.views.Page(name, data)
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.Data(status, "text/html; charset=utf-8", body)
}

// fail 把领域错误转换成页面：NotFound → 404，其余 → 500
func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, apperror.ErrNotFound) {
		h.NotFound(c)
		return
	}
	h.serverError(c, err)
}

func (h *Handler) serverError(c *gin.Context, err error) {
	logger.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	_ = c.Error(err)
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
	body, rerr := h.views.Page("core/500.html", viewFor(c))
	if rerr != nil {
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", body)
}

type notFoundView struct {
	baseView
	Path string
}

// NotFound 渲染 core/404.html，同时作为 gin 的 NoRoute
func (h *Handler) NotFound(c *gin.Context) {
	body, err := h.views.Page("core/404.html", notFoundView{baseView: viewFor(c), Path: c.Request.URL.Path})
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.Data(http.StatusNotFound, "text/html; charset=utf-8", body)
}

// Recover 是 gin.CustomRecovery 的回调
func (h *Handler) Recover(c *gin.Context, rec any) {
	logger.Error("panic recovered", zap.Any("panic", rec), zap.String("path", c.Request.URL.Path))
	body, err := h.views.Page("core/500.html", viewFor(c))
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", body)
	c.Abort()
}

func postID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func profileURL(username string) string { return "/profile/" + username + "/" }

func postURL(id uint) string { return "/posts/" + strconv.FormatUint(uint64(id), 10) + "/" }
