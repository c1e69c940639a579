// Package api assembles the gin engine: middleware chain and routes.
package api

import (
	"strings"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/yatube/config"
	_ "github.com/d60-Lab/yatube/docs"
	"github.com/d60-Lab/yatube/internal/api/handler"
	"github.com/d60-Lab/yatube/internal/api/middleware"
)

// NewRouter 注册全部路由；loadUser 负责把会话解析为当前用户
func NewRouter(cfg *config.Config, h *handler.Handler, loadUser gin.HandlerFunc) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(
		middleware.RequestLogger(),
		gin.CustomRecovery(h.Recover),
		sentrygin.New(sentrygin.Options{Repanic: true}),
	)
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	mediaURL := "/" + strings.Trim(cfg.Server.MediaURL, "/")
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{mediaURL + "/"})))

	r.GET("/healthz", h.Healthz)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.Static(mediaURL, cfg.Server.MediaDir)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	login := middleware.RequireLogin(cfg.Server.LoginURL)
	throttle := limiter.Middleware()

	site := r.Group("/", loadUser)
	{
		site.GET("/", h.Index)
		site.GET("/group/:slug/", h.GroupPosts)
		site.GET("/profile/:username/", h.Profile)
		site.GET("/posts/:post_id/", h.PostDetail)

		site.GET("/create/", login, h.PostCreateForm)
		site.POST("/create/", login, throttle, h.PostCreate)
		site.GET("/posts/:post_id/edit/", login, h.PostEditForm)
		site.POST("/posts/:post_id/edit/", login, throttle, h.PostEdit)
		site.POST("/posts/:post_id/comment/", login, throttle, h.AddComment)

		site.GET("/follow/", login, h.FollowIndex)
		site.GET("/profile/:username/follow/", login, throttle, h.ProfileFollow)
		site.GET("/profile/:username/unfollow/", login, throttle, h.ProfileUnfollow)

		site.GET("/auth/login/", h.LoginForm)
		site.POST("/auth/login/", throttle, h.Login)
		site.GET("/auth/signup/", h.SignupForm)
		site.POST("/auth/signup/", throttle, h.Signup)
		site.GET("/auth/logout/", h.Logout)
	}

	api := r.Group("/api/v1")
	{
		api.GET("/relations/:username/following", h.ListFollowing)
	}

	r.NoRoute(loadUser, h.NotFound)
	return r
}
