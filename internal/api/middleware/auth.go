package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/pkg/apperror"
	"github.com/d60-Lab/yatube/pkg/auth"
	"github.com/d60-Lab/yatube/pkg/logger"
)

const userKey = "yatube.user"

// UserLoader 按 ID 取用户；service.UserService 满足该接口
type UserLoader interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
}

// LoadUser 从会话 cookie 解析当前用户；cookie 缺失或无效时按匿名处理
func LoadUser(tokens *auth.TokenService, users UserLoader, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(cookieName)
		if err != nil || raw == "" {
			c.Next()
			return
		}
		id, err := tokens.Validate(raw)
		if err != nil {
			logger.Debug("drop invalid session cookie", zap.Error(err))
			c.Next()
			return
		}
		u, err := users.GetByID(c.Request.Context(), id)
		if err != nil {
			if !errors.Is(err, apperror.ErrNotFound) {
				logger.Warn("load session user", zap.Uint("user_id", id), zap.Error(err))
			}
			c.Next()
			return
		}
		c.Set(userKey, u)
		c.Next()
	}
}

// CurrentUser 返回已登录用户，匿名时 ok=false
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*model.User)
	return u, ok && u != nil
}

// RequireLogin 匿名访问重定向到 loginURL?next=<原地址>
func RequireLogin(loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); ok {
			c.Next()
			return
		}
		c.Redirect(http.StatusFound, LoginRedirect(loginURL, c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// LoginRedirect 构造登录跳转地址，next 中的 / 保持原样
func LoginRedirect(loginURL, next string) string {
	return loginURL + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// SafeNext 只接受站内路径，防止开放重定向
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
