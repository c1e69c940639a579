package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/internal/api/middleware"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/apperror"
)

type loginView struct {
	baseView
	Next     string
	Username string
	Errors   map[string]string
}

type signupView struct {
	baseView
	Username string
	Email    string
	Errors   map[string]string
}

func (h *Handler) LoginForm(c *gin.Context) {
	h.html(c, http.StatusOK, "users/login.html", loginView{
		baseView: viewFor(c),
		Next:     c.Query("next"),
		Errors:   map[string]string{},
	})
}

// Login 校验账号后写入会话 cookie，跳转到 next（仅限站内路径）
func (h *Handler) Login(c *gin.Context) {
	var in service.LoginInput
	_ = c.ShouldBind(&in)
	next := c.PostForm("next")

	u, err := h.userService.Authenticate(c.Request.Context(), in)
	if err != nil {
		if fe := apperror.FieldErrors(err); fe != nil {
			h.html(c, http.StatusOK, "users/login.html", loginView{
				baseView: viewFor(c), Next: next, Username: in.Username, Errors: fe,
			})
			return
		}
		h.fail(c, err)
		return
	}
	if err := h.startSession(c, u); err != nil {
		h.serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, middleware.SafeNext(next))
}

func (h *Handler) Logout(c *gin.Context) {
	h.setCookie(c, "", -1)
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) SignupForm(c *gin.Context) {
	h.html(c, http.StatusOK, "users/signup.html", signupView{baseView: viewFor(c), Errors: map[string]string{}})
}

// Signup 注册成功后直接登录并回到首页
func (h *Handler) Signup(c *gin.Context) {
	var in service.RegisterInput
	_ = c.ShouldBind(&in)

	u, err := h.userService.Register(c.Request.Context(), in)
	if err != nil {
		if fe := apperror.FieldErrors(err); fe != nil {
			h.html(c, http.StatusOK, "users/signup.html", signupView{
				baseView: viewFor(c), Username: in.Username, Email: in.Email, Errors: fe,
			})
			return
		}
		h.fail(c, err)
		return
	}
	if err := h.startSession(c, u); err != nil {
		h.serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) startSession(c *gin.Context, u *model.User) error {
	token, err := h.tokens.Generate(u.ID)
	if err != nil {
		return err
	}
	h.setCookie(c, token, int(h.tokens.TTL().Seconds()))
	return nil
}

func (h *Handler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.opts.CookieName, value, maxAge, "/", "", h.opts.CookieSecure, true)
}
