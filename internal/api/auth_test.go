package api

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/yatube/internal/model"
)

func sessionCookie(w *http.Response) *http.Cookie {
	for _, c := range w.Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	return nil
}

func TestSignupLoginLogout(t *testing.T) {
	app := newTestApp(t)

	w := app.postForm("/auth/signup/", url.Values{
		"username":  {"newbie"},
		"email":     {"newbie@example.com"},
		"password1": {"correct-horse"},
		"password2": {"correct-horse"},
	}, nil)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	assert.Equal(t, "/", w.Header().Get("Location"))
	c := sessionCookie(w.Result())
	require.NotNil(t, c)
	assert.True(t, c.HttpOnly)

	req, _ := http.NewRequest(http.MethodGet, "/create/", nil)
	req.AddCookie(c)
	assert.Equal(t, http.StatusOK, app.do(req, nil).Code)

	w = app.postForm("/auth/login/", url.Values{
		"username": {"newbie"}, "password": {"wrong"},
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Please enter a correct username and password")
	assert.Nil(t, sessionCookie(w.Result()))

	w = app.postForm("/auth/login/", url.Values{
		"username": {"newbie"}, "password": {"correct-horse"}, "next": {"/create/"},
	}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/create/", w.Header().Get("Location"))
	require.NotNil(t, sessionCookie(w.Result()))

	w = app.postForm("/auth/login/", url.Values{
		"username": {"newbie"}, "password": {"correct-horse"}, "next": {"//evil.example.com/"},
	}, nil)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = app.get("/auth/logout/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	out := sessionCookie(w.Result())
	require.NotNil(t, out)
	assert.Empty(t, out.Value)
	assert.Less(t, out.MaxAge, 0)
}

func TestSignupValidation(t *testing.T) {
	app := newTestApp(t)
	app.user("taken")

	w := app.postForm("/auth/signup/", url.Values{
		"username": {"taken"}, "password1": {"correct-horse"}, "password2": {"correct-horse"},
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "A user with that username already exists.")

	w = app.postForm("/auth/signup/", url.Values{
		"username": {"fresh"}, "password1": {"correct-horse"}, "password2": {"other-horse"},
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "didn&#39;t match")

	long := strings.Repeat("x", 80)
	w = app.postForm("/auth/signup/", url.Values{
		"username": {"longpass"}, "password1": {long}, "password2": {long},
	}, nil)
	assert.Equal(t, http.StatusOK, w.Code, "over-long password is a form error, not a 500")
	assert.Contains(t, w.Body.String(), "at most 72")
	assert.Nil(t, sessionCookie(w.Result()))
	var n int64
	require.NoError(t, app.db.Model(&model.User{}).Where("username = ?", "longpass").Count(&n).Error)
	assert.Zero(t, n)
}

func TestLoginFormKeepsNext(t *testing.T) {
	app := newTestApp(t)
	w := app.get("/auth/login/?next=/create/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="next" value="/create/"`)
}
