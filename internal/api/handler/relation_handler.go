package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/internal/api/middleware"
	"github.com/d60-Lab/yatube/pkg/response"
)

// ProfileFollow 关注作者后跳回其主页；关注自己是空操作
func (h *Handler) ProfileFollow(c *gin.Context) {
	me, _ := middleware.CurrentUser(c)
	ctx := c.Request.Context()
	author, err := h.userService.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if _, err := h.relService.Follow(ctx, me.ID, author.ID); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, profileURL(author.Username))
}

// ProfileUnfollow 取消关注；本来没关注也直接跳回
func (h *Handler) ProfileUnfollow(c *gin.Context) {
	me, _ := middleware.CurrentUser(c)
	ctx := c.Request.Context()
	author, err := h.userService.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.relService.Unfollow(ctx, me.ID, author.ID); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, profileURL(author.Username))
}

type followingItem struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// ListFollowing 查询某用户关注的作者
// @Summary 查询关注列表
// @Tags 关系链
// @Produce json
// @Param username path string true "用户名"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(10)
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 404 {object} response.Response
// @Router /api/v1/relations/{username}/following [get]
func (h *Handler) ListFollowing(c *gin.Context) {
	ctx := c.Request.Context()
	u, err := h.userService.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	authors, err := h.relService.ListFollowing(ctx, u.ID, page, pageSize)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	list := make([]followingItem, len(authors))
	for i, a := range authors {
		list[i] = followingItem{ID: a.ID, Username: a.Username}
	}
	response.Success(c, gin.H{"page": page, "page_size": pageSize, "list": list})
}

// Healthz 存活检查，会 ping 数据库
// @Summary 健康检查
// @Tags 运维
// @Produce json
// @Success 200 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, nil)
}
