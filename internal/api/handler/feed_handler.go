package handler

import (
	"context"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/internal/api/middleware"
	"github.com/d60-Lab/yatube/internal/cache"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/service"
)

type indexView struct {
	baseView
	Feed template.HTML
}

// Index 首页：feed 片段按页缓存，所有访客共享同一份；
// 页码先夹到有效范围再生成 key，越界页码与末页共用一条缓存
func (h *Handler) Index(c *gin.Context) {
	page, err := h.feedService.AllPageNumber(c.Request.Context(), service.ParsePage(c.Query("page")))
	if err != nil {
		h.fail(c, err)
		return
	}
	key := cache.PageKey(h.opts.IndexKey, page)

	feed, err := h.pages.GetOrRender(c.Request.Context(), key, h.opts.IndexTTL, func(ctx context.Context) ([]byte, error) {
		p, err := h.feedService.All(ctx, page)
		if err != nil {
			return nil, err
		}
		return h.views.Fragment("feed", p)
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.html(c, http.StatusOK, "posts/index.html", indexView{
		baseView: viewFor(c),
		Feed:     template.HTML(feed),
	})
}

type groupView struct {
	baseView
	Group *model.Group
	Page  *service.Page
}

func (h *Handler) GroupPosts(c *gin.Context) {
	group, page, err := h.feedService.ByGroup(c.Request.Context(), c.Param("slug"), service.ParsePage(c.Query("page")))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.html(c, http.StatusOK, "posts/group_list.html", groupView{baseView: viewFor(c), Group: group, Page: page})
}

type profileView struct {
	baseView
	Author    *model.User
	Page      *service.Page
	PostCount int64
	Following bool
}

// Profile 作者主页；匿名访客或本人查看时 Following 恒为 false
func (h *Handler) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	author, page, err := h.feedService.ByAuthor(ctx, c.Param("username"), service.ParsePage(c.Query("page")))
	if err != nil {
		h.fail(c, err)
		return
	}

	v := profileView{baseView: viewFor(c), Author: author, Page: page, PostCount: page.Total}
	if me, ok := middleware.CurrentUser(c); ok && me.ID != author.ID {
		if v.Following, err = h.relService.IsFollowing(ctx, me.ID, author.ID); err != nil {
			h.fail(c, err)
			return
		}
	}
	h.html(c, http.StatusOK, "posts/profile.html", v)
}

type followFeedView struct {
	baseView
	Page *service.Page
}

// FollowIndex 关注作者的帖子，需登录
func (h *Handler) FollowIndex(c *gin.Context) {
	me, _ := middleware.CurrentUser(c)
	page, err := h.relService.FollowedFeed(c.Request.Context(), me.ID, service.ParsePage(c.Query("page")))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.html(c, http.StatusOK, "posts/follow.html", followFeedView{baseView: viewFor(c), Page: page})
}
