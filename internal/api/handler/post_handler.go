package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/internal/api/middleware"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/apperror"
	"github.com/d60-Lab/yatube/pkg/logger"
)

type postDetailView struct {
	baseView
	Post            *model.Post
	AuthorPostCount int64
	Comments        []*model.Comment
}

func (h *Handler) PostDetail(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	ctx := c.Request.Context()
	post, err := h.postService.Get(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	count, err := h.postService.CountByAuthor(ctx, post.AuthorID)
	if err != nil {
		h.fail(c, err)
		return
	}
	comments, err := h.commentService.List(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.html(c, http.StatusOK, "posts/post_detail.html", postDetailView{
		baseView:        viewFor(c),
		Post:            post,
		AuthorPostCount: count,
		Comments:        comments,
	})
}

// postFormView 新建与编辑共用 posts/create.html
type postFormView struct {
	baseView
	IsEdit  bool
	PostID  uint
	Text    string
	GroupID *uint
	Image   string
	Groups  []*model.Group
	Errors  map[string]string
}

func (h *Handler) renderPostForm(c *gin.Context, v postFormView) {
	groups, err := h.groupService.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	v.baseView = viewFor(c)
	v.Groups = groups
	if v.Errors == nil {
		v.Errors = map[string]string{}
	}
	h.html(c, http.StatusOK, "posts/create.html", v)
}

// PostCreateForm GET /create/，渲染空表单
func (h *Handler) PostCreateForm(c *gin.Context) {
	h.renderPostForm(c, postFormView{})
}

// PostCreate POST /create/，成功后跳转到作者主页
func (h *Handler) PostCreate(c *gin.Context) {
	me, _ := middleware.CurrentUser(c)
	in, err := h.bindPost(c)
	if err == nil {
		_, err = h.postService.Create(c.Request.Context(), me.ID, in)
	}
	if err != nil {
		h.discardUpload(in.Image)
		if fe := apperror.FieldErrors(err); fe != nil {
			h.renderPostForm(c, postFormView{Text: in.Text, GroupID: in.GroupID, Errors: fe})
			return
		}
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, profileURL(me.Username))
}

// PostEditForm GET /posts/:post_id/edit/；非作者跳回详情页
func (h *Handler) PostEditForm(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	me, _ := middleware.CurrentUser(c)
	post, outcome, err := h.postService.GetForEdit(c.Request.Context(), me.ID, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if outcome == service.EditDenied {
		c.Redirect(http.StatusFound, postURL(id))
		return
	}
	h.renderPostForm(c, postFormView{
		IsEdit:  true,
		PostID:  post.ID,
		Text:    post.Text,
		GroupID: post.GroupID,
		Image:   post.Image,
	})
}

// PostEdit POST /posts/:post_id/edit/，成功后跳回详情页
func (h *Handler) PostEdit(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	me, _ := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	// 先判定权限，非作者不接收上传
	current, outcome, err := h.postService.GetForEdit(ctx, me.ID, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if outcome == service.EditDenied {
		c.Redirect(http.StatusFound, postURL(id))
		return
	}

	in, err := h.bindPost(c)
	var updated *model.Post
	if err == nil {
		updated, _, err = h.postService.Edit(ctx, me.ID, id, in)
	}
	if err != nil {
		h.discardUpload(in.Image)
		if fe := apperror.FieldErrors(err); fe != nil {
			h.renderPostForm(c, postFormView{
				IsEdit: true, PostID: id, Text: in.Text, GroupID: in.GroupID, Image: current.Image, Errors: fe,
			})
			return
		}
		h.fail(c, err)
		return
	}
	// 图片被替换或清除后，旧文件不再被引用
	if current.Image != "" && current.Image != updated.Image {
		h.discardUpload(current.Image)
	}
	c.Redirect(http.StatusFound, postURL(id))
}

// bindPost 读取 multipart/urlencoded 表单；上传的图片先落盘，失败时由调用方清理
func (h *Handler) bindPost(c *gin.Context) (service.PostInput, error) {
	in := service.PostInput{Text: c.PostForm("text"), ClearImage: c.PostForm("image-clear") != ""}

	if raw := strings.TrimSpace(c.PostForm("group")); raw != "" {
		gid, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return in, apperror.ValidationFailed("group", "Select a valid choice. That choice is not one of the available choices.")
		}
		g := uint(gid)
		in.GroupID = &g
	}

	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return in, nil
	}
	if err != nil {
		return in, apperror.ValidationFailed("image", "The submitted data was not a file.")
	}
	f, err := fh.Open()
	if err != nil {
		return in, err
	}
	defer f.Close()
	name, err := h.media.Save(f)
	if err != nil {
		return in, err
	}
	in.Image = name
	return in, nil
}

func (h *Handler) discardUpload(name string) {
	if name == "" {
		return
	}
	if err := h.media.Remove(name); err != nil {
		logger.Warn("remove orphan upload", zap.String("name", name), zap.Error(err))
	}
}

// AddComment POST /posts/:post_id/comment/，无论校验是否通过都跳回详情页
func (h *Handler) AddComment(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		h.NotFound(c)
		return
	}
	me, _ := middleware.CurrentUser(c)
	var in service.CommentInput
	_ = c.ShouldBind(&in)

	_, err := h.commentService.Add(c.Request.Context(), me.ID, id, in)
	switch {
	case err == nil, errors.Is(err, apperror.ErrValidation):
	default:
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, postURL(id))
}
