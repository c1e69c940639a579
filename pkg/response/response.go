// Package response 统一 JSON 接口的返回结构
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/pkg/apperror"
	"github.com/d60-Lab/yatube/pkg/logger"
)

// Response 业务码 0 表示成功
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

const (
	CodeOK = iota
	CodeBadRequest
	CodeNotFound
	CodeConflict
	CodeForbidden
	CodeInternal
)

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Code: CodeOK, Message: "ok", Data: data})
}

func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Response{Code: CodeBadRequest, Message: msg})
}

func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, Response{Code: CodeNotFound, Message: msg})
}

// InternalError 记录日志并返回通用 500，不向客户端暴露内部错误
func InternalError(c *gin.Context, err error) {
	logger.Error("internal error",
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, Response{Code: CodeInternal, Message: "internal error"})
}

// Error 按 apperror 哨兵映射 HTTP 状态
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		InternalError(c, err)
		return
	}
	switch {
	case errors.Is(err, apperror.ErrValidation):
		BadRequest(c, appErr.Message)
	case errors.Is(err, apperror.ErrNotFound):
		NotFound(c, appErr.Message)
	case errors.Is(err, apperror.ErrConflict):
		c.JSON(http.StatusConflict, Response{Code: CodeConflict, Message: appErr.Message})
	case errors.Is(err, apperror.ErrForbidden):
		c.JSON(http.StatusForbidden, Response{Code: CodeForbidden, Message: appErr.Message})
	default:
		InternalError(c, err)
	}
}
