package handler

import (
	"errors"
	"net/http"
	"strconv"

	"ramen-log/internal/service"
	"ramen-log/pkg/jwt"
	"ramen-log/pkg/logger"
	"ramen-log/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// writeError 按业务错误种类返回对应状态码
func writeError(c *gin.Context, err error) {
	var bizErr *service.Error
	if !errors.As(err, &bizErr) {
		logger.Error("请求处理失败",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		response.InternalError(c, "internal server error")
		return
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, bizErr.Message)
	case errors.Is(err, service.ErrConflict):
		response.Conflict(c, bizErr.Message)
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrSelfFollow):
		response.BadRequest(c, bizErr.Message)
	case errors.Is(err, service.ErrUnauthorized):
		response.Unauthorized(c, bizErr.Message)
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, bizErr.Message)
	default:
		response.Error(c, http.StatusInternalServerError, bizErr.Message)
	}
}

// currentUser 获取调用者ID，缺失时直接返回401
func currentUser(c *gin.Context) (uint, bool) {
	id, ok := jwt.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "用户未认证")
	}
	return id, ok
}

// paramID 解析路径中的ID参数
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
