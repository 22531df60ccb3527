// Package envelope 统一错误信封，handler、中间件和 recovery 共用这一处实现
package envelope

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vedzeb_server/pkg/errorx"
)

// InternalMessage 5xx 对外统一的提示
const InternalMessage = "Internal server error"

// ErrorBody 错误信封
// Code 只在需要机器可读原因时出现，如 TOKEN_EXPIRED
type ErrorBody struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// FromError 把错误翻译成 HTTP 状态和信封
// 非 CodeError 按 500 处理，5xx 不向外暴露原始消息
func FromError(err error) (int, ErrorBody) {
	var codeErr *errorx.CodeError
	if !errors.As(err, &codeErr) {
		return http.StatusInternalServerError, ErrorBody{Error: InternalMessage}
	}
	status := errorx.HTTPStatus(codeErr.Code)
	if status >= http.StatusInternalServerError {
		return status, ErrorBody{Error: InternalMessage}
	}
	return status, ErrorBody{Error: codeErr.Msg, Code: codeErr.Reason}
}

// Abort 中断请求并写出错误信封，5xx 记录错误日志
func Abort(c *gin.Context, err error) {
	status, body := FromError(err)
	if status >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Int("code", errorx.GetCode(err)),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, body)
}

// AbortWith 直接写出给定状态和信封
func AbortWith(c *gin.Context, status int, body ErrorBody) {
	c.AbortWithStatusJSON(status, body)
}
