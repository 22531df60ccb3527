package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"vedzeb_server/internal/infrastructure/envelope"
	"vedzeb_server/pkg/errorx"
)

// HandleSuccess 200，直接输出数据
func HandleSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// HandleCreated 201
func HandleCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// HandleMessage 只返回一句提示
func HandleMessage(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"message": msg})
}

// HandleError 通用错误处理方法
// 业务错误按错误码映射 HTTP 状态；5xx 只记日志，对外统一返回 Internal server error
func HandleError(c *gin.Context, err error) {
	var codeErr *errorx.CodeError
	if !errors.As(err, &codeErr) {
		err = errorx.Wrap(err, errorx.CodeServerBusy, "unexpected error")
	}
	envelope.Abort(c, err)
}

// HandleParamError 处理参数绑定错误（带 validator 翻译支持）
func HandleParamError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		// 翻译后去除结构体名前缀
		details := RemoveTopStruct(validationErrs.Translate(Trans))
		envelope.AbortWith(c, http.StatusBadRequest, envelope.ErrorBody{Error: "Validation error", Details: details})
		return
	}
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		HandleError(c, err)
		return
	}
	// 非 validator 错误（如 JSON 格式错误）
	zap.L().Debug("param bind error", zap.Error(err))
	envelope.AbortWith(c, http.StatusBadRequest, envelope.ErrorBody{Error: "Invalid request body"})
}
