package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"vedzeb_server/internal/dto/request"
	"vedzeb_server/internal/infrastructure/middleware"
	"vedzeb_server/internal/service"
)

// AuthHandler 认证请求处理器
type AuthHandler struct {
	authSvc service.AuthService
}

func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// SendCode 发送短信验证码
// POST /api/auth/send-code
// 请求体: request.SendCodeRequest
// 响应: respond.SendCodeRespond（mock 短信时带验证码）
func (h *AuthHandler) SendCode(c *gin.Context) {
	var req request.SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.authSvc.SendCode(c.Request.Context(), req.Phone)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// VerifyCode 校验验证码并登录
// POST /api/auth/verify-code
// 响应: respond.VerifyCodeRespond
func (h *AuthHandler) VerifyCode(c *gin.Context) {
	var req request.VerifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.authSvc.VerifyCode(c.Request.Context(), req.Phone, req.Code)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Refresh 用刷新令牌换一对新令牌
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req request.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Logout 退出登录，请求体可以为空
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req request.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		HandleParamError(c, err)
		return
	}
	if err := h.authSvc.Logout(c.Request.Context(), req.RefreshToken, middleware.UserID(c)); err != nil {
		HandleError(c, err)
		return
	}
	HandleMessage(c, "Logged out successfully")
}

// Me 当前用户
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	data, err := h.authSvc.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
