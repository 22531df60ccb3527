package request

// SendCodeRequest 发送短信验证码请求
// 使用位置:
//   - internal/handler/auth_handler.go: SendCode
type SendCodeRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// VerifyCodeRequest 验证码登录请求
type VerifyCodeRequest struct {
	Phone string `json:"phone" binding:"required"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

// RefreshTokenRequest 刷新令牌请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest 退出登录，refreshToken 可选
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}
