package respond

import (
	"time"

	"vedzeb_server/internal/model"
)

// MessageRespond 只有提示信息的响应
type MessageRespond struct {
	Message string `json:"message"`
}

// SendCodeRespond 发送验证码响应，code 只在 mock 模式下返回
// 使用位置:
//   - internal/service/auth/service.go: SendCode
type SendCodeRespond struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// UserBrief 对外暴露的普通用户信息
type UserBrief struct {
	ID            string     `json:"id"`
	Phone         string     `json:"phone"`
	PhoneVerified bool       `json:"phoneVerified"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
}

// NewUserBrief withCreated 控制是否输出注册时间
func NewUserBrief(u *model.User, withCreated bool) UserBrief {
	b := UserBrief{ID: u.ID, Phone: u.Phone, PhoneVerified: u.PhoneVerified}
	if withCreated {
		created := u.CreatedAt
		b.CreatedAt = &created
	}
	return b
}

// TokenPairRespond 刷新令牌响应
type TokenPairRespond struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// VerifyCodeRespond 验证码登录响应
type VerifyCodeRespond struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	User         UserBrief `json:"user"`
}

// MeRespond 当前登录用户
type MeRespond struct {
	User UserBrief `json:"user"`
}
