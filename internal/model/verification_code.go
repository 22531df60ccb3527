package model

import "time"

// VerificationCode 短信验证码
// 同一用户发送新验证码时，旧的未使用验证码全部置为已使用
type VerificationCode struct {
	Base
	UserID    string    `gorm:"column:user_id;type:char(36);not null;index;comment:用户id"`
	Code      string    `gorm:"column:code;type:char(6);not null;comment:6位验证码"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;comment:过期时间"`
	Used      bool      `gorm:"column:used;not null;default:false;comment:是否已使用"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (VerificationCode) TableName() string {
	return "verification_codes"
}
