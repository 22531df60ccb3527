package model

import "time"

// RefreshToken 不透明刷新令牌，一行对应一个登录会话
type RefreshToken struct {
	Base
	Token     string    `gorm:"column:token;uniqueIndex;type:char(36);not null;comment:刷新令牌"`
	UserID    string    `gorm:"column:user_id;type:char(36);not null;index;comment:用户id"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index;comment:过期时间"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// Expired 是否已过期
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
