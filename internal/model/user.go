package model

import (
	"time"

	"vedzeb_server/pkg/rbac"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User 用户模型
// 普通用户只有手机号，后台人员额外拥有用户名和密码
type User struct {
	Base

	// Phone E.164 格式手机号，首次请求验证码时创建
	Phone         string `gorm:"column:phone;uniqueIndex;type:varchar(20);not null;comment:手机号" json:"phone"`
	PhoneVerified bool   `gorm:"column:phone_verified;not null;default:false;comment:手机号是否已验证" json:"phoneVerified"`

	// Username 仅后台人员使用，可为空
	Username *string `gorm:"column:username;uniqueIndex;type:varchar(50);comment:后台登录名" json:"username,omitempty"`
	// Password bcrypt 哈希，永不输出
	Password string `gorm:"column:password;type:varchar(100);comment:后台密码" json:"-"`

	Role      rbac.Role  `gorm:"column:role;type:varchar(20);not null;default:user;index;comment:角色" json:"role"`
	IsBanned  bool       `gorm:"column:is_banned;not null;default:false;index;comment:是否封禁" json:"isBanned"`
	BanReason string     `gorm:"column:ban_reason;type:varchar(500);comment:封禁原因" json:"banReason,omitempty"`
	BannedAt  *time.Time `gorm:"column:banned_at;comment:封禁时间" json:"bannedAt,omitempty"`

	// RawPassword 明文密码（不入库），在 BeforeSave 中加密
	RawPassword string `gorm:"-" json:"-"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// BeforeSave 将 RawPassword 加密后写入 Password
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = rbac.RoleUser
	}
	if u.RawPassword != "" {
		if err := u.SetPassword(u.RawPassword); err != nil {
			return err
		}
	}
	return nil
}

// SetPassword 立即计算哈希，供不经过 gorm Hook 的场景使用
func (u *User) SetPassword(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	u.RawPassword = ""
	return nil
}

// CheckPassword 校验密码，未设置密码时恒为 false
func (u *User) CheckPassword(plaintext string) bool {
	if u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plaintext)) == nil
}
