// Package jwt 负责签发和校验访问令牌
// 用户令牌与后台令牌通过 subject 区分，互不通用
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"vedzeb_server/pkg/errorx"
)

const (
	issuer = "vedzeb"

	SubjectAccess = "access_token"
	SubjectAdmin  = "admin_token"
)

// JWTConfig JWT 配置
type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration // Access Token 有效期
	RefreshTokenExpiry time.Duration // Refresh Token 有效期
	AdminTokenExpiry   time.Duration // 后台 Token 有效期
}

// 全局配置，由 Init 函数初始化
var jwtConfig = &JWTConfig{
	AccessTokenExpiry:  15 * time.Minute,
	RefreshTokenExpiry: 7 * 24 * time.Hour,
	AdminTokenExpiry:   8 * time.Hour,
}

// Init 初始化 JWT 配置
func Init(secret string, accessExpiryMinutes, refreshExpiryHours, adminExpiryHours int) {
	jwtConfig = &JWTConfig{
		Secret:             secret,
		AccessTokenExpiry:  time.Duration(accessExpiryMinutes) * time.Minute,
		RefreshTokenExpiry: time.Duration(refreshExpiryHours) * time.Hour,
		AdminTokenExpiry:   time.Duration(adminExpiryHours) * time.Hour,
	}
}

// Claims 自定义 JWT 声明
type Claims struct {
	UserID  string `json:"userId"`
	IsAdmin bool   `json:"is_admin,omitempty"`
	jwt.RegisteredClaims
}

func sign(userID, subject string, isAdmin bool, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   subject,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(jwtConfig.Secret))
	if err != nil {
		return "", errorx.Wrap(err, errorx.CodeServerBusy, "Sign token")
	}
	return signed, nil
}

// GenerateAccessToken 生成 Access Token (短期，用于接口认证)
func GenerateAccessToken(userID string) (string, error) {
	return sign(userID, SubjectAccess, false, jwtConfig.AccessTokenExpiry)
}

// GenerateAdminToken 生成后台 Token
func GenerateAdminToken(userID string) (string, error) {
	return sign(userID, SubjectAdmin, true, jwtConfig.AdminTokenExpiry)
}

// NewRefreshToken 生成不透明的 Refresh Token 及其过期时间，由调用方持久化
func NewRefreshToken() (string, time.Time) {
	return uuid.NewString(), time.Now().Add(jwtConfig.RefreshTokenExpiry)
}

// ParseToken 解析并验证 Token，只接受 HS256 和指定 subject
// 过期返回 ErrTokenExpired，其余失败一律 ErrInvalidToken
func ParseToken(tokenString, subject string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(jwtConfig.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithSubject(subject),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errorx.ErrTokenExpired
		}
		return nil, errorx.ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, errorx.ErrInvalidToken
	}
	if subject == SubjectAdmin && !claims.IsAdmin {
		return nil, errorx.ErrInvalidToken
	}
	return claims, nil
}
