// Package middleware 提供 gin 中间件：认证、后台权限、限流和安全头
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"vedzeb_server/internal/infrastructure/envelope"
	"vedzeb_server/internal/model"
	"vedzeb_server/pkg/errorx"
	"vedzeb_server/pkg/util/jwt"
)

// 上下文键
const (
	CtxUserID = "user_id"
	CtxUser   = "user"
	CtxAdmin  = "admin"
)

var (
	errNoToken      = errorx.New(errorx.CodeUnauthorized, "No token provided")
	errUserNotFound = errorx.New(errorx.CodeUnauthorized, "User not found")
	errBanned       = errorx.New(errorx.CodeForbidden, "Account is banned")
)

// UserFinder 认证时重新读取用户，封禁和删除能立即生效
type UserFinder interface {
	FindByID(id string) (*model.User, error)
}

// abort 中断请求并写出错误信封
func abort(c *gin.Context, err error) {
	envelope.Abort(c, err)
}

// bearer 取出 Authorization: Bearer <token>
func bearer(c *gin.Context) (string, bool) {
	h := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// resolve 校验令牌并加载用户
func resolve(users UserFinder, token, subject string) (*model.User, error) {
	claims, err := jwt.ParseToken(token, subject)
	if err != nil {
		return nil, err
	}
	u, err := users.FindByID(claims.UserID)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// Authenticate 要求有效的 Access Token，被封禁的账号返回 403
func Authenticate(users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearer(c)
		if !ok {
			abort(c, errNoToken)
			return
		}
		u, err := resolve(users, token, jwt.SubjectAccess)
		if err != nil {
			abort(c, err)
			return
		}
		if u.IsBanned {
			abort(c, errBanned)
			return
		}
		c.Set(CtxUserID, u.ID)
		c.Set(CtxUser, u)
		c.Next()
	}
}

// OptionalAuth 带了有效令牌就识别用户，否则按匿名继续
func OptionalAuth(users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearer(c); ok {
			if u, err := resolve(users, token, jwt.SubjectAccess); err == nil && !u.IsBanned {
				c.Set(CtxUserID, u.ID)
				c.Set(CtxUser, u)
			}
		}
		c.Next()
	}
}

// UserID 当前登录用户 id，匿名时为空串
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserID)
}
