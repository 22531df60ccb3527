package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"vedzeb_server/internal/model"
	"vedzeb_server/pkg/errorx"
	"vedzeb_server/pkg/rbac"
	"vedzeb_server/pkg/util/jwt"
)

var (
	errNoAdminToken     = errorx.New(errorx.CodeUnauthorized, "No admin token provided")
	errAdminExpired     = errorx.New(errorx.CodeUnauthorized, "Admin token expired").WithReason(errorx.ReasonTokenExpired)
	errAdminInvalid     = errorx.New(errorx.CodeUnauthorized, "Invalid admin token").WithReason(errorx.ReasonInvalidToken)
	errAdminNotFound    = errorx.New(errorx.CodeUnauthorized, "Admin not found")
	errNotStaff         = errorx.New(errorx.CodeForbidden, "Access denied. Admin privileges required.")
	errAdminRequired    = errorx.New(errorx.CodeUnauthorized, "Admin authentication required")
	errInsufficientRole = errorx.New(errorx.CodeForbidden, "Insufficient permissions")
	errPermissionDenied = errorx.New(errorx.CodeForbidden, "Permission denied")
)

// AdminAuth 要求后台令牌且角色不低于 moder
func AdminAuth(users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearer(c)
		if !ok {
			abort(c, errNoAdminToken)
			return
		}
		u, err := resolve(users, token, jwt.SubjectAdmin)
		switch {
		case errors.Is(err, errorx.ErrTokenExpired):
			abort(c, errAdminExpired)
			return
		case errors.Is(err, errorx.ErrInvalidToken):
			abort(c, errAdminInvalid)
			return
		case errors.Is(err, errUserNotFound):
			abort(c, errAdminNotFound)
			return
		case err != nil:
			abort(c, err)
			return
		}
		if !u.Role.IsStaff() {
			abort(c, errNotStaff)
			return
		}
		if u.IsBanned {
			abort(c, errBanned)
			return
		}
		c.Set(CtxAdmin, u)
		c.Next()
	}
}

// CurrentAdmin AdminAuth 之后可用
func CurrentAdmin(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(CtxAdmin)
	if !ok {
		return nil, false
	}
	u, ok := v.(*model.User)
	return u, ok
}

// RequireRole 角色不低于 roles 中任意一个
func RequireRole(roles ...rbac.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentAdmin(c)
		if !ok {
			abort(c, errAdminRequired)
			return
		}
		if !u.Role.SatisfiesAny(roles...) {
			abort(c, errInsufficientRole)
			return
		}
		c.Next()
	}
}

// RequirePermission 角色必须拥有权限 p
func RequirePermission(p rbac.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentAdmin(c)
		if !ok {
			abort(c, errAdminRequired)
			return
		}
		if !u.Role.Has(p) {
			abort(c, errPermissionDenied)
			return
		}
		c.Next()
	}
}
