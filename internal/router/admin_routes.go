package router

import (
	"github.com/gin-gonic/gin"

	"vedzeb_server/internal/infrastructure/middleware"
	"vedzeb_server/pkg/rbac"
)

// RegisterAdminRoutes 后台路由，登录之外都要求后台令牌，逐个接口按权限把关
func (rt *Router) RegisterAdminRoutes(rg *gin.RouterGroup) {
	h := rt.handlers.Admin
	perm := middleware.RequirePermission

	rg.POST("/admin/login", rt.limit("admin-login", rt.limits.VerifyCodeLimit, rt.limits.VerifyCodeWindow), h.Login)

	admin := rg.Group("/admin")
	admin.Use(middleware.AdminAuth(rt.users))
	{
		admin.GET("/me", h.Me)
		admin.PUT("/change-password", h.ChangePassword)
		admin.GET("/stats", perm(rbac.PermViewStats), h.Stats)

		admin.GET("/users", perm(rbac.PermViewUsers), h.ListUsers)
		admin.GET("/users/:id", perm(rbac.PermViewUsers), h.GetUser)
		admin.PUT("/users/:id/ban", perm(rbac.PermBanUser), h.Ban)
		admin.PUT("/users/:id/unban", perm(rbac.PermUnbanUser), h.Unban)
		admin.DELETE("/users/:id", perm(rbac.PermDeleteUser), h.DeleteUser)
		admin.PUT("/users/:id/role", middleware.RequireRole(rbac.RoleAdmin), perm(rbac.PermAssignRole), h.AssignRole)

		admin.GET("/profiles", perm(rbac.PermViewProfiles), h.ListProfiles)
		admin.PUT("/profiles/:id", perm(rbac.PermEditProfile), h.UpdateProfile)
		admin.DELETE("/profiles/:id", perm(rbac.PermDeleteProfile), h.DeleteProfile)

		admin.GET("/messages", perm(rbac.PermViewMessages), h.ListMessages)
		admin.DELETE("/messages/:id", perm(rbac.PermDeleteMessage), h.DeleteMessage)

		admin.GET("/audit-logs", perm(rbac.PermViewAuditLogs), h.AuditLogs)
	}
}
