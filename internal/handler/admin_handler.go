package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"vedzeb_server/internal/dto/request"
	"vedzeb_server/internal/infrastructure/middleware"
	"vedzeb_server/internal/service"
	"vedzeb_server/internal/service/admin"
	"vedzeb_server/pkg/errorx"
)

var errAdminRequired = errorx.New(errorx.CodeUnauthorized, "Admin authentication required")

// AdminHandler 后台请求处理器
// 权限在路由上由 middleware.RequirePermission 把关，这里只做参数绑定
type AdminHandler struct {
	adminSvc service.AdminService
}

func NewAdminHandler(adminSvc service.AdminService) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc}
}

// actor 从上下文取出当前后台人员
func actor(c *gin.Context) (admin.Actor, bool) {
	u, ok := middleware.CurrentAdmin(c)
	if !ok {
		HandleError(c, errAdminRequired)
		return admin.Actor{}, false
	}
	return admin.Actor{ID: u.ID, Role: u.Role}, true
}

// Login POST /api/admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req request.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.adminSvc.Login(c.Request.Context(), req, c.ClientIP())
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Me GET /api/admin/me
func (h *AdminHandler) Me(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	data, err := h.adminSvc.Me(c.Request.Context(), a)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ChangePassword PUT /api/admin/change-password
func (h *AdminHandler) ChangePassword(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req request.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.adminSvc.ChangePassword(c.Request.Context(), a, req); err != nil {
		HandleError(c, err)
		return
	}
	HandleMessage(c, "Password changed successfully")
}

// Stats GET /api/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	data, err := h.adminSvc.Stats(c.Request.Context(), a)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ListUsers GET /api/admin/users?page=&limit=&search=&role=&banned=
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var q request.UserListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.adminSvc.ListUsers(c.Request.Context(), q)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetUser GET /api/admin/users/:id
func (h *AdminHandler) GetUser(c *gin.Context) {
	data, err := h.adminSvc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Ban PUT /api/admin/users/:id/ban，请求体可以为空
func (h *AdminHandler) Ban(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req request.BanUserRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		HandleParamError(c, err)
		return
	}
	data, err := h.adminSvc.Ban(c.Request.Context(), a, c.Param("id"), req.Reason)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Unban PUT /api/admin/users/:id/unban
func (h *AdminHandler) Unban(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	data, err := h.adminSvc.Unban(c.Request.Context(), a, c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DeleteUser DELETE /api/admin/users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.adminSvc.DeleteUser(c.Request.Context(), a, c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	HandleMessage(c, "User deleted successfully")
}

// AssignRole PUT /api/admin/users/:id/role
func (h *AdminHandler) AssignRole(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req request.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.adminSvc.AssignRole(c.Request.Context(), a, c.Param("id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ListProfiles GET /api/admin/profiles
func (h *AdminHandler) ListProfiles(c *gin.Context) {
	var q request.AdminProfileQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.adminSvc.ListProfiles(c.Request.Context(), q)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpdateProfile PUT /api/admin/profiles/:id
func (h *AdminHandler) UpdateProfile(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req request.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.adminSvc.UpdateProfile(c.Request.Context(), a, c.Param("id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DeleteProfile DELETE /api/admin/profiles/:id
func (h *AdminHandler) DeleteProfile(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.adminSvc.DeleteProfile(c.Request.Context(), a, c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	HandleMessage(c, "Profile deleted successfully")
}

// ListMessages GET /api/admin/messages?contactRequestId=
func (h *AdminHandler) ListMessages(c *gin.Context) {
	var q request.AdminMessageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.adminSvc.ListMessages(c.Request.Context(), q)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DeleteMessage DELETE /api/admin/messages/:id
func (h *AdminHandler) DeleteMessage(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.adminSvc.DeleteMessage(c.Request.Context(), a, c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	HandleMessage(c, "Message deleted successfully")
}

// AuditLogs GET /api/admin/audit-logs?action=&adminId=
func (h *AdminHandler) AuditLogs(c *gin.Context) {
	var q request.AuditLogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.adminSvc.AuditLogs(c.Request.Context(), q)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
