package request

// AdminLoginRequest 后台登录
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest 修改自己的后台密码
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=72"`
}

// PageQuery 后台列表通用分页参数
type PageQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// Normalize 填充默认值并返回 offset
func (q *PageQuery) Normalize(defaultLimit int) int {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultLimit
	}
	return (q.Page - 1) * q.Limit
}

// UserListQuery 后台用户列表，role 为空时只列普通用户
type UserListQuery struct {
	PageQuery
	Search string `form:"search" binding:"max=50"`
	Role   string `form:"role" binding:"omitempty,oneof=user moder administrator admin"`
	Banned *bool  `form:"banned"`
}

// BanUserRequest 封禁原因可选
type BanUserRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// AssignRoleRequest 只能分配 user / moder / administrator
type AssignRoleRequest struct {
	Role     string `json:"role" binding:"required,oneof=user moder administrator"`
	Username string `json:"username" binding:"omitempty,min=3,max=50"`
	Password string `json:"password" binding:"omitempty,min=6,max=72"`
}

// AdminProfileQuery 后台档案列表
type AdminProfileQuery struct {
	PageQuery
	Search string `form:"search" binding:"max=100"`
	Type   string `form:"type" binding:"omitempty,oneof=searching_sibling searching_child searching_parent searching_relative"`
	Active *bool  `form:"active"`
}

// AdminMessageQuery 后台消息列表
type AdminMessageQuery struct {
	PageQuery
	ContactRequestID string `form:"contactRequestId" binding:"omitempty,uuid"`
}

// AuditLogQuery 审计日志列表
type AuditLogQuery struct {
	PageQuery
	Action  string `form:"action"`
	AdminID string `form:"adminId" binding:"omitempty,uuid"`
}
