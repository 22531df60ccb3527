package respond

import (
	"time"

	"vedzeb_server/internal/model"
	"vedzeb_server/pkg/rbac"
)

// AdminBrief 后台人员信息
type AdminBrief struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Role     rbac.Role `json:"role"`
}

// NewAdminBrief 从用户构造
func NewAdminBrief(u *model.User) AdminBrief {
	b := AdminBrief{ID: u.ID, Role: u.Role}
	if u.Username != nil {
		b.Username = *u.Username
	}
	return b
}

// AdminLoginRespond 后台登录响应
type AdminLoginRespond struct {
	Token string     `json:"token"`
	Admin AdminBrief `json:"admin"`
}

// AdminMeRespond 当前后台人员及其权限
type AdminMeRespond struct {
	Admin       AdminBrief        `json:"admin"`
	Permissions []rbac.Permission `json:"permissions"`
}

// StatsRespond moder 只能看到带 omitempty 之外的四项
type StatsRespond struct {
	TotalUsers             *int64 `json:"totalUsers,omitempty"`
	TotalProfiles          int64  `json:"totalProfiles"`
	ActiveProfiles         int64  `json:"activeProfiles"`
	TotalMessages          int64  `json:"totalMessages"`
	TotalContactRequests   *int64 `json:"totalContactRequests,omitempty"`
	PendingContactRequests *int64 `json:"pendingContactRequests,omitempty"`
	BannedUsers            *int64 `json:"bannedUsers,omitempty"`
	RecentUsers            *int64 `json:"recentUsers,omitempty"`
	RecentProfiles         int64  `json:"recentProfiles"`
}

// Reduced 去掉 moder 不可见的字段
func (s StatsRespond) Reduced() StatsRespond {
	return StatsRespond{
		TotalProfiles:  s.TotalProfiles,
		ActiveProfiles: s.ActiveProfiles,
		TotalMessages:  s.TotalMessages,
		RecentProfiles: s.RecentProfiles,
	}
}

// AdminUserView 后台看到的用户
type AdminUserView struct {
	ID            string     `json:"id"`
	Phone         string     `json:"phone"`
	PhoneVerified bool       `json:"phoneVerified"`
	Username      *string    `json:"username"`
	Role          rbac.Role  `json:"role"`
	IsBanned      bool       `json:"isBanned"`
	BanReason     string     `json:"banReason,omitempty"`
	BannedAt      *time.Time `json:"bannedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	ProfileCount  *int64     `json:"profileCount,omitempty"`
}

// NewAdminUserView 从用户构造
func NewAdminUserView(u *model.User) AdminUserView {
	return AdminUserView{
		ID:            u.ID,
		Phone:         u.Phone,
		PhoneVerified: u.PhoneVerified,
		Username:      u.Username,
		Role:          u.Role,
		IsBanned:      u.IsBanned,
		BanReason:     u.BanReason,
		BannedAt:      u.BannedAt,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// UserListRespond 后台用户列表
type UserListRespond struct {
	Users      []AdminUserView `json:"users"`
	Pagination AdminPagination `json:"pagination"`
}

// AdminUserDetail 用户详情，带其档案
type AdminUserDetail struct {
	AdminUserView
	Profiles []model.Profile `json:"profiles"`
}

// AdminUserDetailRespond 用户详情响应
type AdminUserDetailRespond struct {
	User AdminUserDetail `json:"user"`
}

// AdminUserRespond 封禁、解封、分配角色的响应
type AdminUserRespond struct {
	User    AdminUserView `json:"user"`
	Message string        `json:"message"`
}

// AdminProfileListRespond 后台档案列表
type AdminProfileListRespond struct {
	Profiles   []model.Profile `json:"profiles"`
	Pagination AdminPagination `json:"pagination"`
}

// AdminProfileRespond 后台编辑档案响应
type AdminProfileRespond struct {
	Profile model.Profile `json:"profile"`
	Message string        `json:"message"`
}

// AdminMessageListRespond 后台消息列表
type AdminMessageListRespond struct {
	Messages   []model.Message `json:"messages"`
	Pagination AdminPagination `json:"pagination"`
}

// AuditLogListRespond 审计日志列表
type AuditLogListRespond struct {
	Logs       []model.AuditLog `json:"logs"`
	Pagination AdminPagination  `json:"pagination"`
}
