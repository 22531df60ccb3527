// Package rbac 定义后台角色、权限集合以及管理员对用户的操作规则
// 纯函数实现，不依赖数据库，便于在中间件和 Service 中复用
package rbac

// Role 用户角色，按 user < moder < administrator < admin 全序排列
type Role string

const (
	RoleUser          Role = "user"
	RoleModer         Role = "moder"
	RoleAdministrator Role = "administrator"
	RoleAdmin         Role = "admin"
)

// hierarchy 下标越大权限越高
var hierarchy = []Role{RoleUser, RoleModer, RoleAdministrator, RoleAdmin}

// Permission 后台操作权限
type Permission string

const (
	PermViewStats     Permission = "view_stats"
	PermViewUsers     Permission = "view_users"
	PermBanUser       Permission = "ban_user"
	PermUnbanUser     Permission = "unban_user"
	PermDeleteUser    Permission = "delete_user"
	PermAssignRole    Permission = "assign_role"
	PermViewProfiles  Permission = "view_profiles"
	PermEditProfile   Permission = "edit_profile"
	PermDeleteProfile Permission = "delete_profile"
	PermViewMessages  Permission = "view_messages"
	PermDeleteMessage Permission = "delete_message"
	PermViewAuditLogs Permission = "view_audit_logs"
)

var moderPermissions = []Permission{
	PermViewStats,
	PermViewProfiles,
	PermEditProfile,
	PermViewMessages,
}

var administratorPermissions = []Permission{
	PermViewStats,
	PermViewUsers,
	PermBanUser,
	PermUnbanUser,
	PermDeleteUser,
	PermViewProfiles,
	PermEditProfile,
	PermDeleteProfile,
	PermViewMessages,
	PermDeleteMessage,
	PermViewAuditLogs,
}

var adminPermissions = []Permission{
	PermViewStats,
	PermViewUsers,
	PermBanUser,
	PermUnbanUser,
	PermDeleteUser,
	PermAssignRole,
	PermViewProfiles,
	PermEditProfile,
	PermDeleteProfile,
	PermViewMessages,
	PermDeleteMessage,
	PermViewAuditLogs,
}

// Action 管理员对目标用户执行的操作
type Action string

const (
	ActionBan        Action = "ban"
	ActionUnban      Action = "unban"
	ActionDelete     Action = "delete"
	ActionAssignRole Action = "assign_role"
)

// Index 返回角色在层级中的位置，未知角色返回 -1
func (r Role) Index() int {
	for i, h := range hierarchy {
		if h == r {
			return i
		}
	}
	return -1
}

// Valid 是否为已知角色
func (r Role) Valid() bool {
	return r.Index() >= 0
}

// AtLeast 角色是否不低于 min
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Index() >= min.Index()
}

// IsStaff moder 及以上才能进入后台
func (r Role) IsStaff() bool {
	return r.AtLeast(RoleModer)
}

// Permissions 返回角色的权限列表（返回副本，调用方可随意修改）
func (r Role) Permissions() []Permission {
	var src []Permission
	switch r {
	case RoleAdmin:
		src = adminPermissions
	case RoleAdministrator:
		src = administratorPermissions
	case RoleModer:
		src = moderPermissions
	}
	out := make([]Permission, len(src))
	copy(out, src)
	return out
}

// Has 角色是否拥有指定权限
func (r Role) Has(p Permission) bool {
	for _, owned := range r.Permissions() {
		if owned == p {
			return true
		}
	}
	return false
}

// SatisfiesAny 角色是否满足 roles 中任意一个的最低要求
func (r Role) SatisfiesAny(roles ...Role) bool {
	for _, required := range roles {
		if r.AtLeast(required) {
			return true
		}
	}
	return false
}

// Assignable 可以通过后台分配的角色，admin 只能由初始化产生
func (r Role) Assignable() bool {
	return r == RoleUser || r == RoleModer || r == RoleAdministrator
}

// CanActOnUser 判断 actor 能否对 target 执行 action
func CanActOnUser(actor, target Role, action Action) bool {
	if !actor.IsStaff() || !target.Valid() {
		return false
	}
	// 根管理员不可删除，包括自己
	if target == RoleAdmin && action == ActionDelete {
		return false
	}
	if action == ActionAssignRole && actor != RoleAdmin {
		return false
	}
	if actor == RoleAdministrator && target == RoleAdmin {
		return false
	}
	if actor == RoleModer {
		return false
	}
	return true
}
