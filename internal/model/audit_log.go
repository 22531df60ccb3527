package model

import "gorm.io/datatypes"

// AuditAction 后台审计动作
type AuditAction string

const (
	AuditAdminLogin      AuditAction = "admin_login"
	AuditUserBanned      AuditAction = "user_banned"
	AuditUserUnbanned    AuditAction = "user_unbanned"
	AuditUserDeleted     AuditAction = "user_deleted"
	AuditRoleAssigned    AuditAction = "role_assigned"
	AuditProfileUpdated  AuditAction = "profile_updated"
	AuditProfileDeleted  AuditAction = "profile_deleted"
	AuditMessageDeleted  AuditAction = "message_deleted"
	AuditPasswordChanged AuditAction = "password_changed"
)

// AuditLog 只追加的审计日志
// admin_id 不建外键：操作人被删除后日志仍需保留
type AuditLog struct {
	Base
	AdminID  string         `gorm:"column:admin_id;type:char(36);not null;index;comment:操作人id" json:"adminId"`
	Action   AuditAction    `gorm:"column:action;type:varchar(30);not null;index;comment:动作" json:"action"`
	TargetID *string        `gorm:"column:target_id;type:char(36);comment:目标id" json:"targetId"`
	Details  datatypes.JSON `gorm:"column:details;comment:附加信息" json:"details"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
