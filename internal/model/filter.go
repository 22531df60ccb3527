package model

import "vedzeb_server/pkg/rbac"

// ProfileFilter 档案查询条件，所有条件之间为 AND
// 同时作为 SearchAlert.Filters 的 JSON 结构
type ProfileFilter struct {
	Type              ProfileType `json:"type,omitempty"`
	Region            string      `json:"region,omitempty"`
	Gender            Gender      `json:"gender,omitempty"`
	BirthYearFrom     *int        `json:"birthYearFrom,omitempty"`
	BirthYearTo       *int        `json:"birthYearTo,omitempty"`
	BirthMonth        *int        `json:"birthMonth,omitempty"`
	BirthDay          *int        `json:"birthDay,omitempty"`
	MaternityHospital string      `json:"maternityHospital,omitempty"`
	Search            string      `json:"search,omitempty"` // 名、姓、出生地、故事的模糊匹配

	// 以下仅服务端使用
	IsActive *bool `json:"-"` // nil 表示不限
}

// Empty 是否没有任何用户可见的条件
func (f ProfileFilter) Empty() bool {
	return f.Type == "" && f.Region == "" && f.Gender == "" &&
		f.BirthYearFrom == nil && f.BirthYearTo == nil &&
		f.BirthMonth == nil && f.BirthDay == nil &&
		f.MaternityHospital == "" && f.Search == ""
}

// UserFilter 后台用户列表条件
type UserFilter struct {
	Role   rbac.Role
	Search string // 手机号或用户名
	Banned *bool
}

// MessageFilter 后台消息列表条件
type MessageFilter struct {
	ContactRequestID string
}

// AuditLogFilter 审计日志条件
type AuditLogFilter struct {
	Action  AuditAction
	AdminID string
}
