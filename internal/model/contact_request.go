package model

// ContactStatus 联系请求状态
// pending 只能迁移到 accepted 或 rejected，两者均为终态
type ContactStatus string

const (
	ContactPending  ContactStatus = "pending"
	ContactAccepted ContactStatus = "accepted"
	ContactRejected ContactStatus = "rejected"
)

// Terminal 是否为终态
func (s ContactStatus) Terminal() bool {
	return s == ContactAccepted || s == ContactRejected
}

// ContactRequest 联系请求，同时承载双方的会话
// (from_user_id, to_profile_id) 唯一
type ContactRequest struct {
	Base
	FromUserID  string        `gorm:"column:from_user_id;type:char(36);not null;uniqueIndex:uk_contact_pair,priority:1;comment:发起人id" json:"fromUserId"`
	ToProfileID string        `gorm:"column:to_profile_id;type:char(36);not null;uniqueIndex:uk_contact_pair,priority:2;index;comment:目标档案id" json:"toProfileId"`
	Message     string        `gorm:"column:message;type:varchar(1000);comment:附言" json:"message"`
	Status      ContactStatus `gorm:"column:status;type:varchar(10);not null;default:pending;index;comment:状态" json:"status"`

	FromUser  *User     `gorm:"foreignKey:FromUserID;constraint:OnDelete:CASCADE" json:"fromUser,omitempty"`
	ToProfile *Profile  `gorm:"foreignKey:ToProfileID;constraint:OnDelete:CASCADE" json:"toProfile,omitempty"`
	Messages  []Message `gorm:"foreignKey:ContactRequestID;constraint:OnDelete:CASCADE" json:"messages,omitempty"`
}

func (ContactRequest) TableName() string {
	return "contact_requests"
}
