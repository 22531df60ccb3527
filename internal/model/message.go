package model

// MaxMessageLength 消息和附言的最大长度（字符）
const MaxMessageLength = 1000

// Message 会话消息
type Message struct {
	Base
	ContactRequestID string `gorm:"column:contact_request_id;type:char(36);not null;index;comment:所属联系请求" json:"contactRequestId"`
	SenderID         string `gorm:"column:sender_id;type:char(36);not null;index;comment:发送者id" json:"senderId"`
	Content          string `gorm:"column:content;type:text;not null;comment:内容" json:"content"`
	IsRead           bool   `gorm:"column:is_read;not null;default:false;comment:是否已读" json:"isRead"`

	Sender *User `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}
