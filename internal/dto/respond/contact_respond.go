package respond

import (
	"time"

	"vedzeb_server/internal/model"
)

// ParticipantBrief 会话中对方的公开信息
type ParticipantBrief struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContactRequestView 联系请求及其会话
// 使用位置:
//   - internal/service/contact/service.go
type ContactRequestView struct {
	ID          string              `json:"id"`
	FromUserID  string              `json:"fromUserId"`
	ToProfileID string              `json:"toProfileId"`
	Message     string              `json:"message"`
	Status      model.ContactStatus `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	FromUser    *ParticipantBrief   `json:"fromUser,omitempty"`
	ToProfile   *model.Profile      `json:"toProfile,omitempty"`
	Messages    []model.Message     `json:"messages,omitempty"`
}

// NewContactRequestView 只保留发起人的公开字段
func NewContactRequestView(cr *model.ContactRequest) ContactRequestView {
	v := ContactRequestView{
		ID:          cr.ID,
		FromUserID:  cr.FromUserID,
		ToProfileID: cr.ToProfileID,
		Message:     cr.Message,
		Status:      cr.Status,
		CreatedAt:   cr.CreatedAt,
		UpdatedAt:   cr.UpdatedAt,
		ToProfile:   cr.ToProfile,
		Messages:    cr.Messages,
	}
	if cr.FromUser != nil {
		v.FromUser = &ParticipantBrief{ID: cr.FromUser.ID, Phone: cr.FromUser.Phone, CreatedAt: cr.FromUser.CreatedAt}
	}
	return v
}

// NewContactRequestViews 批量转换，空列表输出 []
func NewContactRequestViews(list []model.ContactRequest) []ContactRequestView {
	out := make([]ContactRequestView, 0, len(list))
	for i := range list {
		out = append(out, NewContactRequestView(&list[i]))
	}
	return out
}

// ContactRequestRespond 单个联系请求
type ContactRequestRespond struct {
	ContactRequest ContactRequestView `json:"contactRequest"`
}

// ContactListRespond type=sent 时 received 为 nil，反之亦然
type ContactListRespond struct {
	Sent     []ContactRequestView `json:"sent,omitempty"`
	Received []ContactRequestView `json:"received,omitempty"`
}

// MessageRespondBody 发送消息响应
type MessageRespondBody struct {
	Message model.Message `json:"message"`
}

// ConversationRespond 会话详情
type ConversationRespond struct {
	Messages       []model.Message    `json:"messages"`
	ContactRequest ContactRequestView `json:"contactRequest"`
}
