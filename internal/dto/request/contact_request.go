package request

// CreateContactRequest 发起联系请求
// 使用位置:
//   - internal/handler/contact_handler.go: Create
type CreateContactRequest struct {
	ProfileID string `json:"profileId" binding:"required,uuid"`
	Message   string `json:"message" binding:"max=1000"`
}

// ContactListQuery type 为空等同于 all
type ContactListQuery struct {
	Type string `form:"type" binding:"omitempty,oneof=all sent received"`
}

// UpdateContactStatusRequest 状态取值在 Service 层校验，以便返回 InvalidStatus
type UpdateContactStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SendMessageRequest 内容的去空白和长度校验在 Service 层
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}
