package handler

import (
	"github.com/gin-gonic/gin"

	"vedzeb_server/internal/dto/request"
	"vedzeb_server/internal/dto/respond"
	"vedzeb_server/internal/infrastructure/middleware"
	"vedzeb_server/internal/service"
)

// ContactHandler 联系请求与会话处理器
type ContactHandler struct {
	contactSvc service.ContactService
}

func NewContactHandler(contactSvc service.ContactService) *ContactHandler {
	return &ContactHandler{contactSvc: contactSvc}
}

// Create 发起联系请求
// POST /api/contact-requests
// 响应: 201 respond.ContactRequestRespond
func (h *ContactHandler) Create(c *gin.Context) {
	var req request.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	view, err := h.contactSvc.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, respond.ContactRequestRespond{ContactRequest: *view})
}

// List 我的联系请求
// GET /api/contact-requests?type=all|sent|received
func (h *ContactHandler) List(c *gin.Context) {
	var q request.ContactListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.contactSvc.ListMine(c.Request.Context(), middleware.UserID(c), q.Type)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UpdateStatus 接受或拒绝
// PUT /api/contact-requests/:id
func (h *ContactHandler) UpdateStatus(c *gin.Context) {
	var req request.UpdateContactStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	view, err := h.contactSvc.UpdateStatus(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Status)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.ContactRequestRespond{ContactRequest: *view})
}

// Delete 任一参与者删除请求
// DELETE /api/contact-requests/:id
func (h *ContactHandler) Delete(c *gin.Context) {
	if err := h.contactSvc.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	HandleMessage(c, "Contact request deleted")
}

// Conversation 会话消息，同时标记已读
// GET /api/contact-requests/:id/messages
func (h *ContactHandler) Conversation(c *gin.Context) {
	data, err := h.contactSvc.GetConversation(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// SendMessage 发送消息
// POST /api/contact-requests/:id/messages
// 响应: 201 respond.MessageRespondBody
func (h *ContactHandler) SendMessage(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	msg, err := h.contactSvc.SendMessage(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Content)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, respond.MessageRespondBody{Message: *msg})
}
