package handler

import (
	"github.com/gin-gonic/gin"

	"vedzeb_server/internal/dto/request"
	"vedzeb_server/internal/dto/respond"
	"vedzeb_server/internal/infrastructure/middleware"
	"vedzeb_server/internal/service"
)

// AlertHandler 搜索提醒处理器
type AlertHandler struct {
	alertSvc service.AlertService
}

func NewAlertHandler(alertSvc service.AlertService) *AlertHandler {
	return &AlertHandler{alertSvc: alertSvc}
}

// List GET /api/alerts
func (h *AlertHandler) List(c *gin.Context) {
	data, err := h.alertSvc.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Create POST /api/alerts
func (h *AlertHandler) Create(c *gin.Context) {
	var req request.CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	a, err := h.alertSvc.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleCreated(c, respond.AlertRespond{Alert: *a})
}

// Update PUT /api/alerts/:id
func (h *AlertHandler) Update(c *gin.Context) {
	var req request.UpdateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	a, err := h.alertSvc.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, respond.AlertRespond{Alert: *a})
}

// Delete DELETE /api/alerts/:id
func (h *AlertHandler) Delete(c *gin.Context) {
	if err := h.alertSvc.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	HandleMessage(c, "Alert deleted")
}
