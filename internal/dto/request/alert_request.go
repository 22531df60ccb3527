package request

import "vedzeb_server/internal/model"

// CreateAlertRequest 保存搜索提醒
type CreateAlertRequest struct {
	Filters *model.ProfileFilter `json:"filters" binding:"required"`
}

// UpdateAlertRequest 两个字段都可选
type UpdateAlertRequest struct {
	Filters  *model.ProfileFilter `json:"filters"`
	IsActive *bool                `json:"isActive"`
}
