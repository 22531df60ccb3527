package respond

import "vedzeb_server/internal/model"

// AlertRespond 单个搜索提醒
type AlertRespond struct {
	Alert model.SearchAlert `json:"alert"`
}

// AlertListRespond 我的搜索提醒
type AlertListRespond struct {
	Alerts []model.SearchAlert `json:"alerts"`
}
