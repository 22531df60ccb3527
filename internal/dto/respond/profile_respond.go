package respond

import (
	"time"

	"vedzeb_server/internal/model"
)

// Pagination 公开搜索使用 totalPages
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// AdminPagination 后台列表使用 pages
type AdminPagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// PageCount 向上取整的页数
func PageCount(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// ProfileListRespond 公开搜索结果
type ProfileListRespond struct {
	Profiles   []model.Profile `json:"profiles"`
	Pagination Pagination      `json:"pagination"`
}

// ProfileOwner 只返回给档案本人
type ProfileOwner struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProfileView 档案详情
type ProfileView struct {
	model.Profile
	User *ProfileOwner `json:"user,omitempty"`
}

// ProfileDetailRespond 档案详情响应
type ProfileDetailRespond struct {
	Profile ProfileView `json:"profile"`
	IsOwner bool        `json:"isOwner"`
}

// ProfileRespond 创建和更新档案的响应
type ProfileRespond struct {
	Profile model.Profile `json:"profile"`
}

// ProfileCount 与前端约定的 _count 结构
type ProfileCount struct {
	ContactRequests int64 `json:"contactRequests"`
}

// MyProfile 我的档案，带收到的联系请求数
type MyProfile struct {
	model.Profile
	Count ProfileCount `json:"_count"`
}

// MyProfilesRespond 我的档案列表
type MyProfilesRespond struct {
	Profiles []MyProfile `json:"profiles"`
}

// PhotoRespond 上传照片响应
type PhotoRespond struct {
	Photo model.Photo `json:"photo"`
}
