// Package service 定义业务层接口
// Handler 层只依赖这里的接口，便于测试时替换实现
package service

import (
	"context"

	"vedzeb_server/internal/dto/request"
	"vedzeb_server/internal/dto/respond"
	"vedzeb_server/internal/model"
	"vedzeb_server/internal/service/admin"
)

// AuthService 短信验证码登录与令牌管理
type AuthService interface {
	SendCode(ctx context.Context, phone string) (*respond.SendCodeRespond, error)
	VerifyCode(ctx context.Context, phone, code string) (*respond.VerifyCodeRespond, error)
	// Refresh 轮换刷新令牌，旧令牌立即失效
	Refresh(ctx context.Context, refreshToken string) (*respond.TokenPairRespond, error)
	Logout(ctx context.Context, refreshToken, userID string) error
	Me(ctx context.Context, userID string) (*respond.MeRespond, error)
	CleanupExpired(ctx context.Context) (int64, error)
}

// ProfileService 寻亲档案与照片
type ProfileService interface {
	Search(ctx context.Context, q request.ProfileQuery) (*respond.ProfileListRespond, error)
	Get(ctx context.Context, id, viewerID string) (*respond.ProfileDetailRespond, error)
	ListMine(ctx context.Context, userID string) (*respond.MyProfilesRespond, error)
	Create(ctx context.Context, userID string, req request.CreateProfileRequest) (*model.Profile, error)
	Update(ctx context.Context, userID, id string, req request.UpdateProfileRequest) (*model.Profile, error)
	Delete(ctx context.Context, userID, id string) error
	UploadPhoto(ctx context.Context, userID, profileID string, data []byte) (*model.Photo, error)
	DeletePhoto(ctx context.Context, userID, profileID, photoID string) error
	SetPrimaryPhoto(ctx context.Context, userID, profileID, photoID string) error
}

// ContactService 联系请求与会话
type ContactService interface {
	Create(ctx context.Context, userID string, req request.CreateContactRequest) (*respond.ContactRequestView, error)
	ListMine(ctx context.Context, userID, direction string) (*respond.ContactListRespond, error)
	UpdateStatus(ctx context.Context, userID, id, status string) (*respond.ContactRequestView, error)
	Delete(ctx context.Context, userID, id string) error
	GetConversation(ctx context.Context, userID, id string) (*respond.ConversationRespond, error)
	SendMessage(ctx context.Context, userID, id, content string) (*model.Message, error)
}

// AlertService 搜索提醒
type AlertService interface {
	List(ctx context.Context, userID string) (*respond.AlertListRespond, error)
	Create(ctx context.Context, userID string, req request.CreateAlertRequest) (*model.SearchAlert, error)
	Update(ctx context.Context, userID, id string, req request.UpdateAlertRequest) (*model.SearchAlert, error)
	Delete(ctx context.Context, userID, id string) error
}

// AdminService 后台管理
type AdminService interface {
	Login(ctx context.Context, req request.AdminLoginRequest, ip string) (*respond.AdminLoginRespond, error)
	Me(ctx context.Context, actor admin.Actor) (*respond.AdminMeRespond, error)
	ChangePassword(ctx context.Context, actor admin.Actor, req request.ChangePasswordRequest) error
	Stats(ctx context.Context, actor admin.Actor) (*respond.StatsRespond, error)

	ListUsers(ctx context.Context, q request.UserListQuery) (*respond.UserListRespond, error)
	GetUser(ctx context.Context, id string) (*respond.AdminUserDetailRespond, error)
	Ban(ctx context.Context, actor admin.Actor, id, reason string) (*respond.AdminUserRespond, error)
	Unban(ctx context.Context, actor admin.Actor, id string) (*respond.AdminUserRespond, error)
	DeleteUser(ctx context.Context, actor admin.Actor, id string) error
	AssignRole(ctx context.Context, actor admin.Actor, id string, req request.AssignRoleRequest) (*respond.AdminUserRespond, error)

	ListProfiles(ctx context.Context, q request.AdminProfileQuery) (*respond.AdminProfileListRespond, error)
	UpdateProfile(ctx context.Context, actor admin.Actor, id string, req request.UpdateProfileRequest) (*respond.AdminProfileRespond, error)
	DeleteProfile(ctx context.Context, actor admin.Actor, id string) error

	ListMessages(ctx context.Context, q request.AdminMessageQuery) (*respond.AdminMessageListRespond, error)
	DeleteMessage(ctx context.Context, actor admin.Actor, id string) error
	AuditLogs(ctx context.Context, q request.AuditLogQuery) (*respond.AuditLogListRespond, error)
}
