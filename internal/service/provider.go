// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"vedzeb_server/internal/config"
	"vedzeb_server/internal/dao/mysql/repository"
	myredis "vedzeb_server/internal/dao/redis"
	"vedzeb_server/internal/infrastructure/mq"
	"vedzeb_server/internal/infrastructure/sms"
	"vedzeb_server/internal/infrastructure/storage"
	"vedzeb_server/internal/service/admin"
	"vedzeb_server/internal/service/alert"
	"vedzeb_server/internal/service/auth"
	"vedzeb_server/internal/service/contact"
	"vedzeb_server/internal/service/profile"
)

// Services 聚合所有 Service 实例
type Services struct {
	Auth    AuthService
	Profile ProfileService
	Contact ContactService
	Alert   AlertService
	Admin   AdminService
}

// Deps Service 层的外部依赖
// Cache 和 Publisher 可为 nil
type Deps struct {
	Repos     *repository.Repositories
	Sms       sms.SmsService
	Store     storage.ImageStore
	Publisher mq.EventPublisher
	Cache     myredis.AsyncCacheService
}

// NewServices 创建并注入所有 Service 实例
// 档案服务同时被后台服务复用，删除档案和清理图片只有一处实现
func NewServices(deps Deps, cfg *config.Config) *Services {
	profileSvc := profile.NewProfileService(deps.Repos, deps.Store, cfg.StorageConfig.MaxDimension)
	return &Services{
		Auth:    auth.NewAuthService(deps.Repos, deps.Sms, cfg.AuthCodeConfig.CodeExpiry),
		Profile: profileSvc,
		Contact: contact.NewContactService(deps.Repos, deps.Publisher),
		Alert:   alert.NewAlertService(deps.Repos),
		Admin:   admin.NewAdminService(deps.Repos, profileSvc, deps.Cache),
	}
}
