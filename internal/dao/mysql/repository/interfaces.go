package repository

import (
	"time"

	"vedzeb_server/internal/model"

	"gorm.io/gorm"
)

// ==================== Repository 接口定义 ====================

// UserRepository 用户数据访问接口
type UserRepository interface {
	FindByID(id string) (*model.User, error)
	FindByPhone(phone string) (*model.User, error)
	// LockByID 在事务中对用户行加写锁，用于串行化按用户计数的上限检查
	LockByID(id string) (*model.User, error)
	// FindStaffByUsername 只在 moder 及以上角色中查找
	FindStaffByUsername(username string) (*model.User, error)
	// UsernameTaken 用户名是否已被除 excludeID 以外的用户占用
	UsernameTaken(username, excludeID string) (bool, error)
	Create(user *model.User) error
	// Save 整行保存，RawPassword 会在 Hook 中加密
	Save(user *model.User) error
	// MarkPhoneVerified 标记手机号已验证
	MarkPhoneVerified(id string) error
	// Delete 物理删除，依赖外键级联清理其名下数据
	Delete(id string) error
	List(filter model.UserFilter, offset, limit int) ([]model.User, int64, error)
	// CountProfiles 批量统计每个用户的档案数
	CountProfiles(userIDs []string) (map[string]int64, error)
	Count(filter model.UserFilter) (int64, error)
	CountCreatedSince(filter model.UserFilter, since time.Time) (int64, error)
}

// VerificationCodeRepository 短信验证码数据访问接口
type VerificationCodeRepository interface {
	Create(code *model.VerificationCode) error
	// InvalidateUnused 将该用户所有未使用的验证码置为已使用
	InvalidateUnused(userID string) error
	// FindValid 查找未使用且未过期的匹配验证码
	FindValid(userID, code string, now time.Time) (*model.VerificationCode, error)
	// MarkUsed 条件更新 used=false -> true，返回是否由本次调用完成
	MarkUsed(id string) (bool, error)
}

// RefreshTokenRepository 刷新令牌数据访问接口
type RefreshTokenRepository interface {
	Create(token *model.RefreshToken) error
	FindByToken(token string) (*model.RefreshToken, error)
	// DeleteByToken 返回删除行数，并发刷新时只有一个调用方能得到 1
	DeleteByToken(token string) (int64, error)
	DeleteByUser(userID string) error
	DeleteExpired(now time.Time) (int64, error)
}

// ProfileRepository 寻亲档案数据访问接口
type ProfileRepository interface {
	Create(profile *model.Profile) error
	FindByID(id string) (*model.Profile, error)
	// FindByIDWithPhotos 预加载全部照片，按上传时间升序
	FindByIDWithPhotos(id string) (*model.Profile, error)
	// LockByID 在事务中对档案行加写锁，用于串行化照片数量检查
	LockByID(id string) (*model.Profile, error)
	// Updates 按字段更新，fields 的 key 为列名
	Updates(id string, fields map[string]any) error
	Delete(id string) error
	// Search 按条件分页查询，每个档案只带主图，按创建时间倒序
	Search(filter model.ProfileFilter, offset, limit int) ([]model.Profile, int64, error)
	// FindByUser 某用户的全部档案（含未启用），带主图
	FindByUser(userID string) ([]model.Profile, error)
	Count(filter model.ProfileFilter) (int64, error)
	CountCreatedSince(since time.Time) (int64, error)
}

// PhotoRepository 档案照片数据访问接口
type PhotoRepository interface {
	Create(photo *model.Photo) error
	FindByID(id string) (*model.Photo, error)
	// FindByProfile 按上传时间升序
	FindByProfile(profileID string) ([]model.Photo, error)
	// FindByProfiles 批量查询，用于级联删除时清理外部图片
	FindByProfiles(profileIDs []string) ([]model.Photo, error)
	CountByProfile(profileID string) (int64, error)
	Delete(id string) error
	// FindOldest 最早上传的一张，没有照片时返回 NotFound
	FindOldest(profileID string) (*model.Photo, error)
	ClearPrimary(profileID string) error
	SetPrimary(id string) error
}

// ContactRequestRepository 联系请求数据访问接口
type ContactRequestRepository interface {
	// Create 依赖 (from_user_id, to_profile_id) 唯一索引，重复时返回 Conflict
	Create(req *model.ContactRequest) error
	// FindByID 预加载 ToProfile，便于做参与者判断
	FindByID(id string) (*model.ContactRequest, error)
	// UpdateStatusIfPending 单条件更新，返回是否真正发生了状态迁移
	UpdateStatusIfPending(id string, status model.ContactStatus) (bool, error)
	// Touch 刷新 updated_at，用于会话按最近活跃排序
	Touch(id string) error
	Delete(id string) error
	// ListSent 我发出的请求，预加载目标档案（带主图）和消息
	ListSent(userID string) ([]model.ContactRequest, error)
	// ListReceived 发到我名下档案的请求，预加载发起人、目标档案和消息
	ListReceived(userID string) ([]model.ContactRequest, error)
	// CountByProfiles 每个档案收到的请求数
	CountByProfiles(profileIDs []string) (map[string]int64, error)
	Count(status model.ContactStatus) (int64, error)
}

// MessageRepository 会话消息数据访问接口
type MessageRepository interface {
	Create(msg *model.Message) error
	FindByID(id string) (*model.Message, error)
	// ListByRequest 按创建时间升序
	ListByRequest(requestID string) ([]model.Message, error)
	// MarkRead 将对方发送的未读消息置为已读
	MarkRead(requestID, readerID string) (int64, error)
	Delete(id string) error
	List(filter model.MessageFilter, offset, limit int) ([]model.Message, int64, error)
	Count() (int64, error)
}

// SearchAlertRepository 搜索提醒数据访问接口
type SearchAlertRepository interface {
	Create(alert *model.SearchAlert) error
	FindByID(id string) (*model.SearchAlert, error)
	ListByUser(userID string) ([]model.SearchAlert, error)
	CountByUser(userID string) (int64, error)
	Save(alert *model.SearchAlert) error
	Delete(id string) error
}

// AuditLogRepository 审计日志数据访问接口，只追加
type AuditLogRepository interface {
	Create(log *model.AuditLog) error
	List(filter model.AuditLogFilter, offset, limit int) ([]model.AuditLog, int64, error)
}

// ==================== Repositories 聚合 ====================

// Repositories 聚合所有 Repository 实例
// db 为 nil 时（内存实现）Transaction 直接在当前实例上执行
type Repositories struct {
	db               *gorm.DB
	User             UserRepository
	VerificationCode VerificationCodeRepository
	RefreshToken     RefreshTokenRepository
	Profile          ProfileRepository
	Photo            PhotoRepository
	ContactRequest   ContactRequestRepository
	Message          MessageRepository
	SearchAlert      SearchAlertRepository
	AuditLog         AuditLogRepository
}

// NewRepositories 基于 GORM 实例创建全部 Repository
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:               db,
		User:             NewUserRepository(db),
		VerificationCode: NewVerificationCodeRepository(db),
		RefreshToken:     NewRefreshTokenRepository(db),
		Profile:          NewProfileRepository(db),
		Photo:            NewPhotoRepository(db),
		ContactRequest:   NewContactRequestRepository(db),
		Message:          NewMessageRepository(db),
		SearchAlert:      NewSearchAlertRepository(db),
		AuditLog:         NewAuditLogRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// fn 返回错误时整个事务回滚
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
