// Package admin 后台管理业务逻辑
// 所有变更操作与审计日志在同一个事务中写入
package admin

import (
	"context"
	"encoding/json"
	"sort"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"vedzeb_server/internal/dao/mysql/repository"
	myredis "vedzeb_server/internal/dao/redis"
	"vedzeb_server/internal/dto/request"
	"vedzeb_server/internal/dto/respond"
	"vedzeb_server/internal/model"
	"vedzeb_server/internal/service/profile"
	"vedzeb_server/pkg/errorx"
	"vedzeb_server/pkg/rbac"
	"vedzeb_server/pkg/util/jwt"
)

const (
	statsCacheKey     = "admin:stats"
	statsCacheTTL     = time.Minute
	recentWindow      = 7 * 24 * time.Hour
	defaultPageSize   = 20
	auditPageSize     = 50
	auditContentLimit = 100
)

var (
	ErrInvalidCredentials = errorx.New(errorx.CodeInvalidPassword, "Invalid credentials")
	ErrAccountBanned      = errorx.New(errorx.CodeForbidden, "Account is banned")
	ErrNoPassword         = errorx.New(errorx.CodeInvalidParam, "No password set")
	ErrWrongPassword      = errorx.New(errorx.CodeInvalidPassword, "Current password is incorrect")
	ErrUserNotFound       = errorx.New(errorx.CodeNotFound, "User not found")
	ErrMessageNotFound    = errorx.New(errorx.CodeNotFound, "Message not found")
	ErrCannotAct          = errorx.New(errorx.CodeForbidden, "Cannot perform this action on this user")
	ErrRootUndeletable    = errorx.New(errorx.CodeForbidden, "Admin user cannot be deleted")
	ErrRootRoleFixed      = errorx.New(errorx.CodeForbidden, "Cannot change admin role")
	ErrInvalidRole        = errorx.New(errorx.CodeInvalidParam, "Invalid role")
	ErrUsernameRequired   = errorx.New(errorx.CodeInvalidParam, "Username is required for this role")
	ErrPasswordRequired   = errorx.New(errorx.CodeInvalidParam, "Password is required for this role")
	ErrUsernameTaken      = errorx.New(errorx.CodeInvalidParam, "Username already taken")
)

// Actor 当前登录的后台人员
type Actor struct {
	ID   string
	Role rbac.Role
}

// Service 后台服务
type Service struct {
	repos    *repository.Repositories
	profiles *profile.Service
	cache    myredis.AsyncCacheService // 可为 nil，此时统计不缓存
	now      func() time.Time
}

func NewAdminService(repos *repository.Repositories, profiles *profile.Service, cache myredis.AsyncCacheService) *Service {
	return &Service{repos: repos, profiles: profiles, cache: cache, now: time.Now}
}

// audit 在事务内追加一条审计日志
func audit(tx *repository.Repositories, adminID string, action model.AuditAction, targetID string, details map[string]any) error {
	entry := &model.AuditLog{AdminID: adminID, Action: action}
	if targetID != "" {
		entry.TargetID = &targetID
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return errorx.Wrap(err, errorx.CodeServerBusy, "encode audit details")
		}
		entry.Details = datatypes.JSON(raw)
	}
	return tx.AuditLog.Create(entry)
}

// invalidateStats 异步删除统计缓存
func (s *Service) invalidateStats() {
	if s.cache == nil {
		return
	}
	s.cache.SubmitTask(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
			zap.L().Warn("invalidate stats cache failed", zap.Error(err))
		}
	})
}

// ==================== 账号 ====================

// Login 用户名密码登录，仅 moder 及以上可登录
func (s *Service) Login(ctx context.Context, req request.AdminLoginRequest, ip string) (*respond.AdminLoginRespond, error) {
	u, err := s.repos.User.FindStaffByUsername(req.Username)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.CheckPassword(req.Password) {
		return nil, ErrInvalidCredentials
	}
	if u.IsBanned {
		return nil, ErrAccountBanned
	}

	token, err := jwt.GenerateAdminToken(u.ID)
	if err != nil {
		zap.L().Error("generate admin token failed", zap.Error(err))
		return nil, err
	}
	if err := audit(s.repos, u.ID, model.AuditAdminLogin, "", map[string]any{"ip": ip}); err != nil {
		return nil, err
	}
	zap.L().Info("admin logged in", zap.String("admin_id", u.ID), zap.String("role", string(u.Role)))
	return &respond.AdminLoginRespond{Token: token, Admin: respond.NewAdminBrief(u)}, nil
}

// Me 当前后台人员及其权限
func (s *Service) Me(ctx context.Context, actor Actor) (*respond.AdminMeRespond, error) {
	u, err := s.repos.User.FindByID(actor.ID)
	if err != nil {
		return nil, err
	}
	return &respond.AdminMeRespond{Admin: respond.NewAdminBrief(u), Permissions: u.Role.Permissions()}, nil
}

// ChangePassword 修改自己的密码
func (s *Service) ChangePassword(ctx context.Context, actor Actor, req request.ChangePasswordRequest) error {
	u, err := s.repos.User.FindByID(actor.ID)
	if err != nil {
		return err
	}
	if u.Password == "" {
		return ErrNoPassword
	}
	if !u.CheckPassword(req.CurrentPassword) {
		return ErrWrongPassword
	}
	if err := u.SetPassword(req.NewPassword); err != nil {
		return errorx.Wrap(err, errorx.CodeServerBusy, "hash password")
	}
	return s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.User.Save(u); err != nil {
			return err
		}
		return audit(tx, actor.ID, model.AuditPasswordChanged, actor.ID, nil)
	})
}

// ==================== 统计 ====================

// Stats moder 只能看到档案和消息相关的四项
func (s *Service) Stats(ctx context.Context, actor Actor) (*respond.StatsRespond, error) {
	stats, err := s.fullStats(ctx)
	if err != nil {
		return nil, err
	}
	if actor.Role == rbac.RoleModer {
		reduced := stats.Reduced()
		return &reduced, nil
	}
	return stats, nil
}

func (s *Service) fullStats(ctx context.Context) (*respond.StatsRespond, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, statsCacheKey); err == nil && raw != "" {
			var cached respond.StatsRespond
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	since := s.now().Add(-recentWindow)
	banned := true
	active := true
	onlyUsers := model.UserFilter{Role: rbac.RoleUser}

	var st respond.StatsRespond
	var err error
	count := func(dst *int64, fn func() (int64, error)) {
		if err != nil {
			return
		}
		*dst, err = fn()
	}
	var totalUsers, totalRequests, pending, bannedUsers, recentUsers int64
	count(&totalUsers, func() (int64, error) { return s.repos.User.Count(onlyUsers) })
	count(&st.TotalProfiles, func() (int64, error) { return s.repos.Profile.Count(model.ProfileFilter{}) })
	count(&st.ActiveProfiles, func() (int64, error) { return s.repos.Profile.Count(model.ProfileFilter{IsActive: &active}) })
	count(&st.TotalMessages, s.repos.Message.Count)
	count(&totalRequests, func() (int64, error) { return s.repos.ContactRequest.Count("") })
	count(&pending, func() (int64, error) { return s.repos.ContactRequest.Count(model.ContactPending) })
	count(&bannedUsers, func() (int64, error) { return s.repos.User.Count(model.UserFilter{Banned: &banned}) })
	count(&recentUsers, func() (int64, error) { return s.repos.User.CountCreatedSince(onlyUsers, since) })
	count(&st.RecentProfiles, func() (int64, error) { return s.repos.Profile.CountCreatedSince(since) })
	if err != nil {
		return nil, err
	}
	st.TotalUsers = &totalUsers
	st.TotalContactRequests = &totalRequests
	st.PendingContactRequests = &pending
	st.BannedUsers = &bannedUsers
	st.RecentUsers = &recentUsers

	if s.cache != nil {
		if raw, err := json.Marshal(st); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey, string(raw), statsCacheTTL); err != nil {
				zap.L().Warn("cache stats failed", zap.Error(err))
			}
		}
	}
	return &st, nil
}

// ==================== 用户 ====================

// ListUsers role 为空时只列普通用户
func (s *Service) ListUsers(ctx context.Context, q request.UserListQuery) (*respond.UserListRespond, error) {
	offset := q.Normalize(defaultPageSize)
	filter := model.UserFilter{Role: rbac.Role(q.Role), Search: q.Search, Banned: q.Banned}
	if filter.Role == "" {
		filter.Role = rbac.RoleUser
	}
	users, total, err := s.repos.User.List(filter, offset, q.Limit)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	counts, err := s.repos.User.CountProfiles(ids)
	if err != nil {
		return nil, err
	}
	views := make([]respond.AdminUserView, 0, len(users))
	for i := range users {
		v := respond.NewAdminUserView(&users[i])
		n := counts[users[i].ID]
		v.ProfileCount = &n
		views = append(views, v)
	}
	return &respond.UserListRespond{Users: views, Pagination: adminPage(q.PageQuery, total)}, nil
}

// GetUser 用户详情，带其全部档案
func (s *Service) GetUser(ctx context.Context, id string) (*respond.AdminUserDetailRespond, error) {
	u, err := s.findUser(id)
	if err != nil {
		return nil, err
	}
	profiles, err := s.repos.Profile.FindByUser(id)
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []model.Profile{}
	}
	return &respond.AdminUserDetailRespond{User: respond.AdminUserDetail{
		AdminUserView: respond.NewAdminUserView(u),
		Profiles:      profiles,
	}}, nil
}

func (s *Service) findUser(id string) (*model.User, error) {
	u, err := s.repos.User.FindByID(id)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// target 查找目标用户并检查操作权限
func (s *Service) target(actor Actor, id string, action rbac.Action) (*model.User, error) {
	u, err := s.findUser(id)
	if err != nil {
		return nil, err
	}
	if !rbac.CanActOnUser(actor.Role, u.Role, action) {
		return nil, ErrCannotAct
	}
	return u, nil
}

// Ban 封禁并吊销全部刷新令牌
func (s *Service) Ban(ctx context.Context, actor Actor, id, reason string) (*respond.AdminUserRespond, error) {
	u, err := s.target(actor, id, rbac.ActionBan)
	if err != nil {
		return nil, err
	}
	now := s.now()
	u.IsBanned = true
	u.BanReason = reason
	u.BannedAt = &now
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.User.Save(u); err != nil {
			return err
		}
		if err := tx.RefreshToken.DeleteByUser(u.ID); err != nil {
			return err
		}
		return audit(tx, actor.ID, model.AuditUserBanned, u.ID, map[string]any{"reason": reason})
	})
	if err != nil {
		return nil, err
	}
	s.invalidateStats()
	return &respond.AdminUserRespond{User: respond.NewAdminUserView(u), Message: "User banned successfully"}, nil
}

// Unban 解除封禁
func (s *Service) Unban(ctx context.Context, actor Actor, id string) (*respond.AdminUserRespond, error) {
	u, err := s.target(actor, id, rbac.ActionUnban)
	if err != nil {
		return nil, err
	}
	u.IsBanned = false
	u.BanReason = ""
	u.BannedAt = nil
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.User.Save(u); err != nil {
			return err
		}
		return audit(tx, actor.ID, model.AuditUserUnbanned, u.ID, nil)
	})
	if err != nil {
		return nil, err
	}
	s.invalidateStats()
	return &respond.AdminUserRespond{User: respond.NewAdminUserView(u), Message: "User unbanned successfully"}, nil
}

// DeleteUser 物理删除用户，名下数据由外键级联删除，之后清理外部图片
func (s *Service) DeleteUser(ctx context.Context, actor Actor, id string) error {
	u, err := s.findUser(id)
	if err != nil {
		return err
	}
	if u.Role == rbac.RoleAdmin {
		return ErrRootUndeletable
	}
	if !rbac.CanActOnUser(actor.Role, u.Role, rbac.ActionDelete) {
		return ErrCannotAct
	}

	var photos []model.Photo
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		owned, err := tx.Profile.FindByUser(u.ID)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(owned))
		for _, p := range owned {
			ids = append(ids, p.ID)
		}
		if photos, err = tx.Photo.FindByProfiles(ids); err != nil {
			return err
		}
		if err := tx.User.Delete(u.ID); err != nil {
			return err
		}
		return audit(tx, actor.ID, model.AuditUserDeleted, u.ID, map[string]any{"phone": u.Phone})
	})
	if err != nil {
		return err
	}
	s.profiles.CleanupImages(ctx, photos)
	s.invalidateStats()
	return nil
}

// AssignRole 只有 admin 可以分配角色，且不能产生新的 admin
// 提升为后台角色时必须具备用户名和密码，降级为 user 时凭据保留但无法登录
func (s *Service) AssignRole(ctx context.Context, actor Actor, id string, req request.AssignRoleRequest) (*respond.AdminUserRespond, error) {
	role := rbac.Role(req.Role)
	if !role.Assignable() {
		return nil, ErrInvalidRole
	}
	u, err := s.findUser(id)
	if err != nil {
		return nil, err
	}
	if u.Role == rbac.RoleAdmin {
		return nil, ErrRootRoleFixed
	}
	if !rbac.CanActOnUser(actor.Role, u.Role, rbac.ActionAssignRole) {
		return nil, ErrCannotAct
	}

	oldRole := u.Role
	if role.IsStaff() {
		if req.Username != "" {
			taken, err := s.repos.User.UsernameTaken(req.Username, u.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrUsernameTaken
			}
			name := req.Username
			u.Username = &name
		}
		if u.Username == nil || *u.Username == "" {
			return nil, ErrUsernameRequired
		}
		if req.Password != "" {
			if err := u.SetPassword(req.Password); err != nil {
				return nil, errorx.Wrap(err, errorx.CodeServerBusy, "hash password")
			}
		}
		if u.Password == "" {
			return nil, ErrPasswordRequired
		}
	}
	u.Role = role

	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.User.Save(u); err != nil {
			if errorx.IsConflict(err) {
				return ErrUsernameTaken
			}
			return err
		}
		return audit(tx, actor.ID, model.AuditRoleAssigned, u.ID, map[string]any{
			"oldRole": oldRole,
			"newRole": role,
		})
	})
	if err != nil {
		return nil, err
	}
	s.invalidateStats()
	return &respond.AdminUserRespond{User: respond.NewAdminUserView(u), Message: "Role assigned successfully"}, nil
}

// ==================== 档案 ====================

// ListProfiles 包含未启用的档案
func (s *Service) ListProfiles(ctx context.Context, q request.AdminProfileQuery) (*respond.AdminProfileListRespond, error) {
	offset := q.Normalize(defaultPageSize)
	filter := model.ProfileFilter{Type: model.ProfileType(q.Type), Search: q.Search, IsActive: q.Active}
	profiles, total, err := s.repos.Profile.Search(filter, offset, q.Limit)
	if err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []model.Profile{}
	}
	return &respond.AdminProfileListRespond{Profiles: profiles, Pagination: adminPage(q.PageQuery, total)}, nil
}

// UpdateProfile 后台编辑档案，记录被修改的字段
func (s *Service) UpdateProfile(ctx context.Context, actor Actor, id string, req request.UpdateProfileRequest) (*respond.AdminProfileRespond, error) {
	if _, err := s.repos.Profile.FindByID(id); err != nil {
		return nil, err
	}
	p, err := s.profiles.Apply(ctx, id, req, func(tx *repository.Repositories, fields map[string]any) error {
		changed := make([]string, 0, len(fields))
		for col := range fields {
			changed = append(changed, col)
		}
		sort.Strings(changed)
		return audit(tx, actor.ID, model.AuditProfileUpdated, id, map[string]any{"fields": changed})
	})
	if err != nil {
		return nil, err
	}
	s.invalidateStats()
	return &respond.AdminProfileRespond{Profile: *p, Message: "Profile updated successfully"}, nil
}

// DeleteProfile 后台删除档案
func (s *Service) DeleteProfile(ctx context.Context, actor Actor, id string) error {
	p, err := s.repos.Profile.FindByID(id)
	if err != nil {
		return err
	}
	err = s.profiles.Remove(ctx, id, func(tx *repository.Repositories) error {
		return audit(tx, actor.ID, model.AuditProfileDeleted, id, map[string]any{
			"firstName": p.FirstName,
			"lastName":  p.LastName,
			"type":      p.Type,
		})
	})
	if err != nil {
		return err
	}
	s.invalidateStats()
	return nil
}

// ==================== 消息与审计 ====================

func (s *Service) ListMessages(ctx context.Context, q request.AdminMessageQuery) (*respond.AdminMessageListRespond, error) {
	offset := q.Normalize(defaultPageSize)
	msgs, total, err := s.repos.Message.List(model.MessageFilter{ContactRequestID: q.ContactRequestID}, offset, q.Limit)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return &respond.AdminMessageListRespond{Messages: msgs, Pagination: adminPage(q.PageQuery, total)}, nil
}

// DeleteMessage 审计日志中保留截断后的原文
func (s *Service) DeleteMessage(ctx context.Context, actor Actor, id string) error {
	msg, err := s.repos.Message.FindByID(id)
	if err != nil {
		if errorx.IsNotFound(err) {
			return ErrMessageNotFound
		}
		return err
	}
	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.Message.Delete(msg.ID); err != nil {
			return err
		}
		return audit(tx, actor.ID, model.AuditMessageDeleted, msg.ID, map[string]any{
			"contactRequestId": msg.ContactRequestID,
			"content":          truncate(msg.Content, auditContentLimit),
		})
	})
	if err != nil {
		return err
	}
	s.invalidateStats()
	return nil
}

func (s *Service) AuditLogs(ctx context.Context, q request.AuditLogQuery) (*respond.AuditLogListRespond, error) {
	offset := q.Normalize(auditPageSize)
	logs, total, err := s.repos.AuditLog.List(model.AuditLogFilter{
		Action:  model.AuditAction(q.Action),
		AdminID: q.AdminID,
	}, offset, q.Limit)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return &respond.AuditLogListRespond{Logs: logs, Pagination: adminPage(q.PageQuery, total)}, nil
}

func adminPage(q request.PageQuery, total int64) respond.AdminPagination {
	return respond.AdminPagination{
		Page:  q.Page,
		Limit: q.Limit,
		Total: total,
		Pages: respond.PageCount(total, q.Limit),
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
