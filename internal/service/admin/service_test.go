package admin

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vedzeb_server/internal/dao/mysql/repository"
	"vedzeb_server/internal/dao/mysql/repository/memrepo"
	"vedzeb_server/internal/dto/request"
	"vedzeb_server/internal/infrastructure/storage"
	"vedzeb_server/internal/model"
	"vedzeb_server/internal/service/profile"
	"vedzeb_server/pkg/errorx"
	"vedzeb_server/pkg/rbac"
	"vedzeb_server/pkg/util/jwt"
)

// mapCache 同步执行任务的内存缓存
type mapCache struct {
	mu   sync.Mutex
	data map[string]string
}

func (c *mapCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}


func (c *mapCache) SubmitTask(action func()) { action() }

type nopStore struct{ deleted []string }

func (s *nopStore) Upload(context.Context, []byte, string) (*storage.StoredImage, error) {
	return &storage.StoredImage{URL: "https://cdn.test/x.jpg", PublicID: "x"}, nil
}

func (s *nopStore) Delete(_ context.Context, publicID string) error {
	s.deleted = append(s.deleted, publicID)
	return nil
}

type fixture struct {
	svc    *Service
	repos  *repository.Repositories
	store  *memrepo.Store
	cache  *mapCache
	images *nopStore
	root   *model.User
	admin  *model.User
	moder  *model.User
	user   *model.User
}

func staff(t *testing.T, repos *repository.Repositories, phone, username string, role rbac.Role) *model.User {
	t.Helper()
	u := &model.User{Phone: phone, Username: &username, RawPassword: "secret123", Role: role, PhoneVerified: true}
	require.NoError(t, repos.User.Save(u))
	return u
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	jwt.Init("test-secret-test-secret-test-secret", 15, 168, 8)
	repos, store := memrepo.New()
	f := &fixture{repos: repos, store: store, cache: &mapCache{data: map[string]string{}}, images: &nopStore{}}
	profiles := profile.NewProfileService(repos, f.images, 64)
	f.svc = NewAdminService(repos, profiles, f.cache)
	// memrepo 的时钟从 2024-01-01 开始
	f.svc.now = func() time.Time { return time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC) }

	f.root = staff(t, repos, "+995555900000", "admin", rbac.RoleAdmin)
	f.admin = staff(t, repos, "+995555900001", "boss", rbac.RoleAdministrator)
	f.moder = staff(t, repos, "+995555900002", "mod", rbac.RoleModer)
	f.user = &model.User{Phone: "+995555900003", PhoneVerified: true}
	require.NoError(t, repos.User.Create(f.user))
	return f
}

func actorOf(u *model.User) Actor { return Actor{ID: u.ID, Role: u.Role} }

func (f *fixture) actions() []model.AuditAction {
	var out []model.AuditAction
	for _, l := range f.store.AuditLogs() {
		out = append(out, l.Action)
	}
	return out
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rsp, err := f.svc.Login(ctx, request.AdminLoginRequest{Username: "boss", Password: "secret123"}, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleAdministrator, rsp.Admin.Role)
	claims, err := jwt.ParseToken(rsp.Token, jwt.SubjectAdmin)
	require.NoError(t, err)
	assert.Equal(t, f.admin.ID, claims.UserID)
	assert.Equal(t, []model.AuditAction{model.AuditAdminLogin}, f.actions())

	_, err = f.svc.Login(ctx, request.AdminLoginRequest{Username: "boss", Password: "wrong"}, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, request.AdminLoginRequest{Username: "nobody", Password: "secret123"}, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// 降级为 user 后凭据保留但不能登录
	_, err = f.svc.AssignRole(ctx, actorOf(f.root), f.moder.ID, request.AssignRoleRequest{Role: string(rbac.RoleUser)})
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, request.AdminLoginRequest{Username: "mod", Password: "secret123"}, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Ban(ctx, actorOf(f.root), f.admin.ID, "")
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, request.AdminLoginRequest{Username: "boss", Password: "secret123"}, "")
	assert.ErrorIs(t, err, ErrAccountBanned)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	me := actorOf(f.admin)

	err := f.svc.ChangePassword(ctx, me, request.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newsecret"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, f.svc.ChangePassword(ctx, me, request.ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "newsecret"}))
	_, err = f.svc.Login(ctx, request.AdminLoginRequest{Username: "boss", Password: "newsecret"}, "")
	assert.NoError(t, err)
}

func TestBanRevokesSessions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repos.RefreshToken.Create(&model.RefreshToken{
		UserID:    f.user.ID,
		Token:     "refresh-1",
		ExpiresAt: time.Now().Add(time.Hour),
	}))

	_, err := f.svc.Ban(ctx, actorOf(f.moder), f.user.ID, "spam")
	assert.ErrorIs(t, err, ErrCannotAct)

	rsp, err := f.svc.Ban(ctx, actorOf(f.admin), f.user.ID, "spam")
	require.NoError(t, err)
	assert.True(t, rsp.User.IsBanned)
	assert.Equal(t, "spam", rsp.User.BanReason)
	assert.NotNil(t, rsp.User.BannedAt)
	assert.Equal(t, 0, f.store.RefreshTokenCount(f.user.ID))

	_, err = f.svc.Ban(ctx, actorOf(f.admin), f.root.ID, "")
	assert.ErrorIs(t, err, ErrCannotAct)

	rsp, err = f.svc.Unban(ctx, actorOf(f.admin), f.user.ID)
	require.NoError(t, err)
	assert.False(t, rsp.User.IsBanned)
	assert.Nil(t, rsp.User.BannedAt)

	assert.Equal(t, []model.AuditAction{model.AuditUserBanned, model.AuditUserUnbanned}, f.actions())
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := &model.Profile{UserID: f.user.ID, Type: model.ProfileSearchingParent, FirstName: "Eka", IsActive: true}
	require.NoError(t, f.repos.Profile.Create(p))
	require.NoError(t, f.repos.Photo.Create(&model.Photo{ProfileID: p.ID, URL: "u", PublicID: "pub-1", IsPrimary: true}))

	assert.ErrorIs(t, f.svc.DeleteUser(ctx, actorOf(f.root), f.root.ID), ErrRootUndeletable)
	assert.ErrorIs(t, f.svc.DeleteUser(ctx, actorOf(f.admin), f.root.ID), ErrRootUndeletable)
	assert.ErrorIs(t, f.svc.DeleteUser(ctx, actorOf(f.moder), f.user.ID), ErrCannotAct)
	assert.ErrorIs(t, f.svc.DeleteUser(ctx, actorOf(f.admin), "missing"), ErrUserNotFound)

	require.NoError(t, f.svc.DeleteUser(ctx, actorOf(f.admin), f.user.ID))
	_, err := f.repos.User.FindByID(f.user.ID)
	assert.True(t, errorx.IsNotFound(err))
	_, err = f.repos.Profile.FindByID(p.ID)
	assert.True(t, errorx.IsNotFound(err))
	assert.Equal(t, []string{"pub-1"}, f.images.deleted)

	logs := f.store.AuditLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, model.AuditUserDeleted, logs[0].Action)
	require.NotNil(t, logs[0].TargetID)
	assert.Equal(t, f.user.ID, *logs[0].TargetID)
}

func TestAssignRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	root := actorOf(f.root)

	_, err := f.svc.AssignRole(ctx, actorOf(f.admin), f.user.ID, request.AssignRoleRequest{Role: "moder", Username: "newmod", Password: "secret123"})
	assert.ErrorIs(t, err, ErrCannotAct)

	_, err = f.svc.AssignRole(ctx, root, f.user.ID, request.AssignRoleRequest{Role: "admin"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = f.svc.AssignRole(ctx, root, f.root.ID, request.AssignRoleRequest{Role: "user"})
	assert.ErrorIs(t, err, ErrRootRoleFixed)

	_, err = f.svc.AssignRole(ctx, root, f.user.ID, request.AssignRoleRequest{Role: "moder"})
	assert.ErrorIs(t, err, ErrUsernameRequired)

	_, err = f.svc.AssignRole(ctx, root, f.user.ID, request.AssignRoleRequest{Role: "moder", Username: "newmod"})
	assert.ErrorIs(t, err, ErrPasswordRequired)

	_, err = f.svc.AssignRole(ctx, root, f.user.ID, request.AssignRoleRequest{Role: "moder", Username: "boss", Password: "secret123"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	rsp, err := f.svc.AssignRole(ctx, root, f.user.ID, request.AssignRoleRequest{Role: "moder", Username: "newmod", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleModer, rsp.User.Role)
	require.NotNil(t, rsp.User.Username)
	assert.Equal(t, "newmod", *rsp.User.Username)

	login, err := f.svc.Login(ctx, request.AdminLoginRequest{Username: "newmod", Password: "secret123"}, "")
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleModer, login.Admin.Role)

	logs := f.store.AuditLogs()
	require.Len(t, logs, 2)
	assert.Equal(t, model.AuditRoleAssigned, logs[0].Action)
	var details map[string]string
	require.NoError(t, json.Unmarshal(logs[0].Details, &details))
	assert.Equal(t, map[string]string{"oldRole": "user", "newRole": "moder"}, details)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := &model.Profile{UserID: f.user.ID, Type: model.ProfileSearchingSibling, FirstName: "Nino", IsActive: true}
	require.NoError(t, f.repos.Profile.Create(p))
	hidden := &model.Profile{UserID: f.user.ID, Type: model.ProfileSearchingSibling, FirstName: "Dato"}
	require.NoError(t, f.repos.Profile.Create(hidden))
	cr := &model.ContactRequest{FromUserID: f.admin.ID, ToProfileID: p.ID}
	require.NoError(t, f.repos.ContactRequest.Create(cr))

	full, err := f.svc.Stats(ctx, actorOf(f.admin))
	require.NoError(t, err)
	require.NotNil(t, full.TotalUsers)
	assert.EqualValues(t, 1, *full.TotalUsers)
	assert.EqualValues(t, 2, full.TotalProfiles)
	assert.EqualValues(t, 1, full.ActiveProfiles)
	assert.EqualValues(t, 1, *full.PendingContactRequests)
	assert.EqualValues(t, 0, *full.BannedUsers)
	assert.EqualValues(t, 1, *full.RecentUsers)
	assert.NotEmpty(t, f.cache.data[statsCacheKey])

	reduced, err := f.svc.Stats(ctx, actorOf(f.moder))
	require.NoError(t, err)
	assert.Nil(t, reduced.TotalUsers)
	assert.Nil(t, reduced.BannedUsers)
	assert.EqualValues(t, 2, reduced.TotalProfiles)

	// 变更操作会让缓存失效
	_, err = f.svc.Ban(ctx, actorOf(f.admin), f.user.ID, "")
	require.NoError(t, err)
	assert.Empty(t, f.cache.data[statsCacheKey])
	full, err = f.svc.Stats(ctx, actorOf(f.root))
	require.NoError(t, err)
	assert.EqualValues(t, 1, *full.BannedUsers)
}

func TestListUsersDefaultsToRegularUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.repos.Profile.Create(&model.Profile{UserID: f.user.ID, Type: model.ProfileSearchingChild, FirstName: "Eka"}))

	rsp, err := f.svc.ListUsers(ctx, request.UserListQuery{})
	require.NoError(t, err)
	require.Len(t, rsp.Users, 1)
	assert.Equal(t, f.user.ID, rsp.Users[0].ID)
	require.NotNil(t, rsp.Users[0].ProfileCount)
	assert.EqualValues(t, 1, *rsp.Users[0].ProfileCount)
	assert.Equal(t, 1, rsp.Pagination.Page)
	assert.Equal(t, defaultPageSize, rsp.Pagination.Limit)

	staffRsp, err := f.svc.ListUsers(ctx, request.UserListQuery{Role: "moder"})
	require.NoError(t, err)
	require.Len(t, staffRsp.Users, 1)
	assert.Equal(t, f.moder.ID, staffRsp.Users[0].ID)

	detail, err := f.svc.GetUser(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, detail.User.Profiles, 1)
}

func TestProfileModeration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := &model.Profile{UserID: f.user.ID, Type: model.ProfileSearchingChild, FirstName: "Eka", IsActive: true}
	require.NoError(t, f.repos.Profile.Create(p))

	rsp, err := f.svc.UpdateProfile(ctx, actorOf(f.moder), p.ID, request.UpdateProfileRequest{IsActive: request.Some(false)})
	require.NoError(t, err)
	assert.False(t, rsp.Profile.IsActive)

	inactive := false
	list, err := f.svc.ListProfiles(ctx, request.AdminProfileQuery{Active: &inactive})
	require.NoError(t, err)
	assert.Len(t, list.Profiles, 1)

	require.NoError(t, f.svc.DeleteProfile(ctx, actorOf(f.admin), p.ID))
	_, err = f.repos.Profile.FindByID(p.ID)
	assert.True(t, errorx.IsNotFound(err))
	assert.Equal(t, []model.AuditAction{model.AuditProfileUpdated, model.AuditProfileDeleted}, f.actions())
}

func TestDeleteMessageTruncatesAuditContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := &model.Profile{UserID: f.user.ID, Type: model.ProfileSearchingChild, FirstName: "Eka", IsActive: true}
	require.NoError(t, f.repos.Profile.Create(p))
	cr := &model.ContactRequest{FromUserID: f.admin.ID, ToProfileID: p.ID}
	require.NoError(t, f.repos.ContactRequest.Create(cr))
	msg := &model.Message{ContactRequestID: cr.ID, SenderID: f.admin.ID, Content: strings.Repeat("გ", 150)}
	require.NoError(t, f.repos.Message.Create(msg))

	list, err := f.svc.ListMessages(ctx, request.AdminMessageQuery{ContactRequestID: cr.ID})
	require.NoError(t, err)
	assert.Len(t, list.Messages, 1)

	require.NoError(t, f.svc.DeleteMessage(ctx, actorOf(f.admin), msg.ID))
	assert.ErrorIs(t, f.svc.DeleteMessage(ctx, actorOf(f.admin), msg.ID), ErrMessageNotFound)

	logs, err := f.svc.AuditLogs(ctx, request.AuditLogQuery{Action: string(model.AuditMessageDeleted)})
	require.NoError(t, err)
	require.Len(t, logs.Logs, 1)
	var details map[string]string
	require.NoError(t, json.Unmarshal(logs.Logs[0].Details, &details))
	assert.Equal(t, 100, len([]rune(details["content"])))
	assert.Equal(t, cr.ID, details["contactRequestId"])
	assert.Equal(t, auditPageSize, logs.Pagination.Limit)
}
