package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vedzeb_server/internal/dao/mysql/repository"
	"vedzeb_server/internal/dao/mysql/repository/memrepo"
	"vedzeb_server/internal/infrastructure/sms"
	"vedzeb_server/pkg/errorx"
	"vedzeb_server/pkg/util/jwt"
)

const testPhone = "555 12 34 56"

type failingSms struct{}

func (failingSms) SendVerificationCode(context.Context, string, string) error {
	return errors.New("gateway down")
}
func (failingSms) IsMock() bool { return false }

func newService(t *testing.T) (*Service, *repository.Repositories, *memrepo.Store) {
	t.Helper()
	jwt.Init("test-secret-test-secret-test-secret", 15, 168, 8)
	repos, store := memrepo.New()
	return NewAuthService(repos, sms.NewMockSmsService(), 10), repos, store
}

func login(t *testing.T, svc *Service) (access, refresh, userID string) {
	t.Helper()
	ctx := context.Background()
	_, err := svc.SendCode(ctx, testPhone)
	require.NoError(t, err)
	rsp, err := svc.VerifyCode(ctx, testPhone, sms.MockCode)
	require.NoError(t, err)
	return rsp.AccessToken, rsp.RefreshToken, rsp.User.ID
}

func TestSendCodeCreatesUserAndEchoesMockCode(t *testing.T) {
	svc, repos, _ := newService(t)

	rsp, err := svc.SendCode(context.Background(), testPhone)
	require.NoError(t, err)
	assert.Equal(t, sms.MockCode, rsp.Code)

	u, err := repos.User.FindByPhone("+995555123456")
	require.NoError(t, err)
	assert.False(t, u.PhoneVerified)
}

func TestSendCodeRejectsInvalidPhone(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.SendCode(context.Background(), "12")
	require.Error(t, err)
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}

func TestSendCodeSmsFailureIsExternalError(t *testing.T) {
	repos, _ := memrepo.New()
	svc := NewAuthService(repos, failingSms{}, 10)
	_, err := svc.SendCode(context.Background(), testPhone)
	require.Error(t, err)
	assert.Equal(t, errorx.CodeExternalError, errorx.GetCode(err))
}

func TestVerifyCodeIsSingleUse(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.SendCode(ctx, testPhone)
	require.NoError(t, err)

	rsp, err := svc.VerifyCode(ctx, testPhone, sms.MockCode)
	require.NoError(t, err)
	assert.NotEmpty(t, rsp.AccessToken)
	assert.NotEmpty(t, rsp.RefreshToken)
	assert.True(t, rsp.User.PhoneVerified)
	assert.Equal(t, "+995555123456", rsp.User.Phone)

	_, err = svc.VerifyCode(ctx, testPhone, sms.MockCode)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
}

func TestVerifyCodeFailures(t *testing.T) {
	svc, repos, store := newService(t)
	ctx := context.Background()

	// 未知手机号与错误验证码返回同一个错误
	_, err := svc.VerifyCode(ctx, "+995 599 00 00 00", sms.MockCode)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)

	_, err = svc.SendCode(ctx, testPhone)
	require.NoError(t, err)
	_, err = svc.VerifyCode(ctx, testPhone, "000000")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)

	u, err := repos.User.FindByPhone("+995555123456")
	require.NoError(t, err)
	store.ExpireCodes(u.ID)
	_, err = svc.VerifyCode(ctx, testPhone, sms.MockCode)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
}

func TestResendInvalidatesPreviousCode(t *testing.T) {
	svc, repos, _ := newService(t)
	ctx := context.Background()

	_, err := svc.SendCode(ctx, testPhone)
	require.NoError(t, err)
	_, err = svc.SendCode(ctx, testPhone)
	require.NoError(t, err)

	// 只有最新的一条仍然有效，它可以使用一次
	_, err = svc.VerifyCode(ctx, testPhone, sms.MockCode)
	require.NoError(t, err)
	_, err = svc.VerifyCode(ctx, testPhone, sms.MockCode)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)

	u, err := repos.User.FindByPhone("+995555123456")
	require.NoError(t, err)
	assert.True(t, u.PhoneVerified)
}

func TestVerifyCodeBannedUserConsumesCode(t *testing.T) {
	svc, repos, _ := newService(t)
	ctx := context.Background()

	_, err := svc.SendCode(ctx, testPhone)
	require.NoError(t, err)
	u, err := repos.User.FindByPhone("+995555123456")
	require.NoError(t, err)
	u.IsBanned = true
	require.NoError(t, repos.User.Save(u))

	_, err = svc.VerifyCode(ctx, testPhone, sms.MockCode)
	assert.ErrorIs(t, err, ErrUserBanned)

	u.IsBanned = false
	require.NoError(t, repos.User.Save(u))
	_, err = svc.VerifyCode(ctx, testPhone, sms.MockCode)
	assert.ErrorIs(t, err, ErrInvalidOrExpiredCode)
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, store := newService(t)
	ctx := context.Background()
	_, refresh, userID := login(t, svc)

	pair, err := svc.Refresh(ctx, refresh)
	require.NoError(t, err)
	assert.NotEqual(t, refresh, pair.RefreshToken)
	assert.Equal(t, 1, store.RefreshTokenCount(userID))

	_, err = svc.Refresh(ctx, refresh)
	require.ErrorIs(t, err, ErrInvalidSession)
	assert.Equal(t, errorx.ReasonInvalidToken, err.(*errorx.CodeError).Reason)

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshExpiredTokenIsDeleted(t *testing.T) {
	svc, _, store := newService(t)
	ctx := context.Background()
	_, refresh, userID := login(t, svc)

	store.ExpireRefreshToken(refresh)
	_, err := svc.Refresh(ctx, refresh)
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, errorx.ReasonTokenExpired, err.(*errorx.CodeError).Reason)
	assert.Equal(t, 0, store.RefreshTokenCount(userID))

	_, err = svc.Refresh(ctx, refresh)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestLogoutRevokesAllSessions(t *testing.T) {
	svc, _, store := newService(t)
	ctx := context.Background()

	_, first, userID := login(t, svc)
	_, second, _ := login(t, svc)
	assert.Equal(t, 2, store.RefreshTokenCount(userID))

	require.NoError(t, svc.Logout(ctx, first, userID))
	assert.Equal(t, 0, store.RefreshTokenCount(userID))

	_, err := svc.Refresh(ctx, second)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestLogoutAnonymousOnlyDropsGivenToken(t *testing.T) {
	svc, _, store := newService(t)
	ctx := context.Background()

	_, first, userID := login(t, svc)
	_, _, _ = login(t, svc)

	require.NoError(t, svc.Logout(ctx, first, ""))
	assert.Equal(t, 1, store.RefreshTokenCount(userID))
}

func TestMe(t *testing.T) {
	svc, _, _ := newService(t)
	_, _, userID := login(t, svc)

	rsp, err := svc.Me(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, rsp.User.ID)
	require.NotNil(t, rsp.User.CreatedAt)
}

func TestCleanupExpired(t *testing.T) {
	svc, _, store := newService(t)
	_, refresh, userID := login(t, svc)
	_, _, _ = login(t, svc)
	store.ExpireRefreshToken(refresh)

	n, err := svc.CleanupExpired(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, 1, store.RefreshTokenCount(userID))
}
