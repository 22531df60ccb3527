// Package auth 提供认证相关的业务逻辑
// 处理短信验证码登录、刷新令牌轮换和退出登录
package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"vedzeb_server/internal/dao/mysql/repository"
	"vedzeb_server/internal/dto/respond"
	"vedzeb_server/internal/infrastructure/sms"
	"vedzeb_server/internal/model"
	"vedzeb_server/pkg/errorx"
	"vedzeb_server/pkg/util/jwt"
	"vedzeb_server/pkg/util/phone"
	"vedzeb_server/pkg/util/random"
)

var (
	// ErrInvalidOrExpiredCode 手机号未知、验证码错误、过期或已使用都返回同一个错误
	ErrInvalidOrExpiredCode = errorx.New(errorx.CodeInvalidParam, "Invalid or expired code")
	// ErrInvalidSession 刷新令牌不存在或已被使用
	ErrInvalidSession = errorx.New(errorx.CodeUnauthorized, "Invalid refresh token").WithReason(errorx.ReasonInvalidToken)
	// ErrSessionExpired 刷新令牌已过期
	ErrSessionExpired = errorx.New(errorx.CodeUnauthorized, "Refresh token expired").WithReason(errorx.ReasonTokenExpired)
	// ErrUserBanned 被封禁的账号
	ErrUserBanned = errorx.New(errorx.CodeForbidden, "Account is banned")
)

// Service 认证服务实现
type Service struct {
	repos   *repository.Repositories
	sms     sms.SmsService
	codeTTL time.Duration
	now     func() time.Time
}

// NewAuthService 创建认证服务实例
// codeExpiryMinutes: 验证码有效期（分钟）
func NewAuthService(repos *repository.Repositories, smsSvc sms.SmsService, codeExpiryMinutes int) *Service {
	return &Service{
		repos:   repos,
		sms:     smsSvc,
		codeTTL: time.Duration(codeExpiryMinutes) * time.Minute,
		now:     time.Now,
	}
}

// SendCode 发送验证码
// 首次请求的手机号会创建用户；同一用户之前未使用的验证码全部作废
func (s *Service) SendCode(ctx context.Context, rawPhone string) (*respond.SendCodeRespond, error) {
	e164, err := phone.Normalize(rawPhone)
	if err != nil {
		return nil, err
	}

	user, err := s.findOrCreateUser(e164)
	if err != nil {
		return nil, err
	}

	code := random.Code()
	if s.sms.IsMock() {
		code = sms.MockCode
	}

	err = s.repos.Transaction(func(tx *repository.Repositories) error {
		if err := tx.VerificationCode.InvalidateUnused(user.ID); err != nil {
			return err
		}
		return tx.VerificationCode.Create(&model.VerificationCode{
			UserID:    user.ID,
			Code:      code,
			ExpiresAt: s.now().Add(s.codeTTL),
		})
	})
	if err != nil {
		zap.L().Error("store verification code failed", zap.String("user_id", user.ID), zap.Error(err))
		return nil, err
	}

	if err := s.sms.SendVerificationCode(ctx, e164, code); err != nil {
		zap.L().Error("send verification code failed", zap.String("phone", e164), zap.Error(err))
		return nil, errorx.Wrap(err, errorx.CodeExternalError, "Failed to send verification code")
	}

	rsp := &respond.SendCodeRespond{Message: "Verification code sent"}
	if s.sms.IsMock() {
		rsp.Code = code
	}
	return rsp, nil
}

// findOrCreateUser 并发首次请求时唯一索引会拦下其中一个，冲突后重新查询
func (s *Service) findOrCreateUser(e164 string) (*model.User, error) {
	user, err := s.repos.User.FindByPhone(e164)
	if err == nil {
		return user, nil
	}
	if !errorx.IsNotFound(err) {
		return nil, err
	}
	user = &model.User{Phone: e164}
	if err := s.repos.User.Create(user); err != nil {
		if errorx.IsConflict(err) {
			return s.repos.User.FindByPhone(e164)
		}
		return nil, err
	}
	zap.L().Info("user created", zap.String("user_id", user.ID))
	return user, nil
}

// VerifyCode 校验验证码并签发令牌对
// 验证码在封禁检查之前被消耗，封禁用户无法用同一个码反复试探
func (s *Service) VerifyCode(ctx context.Context, rawPhone, code string) (*respond.VerifyCodeRespond, error) {
	e164, err := phone.Normalize(rawPhone)
	if err != nil {
		return nil, err
	}

	user, err := s.repos.User.FindByPhone(e164)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, ErrInvalidOrExpiredCode
		}
		return nil, err
	}

	vc, err := s.repos.VerificationCode.FindValid(user.ID, code, s.now())
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, ErrInvalidOrExpiredCode
		}
		return nil, err
	}
	consumed, err := s.repos.VerificationCode.MarkUsed(vc.ID)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, ErrInvalidOrExpiredCode
	}

	if user.IsBanned {
		return nil, ErrUserBanned
	}

	if !user.PhoneVerified {
		if err := s.repos.User.MarkPhoneVerified(user.ID); err != nil {
			return nil, err
		}
		user.PhoneVerified = true
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return nil, err
	}
	return &respond.VerifyCodeRespond{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         respond.NewUserBrief(user, false),
	}, nil
}

// issuePair 签发 Access Token 并持久化一个新的 Refresh Token
func (s *Service) issuePair(userID string) (*respond.TokenPairRespond, error) {
	access, err := jwt.GenerateAccessToken(userID)
	if err != nil {
		zap.L().Error("generate access token failed", zap.Error(err))
		return nil, err
	}
	token, expiresAt := jwt.NewRefreshToken()
	if err := s.repos.RefreshToken.Create(&model.RefreshToken{
		Token:     token,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, err
	}
	return &respond.TokenPairRespond{AccessToken: access, RefreshToken: token}, nil
}

// Refresh 刷新令牌单次有效：先条件删除旧令牌，删除成功才签发新的一对
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*respond.TokenPairRespond, error) {
	rt, err := s.repos.RefreshToken.FindByToken(refreshToken)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}

	if rt.Expired(s.now()) {
		if _, err := s.repos.RefreshToken.DeleteByToken(refreshToken); err != nil {
			zap.L().Warn("delete expired refresh token failed", zap.Error(err))
		}
		return nil, ErrSessionExpired
	}

	deleted, err := s.repos.RefreshToken.DeleteByToken(refreshToken)
	if err != nil {
		return nil, err
	}
	// 并发刷新时另一个请求已经用掉了这个令牌
	if deleted != 1 {
		return nil, ErrInvalidSession
	}

	user, err := s.repos.User.FindByID(rt.UserID)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}
	if user.IsBanned {
		return nil, ErrUserBanned
	}
	return s.issuePair(user.ID)
}

// Logout 吊销传入的令牌；已登录时吊销该用户的全部令牌
func (s *Service) Logout(ctx context.Context, refreshToken, userID string) error {
	if refreshToken != "" {
		if _, err := s.repos.RefreshToken.DeleteByToken(refreshToken); err != nil {
			return err
		}
	}
	if userID != "" {
		return s.RevokeAll(userID)
	}
	return nil
}

// RevokeAll 删除用户的全部刷新令牌
func (s *Service) RevokeAll(userID string) error {
	return s.repos.RefreshToken.DeleteByUser(userID)
}

// Me 当前用户信息
func (s *Service) Me(ctx context.Context, userID string) (*respond.MeRespond, error) {
	user, err := s.repos.User.FindByID(userID)
	if err != nil {
		return nil, err
	}
	return &respond.MeRespond{User: respond.NewUserBrief(user, true)}, nil
}

// CleanupExpired 清理过期的刷新令牌，启动时调用
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	n, err := s.repos.RefreshToken.DeleteExpired(s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		zap.L().Info("expired refresh tokens removed", zap.Int64("count", n))
	}
	return n, nil
}
