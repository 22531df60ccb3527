package sms

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"

	"vedzeb_server/internal/config"
)

type mockSmsService struct{}

// NewMockSmsService 只写日志，不调用第三方短信
func NewMockSmsService() SmsService {
	return &mockSmsService{}
}

func (s *mockSmsService) SendVerificationCode(_ context.Context, phone, code string) error {
	zap.L().Info("mock sms sent", zap.String("phone", phone), zap.String("code", code))
	return nil
}

func (s *mockSmsService) IsMock() bool { return true }

// shouldUseMock mode 显式指定时以 mode 为准，否则没有真实 AK 就走 mock
func shouldUseMock(auth config.AuthCodeConfig) bool {
	mode := strings.ToLower(strings.TrimSpace(auth.Mode))
	if env := strings.ToLower(strings.TrimSpace(os.Getenv("VEDZEB_SMS_MODE"))); env != "" {
		mode = env
	}
	switch mode {
	case "mock", "local", "test":
		return true
	case "aliyun":
		return false
	}
	// configs/config.toml 默认是占位字符串
	ak := strings.ToLower(strings.TrimSpace(auth.AccessKeyID))
	ask := strings.ToLower(strings.TrimSpace(auth.AccessKeySecret))
	if ak == "" || ask == "" {
		return true
	}
	return strings.Contains(ak, "your accesskey") || strings.Contains(ask, "your accesskey")
}
