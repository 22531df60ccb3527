package sms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vedzeb_server/internal/config"
)

func TestShouldUseMock(t *testing.T) {
	t.Setenv("VEDZEB_SMS_MODE", "")

	assert.True(t, shouldUseMock(config.AuthCodeConfig{}))
	assert.True(t, shouldUseMock(config.AuthCodeConfig{AccessKeyID: "your accesskey id", AccessKeySecret: "x"}))
	assert.False(t, shouldUseMock(config.AuthCodeConfig{AccessKeyID: "LTAI5", AccessKeySecret: "secret"}))
	assert.True(t, shouldUseMock(config.AuthCodeConfig{Mode: "mock", AccessKeyID: "LTAI5", AccessKeySecret: "secret"}))
	assert.False(t, shouldUseMock(config.AuthCodeConfig{Mode: "aliyun"}))

	t.Setenv("VEDZEB_SMS_MODE", "mock")
	assert.True(t, shouldUseMock(config.AuthCodeConfig{Mode: "aliyun"}))
}

func TestInitFallsBackToMock(t *testing.T) {
	t.Setenv("VEDZEB_SMS_MODE", "")
	svc, err := Init(config.AuthCodeConfig{})
	require.NoError(t, err)
	assert.True(t, svc.IsMock())
	assert.NoError(t, svc.SendVerificationCode(context.Background(), "+995555123456", MockCode))
}
