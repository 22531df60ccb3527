// Package sms 提供短信验证码投递
// 验证码由认证流程生成和持久化，短信服务只负责投递
package sms

import "context"

// MockCode mock 模式下固定下发的验证码
const MockCode = "123456"

// SmsService 短信服务接口
// 抽象短信发送操作，支持多种实现（阿里云、本地 mock）
// Service 层应依赖此接口而非具体实现
type SmsService interface {
	// SendVerificationCode 把验证码发送到 E.164 格式的手机号
	SendVerificationCode(ctx context.Context, phone, code string) error
	// IsMock 是否为 mock 模式；mock 模式下验证码固定为 MockCode 并随响应返回
	IsMock() bool
}

// 确保实现了 SmsService 接口
var (
	_ SmsService = (*aliyunSmsService)(nil)
	_ SmsService = (*mockSmsService)(nil)
)
