package sms

import (
	"context"
	"encoding/json"

	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	dysmsapi20170525 "github.com/alibabacloud-go/dysmsapi-20170525/v4/client"
	util "github.com/alibabacloud-go/tea-utils/v2/service"
	"github.com/alibabacloud-go/tea/tea"
	"go.uber.org/zap"

	"vedzeb_server/internal/config"
	"vedzeb_server/pkg/errorx"
)

// aliyunSmsService 阿里云短信服务实现
type aliyunSmsService struct {
	client       *dysmsapi20170525.Client
	signName     string
	templateCode string
}

// Init 根据配置创建短信服务实例
func Init(authCfg config.AuthCodeConfig) (SmsService, error) {
	if shouldUseMock(authCfg) {
		zap.L().Warn("SMS Service 使用本地 Mock 模式，验证码固定为 " + MockCode)
		return NewMockSmsService(), nil
	}

	conf := &openapi.Config{
		AccessKeyId:     tea.String(authCfg.AccessKeyID),
		AccessKeySecret: tea.String(authCfg.AccessKeySecret),
	}
	conf.Endpoint = tea.String("dysmsapi.aliyuncs.com")
	client, err := dysmsapi20170525.NewClient(conf)
	if err != nil {
		zap.L().Error("Aliyun SMS Client Init Failed", zap.Error(err))
		return nil, err
	}
	return NewAliyunSmsService(client, authCfg.SignName, authCfg.TemplateCode), nil
}

// NewAliyunSmsService 创建阿里云短信服务实例（用于依赖注入）
func NewAliyunSmsService(client *dysmsapi20170525.Client, signName, templateCode string) SmsService {
	// 未配置时使用阿里云提供的测试签名和模板
	if signName == "" {
		signName = "阿里云短信测试"
	}
	if templateCode == "" {
		templateCode = "SMS_154950909"
	}
	return &aliyunSmsService{client: client, signName: signName, templateCode: templateCode}
}

func (s *aliyunSmsService) IsMock() bool { return false }

// SendVerificationCode 调用阿里云 SendSms，模板变量为 ${code}
func (s *aliyunSmsService) SendVerificationCode(_ context.Context, phone, code string) error {
	if s.client == nil {
		zap.L().Error("sms client not initialized")
		return errorx.New(errorx.CodeExternalError, "Failed to send SMS")
	}

	param, _ := json.Marshal(map[string]string{"code": code})
	req := &dysmsapi20170525.SendSmsRequest{
		SignName:      tea.String(s.signName),
		TemplateCode:  tea.String(s.templateCode),
		PhoneNumbers:  tea.String(phone),
		TemplateParam: tea.String(string(param)),
	}

	rsp, err := s.client.SendSmsWithOptions(req, &util.RuntimeOptions{})
	if err != nil {
		zap.L().Error("aliyun sms request failed", zap.String("phone", phone), zap.Error(err))
		return errorx.Wrap(err, errorx.CodeExternalError, "Failed to send SMS")
	}

	// 即使 err 为 nil，也需要看 Body.Code 是否为 "OK"
	if rsp.Body == nil || tea.StringValue(rsp.Body.Code) != "OK" {
		zap.L().Error("aliyun sms rejected", zap.String("response", tea.StringValue(util.ToJSONString(rsp))))
		return errorx.New(errorx.CodeExternalError, "Failed to send SMS")
	}
	zap.L().Info("sms sent", zap.String("phone", phone), zap.String("bizId", tea.StringValue(rsp.Body.BizId)))
	return nil
}
