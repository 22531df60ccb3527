// Package phone 把用户输入的手机号规范化为 E.164
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"

	"vedzeb_server/pkg/errorx"
)

// DefaultRegion 未带国际区号时按格鲁吉亚号码解析
const DefaultRegion = "GE"

// ErrInvalidPhone 无法解析或号码无效
var ErrInvalidPhone = errorx.New(errorx.CodeInvalidParam, "Invalid phone number")

// Normalize 解析并校验手机号，返回 E.164 格式，如 +995555123456
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidPhone
	}
	num, err := phonenumbers.Parse(raw, DefaultRegion)
	if err != nil {
		return "", ErrInvalidPhone
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}
