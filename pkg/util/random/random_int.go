package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GetRandomInt 生成指定位数的安全随机数字，首位不为 0
func GetRandomInt(length int) int {
	// 例如 length=6 时，范围是 100000-999999
	min := int64(1)
	for i := 1; i < length; i++ {
		min *= 10
	}
	max := min * 10

	n, err := rand.Int(rand.Reader, big.NewInt(max-min))
	if err != nil {
		return int(min) // fallback
	}
	return int(n.Int64() + min)
}

// Code 生成 6 位数字验证码
func Code() string {
	return fmt.Sprintf("%06d", GetRandomInt(6))
}
