// Package storage 保存档案照片
// s3 模式写入兼容 S3 协议的对象存储，local 模式写入本地目录并由 gin 静态路由提供访问
package storage

import (
	"context"

	"go.uber.org/zap"

	"vedzeb_server/internal/config"
)

// StoredImage 存储后的访问地址和删除用的标识
type StoredImage struct {
	URL      string
	PublicID string
}

// ImageStore 图片存储接口
type ImageStore interface {
	// Upload 保存已处理好的图片
	Upload(ctx context.Context, data []byte, contentType string) (*StoredImage, error)
	// Delete 删除图片，对象不存在不视为错误
	Delete(ctx context.Context, publicID string) error
}

// Init 根据配置选择实现
func Init(ctx context.Context, cfg config.StorageConfig) (ImageStore, error) {
	if cfg.Mode == "s3" {
		store, err := NewS3Store(ctx, cfg)
		if err != nil {
			return nil, err
		}
		zap.L().Info("image store: s3", zap.String("bucket", cfg.Bucket))
		return store, nil
	}
	zap.L().Info("image store: local", zap.String("path", cfg.LocalPath))
	return NewLocalStore(cfg.LocalPath, cfg.PublicBaseURL)
}
