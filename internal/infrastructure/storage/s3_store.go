package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"vedzeb_server/internal/config"
	"vedzeb_server/pkg/errorx"
)

type s3Store struct {
	client        *s3.Client
	bucket        string
	folder        string
	publicBaseURL string
}

// NewS3Store 未配置 AK 时使用默认凭证链（环境变量、实例角色）
func NewS3Store(ctx context.Context, cfg config.StorageConfig) (ImageStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	base := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if base == "" || strings.HasPrefix(base, "/") {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &s3Store{
		client:        client,
		bucket:        cfg.Bucket,
		folder:        strings.Trim(cfg.Folder, "/"),
		publicBaseURL: base,
	}, nil
}

func (s *s3Store) Upload(ctx context.Context, data []byte, contentType string) (*StoredImage, error) {
	key := path.Join(s.folder, uuid.NewString()+".jpg")
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeExternalError, "Failed to upload image")
	}
	return &StoredImage{URL: s.publicBaseURL + "/" + key, PublicID: key}, nil
}

// Delete S3 删除不存在的对象同样返回成功
func (s *s3Store) Delete(ctx context.Context, publicID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeExternalError, "Failed to delete image %s", publicID)
	}
	return nil
}
