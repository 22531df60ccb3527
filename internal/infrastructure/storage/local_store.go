package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"vedzeb_server/pkg/errorx"
)

type localStore struct {
	dir     string
	baseURL string
}

// NewLocalStore 开发环境使用，文件名即 PublicID
func NewLocalStore(dir, baseURL string) (ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeExternalError, "create upload dir %s", dir)
	}
	return &localStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *localStore) Upload(_ context.Context, data []byte, _ string) (*StoredImage, error) {
	name := uuid.NewString() + ".jpg"
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return nil, errorx.Wrap(err, errorx.CodeExternalError, "Failed to upload image")
	}
	return &StoredImage{URL: s.baseURL + "/" + name, PublicID: name}, nil
}

func (s *localStore) Delete(_ context.Context, publicID string) error {
	// 只取文件名，防止 ../ 越出存储目录
	name := filepath.Base(publicID)
	if name == "." || name == string(filepath.Separator) {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errorx.Wrapf(err, errorx.CodeExternalError, "Failed to delete image %s", publicID)
	}
	return nil
}
