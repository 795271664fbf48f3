package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore 将对象写入本地目录，并通过静态路由对外提供。
type LocalStore struct {
	root    string
	urlPath string
	bucket  string
}

// NewLocalStore 创建 LocalStore，文件落在 dir/bucket 下，URL 形如 urlPath/bucket/key。
func NewLocalStore(dir, urlPath, bucket string) *LocalStore {
	return &LocalStore{
		root:    filepath.Join(dir, bucket),
		urlPath: "/" + strings.Trim(urlPath, "/"),
		bucket:  bucket,
	}
}

// Put 写入对象，父目录不存在时自动创建。
func (s *LocalStore) Put(ctx context.Context, key, _ string, body io.Reader, _ int64) error {
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(s.root, filepath.FromSlash(cleaned))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	file, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(file, body); err != nil {
		file.Close()
		os.Remove(target)
		return fmt.Errorf("write upload file: %w", err)
	}
	return file.Close()
}

// Delete 删除对象，不存在时视为成功。
func (s *LocalStore) Delete(_ context.Context, key string) error {
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(cleaned))); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// PublicURL 返回对象的站内访问路径。
func (s *LocalStore) PublicURL(key string) string {
	return path.Join(s.urlPath, s.bucket, strings.TrimLeft(key, "/"))
}
