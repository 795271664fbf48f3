// Package storage 提供图片等静态资源的对象存储抽象。
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrInvalidKey 表示对象 key 为空或试图跳出存储根目录。
var ErrInvalidKey = errors.New("invalid object key")

// ObjectStore 是上传服务依赖的最小对象存储接口。
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

func cleanKey(key string) (string, error) {
	trimmed := strings.Trim(strings.TrimSpace(key), "/")
	if trimmed == "" {
		return "", ErrInvalidKey
	}
	for _, part := range strings.Split(trimmed, "/") {
		if part == "" || part == "." || part == ".." {
			return "", ErrInvalidKey
		}
	}
	return trimmed, nil
}
