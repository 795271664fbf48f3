package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio/internal/storage"
	_ "golang.org/x/image/webp"
)

const defaultMaxUploadBytes int64 = 5 << 20

// 上传目标目录。
const (
	UploadFolderBlog    = "blog"
	UploadFolderArtwork = "artwork"
	UploadFolderPhotos  = "photos"
)

var uploadFolders = []string{UploadFolderBlog, UploadFolderArtwork, UploadFolderPhotos}

// 允许上传的位图类型及其扩展名。对象扩展名只取自这里，不取自客户端文件名，
// 本地存储按扩展名决定响应的 Content-Type。SVG 可以内嵌脚本，不在其中。
var uploadImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/avif": ".avif",
}

// image.DecodeConfig 返回的格式名到 MIME 类型。
var decodedImageTypes = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// 上传状态机：idle → validating → uploading → success | error。
const (
	UploadStatusIdle       = "idle"
	UploadStatusValidating = "validating"
	UploadStatusUploading  = "uploading"
	UploadStatusSuccess    = "success"
	UploadStatusError      = "error"
)

var (
	ErrUploadFolderInvalid = errors.New("upload folder must be one of blog, artwork, photos")
	ErrUploadTooLarge      = errors.New("file exceeds the upload size limit")
	ErrUploadTypeInvalid   = errors.New("only jpeg, png, gif, webp or avif images can be uploaded")
	ErrUploadEmpty         = errors.New("uploaded file is empty")
	ErrUploadInProgress    = errors.New("another upload is already in progress")
)

// UploadRequest 描述一次图片上传。Size 为客户端声明的大小。
type UploadRequest struct {
	Owner       string
	Folder      string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult 是上传成功后的对象信息。
type UploadResult struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
}

// UploadState 是某个上传者最近一次上传的状态。
type UploadState struct {
	Status    string    `json:"status"`
	URL       string    `json:"url,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UploadService 校验图片并写入对象存储。同一上传者同一时间只允许一个上传。
type UploadService struct {
	store    storage.ObjectStore
	maxBytes int64
	now      func() time.Time

	mu     sync.Mutex
	states map[string]UploadState
}

// NewUploadService 创建 UploadService，maxBytes 非正时使用 5MB。
func NewUploadService(store storage.ObjectStore, maxBytes int64) *UploadService {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	return &UploadService{
		store:    store,
		maxBytes: maxBytes,
		now:      time.Now,
		states:   make(map[string]UploadState),
	}
}

// Status 返回上传者最近一次上传的状态，从未上传时为 idle。
func (s *UploadService) Status(owner string) UploadState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.states[owner]; ok {
		return state
	}
	return UploadState{Status: UploadStatusIdle}
}

// Upload 校验并保存图片，所有校验都在访问存储之前完成。
func (s *UploadService) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	if err := s.begin(req.Owner); err != nil {
		return nil, err
	}

	result, err := s.upload(ctx, req)
	if err != nil {
		s.setState(req.Owner, UploadState{Status: UploadStatusError, Error: err.Error()})
		return nil, err
	}
	s.setState(req.Owner, UploadState{Status: UploadStatusSuccess, URL: result.URL})
	return result, nil
}

func (s *UploadService) upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	folder := strings.ToLower(strings.TrimSpace(req.Folder))
	if !slices.Contains(uploadFolders, folder) {
		return nil, ErrUploadFolderInvalid
	}
	if req.Size > s.maxBytes {
		return nil, fmt.Errorf("%w (%d MB)", ErrUploadTooLarge, s.maxBytes>>20)
	}
	contentType := normalizeImageType(req.ContentType)
	if _, ok := uploadImageTypes[contentType]; !ok {
		return nil, ErrUploadTypeInvalid
	}
	if req.Body == nil {
		return nil, ErrUploadEmpty
	}

	data, err := io.ReadAll(io.LimitReader(req.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload body: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("%w (%d MB)", ErrUploadTooLarge, s.maxBytes>>20)
	}
	if len(data) == 0 {
		return nil, ErrUploadEmpty
	}

	result := &UploadResult{ContentType: contentType, Size: int64(len(data))}
	if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		result.Width = cfg.Width
		result.Height = cfg.Height
		// 以实际解码出的格式为准
		if detected, ok := decodedImageTypes[format]; ok {
			result.ContentType = detected
		}
	}

	result.Key = fmt.Sprintf("%s/%s-%s%s", folder, s.now().Format("20060102"), uuid.NewString(), uploadImageTypes[result.ContentType])

	s.setState(req.Owner, UploadState{Status: UploadStatusUploading})
	if err := s.store.Put(ctx, result.Key, result.ContentType, bytes.NewReader(data), result.Size); err != nil {
		log.Printf("[upload] store %s failed: %v", result.Key, err)
		return nil, err
	}

	result.URL = s.store.PublicURL(result.Key)
	return result, nil
}

// Remove 删除由本服务上传的对象。publicURL 不属于当前存储（例如外链图片）时返回 false。
func (s *UploadService) Remove(ctx context.Context, publicURL string) (bool, error) {
	key, ok := s.keyFromURL(publicURL)
	if !ok {
		return false, nil
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return false, err
	}
	return true, nil
}

func (s *UploadService) keyFromURL(publicURL string) (string, bool) {
	publicURL = strings.TrimSpace(publicURL)
	prefix := strings.TrimRight(s.store.PublicURL(""), "/") + "/"
	key, ok := strings.CutPrefix(publicURL, prefix)
	if !ok || key == "" || strings.Contains(key, "..") {
		return "", false
	}
	folder, _, ok := strings.Cut(key, "/")
	if !ok || !slices.Contains(uploadFolders, folder) {
		return "", false
	}
	return key, true
}

func (s *UploadService) begin(owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state, ok := s.states[owner]; ok {
		if state.Status == UploadStatusValidating || state.Status == UploadStatusUploading {
			return ErrUploadInProgress
		}
	}
	s.states[owner] = UploadState{Status: UploadStatusValidating, UpdatedAt: s.now()}
	return nil
}

func (s *UploadService) setState(owner string, state UploadState) {
	state.UpdatedAt = s.now()
	s.mu.Lock()
	s.states[owner] = state
	s.mu.Unlock()
}

func normalizeImageType(raw string) string {
	mediaType, _, _ := strings.Cut(raw, ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if mediaType == "image/jpg" || mediaType == "image/pjpeg" {
		return "image/jpeg"
	}
	return mediaType
}
