package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// ErrMissingPublicURL 与 ErrMissingAnonKey 表示公开配置缺失，服务应当立即退出。
var (
	ErrMissingPublicURL = errors.New("PORTFOLIO_PUBLIC_URL is required")
	ErrMissingAnonKey   = errors.New("PORTFOLIO_ANON_KEY is required")
)

// Upload drivers.
const (
	UploadDriverLocal = "local"
	UploadDriverS3    = "s3"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	PublicURL      string        `env:"PORTFOLIO_PUBLIC_URL"`
	AnonKey        string        `env:"PORTFOLIO_ANON_KEY"`
	ServiceRoleKey string        `env:"PORTFOLIO_SERVICE_ROLE_KEY"`
	ListenAddr     string        `env:"LISTEN_ADDR"`
	Port           string        `env:"PORT" envDefault:"8080"`
	DatabasePath   string        `env:"DATABASE_PATH" envDefault:"portfolio.db"`
	SessionSecret  string        `env:"SESSION_SECRET" envDefault:"portfolio-dev-secret"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	GinMode        string        `env:"GIN_MODE" envDefault:"release"`
	AdminEmail     string        `env:"ADMIN_EMAIL"`
	AdminPassword  string        `env:"ADMIN_PASSWORD"`
	Upload         UploadConfig
}

// UploadConfig 描述对象存储与上传限制。
type UploadConfig struct {
	Driver          string `env:"UPLOAD_DRIVER" envDefault:"local"`
	Dir             string `env:"UPLOAD_DIR" envDefault:"web/static/uploads"`
	URLPath         string `env:"UPLOAD_URL_PATH" envDefault:"/static/uploads"`
	Bucket          string `env:"UPLOAD_BUCKET" envDefault:"images"`
	MaxMB           int64  `env:"UPLOAD_MAX_MB" envDefault:"5"`
	S3Region        string `env:"S3_REGION" envDefault:"ap-southeast-1"`
	S3Access        string `env:"S3_ACCESS_KEY"`
	S3Secret        string `env:"S3_SECRET_KEY"`
	S3Endpoint      string `env:"S3_ENDPOINT"`
	S3PublicBaseURL string `env:"S3_PUBLIC_BASE_URL"`
}

// Load 从环境变量读取应用配置，为缺失项提供默认值，并在公开 URL 或匿名 Key 缺失时返回错误。
func Load() (AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate 检查公开配置是否齐全。
func (c AppConfig) Validate() error {
	if c.PublicURL == "" {
		return ErrMissingPublicURL
	}
	if c.AnonKey == "" {
		return ErrMissingAnonKey
	}
	switch c.Upload.Driver {
	case UploadDriverLocal:
	case UploadDriverS3:
		if c.Upload.S3Access == "" || c.Upload.S3Secret == "" {
			return errors.New("S3_ACCESS_KEY or S3_SECRET_KEY missing")
		}
	default:
		return fmt.Errorf("unsupported UPLOAD_DRIVER %q", c.Upload.Driver)
	}
	return nil
}

// MaxUploadBytes 返回单个文件的字节上限。
func (c AppConfig) MaxUploadBytes() int64 {
	return c.Upload.MaxMB << 20
}

func (c *AppConfig) normalize() {
	c.PublicURL = strings.TrimRight(strings.TrimSpace(c.PublicURL), "/")
	c.AnonKey = strings.TrimSpace(c.AnonKey)
	c.ServiceRoleKey = strings.TrimSpace(c.ServiceRoleKey)

	c.Port = strings.TrimSpace(c.Port)
	if c.Port == "" {
		c.Port = "8080"
	}
	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	if c.ListenAddr == "" {
		c.ListenAddr = fmt.Sprintf(":%s", c.Port)
	}

	if strings.TrimSpace(c.SessionSecret) == "" {
		c.SessionSecret = "portfolio-dev-secret"
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = 24 * time.Hour
	}

	c.Upload.Driver = strings.ToLower(strings.TrimSpace(c.Upload.Driver))
	if c.Upload.Driver == "" {
		c.Upload.Driver = UploadDriverLocal
	}
	c.Upload.URLPath = "/" + strings.Trim(strings.TrimSpace(c.Upload.URLPath), "/")
	if strings.TrimSpace(c.Upload.Bucket) == "" {
		c.Upload.Bucket = "images"
	}
	if c.Upload.MaxMB <= 0 {
		c.Upload.MaxMB = 5
	}
}
