package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/portfolio/internal/db"
	"gorm.io/gorm"
)

var (
	ErrHealthPublicURLMissing = errors.New("public url is not configured (PORTFOLIO_PUBLIC_URL)")
	ErrHealthAnonKeyMissing   = errors.New("anon key is not configured (PORTFOLIO_ANON_KEY)")
)

// HealthReport 是一次连通性自检的结果。
type HealthReport struct {
	Categories int64         `json:"categories"`
	Latency    time.Duration `json:"latency_ns"`
	CheckedAt  time.Time     `json:"checked_at"`
}

// HealthService 检查配置与数据库是否可用。
type HealthService struct {
	db        *gorm.DB
	publicURL string
	anonKey   string
}

// NewHealthService 创建 HealthService。
func NewHealthService(gdb *gorm.DB, publicURL, anonKey string) *HealthService {
	return &HealthService{db: gdb, publicURL: publicURL, anonKey: anonKey}
}

// Check 统计 blog_categories 行数以确认数据库可读。
func (s *HealthService) Check(ctx context.Context) (*HealthReport, error) {
	if strings.TrimSpace(s.publicURL) == "" {
		return nil, ErrHealthPublicURLMissing
	}
	if strings.TrimSpace(s.anonKey) == "" {
		return nil, ErrHealthAnonKeyMissing
	}

	started := time.Now()
	report := &HealthReport{CheckedAt: started.UTC()}
	if err := s.db.WithContext(ctx).Model(&db.BlogCategory{}).Count(&report.Categories).Error; err != nil {
		return nil, fmt.Errorf("health check query failed: %w", err)
	}
	report.Latency = time.Since(started)
	return report, nil
}
