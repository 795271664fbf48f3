package service

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/portfolio/internal/db"
	"gorm.io/gorm"
)

const (
	maxPathLength     = 255
	maxUserAgentBytes = 512
)

// ErrPageViewPathRequired 表示缺少页面路径。
var ErrPageViewPathRequired = errors.New("page path is required")

// PageViewInput 描述一次前台页面访问。
type PageViewInput struct {
	Path      string
	UserAgent string
	Referrer  string
}

// PathStat 是某个路径的访问次数。
type PathStat struct {
	Path  string `json:"path"`
	Views int64  `json:"views"`
}

// DailyStat 是某一天的访问次数，日期格式为 2006-01-02。
type DailyStat struct {
	Date  string `json:"date"`
	Views int64  `json:"views"`
}

// DashboardStats 汇总后台首页展示的数据。
type DashboardStats struct {
	Posts struct {
		Total     int64 `json:"total"`
		Published int64 `json:"published"`
		Draft     int64 `json:"draft"`
	} `json:"posts"`
	Artworks map[string]int64 `json:"artworks"`
	Contacts struct {
		Total int64 `json:"total"`
		New   int64 `json:"new"`
	} `json:"contacts"`
	PageViews struct {
		Total    int64 `json:"total"`
		LastWeek int64 `json:"last_7_days"`
	} `json:"page_views"`
	TopPaths []PathStat `json:"top_paths"`
}

// AnalyticsService 负责记录页面访问并生成后台统计。
type AnalyticsService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAnalyticsService 创建 AnalyticsService。
func NewAnalyticsService(gdb *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: gdb, now: time.Now}
}

// RecordPageView 追加一条访问记录。路径会去掉查询串并补全前导斜杠。
func (s *AnalyticsService) RecordPageView(input PageViewInput) (*db.PageView, error) {
	path := normalizePagePath(input.Path)
	if path == "" {
		return nil, ErrPageViewPathRequired
	}

	view := db.PageView{
		PagePath:  path,
		UserAgent: truncateBytes(strings.TrimSpace(input.UserAgent), maxUserAgentBytes),
		Referrer:  truncateBytes(strings.TrimSpace(input.Referrer), maxUserAgentBytes),
		CreatedAt: s.now().UTC(),
	}
	if err := s.db.Create(&view).Error; err != nil {
		return nil, fmt.Errorf("record page view: %w", err)
	}
	return &view, nil
}

// ListRecent 返回最近的访问记录。
func (s *AnalyticsService) ListRecent(limit int) ([]db.PageView, error) {
	limit = normalizePerPage(limit, 50)

	views := make([]db.PageView, 0, limit)
	if err := s.db.Order("created_at desc").Order("id desc").Limit(limit).Find(&views).Error; err != nil {
		return nil, err
	}
	return views, nil
}

// TopPaths 统计 since 之后访问最多的路径。since 为零值时统计全部。
func (s *AnalyticsService) TopPaths(since time.Time, limit int) ([]PathStat, error) {
	if limit <= 0 {
		limit = 10
	}

	query := s.db.Model(&db.PageView{})
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since.UTC())
	}

	var stats []PathStat
	if err := query.
		Select("page_path AS path, COUNT(*) AS views").
		Group("page_path").
		Order("views desc").
		Order("page_path asc").
		Limit(limit).
		Scan(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}

// DailyViews 返回截至 now 的最近 days 天（UTC）每日访问量，没有访问的日期计为 0。
func (s *AnalyticsService) DailyViews(now time.Time, days int) ([]DailyStat, error) {
	if days <= 0 {
		days = 7
	}

	today := now.UTC().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(days - 1))

	var stamps []time.Time
	if err := s.db.Model(&db.PageView{}).
		Where("created_at >= ?", start).
		Pluck("created_at", &stamps).Error; err != nil {
		return nil, err
	}

	buckets := make(map[string]int64, days)
	for _, stamp := range stamps {
		buckets[stamp.UTC().Format("2006-01-02")]++
	}

	stats := make([]DailyStat, 0, days)
	for day := start; !day.After(today); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		stats = append(stats, DailyStat{Date: key, Views: buckets[key]})
	}
	return stats, nil
}

// DashboardStats 汇总文章、作品、留言与访问数据。
func (s *AnalyticsService) DashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	if err := s.db.Model(&db.BlogPost{}).Count(&stats.Posts.Total).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&db.BlogPost{}).Where("published = ?", true).Count(&stats.Posts.Published).Error; err != nil {
		return nil, err
	}
	stats.Posts.Draft = stats.Posts.Total - stats.Posts.Published

	artworks, err := NewArtworkService(s.db).CountByCategory()
	if err != nil {
		return nil, err
	}
	stats.Artworks = artworks

	if err := s.db.Model(&db.ContactSubmission{}).Count(&stats.Contacts.Total).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&db.ContactSubmission{}).
		Where("status = ?", db.ContactStatusNew).
		Count(&stats.Contacts.New).Error; err != nil {
		return nil, err
	}

	weekAgo := s.now().UTC().AddDate(0, 0, -7)
	if err := s.db.Model(&db.PageView{}).Count(&stats.PageViews.Total).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&db.PageView{}).
		Where("created_at >= ?", weekAgo).
		Count(&stats.PageViews.LastWeek).Error; err != nil {
		return nil, err
	}

	top, err := s.TopPaths(weekAgo, 5)
	if err != nil {
		return nil, err
	}
	stats.TopPaths = top
	return stats, nil
}

func normalizePagePath(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	parsed, err := url.Parse(trimmed)
	switch {
	case err == nil && parsed.Host != "":
		// 完整 URL 只保留路径，站点根路径记为 /
		trimmed = parsed.Path
		if trimmed == "" {
			trimmed = "/"
		}
	case err == nil && parsed.Path != "":
		trimmed = parsed.Path
	default:
		if idx := strings.IndexAny(trimmed, "?#"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
	}
	if trimmed == "" {
		return ""
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return truncateBytes(trimmed, maxPathLength)
}

// truncateBytes 截断到 limit 字节以内，不会切断 UTF-8 字符。
func truncateBytes(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(value[cut]) {
		cut--
	}
	return value[:cut]
}
