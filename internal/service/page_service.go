package service

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/portfolio/internal/db"
	"gorm.io/gorm"
)

// AboutPageSlug 是关于页的固定 slug。
const AboutPageSlug = "about"

const defaultAboutTitle = "About"

var ErrPageContentMissing = errors.New("page content is required")

// PageService provides access to standalone pages such as About.
type PageService struct {
	db *gorm.DB
}

// NewPageService returns a new PageService instance.
func NewPageService(gdb *gorm.DB) *PageService {
	return &PageService{db: gdb}
}

// GetBySlug fetches a page for a given slug. A missing page yields (nil, nil).
func (s *PageService) GetBySlug(slug string) (*db.Page, error) {
	var page db.Page
	if err := s.db.Where("slug = ?", slug).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &page, nil
}

// SaveAboutPage creates or updates the about page. An empty title keeps the
// current one (or the default on first save).
func (s *PageService) SaveAboutPage(title, content string) (*db.Page, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, ErrPageContentMissing
	}

	page, err := s.GetBySlug(AboutPageSlug)
	if err != nil {
		return nil, err
	}
	if page == nil {
		page = &db.Page{Slug: AboutPageSlug}
	}

	if t := strings.TrimSpace(title); t != "" {
		page.Title = t
	}
	if strings.TrimSpace(page.Title) == "" {
		page.Title = defaultAboutTitle
	}
	page.Content = trimmed
	page.Summary = summarizeContent(trimmed)

	if err := s.db.Save(page).Error; err != nil {
		return nil, err
	}
	return page, nil
}

// summarizeContent 去掉常见 Markdown 标记后截取前 160 个字符作为摘要。
func summarizeContent(markdown string) string {
	replacer := strings.NewReplacer(
		"#", " ",
		"*", " ",
		"`", " ",
		"_", " ",
		">", " ",
		"[", " ",
		"]", " ",
		"(", " ",
		")", " ",
	)
	plain := strings.Join(strings.Fields(replacer.Replace(markdown)), " ")
	if plain == "" {
		return ""
	}

	const limit = 160
	if utf8.RuneCountInString(plain) <= limit {
		return plain
	}

	runes := []rune(plain)
	return strings.TrimSpace(string(runes[:limit])) + "…"
}
