package service

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio/internal/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrPostNotFound        = errors.New("blog post not found")
	ErrPostTitleRequired   = errors.New("blog post title is required")
	ErrPostContentRequired = errors.New("blog post content is required")
	ErrPostSlugInvalid     = errors.New("blog post slug is invalid")
	ErrPostSlugTaken       = errors.New("blog post slug already exists")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// PostService wraps blog post database operations.
type PostService struct {
	db  *gorm.DB
	now func() time.Time
}

// PostFilter describes filters for listing posts. Nil pointers mean "any".
type PostFilter struct {
	Category  string
	Tag       string
	Search    string
	Published *bool
	Featured  *bool
	Page      int
	PerPage   int
}

// PostListResult aggregates paginated list data.
type PostListResult struct {
	Posts      []db.BlogPost `json:"posts"`
	Total      int64         `json:"total"`
	TotalPages int           `json:"total_pages"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
}

// PostInput represents fields accepted when creating or updating a post.
type PostInput struct {
	Title         string
	Slug          string
	Excerpt       string
	Content       string
	Category      string
	Tags          []string
	FeaturedImage string
	Published     bool
	Featured      bool
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb, now: time.Now}
}

// List returns posts matching the filter, newest first.
// Published-only listings are ordered by publish time instead of creation time.
func (s *PostService) List(filter PostFilter) (*PostListResult, error) {
	result := &PostListResult{
		Page:    normalizePage(filter.Page),
		PerPage: normalizePerPage(filter.PerPage, 10),
	}

	query := s.applyFilters(s.db.Model(&db.BlogPost{}), filter)
	if err := query.Count(&result.Total).Error; err != nil {
		return nil, err
	}

	orderBy := "blog_posts.created_at desc, blog_posts.id desc"
	if filter.Published != nil && *filter.Published {
		orderBy = "blog_posts.published_at desc, blog_posts.id desc"
	}

	offset := (result.Page - 1) * result.PerPage
	posts := make([]db.BlogPost, 0, result.PerPage)
	if err := s.applyFilters(s.db.Model(&db.BlogPost{}), filter).
		Order(orderBy).
		Limit(result.PerPage).
		Offset(offset).
		Find(&posts).Error; err != nil {
		return nil, err
	}

	result.Posts = posts
	result.TotalPages = calculateTotalPages(result.Total, result.PerPage)
	return result, nil
}

// ListCategories returns the distinct categories used by published posts.
func (s *PostService) ListCategories() ([]string, error) {
	var categories []string
	if err := s.db.Model(&db.BlogPost{}).
		Where("published = ? AND category <> ''", true).
		Distinct("category").
		Order("category asc").
		Pluck("category", &categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// ListCategoryRows returns the blog_categories lookup table ordered by name.
func (s *PostService) ListCategoryRows() ([]db.BlogCategory, error) {
	var rows []db.BlogCategory
	if err := s.db.Order("name asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Get fetches a post by id. A missing row yields (nil, nil).
func (s *PostService) Get(id uint) (*db.BlogPost, error) {
	var post db.BlogPost
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// GetBySlug fetches a post by slug. A missing row yields (nil, nil).
func (s *PostService) GetBySlug(slug string) (*db.BlogPost, error) {
	var post db.BlogPost
	if err := s.db.Where("slug = ?", strings.ToLower(strings.TrimSpace(slug))).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Create inserts a new post. Posts are drafts unless input.Published is set.
func (s *PostService) Create(input PostInput) (*db.BlogPost, error) {
	post := db.BlogPost{}
	if err := s.apply(&post, input); err != nil {
		return nil, err
	}

	if err := s.db.Create(&post).Error; err != nil {
		return nil, fmt.Errorf("create blog post: %w", err)
	}
	return &post, nil
}

// Update applies input to an existing post. An empty slug keeps the current one.
func (s *PostService) Update(id uint, input PostInput) (*db.BlogPost, error) {
	var post db.BlogPost
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	if strings.TrimSpace(input.Slug) == "" {
		input.Slug = post.Slug
	}
	if err := s.apply(&post, input); err != nil {
		return nil, err
	}

	if err := s.db.Save(&post).Error; err != nil {
		return nil, fmt.Errorf("update blog post: %w", err)
	}
	return &post, nil
}

// Delete removes a post by id.
func (s *PostService) Delete(id uint) error {
	result := s.db.Delete(&db.BlogPost{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

// IncrementViews bumps the view counter. A missed view is not worth failing a
// page for, so errors are only logged.
func (s *PostService) IncrementViews(id uint) {
	if err := s.db.Model(&db.BlogPost{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error; err != nil {
		log.Printf("[posts] increment views for %d failed: %v", id, err)
	}
}

// Like increments the like counter and returns the new value.
func (s *PostService) Like(id uint) (int64, error) {
	result := s.db.Model(&db.BlogPost{}).
		Where("id = ?", id).
		UpdateColumn("like_count", gorm.Expr("like_count + ?", 1))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrPostNotFound
	}

	var count int64
	if err := s.db.Model(&db.BlogPost{}).Select("like_count").Where("id = ?", id).Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (s *PostService) apply(post *db.BlogPost, input PostInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return ErrPostTitleRequired
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return ErrPostContentRequired
	}

	slug, err := s.resolveSlug(post.ID, title, input.Slug)
	if err != nil {
		return err
	}

	excerpt := strings.TrimSpace(input.Excerpt)
	if excerpt == "" {
		excerpt = summarizeContent(content)
	}

	post.Title = title
	post.Slug = slug
	post.Excerpt = excerpt
	post.Content = content
	post.Category = strings.TrimSpace(input.Category)
	post.Tags = datatypes.JSONSlice[string](normalizeTags(input.Tags))
	post.FeaturedImage = strings.TrimSpace(input.FeaturedImage)
	post.Featured = input.Featured
	post.ReadTime = calculateReadingTime(content)

	switch {
	case input.Published && post.PublishedAt == nil:
		now := s.now()
		post.PublishedAt = &now
	case !input.Published:
		post.PublishedAt = nil
	}
	post.Published = input.Published
	return nil
}

func (s *PostService) resolveSlug(id uint, title, raw string) (string, error) {
	slug := strings.ToLower(strings.TrimSpace(raw))
	if slug == "" {
		slug = Slugify(title)
		if slug == "" {
			slug = "post-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
		}
	} else if !slugPattern.MatchString(slug) {
		return "", ErrPostSlugInvalid
	}

	var count int64
	if err := s.db.Model(&db.BlogPost{}).
		Where("slug = ? AND id <> ?", slug, id).
		Count(&count).Error; err != nil {
		return "", err
	}
	if count > 0 {
		return "", ErrPostSlugTaken
	}
	return slug, nil
}

func (s *PostService) applyFilters(query *gorm.DB, filter PostFilter) *gorm.DB {
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("blog_posts.category = ?", category)
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		query = query.Where(jsonTagFilter("blog_posts"), tag)
	}
	if filter.Published != nil {
		query = query.Where("blog_posts.published = ?", *filter.Published)
	}
	if filter.Featured != nil {
		query = query.Where("blog_posts.featured = ?", *filter.Featured)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("(blog_posts.title LIKE ? OR blog_posts.excerpt LIKE ? OR blog_posts.content LIKE ?)", like, like, like)
	}
	return query
}
