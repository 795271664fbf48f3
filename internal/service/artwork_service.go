package service

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"

	"github.com/portfolio/internal/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrArtworkNotFound        = errors.New("artwork not found")
	ErrArtworkTitleRequired   = errors.New("artwork title is required")
	ErrArtworkImageMissing    = errors.New("artwork image is required")
	ErrArtworkCategoryInvalid = errors.New("artwork category must be one of 3d, 2d, photography")
)

// ArtworkService handles artwork CRUD for all three galleries.
type ArtworkService struct {
	db *gorm.DB
}

// ArtworkFilter describes filters for listing artworks.
type ArtworkFilter struct {
	Category    string
	Subcategory string
	Tag         string
	Featured    *bool
	Page        int
	PerPage     int
}

// ArtworkListResult aggregates paginated artwork results.
type ArtworkListResult struct {
	Items      []db.Artwork `json:"items"`
	Total      int64        `json:"total"`
	TotalPages int          `json:"total_pages"`
	Page       int          `json:"page"`
	PerPage    int          `json:"per_page"`
}

// ArtworkInput represents fields accepted when creating or updating an artwork.
type ArtworkInput struct {
	Title       string
	Description string
	ImageURL    string
	Category    string
	Subcategory string
	Year        *int
	Medium      string
	Dimensions  string
	Camera      string
	Settings    string
	Location    string
	ModelID     string
	Tags        []string
	Featured    bool
}

// NewArtworkService creates an ArtworkService instance.
func NewArtworkService(gdb *gorm.DB) *ArtworkService {
	return &ArtworkService{db: gdb}
}

// NormalizeArtworkCategory lower-cases category and reports whether it is valid.
func NormalizeArtworkCategory(category string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(category))
	return normalized, slices.Contains(db.ArtworkCategories, normalized)
}

// List returns artworks matching the filter, newest first.
// A non-empty category outside the enumerated set is rejected.
func (s *ArtworkService) List(filter ArtworkFilter) (*ArtworkListResult, error) {
	if filter.Category != "" {
		category, ok := NormalizeArtworkCategory(filter.Category)
		if !ok {
			return nil, ErrArtworkCategoryInvalid
		}
		filter.Category = category
	}

	result := &ArtworkListResult{
		Page:    normalizePage(filter.Page),
		PerPage: normalizePerPage(filter.PerPage, 24),
	}

	if err := s.applyFilters(s.db.Model(&db.Artwork{}), filter).Count(&result.Total).Error; err != nil {
		return nil, err
	}

	offset := (result.Page - 1) * result.PerPage
	items := make([]db.Artwork, 0, result.PerPage)
	if err := s.applyFilters(s.db.Model(&db.Artwork{}), filter).
		Order("artworks.created_at desc").
		Order("artworks.id desc").
		Limit(result.PerPage).
		Offset(offset).
		Find(&items).Error; err != nil {
		return nil, err
	}

	result.Items = items
	result.TotalPages = calculateTotalPages(result.Total, result.PerPage)
	return result, nil
}

// ListByCategory returns every artwork of one gallery.
func (s *ArtworkService) ListByCategory(category string) ([]db.Artwork, error) {
	normalized, ok := NormalizeArtworkCategory(category)
	if !ok {
		return nil, ErrArtworkCategoryInvalid
	}

	var items []db.Artwork
	if err := s.db.Where("category = ?", normalized).
		Order("created_at desc").
		Order("id desc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Subcategories returns the distinct non-empty subcategories of a gallery.
func (s *ArtworkService) Subcategories(category string) ([]string, error) {
	normalized, ok := NormalizeArtworkCategory(category)
	if !ok {
		return nil, ErrArtworkCategoryInvalid
	}

	var subcategories []string
	if err := s.db.Model(&db.Artwork{}).
		Where("category = ? AND subcategory <> ''", normalized).
		Distinct("subcategory").
		Order("subcategory asc").
		Pluck("subcategory", &subcategories).Error; err != nil {
		return nil, err
	}
	return subcategories, nil
}

// Get fetches an artwork by id. A missing row yields (nil, nil).
func (s *ArtworkService) Get(id uint) (*db.Artwork, error) {
	var item db.Artwork
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// Create inserts a new artwork.
func (s *ArtworkService) Create(input ArtworkInput) (*db.Artwork, error) {
	item := db.Artwork{}
	if err := applyArtworkInput(&item, input); err != nil {
		return nil, err
	}

	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create artwork: %w", err)
	}
	return &item, nil
}

// Update modifies an existing artwork.
func (s *ArtworkService) Update(id uint, input ArtworkInput) (*db.Artwork, error) {
	var item db.Artwork
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArtworkNotFound
		}
		return nil, err
	}

	if err := applyArtworkInput(&item, input); err != nil {
		return nil, err
	}

	if err := s.db.Save(&item).Error; err != nil {
		return nil, fmt.Errorf("update artwork: %w", err)
	}
	return &item, nil
}

// Delete removes an artwork.
func (s *ArtworkService) Delete(id uint) error {
	result := s.db.Delete(&db.Artwork{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrArtworkNotFound
	}
	return nil
}

// IncrementViews bumps the view counter; failures are logged only.
func (s *ArtworkService) IncrementViews(id uint) {
	if err := s.db.Model(&db.Artwork{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error; err != nil {
		log.Printf("[artworks] increment views for %d failed: %v", id, err)
	}
}

// Like increments the like counter and returns the new value.
func (s *ArtworkService) Like(id uint) (int64, error) {
	result := s.db.Model(&db.Artwork{}).
		Where("id = ?", id).
		UpdateColumn("like_count", gorm.Expr("like_count + ?", 1))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrArtworkNotFound
	}

	var count int64
	if err := s.db.Model(&db.Artwork{}).Select("like_count").Where("id = ?", id).Scan(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByCategory returns how many artworks each gallery holds.
// Every enumerated category is present in the result, zero or not.
func (s *ArtworkService) CountByCategory() (map[string]int64, error) {
	var rows []struct {
		Category string
		Total    int64
	}
	if err := s.db.Model(&db.Artwork{}).
		Select("category, COUNT(*) AS total").
		Group("category").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(db.ArtworkCategories))
	for _, category := range db.ArtworkCategories {
		counts[category] = 0
	}
	for _, row := range rows {
		counts[row.Category] = row.Total
	}
	return counts, nil
}

func applyArtworkInput(item *db.Artwork, input ArtworkInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return ErrArtworkTitleRequired
	}
	imageURL := strings.TrimSpace(input.ImageURL)
	if imageURL == "" {
		return ErrArtworkImageMissing
	}
	category, ok := NormalizeArtworkCategory(input.Category)
	if !ok {
		return ErrArtworkCategoryInvalid
	}

	item.Title = title
	item.Description = strings.TrimSpace(input.Description)
	item.ImageURL = imageURL
	item.Category = category
	item.Subcategory = strings.TrimSpace(input.Subcategory)
	item.Year = input.Year
	item.Medium = strings.TrimSpace(input.Medium)
	item.Dimensions = strings.TrimSpace(input.Dimensions)
	item.Camera = strings.TrimSpace(input.Camera)
	item.Settings = strings.TrimSpace(input.Settings)
	item.Location = strings.TrimSpace(input.Location)
	item.ModelID = strings.TrimSpace(input.ModelID)
	item.Tags = datatypes.JSONSlice[string](normalizeTags(input.Tags))
	item.Featured = input.Featured
	return nil
}

func (s *ArtworkService) applyFilters(query *gorm.DB, filter ArtworkFilter) *gorm.DB {
	if filter.Category != "" {
		query = query.Where("artworks.category = ?", filter.Category)
	}
	if subcategory := strings.TrimSpace(filter.Subcategory); subcategory != "" {
		query = query.Where("artworks.subcategory = ?", subcategory)
	}
	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		query = query.Where(jsonTagFilter("artworks"), tag)
	}
	if filter.Featured != nil {
		query = query.Where("artworks.featured = ?", *filter.Featured)
	}
	return query
}
