package db

import (
	"time"

	"gorm.io/datatypes"
)

// Artwork categories. One table backs all three galleries.
const (
	ArtworkCategory3D          = "3d"
	ArtworkCategory2D          = "2d"
	ArtworkCategoryPhotography = "photography"
)

// ArtworkCategories lists the valid values of Artwork.Category.
var ArtworkCategories = []string{ArtworkCategory3D, ArtworkCategory2D, ArtworkCategoryPhotography}

// Artwork is a gallery entry. Subcategory is optional and stored as "" when absent.
type Artwork struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	Title       string                      `gorm:"not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	ImageURL    string                      `gorm:"not null" json:"image_url"`
	Category    string                      `gorm:"size:20;index;not null" json:"category"`
	Subcategory string                      `gorm:"size:100;index;not null;default:''" json:"subcategory"`
	Year        *int                        `json:"year,omitempty"`
	Medium      string                      `json:"medium,omitempty"`
	Dimensions  string                      `json:"dimensions,omitempty"`
	Camera      string                      `json:"camera,omitempty"`
	Settings    string                      `json:"settings,omitempty"`
	Location    string                      `json:"location,omitempty"`
	ModelID     string                      `gorm:"size:100" json:"model_id,omitempty"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	Featured    bool                        `gorm:"default:false" json:"featured"`
	LikeCount   int64                       `gorm:"default:0" json:"like_count"`
	ViewCount   int64                       `gorm:"default:0" json:"view_count"`
	CreatedAt   time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// TableName 指定表名。
func (Artwork) TableName() string {
	return "artworks"
}
