package db

import (
	"time"

	"gorm.io/datatypes"
)

// BlogPost 定义博客文章模型。
// Slug 全局唯一，用于前台路由；PublishedAt 仅在 Published 为 true 时有值。
type BlogPost struct {
	ID            uint                        `gorm:"primaryKey" json:"id"`
	Title         string                      `gorm:"not null" json:"title"`
	Slug          string                      `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Excerpt       string                      `gorm:"type:text" json:"excerpt"`
	Content       string                      `gorm:"type:text" json:"content"`
	Category      string                      `gorm:"size:100;index" json:"category"`
	Tags          datatypes.JSONSlice[string] `json:"tags"`
	FeaturedImage string                      `json:"featured_image,omitempty"`
	Published     bool                        `gorm:"index;default:false" json:"published"`
	Featured      bool                        `gorm:"default:false" json:"featured"`
	LikeCount     int64                       `gorm:"default:0" json:"like_count"`
	ViewCount     int64                       `gorm:"default:0" json:"view_count"`
	ReadTime      int                         `json:"read_time"`
	CreatedAt     time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
	PublishedAt   *time.Time                  `gorm:"index" json:"published_at"`
}

// TableName 指定表名。
func (BlogPost) TableName() string {
	return "blog_posts"
}

// BlogCategory 是博客分类的查找表，连通性自检会读取它。
type BlogCategory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Slug      string    `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名。
func (BlogCategory) TableName() string {
	return "blog_categories"
}
