package db

import "time"

// PageView 是只追加的访问日志。
type PageView struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PagePath  string    `gorm:"size:255;index;not null" json:"page_path"`
	UserAgent string    `gorm:"size:512" json:"user_agent"`
	Referrer  string    `gorm:"size:512" json:"referrer"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名。
func (PageView) TableName() string {
	return "page_views"
}
