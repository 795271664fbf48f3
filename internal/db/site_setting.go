package db

import "time"

// SiteSetting 存储前台展示用的站点级键值对。
type SiteSetting struct {
	ID        uint      `gorm:"primaryKey"`
	Key       string    `gorm:"size:100;uniqueIndex;not null"`
	Value     string    `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 自定义表名以保持命名一致。
func (SiteSetting) TableName() string {
	return "site_settings"
}

const (
	// SettingKeySiteName 表示站点名称。
	SettingKeySiteName = "site_name"
	// SettingKeyTagline 表示首页副标题。
	SettingKeyTagline = "tagline"
	// SettingKeyAvatarURL 表示关于页头像链接。
	SettingKeyAvatarURL = "avatar_url"
)
