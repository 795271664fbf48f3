package service

import (
	"fmt"
	"strings"

	"github.com/portfolio/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultSiteName = "Portfolio"
	defaultTagline  = "3D, illustration & photography"
)

// SiteSettings 描述前台展示的站点信息。
type SiteSettings struct {
	SiteName  string `json:"site_name"`
	Tagline   string `json:"tagline"`
	AvatarURL string `json:"avatar_url"`
}

// SiteSettingsInput 用于更新站点信息。
type SiteSettingsInput struct {
	SiteName  string
	Tagline   string
	AvatarURL string
}

// SiteSettingService 提供站点设置的读取与更新能力。
type SiteSettingService struct {
	db *gorm.DB
}

// NewSiteSettingService 构造 SiteSettingService。
func NewSiteSettingService(gdb *gorm.DB) *SiteSettingService {
	return &SiteSettingService{db: gdb}
}

var settingKeys = []string{
	db.SettingKeySiteName,
	db.SettingKeyTagline,
	db.SettingKeyAvatarURL,
}

// Get 读取站点设置，如未设置将返回默认值。
func (s *SiteSettingService) Get() (SiteSettings, error) {
	result := SiteSettings{SiteName: defaultSiteName, Tagline: defaultTagline}

	var records []db.SiteSetting
	if err := s.db.Where("key IN ?", settingKeys).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load site settings: %w", err)
	}

	for _, record := range records {
		switch record.Key {
		case db.SettingKeySiteName:
			if strings.TrimSpace(record.Value) != "" {
				result.SiteName = record.Value
			}
		case db.SettingKeyTagline:
			result.Tagline = record.Value
		case db.SettingKeyAvatarURL:
			result.AvatarURL = record.Value
		}
	}

	return result, nil
}

// Update 保存站点设置，未填写站点名称时回退默认值。
func (s *SiteSettingService) Update(input SiteSettingsInput) (SiteSettings, error) {
	sanitized := SiteSettings{
		SiteName:  strings.TrimSpace(input.SiteName),
		Tagline:   strings.TrimSpace(input.Tagline),
		AvatarURL: strings.TrimSpace(input.AvatarURL),
	}
	if sanitized.SiteName == "" {
		sanitized.SiteName = defaultSiteName
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		values := map[string]string{
			db.SettingKeySiteName:  sanitized.SiteName,
			db.SettingKeyTagline:   sanitized.Tagline,
			db.SettingKeyAvatarURL: sanitized.AvatarURL,
		}
		for _, key := range settingKeys {
			if err := upsertSetting(tx, key, values[key]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SiteSettings{}, fmt.Errorf("update site settings: %w", err)
	}

	return sanitized, nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SiteSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}
