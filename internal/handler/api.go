package handler

import (
	"github.com/portfolio/internal/config"
	"github.com/portfolio/internal/service"
	"github.com/portfolio/internal/storage"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	posts     *service.PostService
	artworks  *service.ArtworkService
	contacts  *service.ContactService
	pages     *service.PageService
	analytics *service.AnalyticsService
	settings  *service.SiteSettingService
	health    *service.HealthService
	auth      *service.AuthService
	uploads   *service.UploadService
	limiter   *loginLimiter

	anonKey        string
	serviceRoleKey string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, cfg config.AppConfig, store storage.ObjectStore) *API {
	return &API{
		posts:          service.NewPostService(gdb),
		artworks:       service.NewArtworkService(gdb),
		contacts:       service.NewContactService(gdb),
		pages:          service.NewPageService(gdb),
		analytics:      service.NewAnalyticsService(gdb),
		settings:       service.NewSiteSettingService(gdb),
		health:         service.NewHealthService(gdb, cfg.PublicURL, cfg.AnonKey),
		auth:           service.NewAuthService(gdb, cfg.SessionSecret, cfg.SessionTTL),
		uploads:        service.NewUploadService(store, cfg.MaxUploadBytes()),
		limiter:        newLoginLimiter(),
		anonKey:        cfg.AnonKey,
		serviceRoleKey: cfg.ServiceRoleKey,
	}
}

// Auth exposes the auth gateway so callers can seed the admin or subscribe to events.
func (a *API) Auth() *service.AuthService {
	return a.auth
}
