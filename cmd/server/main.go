package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/portfolio/internal/config"
	"github.com/portfolio/internal/db"
	"github.com/portfolio/internal/handler"
	"github.com/portfolio/internal/router"
	"github.com/portfolio/internal/service"
	"github.com/portfolio/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	gdb, err := db.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	store, err := newObjectStore(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to initialize storage: %v", err)
	}

	api := handler.NewAPI(gdb, cfg, store)
	if err := api.Auth().EnsureAdmin(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to ensure admin user: %v", err)
	}
	api.Auth().Subscribe(func(event service.AuthEvent) {
		log.Printf("[auth] %s user=%d", event.Type, event.UserID)
	})

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(api, cfg)
	log.Printf("portfolio listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}

func newObjectStore(ctx context.Context, cfg config.AppConfig) (storage.ObjectStore, error) {
	if cfg.Upload.Driver == config.UploadDriverS3 {
		return storage.NewS3Store(ctx, storage.S3Options{
			Region:        cfg.Upload.S3Region,
			AccessKey:     cfg.Upload.S3Access,
			SecretKey:     cfg.Upload.S3Secret,
			Bucket:        cfg.Upload.Bucket,
			Endpoint:      cfg.Upload.S3Endpoint,
			PublicBaseURL: cfg.Upload.S3PublicBaseURL,
		})
	}
	return storage.NewLocalStore(cfg.Upload.Dir, cfg.Upload.URLPath, cfg.Upload.Bucket), nil
}
