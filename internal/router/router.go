package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/portfolio/internal/config"
	"github.com/portfolio/internal/handler"
)

const sessionName = "portfolio_session"

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, cfg config.AppConfig) *gin.Engine {
	r := gin.Default()

	// 配置会话中间件
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	// 本地存储时直接提供上传文件
	if cfg.Upload.Driver == config.UploadDriverLocal && cfg.Upload.Dir != "" {
		r.Static(cfg.Upload.URLPath, cfg.Upload.Dir)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiGroup := r.Group("/api")
	apiGroup.Use(api.APIKeyRequired())
	{
		apiGroup.GET("/health", api.Health)
		apiGroup.GET("/site", api.ShowSite)
		apiGroup.GET("/about", api.ShowAbout)

		apiGroup.GET("/blog", api.ListBlog)
		apiGroup.GET("/blog/categories", api.ListBlogCategories)
		apiGroup.GET("/blog/:slug", api.ShowPost)
		apiGroup.POST("/blog/:slug/like", api.LikePost)

		apiGroup.GET("/work/:category", api.ListWork)
		apiGroup.GET("/work/:category/subcategories", api.ListWorkSubcategories)
		apiGroup.GET("/artworks/:id", api.ShowArtwork)
		apiGroup.POST("/artworks/:id/like", api.LikeArtwork)

		apiGroup.POST("/contact", api.SubmitContact)
		apiGroup.POST("/analytics/pageview", api.RecordPageView)

		auth := apiGroup.Group("/auth")
		{
			auth.POST("/login", api.Login)
			auth.POST("/logout", api.Logout)
			auth.GET("/user", api.CurrentUser)
			auth.POST("/refresh", api.RefreshSession)
		}

		// 需要认证的后台接口
		admin := apiGroup.Group("/admin")
		admin.Use(api.AuthRequired())
		{
			admin.GET("/dashboard", api.Dashboard)

			admin.GET("/posts", api.ListPosts)
			admin.POST("/posts", api.CreatePost)
			admin.GET("/posts/:id", api.GetPost)
			admin.PUT("/posts/:id", api.UpdatePost)
			admin.DELETE("/posts/:id", api.DeletePost)

			admin.GET("/artworks", api.ListArtworks)
			admin.POST("/artworks", api.CreateArtwork)
			admin.GET("/artworks/:id", api.GetArtwork)
			admin.PUT("/artworks/:id", api.UpdateArtwork)
			admin.DELETE("/artworks/:id", api.DeleteArtwork)
			admin.GET("/photos", api.ListPhotos)
			admin.POST("/photos", api.CreatePhoto)

			admin.GET("/contacts", api.ListContacts)
			admin.GET("/contacts/:id", api.GetContact)
			admin.DELETE("/contacts/:id", api.DeleteContact)
			admin.PATCH("/contacts/:id/status", api.UpdateContactStatus)

			admin.GET("/pageviews", api.ListPageViews)

			admin.POST("/uploads", api.UploadImage)
			admin.GET("/uploads/status", api.UploadStatus)

			admin.PUT("/about", api.UpdateAbout)
			admin.PUT("/site", api.UpdateSite)
		}
	}

	return r
}
