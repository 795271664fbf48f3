package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfolio/internal/service"
)

type aboutPayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type sitePayload struct {
	SiteName  string `json:"site_name"`
	Tagline   string `json:"tagline"`
	AvatarURL string `json:"avatar_url"`
}

// ShowAbout 返回关于页的原始内容与渲染结果。
func (a *API) ShowAbout(c *gin.Context) {
	page, err := a.pages.GetBySlug(service.AboutPageSlug)
	if err != nil {
		respondInternal(c, err)
		return
	}
	if page == nil {
		respondError(c, http.StatusNotFound, "关于页尚未创建")
		return
	}

	rendered, err := renderMarkdown(page.Content)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "渲染关于页失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"page": page, "html": rendered})
}

// UpdateAbout 保存关于页内容。
func (a *API) UpdateAbout(c *gin.Context) {
	var payload aboutPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	page, err := a.pages.SaveAboutPage(payload.Title, payload.Content)
	if err != nil {
		if errors.Is(err, service.ErrPageContentMissing) {
			respondError(c, http.StatusBadRequest, "请填写关于页内容")
			return
		}
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "关于页已保存", "page": page})
}

// ShowSite 返回站点设置。
func (a *API) ShowSite(c *gin.Context) {
	settings, err := a.settings.Get()
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSite 保存站点设置。
func (a *API) UpdateSite(c *gin.Context) {
	var payload sitePayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	settings, err := a.settings.Update(service.SiteSettingsInput{
		SiteName:  payload.SiteName,
		Tagline:   payload.Tagline,
		AvatarURL: payload.AvatarURL,
	})
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "站点设置已保存", "settings": settings})
}

// Health 执行连通性自检。
func (a *API) Health(c *gin.Context) {
	report, err := a.health.Check(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "report": report})
}
