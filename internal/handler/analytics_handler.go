package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/portfolio/internal/service"
)

type pageViewPayload struct {
	Path     string `json:"path"`
	Referrer string `json:"referrer"`
}

// RecordPageView 记录一次前台访问。
func (a *API) RecordPageView(c *gin.Context) {
	var payload pageViewPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	referrer := payload.Referrer
	if referrer == "" {
		referrer = c.Request.Referer()
	}

	if _, err := a.analytics.RecordPageView(service.PageViewInput{
		Path:      payload.Path,
		UserAgent: c.Request.UserAgent(),
		Referrer:  referrer,
	}); err != nil {
		if errors.Is(err, service.ErrPageViewPathRequired) {
			respondError(c, http.StatusBadRequest, "缺少页面路径")
			return
		}
		respondInternal(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Dashboard 返回后台首页统计以及最近 7 天的访问趋势。
func (a *API) Dashboard(c *gin.Context) {
	stats, err := a.analytics.DashboardStats()
	if err != nil {
		respondInternal(c, err)
		return
	}

	trend, err := a.analytics.DailyViews(time.Now(), 7)
	if err != nil {
		respondInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats": stats,
		"trend": trend,
		"user":  currentUser(c),
	})
}

// ListPageViews 返回最近的访问记录与近 30 天热门路径。
func (a *API) ListPageViews(c *gin.Context) {
	limit := parsePositiveInt(c.Query("limit"), 50)

	recent, err := a.analytics.ListRecent(limit)
	if err != nil {
		respondInternal(c, err)
		return
	}

	days := parsePositiveInt(c.Query("days"), 30)
	top, err := a.analytics.TopPaths(time.Now().AddDate(0, 0, -days), 10)
	if err != nil {
		respondInternal(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": recent, "top_paths": top})
}
