package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/portfolio/internal/service"
)

type postPayload struct {
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Excerpt       string   `json:"excerpt"`
	Content       string   `json:"content"`
	Category      string   `json:"category"`
	Tags          []string `json:"tags"`
	FeaturedImage string   `json:"featured_image"`
	Published     bool     `json:"published"`
	Featured      bool     `json:"featured"`
}

func (p postPayload) toInput() service.PostInput {
	return service.PostInput{
		Title:         p.Title,
		Slug:          p.Slug,
		Excerpt:       p.Excerpt,
		Content:       p.Content,
		Category:      p.Category,
		Tags:          p.Tags,
		FeaturedImage: p.FeaturedImage,
		Published:     p.Published,
		Featured:      p.Featured,
	}
}

// ListBlog 返回已发布的文章列表。
func (a *API) ListBlog(c *gin.Context) {
	published := true
	result, err := a.posts.List(service.PostFilter{
		Category:  strings.TrimSpace(c.Query("category")),
		Tag:       strings.TrimSpace(c.Query("tag")),
		Search:    strings.TrimSpace(c.Query("search")),
		Featured:  parseBoolQuery(c, "featured"),
		Published: &published,
		Page:      parsePositiveInt(c.DefaultQuery("page", "1"), 1),
		PerPage:   parsePositiveInt(c.Query("per_page"), 9),
	})
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListBlogCategories 返回分类表以及已发布文章实际用到的分类。
func (a *API) ListBlogCategories(c *gin.Context) {
	rows, err := a.posts.ListCategoryRows()
	if err != nil {
		respondInternal(c, err)
		return
	}
	inUse, err := a.posts.ListCategories()
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": rows, "in_use": inUse})
}

// ShowPost 按 slug 返回已发布文章及渲染后的 HTML，并累加浏览量。
func (a *API) ShowPost(c *gin.Context) {
	post, err := a.posts.GetBySlug(c.Param("slug"))
	if err != nil {
		respondInternal(c, err)
		return
	}
	if post == nil || !post.Published {
		respondError(c, http.StatusNotFound, "文章不存在")
		return
	}

	rendered, err := renderMarkdown(post.Content)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "渲染文章失败")
		return
	}

	a.posts.IncrementViews(post.ID)
	post.ViewCount++

	c.JSON(http.StatusOK, gin.H{"post": post, "html": rendered})
}

// LikePost 为已发布文章点赞。
func (a *API) LikePost(c *gin.Context) {
	post, err := a.posts.GetBySlug(c.Param("slug"))
	if err != nil {
		respondInternal(c, err)
		return
	}
	if post == nil || !post.Published {
		respondError(c, http.StatusNotFound, "文章不存在")
		return
	}

	count, err := a.posts.Like(post.ID)
	if err != nil {
		a.respondPostError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"like_count": count})
}

// ListPosts 返回后台文章列表，包括草稿。
func (a *API) ListPosts(c *gin.Context) {
	result, err := a.posts.List(service.PostFilter{
		Category:  strings.TrimSpace(c.Query("category")),
		Tag:       strings.TrimSpace(c.Query("tag")),
		Search:    strings.TrimSpace(c.Query("search")),
		Published: parseBoolQuery(c, "published"),
		Featured:  parseBoolQuery(c, "featured"),
		Page:      parsePositiveInt(c.DefaultQuery("page", "1"), 1),
		PerPage:   parsePositiveInt(c.Query("per_page"), 20),
	})
	if err != nil {
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetPost 返回单篇文章。
func (a *API) GetPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的文章ID")
		return
	}

	post, err := a.posts.Get(id)
	if err != nil {
		respondInternal(c, err)
		return
	}
	if post == nil {
		respondError(c, http.StatusNotFound, "文章不存在")
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// CreatePost 创建文章，默认为草稿。
func (a *API) CreatePost(c *gin.Context) {
	var payload postPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	post, err := a.posts.Create(payload.toInput())
	if err != nil {
		a.respondPostError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "文章已创建", "post": post})
}

// UpdatePost 更新文章。
func (a *API) UpdatePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的文章ID")
		return
	}

	var payload postPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	post, err := a.posts.Update(id, payload.toInput())
	if err != nil {
		a.respondPostError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "文章已更新", "post": post})
}

// DeletePost 删除文章。
func (a *API) DeletePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的文章ID")
		return
	}

	post, err := a.posts.Get(id)
	if err != nil {
		respondInternal(c, err)
		return
	}
	if post == nil {
		a.respondPostError(c, service.ErrPostNotFound)
		return
	}

	if err := a.posts.Delete(id); err != nil {
		a.respondPostError(c, err)
		return
	}
	a.removeUploadedImage(c, post.FeaturedImage)
	c.JSON(http.StatusOK, gin.H{"message": "文章已删除"})
}

func (a *API) respondPostError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		respondError(c, http.StatusNotFound, "文章不存在")
	case errors.Is(err, service.ErrPostTitleRequired):
		respondError(c, http.StatusBadRequest, "请填写文章标题")
	case errors.Is(err, service.ErrPostContentRequired):
		respondError(c, http.StatusBadRequest, "请填写文章内容")
	case errors.Is(err, service.ErrPostSlugInvalid):
		respondError(c, http.StatusBadRequest, "文章链接只能包含小写字母、数字和连字符")
	case errors.Is(err, service.ErrPostSlugTaken):
		respondError(c, http.StatusConflict, "文章链接已被占用")
	default:
		respondInternal(c, err)
	}
}
