package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/portfolio/internal/db"
	"github.com/portfolio/internal/service"
)

type artworkPayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	Category    string   `json:"category"`
	Subcategory string   `json:"subcategory"`
	Year        *int     `json:"year"`
	Medium      string   `json:"medium"`
	Dimensions  string   `json:"dimensions"`
	Camera      string   `json:"camera"`
	Settings    string   `json:"settings"`
	Location    string   `json:"location"`
	ModelID     string   `json:"model_id"`
	Tags        []string `json:"tags"`
	Featured    bool     `json:"featured"`
}

func (p artworkPayload) toInput() service.ArtworkInput {
	return service.ArtworkInput{
		Title:       p.Title,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Category:    p.Category,
		Subcategory: p.Subcategory,
		Year:        p.Year,
		Medium:      p.Medium,
		Dimensions:  p.Dimensions,
		Camera:      p.Camera,
		Settings:    p.Settings,
		Location:    p.Location,
		ModelID:     p.ModelID,
		Tags:        p.Tags,
		Featured:    p.Featured,
	}
}

// ListWork 返回某个作品集（2d、3d、photography）。
func (a *API) ListWork(c *gin.Context) {
	result, err := a.artworks.List(service.ArtworkFilter{
		Category:    c.Param("category"),
		Subcategory: strings.TrimSpace(c.Query("subcategory")),
		Tag:         strings.TrimSpace(c.Query("tag")),
		Featured:    parseBoolQuery(c, "featured"),
		Page:        parsePositiveInt(c.DefaultQuery("page", "1"), 1),
		PerPage:     parsePositiveInt(c.Query("per_page"), 24),
	})
	if err != nil {
		if errors.Is(err, service.ErrArtworkCategoryInvalid) {
			respondError(c, http.StatusNotFound, "作品集不存在")
			return
		}
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListWorkSubcategories 返回作品集下的子分类。
func (a *API) ListWorkSubcategories(c *gin.Context) {
	subcategories, err := a.artworks.Subcategories(c.Param("category"))
	if err != nil {
		if errors.Is(err, service.ErrArtworkCategoryInvalid) {
			respondError(c, http.StatusNotFound, "作品集不存在")
			return
		}
		respondInternal(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subcategories": subcategories})
}

// ShowArtwork 返回作品详情并累加浏览量，3D 作品附带模型嵌入地址。
func (a *API) ShowArtwork(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的作品ID")
		return
	}

	item, err := a.artworks.Get(id)
	if err != nil {
		respondInternal(c, err)
		return
	}
	if item == nil {
		respondError(c, http.StatusNotFound, "作品不存在")
		return
	}

	a.artworks.IncrementViews(item.ID)
	item.ViewCount++

	payload := gin.H{"artwork": item}
	if item.Category == db.ArtworkCategory3D {
		if embed := modelEmbedURL(item.ModelID); embed != "" {
			payload["embed_url"] = embed
		}
	}
	c.JSON(http.StatusOK, payload)
}

// LikeArtwork 为作品点赞。
func (a *API) LikeArtwork(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的作品ID")
		return
	}

	count, err := a.artworks.Like(id)
	if err != nil {
		a.respondArtworkError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"like_count": count})
}

// ListArtworks 返回后台作品列表，可按分类筛选。
func (a *API) ListArtworks(c *gin.Context) {
	a.listArtworks(c, strings.TrimSpace(c.Query("category")))
}

// ListPhotos 是摄影作品的后台列表。
func (a *API) ListPhotos(c *gin.Context) {
	a.listArtworks(c, db.ArtworkCategoryPhotography)
}

func (a *API) listArtworks(c *gin.Context, category string) {
	result, err := a.artworks.List(service.ArtworkFilter{
		Category:    category,
		Subcategory: strings.TrimSpace(c.Query("subcategory")),
		Tag:         strings.TrimSpace(c.Query("tag")),
		Featured:    parseBoolQuery(c, "featured"),
		Page:        parsePositiveInt(c.DefaultQuery("page", "1"), 1),
		PerPage:     parsePositiveInt(c.Query("per_page"), 24),
	})
	if err != nil {
		a.respondArtworkError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetArtwork 返回单个作品。
func (a *API) GetArtwork(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的作品ID")
		return
	}

	item, err := a.artworks.Get(id)
	if err != nil {
		respondInternal(c, err)
		return
	}
	if item == nil {
		respondError(c, http.StatusNotFound, "作品不存在")
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": item})
}

// CreateArtwork 创建作品。
func (a *API) CreateArtwork(c *gin.Context) {
	var payload artworkPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}
	a.createArtwork(c, payload.toInput())
}

// CreatePhoto 创建摄影作品，分类固定为 photography。
func (a *API) CreatePhoto(c *gin.Context) {
	var payload artworkPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}
	input := payload.toInput()
	input.Category = db.ArtworkCategoryPhotography
	a.createArtwork(c, input)
}

func (a *API) createArtwork(c *gin.Context, input service.ArtworkInput) {
	item, err := a.artworks.Create(input)
	if err != nil {
		a.respondArtworkError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "作品已创建", "item": item})
}

// UpdateArtwork 更新作品。
func (a *API) UpdateArtwork(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的作品ID")
		return
	}

	var payload artworkPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	item, err := a.artworks.Update(id, payload.toInput())
	if err != nil {
		a.respondArtworkError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "作品已更新", "item": item})
}

// DeleteArtwork 删除作品。
func (a *API) DeleteArtwork(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的作品ID")
		return
	}

	item, err := a.artworks.Get(id)
	if err != nil {
		respondInternal(c, err)
		return
	}
	if item == nil {
		a.respondArtworkError(c, service.ErrArtworkNotFound)
		return
	}

	if err := a.artworks.Delete(id); err != nil {
		a.respondArtworkError(c, err)
		return
	}
	a.removeUploadedImage(c, item.ImageURL)
	c.JSON(http.StatusOK, gin.H{"message": "作品已删除"})
}

func (a *API) respondArtworkError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrArtworkNotFound):
		respondError(c, http.StatusNotFound, "作品不存在")
	case errors.Is(err, service.ErrArtworkTitleRequired):
		respondError(c, http.StatusBadRequest, "请填写作品标题")
	case errors.Is(err, service.ErrArtworkImageMissing):
		respondError(c, http.StatusBadRequest, "请上传作品图片")
	case errors.Is(err, service.ErrArtworkCategoryInvalid):
		respondError(c, http.StatusBadRequest, "作品分类必须是 3d、2d 或 photography")
	default:
		respondInternal(c, err)
	}
}
