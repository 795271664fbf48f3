package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/portfolio/internal/service"
)

// UploadImage 处理后台图片上传，表单字段为 file 与 folder。
func (a *API) UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "未找到上传的图片")
		return
	}

	body, err := file.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "读取上传文件失败")
		return
	}
	defer body.Close()

	result, err := a.uploads.Upload(c.Request.Context(), service.UploadRequest{
		Owner:       currentUploader(c),
		Folder:      c.PostForm("folder"),
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Body:        body,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUploadFolderInvalid):
			respondError(c, http.StatusBadRequest, "上传目录无效")
		case errors.Is(err, service.ErrUploadTypeInvalid):
			respondError(c, http.StatusBadRequest, "只允许上传图片文件")
		case errors.Is(err, service.ErrUploadEmpty):
			respondError(c, http.StatusBadRequest, "上传的文件为空")
		case errors.Is(err, service.ErrUploadTooLarge):
			respondError(c, http.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrUploadInProgress):
			respondError(c, http.StatusConflict, "已有上传正在进行")
		default:
			respondInternal(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "上传成功", "data": result})
}

// UploadStatus 返回当前上传者最近一次上传的状态。
func (a *API) UploadStatus(c *gin.Context) {
	c.JSON(http.StatusOK, a.uploads.Status(currentUploader(c)))
}

// removeUploadedImage 在记录删除后清理对应的上传文件，失败只记日志。
func (a *API) removeUploadedImage(c *gin.Context, imageURL string) {
	if strings.TrimSpace(imageURL) == "" {
		return
	}
	if _, err := a.uploads.Remove(c.Request.Context(), imageURL); err != nil {
		log.Printf("[upload] remove %s failed: %v", imageURL, err)
	}
}
