package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/portfolio/internal/service"
)

type contactPayload struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Subject  string `json:"subject" form:"subject"`
	Message  string `json:"message" form:"message"`
	Budget   string `json:"budget" form:"budget"`
	Timeline string `json:"timeline" form:"timeline"`
}

type contactStatusPayload struct {
	Status string `json:"status"`
}

// SubmitContact 保存前台联系表单。
func (a *API) SubmitContact(c *gin.Context) {
	var payload contactPayload
	if err := c.ShouldBind(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "请求参数不合法")
		return
	}

	submission, err := a.contacts.Submit(service.ContactInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Subject:  payload.Subject,
		Message:  payload.Message,
		Budget:   payload.Budget,
		Timeline: payload.Timeline,
	})
	if err != nil {
		var verr *service.ContactValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "请检查表单内容", "fields": verr.Fields})
			return
		}
		respondInternal(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "留言已收到", "id": submission.ID, "status": submission.Status})
}

// ListContacts 返回留言列表，可按状态筛选。
func (a *API) ListContacts(c *gin.Context) {
	result, err := a.contacts.List(service.ContactFilter{
		Status:  c.Query("status"),
		Page:    parsePositiveInt(c.DefaultQuery("page", "1"), 1),
		PerPage: parsePositiveInt(c.Query("per_page"), 20),
	})
	if err != nil {
		a.respondContactError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetContact 返回单条留言。
func (a *API) GetContact(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的留言ID")
		return
	}

	submission, err := a.contacts.Get(id)
	if err != nil {
		respondInternal(c, err)
		return
	}
	if submission == nil {
		respondError(c, http.StatusNotFound, "留言不存在")
		return
	}
	c.JSON(http.StatusOK, gin.H{"item": submission})
}

// UpdateContactStatus 修改留言处理状态。
func (a *API) UpdateContactStatus(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的留言ID")
		return
	}

	var payload contactStatusPayload
	if !bindJSON(c, &payload, "请求参数不合法") {
		return
	}

	submission, err := a.contacts.UpdateStatus(id, payload.Status)
	if err != nil {
		a.respondContactError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "状态已更新", "item": submission})
}

// DeleteContact 删除留言。
func (a *API) DeleteContact(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "无效的留言ID")
		return
	}

	if err := a.contacts.Delete(id); err != nil {
		a.respondContactError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "留言已删除"})
}

func (a *API) respondContactError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrContactNotFound):
		respondError(c, http.StatusNotFound, "留言不存在")
	case errors.Is(err, service.ErrContactStatusInvalid):
		respondError(c, http.StatusBadRequest, "留言状态无效")
	default:
		respondInternal(c, err)
	}
}
