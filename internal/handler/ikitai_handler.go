package handler

import (
	"ramen-log/internal/model"
	"ramen-log/internal/service"
	"ramen-log/pkg/response"

	"github.com/gin-gonic/gin"
)

// IkitaiHandler イキタイ状态处理器
type IkitaiHandler struct {
	service *service.IkitaiService
}

// NewIkitaiHandler 创建IkitaiHandler实例
func NewIkitaiHandler(s *service.IkitaiService) *IkitaiHandler {
	return &IkitaiHandler{service: s}
}

// Get 当前状态
func (h *IkitaiHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	status, err := h.service.GetStatus(userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterIkitai(status))
}

// Set 开启状态，新建返回201，覆盖返回200
func (h *IkitaiHandler) Set(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	// 经纬度用指针区分未传与0
	type req struct {
		Latitude     *float64 `json:"latitude" binding:"required"`
		Longitude    *float64 `json:"longitude" binding:"required"`
		DurationType string   `json:"duration_type" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	status, result, err := h.service.SetStatus(userID, *r.Latitude, *r.Longitude, model.DurationType(r.DurationType))
	if err != nil {
		writeError(c, err)
		return
	}
	if result == service.UpsertCreated {
		response.Created(c, "イキタイ状态已开启", response.FilterIkitai(status))
		return
	}
	response.SuccessWithMessage(c, "イキタイ状态已更新", response.FilterIkitai(status))
}

// Clear 关闭状态
func (h *IkitaiHandler) Clear(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.service.ClearStatus(userID); err != nil {
		writeError(c, err)
		return
	}
	response.NoContent(c)
}

// Friends 关注的人中正在イキタイ的列表
func (h *IkitaiHandler) Friends(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	statuses, err := h.service.ListFriendsStatuses(userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterIkitaiList(statuses))
}
