package handler

import (
	"ramen-log/internal/service"
	"ramen-log/pkg/response"

	"github.com/gin-gonic/gin"
)

// RamenLogHandler 拉面记录处理器
type RamenLogHandler struct {
	service *service.RamenLogService
}

// NewRamenLogHandler 创建RamenLogHandler实例
func NewRamenLogHandler(s *service.RamenLogService) *RamenLogHandler {
	return &RamenLogHandler{service: s}
}

// Create 新建记录
func (h *RamenLogHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var in service.RamenLogInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	log, err := h.service.Create(userID, in)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, "记录已保存", response.FilterRamenLog(log))
}

// List 我的记录
func (h *RamenLogHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	logs, err := h.service.ListMine(userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterRamenLogs(logs))
}

// Get 单条记录
func (h *RamenLogHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	log, err := h.service.Get(userID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterRamenLog(log))
}

// Delete 删除记录
func (h *RamenLogHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(userID, id); err != nil {
		writeError(c, err)
		return
	}
	response.NoContent(c)
}
