package handler

import (
	"ramen-log/internal/service"
	"ramen-log/pkg/response"

	"github.com/gin-gonic/gin"
)

// RelationshipHandler 关注关系处理器
type RelationshipHandler struct {
	service *service.RelationshipService
}

// NewRelationshipHandler 创建RelationshipHandler实例
func NewRelationshipHandler(s *service.RelationshipService) *RelationshipHandler {
	return &RelationshipHandler{service: s}
}

// Follow 发起关注请求
func (h *RelationshipHandler) Follow(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	type req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	rel, err := h.service.SendFollowRequest(userID, r.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, "关注请求已发送", response.FilterRelationship(rel))
}

// Resolve 审批关注请求，路径参数为请求者ID
func (h *RelationshipHandler) Resolve(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	requesterID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	type req struct {
		Action string `json:"action" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	action, err := service.ParseFollowAction(r.Action)
	if err != nil {
		writeError(c, err)
		return
	}

	rel, msg, err := h.service.ResolveFollowRequest(userID, requesterID, action)
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, msg, response.FilterRelationship(rel))
}

// Unfollow 取消关注
func (h *RelationshipHandler) Unfollow(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	targetID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	if err := h.service.Unfollow(userID, targetID); err != nil {
		writeError(c, err)
		return
	}
	response.NoContent(c)
}

// Following 我关注的人
func (h *RelationshipHandler) Following(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	rels, err := h.service.ListFollowing(userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterRelationships(rels))
}

// Followers 关注我的人
func (h *RelationshipHandler) Followers(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	rels, err := h.service.ListFollowers(userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterRelationships(rels))
}

// PendingRequests 待我审批的请求
func (h *RelationshipHandler) PendingRequests(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	rels, err := h.service.ListPendingRequests(userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterRelationships(rels))
}

// PendingCount 待审批请求数
func (h *RelationshipHandler) PendingCount(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	count, err := h.service.CountPendingRequests(userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"count": count})
}
