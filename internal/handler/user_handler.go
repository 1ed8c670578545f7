package handler

import (
	"ramen-log/internal/service"
	"ramen-log/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *service.UserService
	logs    *service.RamenLogService
}

func NewUserHandler(s *service.UserService, logs *service.RamenLogService) *UserHandler {
	return &UserHandler{service: s, logs: logs}
}

// Register 用户注册
func (h *UserHandler) Register(c *gin.Context) {
	type req struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, token, err := h.service.Register(r.Username, r.Email, r.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, "注册成功", &response.AuthResponse{
		User:        response.FilterUserInfo(user),
		AccessToken: token,
	})
}

// Login 用户登录
func (h *UserHandler) Login(c *gin.Context) {
	type req struct {
		UsernameOrEmail string `json:"usernameOrEmail" binding:"required"`
		Password        string `json:"password" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	user, token, err := h.service.Login(r.UsernameOrEmail, r.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "登录成功", &response.AuthResponse{
		User:        response.FilterUserInfo(user),
		AccessToken: token,
	})
}

// RefreshToken 用当前有效令牌换取新令牌
func (h *UserHandler) RefreshToken(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	user, token, err := h.service.RefreshToken(userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, &response.AuthResponse{
		User:        response.FilterUserInfo(user),
		AccessToken: token,
	})
}

// GetProfile 当前用户资料
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	user, err := h.service.FindByID(userID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterUserInfo(user))
}

// GetUser 按ID查看用户
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	user, err := h.service.FindByID(id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterUserInfo(user))
}

// GetUserRamenLogs 查看指定用户的拉面记录（需已被批准关注）
func (h *UserHandler) GetUserRamenLogs(c *gin.Context) {
	viewerID, ok := currentUser(c)
	if !ok {
		return
	}
	ownerID, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	logs, err := h.logs.ListForViewer(viewerID, ownerID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterRamenLogs(logs))
}
