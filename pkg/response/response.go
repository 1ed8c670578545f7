package response

import (
	"net/http"
	"time"

	"ramen-log/internal/model"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`           // 状态码：0表示成功，其他为HTTP状态码
	Message string      `json:"message"`        // 响应消息
	Data    interface{} `json:"data,omitempty"` // 响应数据
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带自定义消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// Created 201 资源已创建
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// NoContent 204 无响应体
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error 错误响应，HTTP状态码与业务码一致
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Response{
		Code:    status,
		Message: message,
	})
}

// BadRequest 400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized 401错误
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message)
}

// Forbidden 403错误
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message)
}

// NotFound 404错误
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// Conflict 409错误
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

// InternalError 500错误
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// UserBrief 对外公开的用户信息
type UserBrief struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// FilterUserInfo 过滤用户信息，隐藏敏感字段
func FilterUserInfo(user *model.User) *UserBrief {
	if user == nil {
		return nil
	}
	return &UserBrief{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

// AuthResponse 注册/登录响应
type AuthResponse struct {
	User        *UserBrief `json:"user"`
	AccessToken string     `json:"access_token"`
}

// RelationshipInfo 关注关系输出字段
type RelationshipInfo struct {
	ID        uint       `json:"id"`
	Follower  *UserBrief `json:"follower"`
	Followed  *UserBrief `json:"followed"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// FilterRelationship 转换关注关系
func FilterRelationship(rel *model.FollowRelationship) *RelationshipInfo {
	if rel == nil {
		return nil
	}
	info := &RelationshipInfo{
		ID:        rel.ID,
		Status:    string(rel.Status),
		CreatedAt: rel.CreatedAt,
		UpdatedAt: rel.UpdatedAt,
	}
	if rel.Follower.ID != 0 {
		info.Follower = FilterUserInfo(&rel.Follower)
	} else {
		info.Follower = &UserBrief{ID: rel.FollowerID}
	}
	if rel.Followed.ID != 0 {
		info.Followed = FilterUserInfo(&rel.Followed)
	} else {
		info.Followed = &UserBrief{ID: rel.FollowedID}
	}
	return info
}

// FilterRelationships 批量转换关注关系
func FilterRelationships(rels []*model.FollowRelationship) []*RelationshipInfo {
	infos := make([]*RelationshipInfo, 0, len(rels))
	for _, rel := range rels {
		infos = append(infos, FilterRelationship(rel))
	}
	return infos
}

// IkitaiInfo イキタイ状态输出字段
type IkitaiInfo struct {
	UserID    uint       `json:"user_id"`
	User      *UserBrief `json:"user,omitempty"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// FilterIkitai 转换イキタイ状态
func FilterIkitai(s *model.IkitaiStatus) *IkitaiInfo {
	if s == nil {
		return nil
	}
	info := &IkitaiInfo{
		UserID:    s.UserID,
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
	}
	if s.User.ID != 0 {
		info.User = FilterUserInfo(&s.User)
	}
	return info
}

// FilterIkitaiList 批量转换イキタイ状态
func FilterIkitaiList(statuses []*model.IkitaiStatus) []*IkitaiInfo {
	infos := make([]*IkitaiInfo, 0, len(statuses))
	for _, s := range statuses {
		infos = append(infos, FilterIkitai(s))
	}
	return infos
}

// RamenLogInfo 拉面记录输出字段
type RamenLogInfo struct {
	ID             uint       `json:"id"`
	User           *UserBrief `json:"user"`
	ShopName       string     `json:"shop_name"`
	OrderedItem    string     `json:"ordered_item"`
	NoodleHardness string     `json:"noodle_hardness"`
	Toppings       string     `json:"toppings"`
	Rating         *float64   `json:"rating"`
	VisitedAt      *time.Time `json:"visited_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// FilterRamenLog 转换拉面记录
func FilterRamenLog(l *model.RamenLog) *RamenLogInfo {
	if l == nil {
		return nil
	}
	info := &RamenLogInfo{
		ID:             l.ID,
		ShopName:       l.ShopName,
		OrderedItem:    l.OrderedItem,
		NoodleHardness: l.NoodleHardness,
		Toppings:       l.Toppings,
		Rating:         l.Rating,
		VisitedAt:      l.VisitedAt,
		CreatedAt:      l.CreatedAt,
	}
	if l.User.ID != 0 {
		info.User = FilterUserInfo(&l.User)
	} else {
		info.User = &UserBrief{ID: l.UserID}
	}
	return info
}

// FilterRamenLogs 批量转换拉面记录
func FilterRamenLogs(logs []*model.RamenLog) []*RamenLogInfo {
	infos := make([]*RamenLogInfo, 0, len(logs))
	for _, l := range logs {
		infos = append(infos, FilterRamenLog(l))
	}
	return infos
}
