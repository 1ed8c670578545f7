package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers 汇总所有业务处理器
type Handlers struct {
	User         *UserHandler
	Relationship *RelationshipHandler
	Ikitai       *IkitaiHandler
	RamenLog     *RamenLogHandler
}

// RegisterRoutes 在 /api/v1 下注册业务路由，auth 为JWT中间件
func RegisterRoutes(v1 *gin.RouterGroup, auth gin.HandlerFunc, h Handlers) {
	users := v1.Group("/users")
	{
		// 公开接口（无需认证）
		users.POST("/register", h.User.Register)
		users.POST("/login", h.User.Login)

		authUsers := users.Group("")
		authUsers.Use(auth)
		{
			authUsers.POST("/token/refresh", h.User.RefreshToken)
			authUsers.GET("/profile", h.User.GetProfile)
			authUsers.GET("/:user_id", h.User.GetUser)
			authUsers.GET("/:user_id/ramen-logs", h.User.GetUserRamenLogs)
		}
	}

	relationships := v1.Group("/relationships")
	relationships.Use(auth)
	{
		relationships.POST("/follow", h.Relationship.Follow)
		relationships.PATCH("/approve/:user_id", h.Relationship.Resolve)
		relationships.DELETE("/unfollow/:user_id", h.Relationship.Unfollow)
		relationships.GET("/following", h.Relationship.Following)
		relationships.GET("/followers", h.Relationship.Followers)
		relationships.GET("/pending-requests", h.Relationship.PendingRequests)
		relationships.GET("/pending-requests/count", h.Relationship.PendingCount)

		relationships.GET("/ikitai", h.Ikitai.Get)
		relationships.POST("/ikitai", h.Ikitai.Set)
		relationships.DELETE("/ikitai", h.Ikitai.Clear)
		relationships.GET("/ikitai/friends", h.Ikitai.Friends)
	}

	ramen := v1.Group("/ramen")
	ramen.Use(auth)
	{
		ramen.POST("/logs", h.RamenLog.Create)
		ramen.GET("/logs", h.RamenLog.List)
		ramen.GET("/logs/:id", h.RamenLog.Get)
		ramen.DELETE("/logs/:id", h.RamenLog.Delete)
	}
}
