package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ramen-log/config"
	"ramen-log/internal/handler"
	"ramen-log/internal/model"
	"ramen-log/internal/repository"
	"ramen-log/internal/service"
	dbPkg "ramen-log/pkg/db"
	"ramen-log/pkg/jwt"
	"ramen-log/pkg/logger"
	"ramen-log/pkg/metrics"
	"ramen-log/pkg/redis"
	"ramen-log/pkg/response"
	"ramen-log/pkg/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	cfg := config.LoadConfig()

	// 2. 初始化日志系统
	log := logger.InitLogger(cfg.Log)
	defer log.Sync()

	log.Info("=== ramen-log 启动 ===")
	log.Info("服务器配置信息",
		zap.String("port", cfg.Server.Port),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("database_host", cfg.Database.Host),
		zap.Int("database_port", cfg.Database.Port),
		zap.String("database_name", cfg.Database.Database),
		zap.Duration("jwt_expire_time", cfg.JWT.ExpireTime),
		zap.String("log_level", cfg.Log.Level),
		zap.String("timezone", cfg.App.Timezone),
	)

	// 3. 初始化数据库连接
	orm, err := dbPkg.InitDB(cfg.Database)
	if err != nil {
		log.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if err := dbPkg.CloseDB(); err != nil {
			log.Error("关闭数据库连接失败", zap.Error(err))
		}
	}()
	log.Info("数据库连接成功")

	// 3.1 自动迁移表结构
	if err := dbPkg.AutoMigrate(&model.User{}, &model.FollowRelationship{}, &model.IkitaiStatus{}, &model.RamenLog{}); err != nil {
		log.Fatal("自动迁移失败", zap.Error(err))
	}
	log.Info("自动迁移完成")

	// 3.2 Redis 可选，连接失败时降级为仅数据库
	if cfg.Redis.Enabled {
		if err := redis.InitRedis(cfg.Redis); err != nil {
			log.Warn("Redis不可用，缓存与离线通知已禁用", zap.Error(err))
		} else {
			log.Info("Redis连接成功")
			defer func() { _ = redis.Close() }()
		}
	}

	// 3.3 初始化业务服务
	jwtSvc := jwt.NewJWTService(cfg.JWT)
	wsManager := websocket.GetManager()

	userRepo := repository.NewUserRepository(orm)
	relRepo := repository.NewRelationshipRepository(orm)
	ikitaiRepo := repository.NewIkitaiRepository(orm)
	ramenLogRepo := repository.NewRamenLogRepository(orm)

	userSvc := service.NewUserService(userRepo, jwtSvc)
	relSvc := service.NewRelationshipService(relRepo, userRepo, wsManager)
	ikitaiSvc := service.NewIkitaiService(ikitaiRepo, relRepo, wsManager, cfg.App.Location())
	ramenLogSvc := service.NewRamenLogService(ramenLogRepo, userRepo, relSvc)

	// 4. 设置Gin模式
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 5. 创建Gin路由
	router := gin.New()
	router.Use(logger.RequestIDMiddleware())
	router.Use(logger.RequestLogger())
	router.Use(logger.ErrorLoggerMiddleware())
	router.Use(metrics.Middleware())

	// 6. 设置路由
	setupBasicRoutes(router)
	handler.RegisterRoutes(router.Group("/api/v1"), jwtSvc.AuthMiddleware(), handler.Handlers{
		User:         handler.NewUserHandler(userSvc, ramenLogSvc),
		Relationship: handler.NewRelationshipHandler(relSvc),
		Ikitai:       handler.NewIkitaiHandler(ikitaiSvc),
		RamenLog:     handler.NewRamenLogHandler(ramenLogSvc),
	})
	router.GET("/ws", websocket.NewHandler(wsManager, jwtSvc, cfg.WebSocket).Serve)

	// 7. 创建HTTP服务器
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 8. 启动HTTP服务器
	go func() {
		log.Info("HTTP服务器启动", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP服务器启动失败", zap.Error(err))
		}
	}()

	// 9. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("HTTP服务器关闭失败", zap.Error(err))
	}

	log.Info("服务器已安全关闭")
}

// setupBasicRoutes 健康检查与监控
func setupBasicRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		dbStatus := "ok"
		if err := dbPkg.HealthCheck(); err != nil {
			dbStatus = "down"
		}
		redisStatus := "disabled"
		if redis.Enabled() {
			redisStatus = "ok"
			if err := redis.HealthCheck(); err != nil {
				redisStatus = "down"
			}
		}

		status := http.StatusOK
		if dbStatus != "ok" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, response.Response{
			Code:    0,
			Message: "ramen-log",
			Data: gin.H{
				"database": dbStatus,
				"redis":    redisStatus,
				"time":     time.Now().Format(time.RFC3339),
			},
		})
	})

	router.GET("/metrics", metrics.Handler())
}
