package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"social_media/internal/api/handlers"
	"social_media/internal/middleware"
	"social_media/internal/service"
)

// NewRouter 建立掛好中間件與所有路由的 gin.Engine
func NewRouter(services *service.Services, metrics *middleware.Metrics, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.Logger(log),
		metrics.Middleware(),
	)
	SetupRoutes(r, services, metrics)
	return r
}

func SetupRoutes(r *gin.Engine, services *service.Services, metrics *middleware.Metrics) {
	// 初始化 handlers
	accountHandler := handlers.NewAccountHandler(services.Account)
	messageHandler := handlers.NewMessageHandler(services.Message)
	feedHandler := handlers.NewFeedHandler(services.Feed)

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	// 帳號
	r.POST("/register", accountHandler.Register)
	r.POST("/login", accountHandler.Login)

	// 訊息
	r.POST("/messages", messageHandler.Create)
	r.GET("/messages", messageHandler.ListAll)
	r.GET("/messages/ws", feedHandler.Subscribe)
	r.GET("/messages/:messageId", messageHandler.Get)
	r.PATCH("/messages/:messageId", messageHandler.UpdateText)
	r.DELETE("/messages/:messageId", messageHandler.Delete)
	r.GET("/accounts/:accountId/messages", messageHandler.ListByAccount)

	// 健康檢查與指標
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET(middleware.MetricsPath, gin.WrapH(metrics.Handler()))
}
