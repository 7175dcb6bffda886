package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"social_media/internal/api"
	"social_media/internal/middleware"
	"social_media/internal/redis"
	"social_media/internal/repository"
	"social_media/internal/service"
	"social_media/internal/storage"
	"social_media/pkg/config"
	"social_media/pkg/logger"
)

func main() {
	// 載入應用程式配置
	// SOCIAL_CONFIG 可指定設定檔路徑，未指定時在預設位置尋找 config.yaml
	cfg, err := config.Load(os.Getenv("SOCIAL_CONFIG"))
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		logrus.Fatalf("Failed to init logger: %v", err)
	}
	gin.SetMode(cfg.Server.Mode)

	// 初始化資料庫連接
	db, err := storage.Open(cfg.DB, log)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	// 確保在程序結束時關閉數據庫連接
	defer db.Close()

	// 自動遷移資料庫結構，僅在設定開啟時執行
	if cfg.DB.AutoMigrate {
		if err := db.Migrate(); err != nil {
			log.Fatalf("Failed to auto migrate database: %v", err)
		}
	}

	// Redis 中繼為選用，讓多個實例共享訊息動態
	var relay service.Relay
	if cfg.Redis.Enabled() {
		client, err := redis.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect redis: %v", err)
		}
		defer client.Close()
		relay = client
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 初始化 repositories 與 services
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, relay, log)

	// 開始接受請求前先確認 relay 訂閱成功
	if err := services.Feed.Start(ctx); err != nil {
		log.Fatalf("Failed to start message feed: %v", err)
	}

	metrics := middleware.NewMetrics("social_media")
	metrics.RegisterGaugeFunc("feed", "clients", "Current number of feed subscribers.", func() float64 {
		return float64(services.Feed.ClientCount())
	})

	r := api.NewRouter(services, metrics, log)
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("server shutdown")
		}
	}()

	// 啟動伺服器
	log.WithField("address", cfg.Server.Address).Info("server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Failed to run server: %v", err)
	}
}
