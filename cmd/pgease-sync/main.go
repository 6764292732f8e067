package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"pgease-sync/internal/api"
	"pgease-sync/internal/cache"
	"pgease-sync/internal/config"
	"pgease-sync/internal/httpapi"
	logpkg "pgease-sync/internal/logger"
	"pgease-sync/internal/service"
	"pgease-sync/internal/store"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	log, err := logpkg.NewLogger(cfg.Log.Level, cfg.Log.Format, "pgease-sync")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting pgease-sync",
		zap.String("api_base_url", cfg.API.BaseURL),
		zap.String("tenant_id", cfg.Sync.TenantID),
	)

	// 平台 API 客户端与本地存储
	remote := api.NewClient(cfg.API.BaseURL, cfg.API.Token, cfg.API.Timeout, log)
	st := store.New(remote, log)

	// Redis 发布器（可选）
	var publisher *cache.Publisher
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		publisher = cache.NewPublisher(cache.NewRedisKV(redisClient), cfg.Redis.TTL, log)
	}

	svc := service.NewSyncService(cfg, st, publisher, log)

	// 创建上下文
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 监听系统信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 启动同步循环
	errChan := make(chan error, 1)
	go func() {
		if err := svc.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// 启动只读观察接口
	httpServer := httpapi.NewServer(st, log).Router()
	go func() {
		if err := httpServer.Start(cfg.HTTP.Addr); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// 等待信号或错误
	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	case err := <-errChan:
		log.Error("Service error", zap.Error(err))
		cancel()
	}

	// 停止服务
	if err := httpServer.Shutdown(context.Background()); err != nil {
		log.Error("Error stopping http server", zap.Error(err))
	}
	if err := svc.Stop(context.Background()); err != nil {
		log.Error("Error stopping sync service", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}

	log.Info("Service stopped")
}
