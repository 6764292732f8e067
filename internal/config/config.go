package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 同步代理配置
type Config struct {
	// 平台 API 配置
	API struct {
		BaseURL string
		Token   string
		Timeout time.Duration
	}

	// 同步配置
	Sync struct {
		// 租户 ID（当前先支持单个租户）
		TenantID string
		// 全量刷新间隔
		Interval time.Duration
	}

	// 只读观察接口
	HTTP struct {
		Addr string
	}

	// Redis 配置（用于发布入住率摘要，可关闭）
	Redis struct {
		Enabled  bool
		Addr     string
		Password string
		DB       int
		// 摘要缓存 TTL
		TTL time.Duration
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置（.env 文件可选，环境变量优先）
func Load() (*Config, error) {
	// .env 不存在时静默忽略
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.API.BaseURL = getEnv("API_BASE_URL", "http://localhost:8080")
	cfg.API.Token = getEnv("API_TOKEN", "")
	cfg.API.Timeout = getDuration("API_TIMEOUT_SECONDS", 15)

	cfg.Sync.TenantID = getEnv("TENANT_ID", "")
	cfg.Sync.Interval = getDuration("REFRESH_INTERVAL_SECONDS", 60)

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8091")

	cfg.Redis.Enabled = getEnv("REDIS_ENABLED", "false") == "true"
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0
	cfg.Redis.TTL = getDuration("CACHE_TTL_SECONDS", 120)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	if cfg.Sync.TenantID == "" {
		return nil, fmt.Errorf("TENANT_ID is required")
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultSeconds int) time.Duration {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil && v > 0 {
		return time.Duration(v) * time.Second
	}
	return time.Duration(defaultSeconds) * time.Second
}
