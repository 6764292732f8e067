package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pgease-sync/internal/cache"
	"pgease-sync/internal/config"
	"pgease-sync/internal/store"
)

// SyncService 同步代理：周期性全量刷新本地快照，并在快照变化时发布入住率摘要
type SyncService struct {
	config    *config.Config
	store     *store.Store
	publisher *cache.Publisher // nil 表示未启用缓存发布
	logger    *zap.Logger
}

// NewSyncService 创建同步代理
func NewSyncService(cfg *config.Config, st *store.Store, publisher *cache.Publisher, logger *zap.Logger) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{
		config:    cfg,
		store:     st,
		publisher: publisher,
		logger:    logger,
	}
}

// Store 返回底层存储（只读观察接口使用）
func (s *SyncService) Store() *store.Store {
	return s.store
}

// Start 启动刷新循环，阻塞直到 ctx 取消
func (s *SyncService) Start(ctx context.Context) error {
	interval := s.config.Sync.Interval
	if interval <= 0 {
		interval = 60 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("Starting sync loop",
		zap.String("tenant_id", s.config.Sync.TenantID),
		zap.Duration("interval", interval),
	)

	// 首次全量刷新
	s.store.Refresh(ctx, s.config.Sync.TenantID)
	s.publish(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.store.Refresh(ctx, s.config.Sync.TenantID)
		case <-s.store.Changes():
			s.publish(ctx)
		}
	}
}

// Stop 停止服务
func (s *SyncService) Stop(ctx context.Context) error {
	s.logger.Info("Sync service stopped")
	return nil
}

// publish 发布当前快照的入住率摘要
func (s *SyncService) publish(ctx context.Context) {
	if s.publisher == nil {
		return
	}
	snap := s.store.Snapshot()
	sum := cache.BuildOccupancy(snap, s.config.Sync.TenantID)
	if err := s.publisher.PublishOccupancy(ctx, sum); err != nil {
		s.logger.Warn("Failed to publish occupancy summary", zap.Error(err))
	}
}
