package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pgease-sync/internal/store"
)

// OccupancySummary 租户入住率摘要（写入缓存供其他服务消费）
type OccupancySummary struct {
	TenantID     string    `json:"tenant_id"`
	Rooms        int       `json:"rooms"`
	TotalBeds    int       `json:"total_beds"`
	OccupiedBeds int       `json:"occupied_beds"`
	Residents    int       `json:"residents"`
	GeneratedAt  time.Time `json:"generated_at"`
}

// BuildOccupancy 从快照汇总一个租户的入住率
func BuildOccupancy(snap *store.Snapshot, tenantID string) OccupancySummary {
	sum := OccupancySummary{
		TenantID:    tenantID,
		GeneratedAt: time.Now().UTC(),
	}
	for _, room := range snap.RoomsByTenant(tenantID) {
		sum.Rooms++
		sum.TotalBeds += room.TotalBeds
		sum.OccupiedBeds += room.OccupiedBeds
	}
	sum.Residents = len(snap.ResidentsByTenant(tenantID))
	return sum
}

// Publisher 将入住率摘要写入 KV 缓存
type Publisher struct {
	kv     KV
	ttl    time.Duration
	logger *zap.Logger
}

// NewPublisher 创建缓存发布器
func NewPublisher(kv KV, ttl time.Duration, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		kv:     kv,
		ttl:    ttl,
		logger: logger,
	}
}

// PublishOccupancy 写入一个租户的入住率摘要
func (p *Publisher) PublishOccupancy(ctx context.Context, sum OccupancySummary) error {
	key := fmt.Sprintf("pgease:occupancy:%s", sum.TenantID)

	jsonData, err := json.Marshal(sum)
	if err != nil {
		return fmt.Errorf("failed to marshal occupancy summary: %w", err)
	}

	if err := p.kv.Set(ctx, key, string(jsonData), p.ttl); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	p.logger.Debug("Published occupancy summary",
		zap.String("tenant_id", sum.TenantID),
		zap.String("key", key),
		zap.Int("rooms", sum.Rooms),
	)
	return nil
}
