package store

import (
	"context"

	"go.uber.org/zap"

	"pgease-sync/internal/metrics"
)

// Refresh runs every bulk loader for the tenant. Single-flight: if a refresh
// is already running for this store the call returns immediately without
// issuing a second set of loads. Loader errors are recorded on their own
// error fields and never abort the remaining loaders.
func (s *Store) Refresh(ctx context.Context, tenantID string) {
	s.mu.Lock()
	if s.refreshing {
		s.mu.Unlock()
		s.logger.Debug("refresh already in flight, skipping",
			zap.String("tenant_id", tenantID),
		)
		return
	}
	s.refreshing = true
	s.mu.Unlock()

	metrics.RefreshInFlight.Set(1)
	defer func() {
		s.mu.Lock()
		s.refreshing = false
		s.mu.Unlock()
		metrics.RefreshInFlight.Set(0)
	}()

	failed := false
	if err := s.LoadRooms(ctx, tenantID); err != nil {
		failed = true
	}
	if err := s.LoadMembers(ctx, tenantID, ""); err != nil {
		failed = true
	}

	if failed {
		metrics.RecordRefresh(metrics.OutcomeError)
		s.logger.Warn("refresh finished with errors", zap.String("tenant_id", tenantID))
		return
	}
	metrics.RecordRefresh(metrics.OutcomeOK)
	s.logger.Debug("refresh finished", zap.String("tenant_id", tenantID))
}
