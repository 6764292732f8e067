package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pgease-sync/internal/domain"
	"pgease-sync/internal/metrics"
)

// CreateRoom runs the three-phase optimistic create: the room is visible in
// the snapshot under a temporary id before the remote call resolves, then the
// temp row is atomically replaced by the server-confirmed one (or removed on
// failure).
func (s *Store) CreateRoom(ctx context.Context, tenantID string, req CreateRoomRequest) (domain.Room, error) {
	tempID := newTempID()
	bak := newBackup()

	// Phase 1: speculate.
	_ = s.update(func(next *Snapshot) error {
		bak.room(next, tempID)
		bak.roomIndexFor(next, tenantID)
		next.rooms[tempID] = domain.Room{
			RoomID:     tempID,
			TenantID:   tenantID,
			RoomNumber: req.RoomNumber,
			RoomType:   req.RoomType,
			TotalBeds:  req.TotalBeds,
			Details:    req.Details,
		}
		appendID(next.roomsByTenant, tenantID, tempID)
		return nil
	})
	s.logger.Debug("room create speculated",
		zap.String("tenant_id", tenantID),
		zap.String("temp_id", tempID),
		zap.String("room_number", req.RoomNumber),
	)

	// Phase 2: commit attempt.
	confirmed, err := s.remote.CreateRoom(ctx, tenantID, req)
	if err != nil {
		// Phase 3b: rollback.
		_ = s.update(func(next *Snapshot) error {
			bak.restore(next)
			next.roomsError = err.Error()
			return nil
		})
		metrics.RecordMutation("create_room", metrics.OutcomeRollback)
		s.logger.Warn("room create rolled back",
			zap.String("tenant_id", tenantID),
			zap.String("temp_id", tempID),
			zap.Error(err),
		)
		return domain.Room{}, fmt.Errorf("create room: %w", err)
	}

	// Phase 3a: reconcile temp id with the server-assigned one.
	if confirmed.TenantID == "" {
		confirmed.TenantID = tenantID
	}
	var out domain.Room
	_ = s.update(func(next *Snapshot) error {
		delete(next.rooms, tempID)
		next.rooms[confirmed.RoomID] = confirmed.Clone()
		replaceID(next.roomsByTenant, tenantID, tempID, confirmed.RoomID)
		next.lastSyncAt = s.nowFn()
		out = confirmed.Clone()
		return nil
	})
	metrics.RecordMutation("create_room", metrics.OutcomeReconciled)
	s.logger.Info("room created",
		zap.String("tenant_id", tenantID),
		zap.String("room_id", confirmed.RoomID),
	)
	return out, nil
}

// UpdateRoom applies a field patch optimistically and reconciles against the
// server row. Referencing an unknown room fails fast with ErrNotFound before
// any remote call.
func (s *Store) UpdateRoom(ctx context.Context, tenantID, roomID string, patch RoomPatch) (domain.Room, error) {
	bak := newBackup()

	// Phase 1: precondition check and speculation in one transition.
	err := s.update(func(next *Snapshot) error {
		current, ok := next.rooms[roomID]
		if !ok || current.TenantID != tenantID {
			return fmt.Errorf("update room %q: %w", roomID, ErrNotFound)
		}
		bak.room(next, roomID)
		next.rooms[roomID] = applyRoomPatch(current, patch)
		return nil
	})
	if err != nil {
		return domain.Room{}, err
	}

	// Phase 2.
	confirmed, err := s.remote.UpdateRoom(ctx, tenantID, roomID, patch)
	if err != nil {
		// Phase 3b.
		_ = s.update(func(next *Snapshot) error {
			bak.restore(next)
			next.roomsError = err.Error()
			return nil
		})
		metrics.RecordMutation("update_room", metrics.OutcomeRollback)
		s.logger.Warn("room update rolled back",
			zap.String("room_id", roomID),
			zap.Error(err),
		)
		return domain.Room{}, fmt.Errorf("update room %q: %w", roomID, err)
	}

	// Phase 3a: the server row wins. The adapter preserves the embedded
	// student list when the response omits it, so a field patch cannot wipe
	// the denormalized data.
	if confirmed.TenantID == "" {
		confirmed.TenantID = tenantID
	}
	var out domain.Room
	_ = s.update(func(next *Snapshot) error {
		if len(confirmed.Students) == 0 {
			if existing, ok := next.rooms[roomID]; ok {
				confirmed.Students = append([]domain.ResidentSummary(nil), existing.Students...)
			}
		}
		next.rooms[confirmed.RoomID] = confirmed.Clone()
		next.lastSyncAt = s.nowFn()
		out = confirmed.Clone()
		return nil
	})
	metrics.RecordMutation("update_room", metrics.OutcomeReconciled)
	return out, nil
}

func applyRoomPatch(r domain.Room, patch RoomPatch) domain.Room {
	out := r.Clone()
	if patch.RoomNumber != nil {
		out.RoomNumber = *patch.RoomNumber
	}
	if patch.RoomType != nil {
		out.RoomType = *patch.RoomType
	}
	if patch.TotalBeds != nil {
		out.TotalBeds = *patch.TotalBeds
	}
	if patch.Details != nil {
		out.Details = *patch.Details
	}
	return out
}
