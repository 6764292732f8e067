package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pgease-sync/internal/domain"
	"pgease-sync/internal/metrics"
)

// AssignResidentToRoom moves a resident to newRoomID ("" unassigns). The
// resident's RoomID and the embedded student lists of both the old and new
// room change in one speculative transition and are rolled back together.
//
// If a referenced room is not locally loaded its embedded list is left alone;
// the resident's RoomID still moves and the list catches up on the next room
// load.
func (s *Store) AssignResidentToRoom(ctx context.Context, tenantID, residentID, newRoomID string) error {
	bak := newBackup()

	// Phase 1.
	err := s.update(func(next *Snapshot) error {
		resident, ok := next.residents[residentID]
		if !ok {
			return fmt.Errorf("assign resident %q: %w", residentID, ErrNotFound)
		}
		bak.resident(next, residentID)
		oldRoomID := resident.RoomID

		detachStudent(next, bak, oldRoomID, residentID)
		attachStudent(next, bak, newRoomID, resident)

		resident.RoomID = newRoomID
		next.residents[residentID] = resident
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("resident reassignment speculated",
		zap.String("resident_id", residentID),
		zap.String("new_room_id", newRoomID),
	)

	// Phase 2.
	if err := s.remote.UpdateResidentRoom(ctx, tenantID, residentID, newRoomID); err != nil {
		// Phase 3b: resident and both room lists rewind as one.
		_ = s.update(func(next *Snapshot) error {
			bak.restore(next)
			next.residentsError = err.Error()
			return nil
		})
		metrics.RecordMutation("assign_resident", metrics.OutcomeRollback)
		s.logger.Warn("resident reassignment rolled back",
			zap.String("resident_id", residentID),
			zap.Error(err),
		)
		return fmt.Errorf("assign resident %q: %w", residentID, err)
	}

	// Phase 3a: the speculative state is already the confirmed state.
	_ = s.update(func(next *Snapshot) error {
		next.lastSyncAt = s.nowFn()
		return nil
	})
	metrics.RecordMutation("assign_resident", metrics.OutcomeReconciled)
	return nil
}

// SwapResidents exchanges the room assignments of two residents through the
// remote system's single atomic swap endpoint. Both residents and both rooms
// move in one speculative transition; a failure rewinds all four in one
// combined rollback, so a reader can never observe "A moved but B didn't".
func (s *Store) SwapResidents(ctx context.Context, tenantID, residentAID, residentBID string) error {
	bak := newBackup()

	// Phase 1.
	err := s.update(func(next *Snapshot) error {
		residentA, ok := next.residents[residentAID]
		if !ok {
			return fmt.Errorf("swap resident %q: %w", residentAID, ErrNotFound)
		}
		residentB, ok := next.residents[residentBID]
		if !ok {
			return fmt.Errorf("swap resident %q: %w", residentBID, ErrNotFound)
		}
		bak.resident(next, residentAID)
		bak.resident(next, residentBID)

		roomA, roomB := residentA.RoomID, residentB.RoomID

		detachStudent(next, bak, roomA, residentAID)
		detachStudent(next, bak, roomB, residentBID)
		attachStudent(next, bak, roomB, residentA)
		attachStudent(next, bak, roomA, residentB)

		residentA.RoomID = roomB
		residentB.RoomID = roomA
		next.residents[residentAID] = residentA
		next.residents[residentBID] = residentB
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("resident swap speculated",
		zap.String("resident_a", residentAID),
		zap.String("resident_b", residentBID),
	)

	// Phase 2: one remote transaction, never two separate moves.
	if err := s.remote.SwapResidentRooms(ctx, tenantID, residentAID, residentBID); err != nil {
		// Phase 3b.
		_ = s.update(func(next *Snapshot) error {
			bak.restore(next)
			next.residentsError = err.Error()
			return nil
		})
		metrics.RecordMutation("swap_residents", metrics.OutcomeRollback)
		s.logger.Warn("resident swap rolled back",
			zap.String("resident_a", residentAID),
			zap.String("resident_b", residentBID),
			zap.Error(err),
		)
		return fmt.Errorf("swap residents: %w", err)
	}

	// Phase 3a.
	_ = s.update(func(next *Snapshot) error {
		next.lastSyncAt = s.nowFn()
		return nil
	})
	metrics.RecordMutation("swap_residents", metrics.OutcomeReconciled)
	return nil
}

// detachStudent removes the resident's summary from roomID's embedded list,
// if that room is loaded. Captures the room's prior value first.
func detachStudent(next *Snapshot, bak *backup, roomID, residentID string) {
	if roomID == "" {
		return
	}
	room, ok := next.rooms[roomID]
	if !ok {
		return
	}
	bak.room(next, roomID)
	if !room.HasStudent(residentID) {
		return
	}
	students := make([]domain.ResidentSummary, 0, len(room.Students))
	for _, st := range room.Students {
		if st.ResidentID != residentID {
			students = append(students, st)
		}
	}
	room.Students = students
	if room.OccupiedBeds > 0 {
		room.OccupiedBeds--
	}
	next.rooms[roomID] = room
}

// attachStudent appends the resident's summary to roomID's embedded list,
// skipping the insert when already present (idempotent).
func attachStudent(next *Snapshot, bak *backup, roomID string, resident domain.Resident) {
	if roomID == "" {
		return
	}
	room, ok := next.rooms[roomID]
	if !ok {
		return
	}
	bak.room(next, roomID)
	if room.HasStudent(resident.ResidentID) {
		return
	}
	room.Students = append(append([]domain.ResidentSummary(nil), room.Students...), resident.Summary())
	room.OccupiedBeds++
	next.rooms[roomID] = room
}
