package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pgease-sync/internal/domain"
)

// LoadRooms replaces the tenant's room collection with the remote one:
// fetched entities are upserted into the global map, the tenant index is
// replaced wholesale and rooms that vanished from the result are dropped.
// Rooms of every other tenant are untouched. On failure the previously
// loaded data stays intact and only the error field changes.
func (s *Store) LoadRooms(ctx context.Context, tenantID string) error {
	_ = s.update(func(next *Snapshot) error {
		next.roomsLoading = true
		return nil
	})

	fetched, err := s.remote.FetchRooms(ctx, tenantID)
	if err != nil {
		_ = s.update(func(next *Snapshot) error {
			next.roomsLoading = false
			next.roomsError = err.Error()
			return nil
		})
		s.logger.Warn("room load failed",
			zap.String("tenant_id", tenantID),
			zap.Error(err),
		)
		return fmt.Errorf("load rooms for %q: %w", tenantID, err)
	}

	_ = s.update(func(next *Snapshot) error {
		previous := next.roomsByTenant[tenantID]
		ids := make([]string, 0, len(fetched))
		seen := make(map[string]bool, len(fetched))
		for _, room := range fetched {
			if room.TenantID == "" {
				room.TenantID = tenantID
			}
			if room.TenantID != tenantID {
				s.logger.Warn("dropping room from foreign tenant",
					zap.String("room_id", room.RoomID),
					zap.String("tenant_id", room.TenantID),
				)
				continue
			}
			if seen[room.RoomID] {
				continue
			}
			seen[room.RoomID] = true
			next.rooms[room.RoomID] = room.Clone()
			ids = append(ids, room.RoomID)
		}
		for _, id := range previous {
			if seen[id] {
				continue
			}
			if old, ok := next.rooms[id]; ok && old.TenantID == tenantID {
				delete(next.rooms, id)
			}
		}
		next.roomsByTenant[tenantID] = ids
		next.roomsLoading = false
		next.lastSyncAt = s.nowFn()
		return nil
	})
	s.logger.Info("rooms loaded",
		zap.String("tenant_id", tenantID),
		zap.Int("count", len(fetched)),
	)
	return nil
}

// LoadMembers replaces the tenant's member collection and, as a side effect,
// derives a Resident entry for every member carrying a resident identity.
// The derived residents back the room-assignment operations.
func (s *Store) LoadMembers(ctx context.Context, tenantID, roleFilter string) error {
	_ = s.update(func(next *Snapshot) error {
		next.membersLoading = true
		return nil
	})

	fetched, err := s.remote.FetchMembers(ctx, tenantID, roleFilter)
	if err != nil {
		_ = s.update(func(next *Snapshot) error {
			next.membersLoading = false
			next.membersError = err.Error()
			return nil
		})
		s.logger.Warn("member load failed",
			zap.String("tenant_id", tenantID),
			zap.Error(err),
		)
		return fmt.Errorf("load members for %q: %w", tenantID, err)
	}

	_ = s.update(func(next *Snapshot) error {
		previousMembers := next.membersByTenant[tenantID]
		previousResidents := next.residentsByTenant[tenantID]

		memberIDs := make([]string, 0, len(fetched))
		residentIDs := make([]string, 0, len(fetched))
		seenMembers := make(map[string]bool, len(fetched))
		seenResidents := make(map[string]bool, len(fetched))

		for _, member := range fetched {
			if member.TenantID == "" {
				member.TenantID = tenantID
			}
			if member.TenantID != tenantID || seenMembers[member.MemberID] {
				continue
			}
			seenMembers[member.MemberID] = true
			next.members[member.MemberID] = member.Clone()
			memberIDs = append(memberIDs, member.MemberID)

			if member.IsResident() && !seenResidents[member.ResidentID] {
				seenResidents[member.ResidentID] = true
				next.residents[member.ResidentID] = member.AsResident()
				residentIDs = append(residentIDs, member.ResidentID)
			}
		}

		for _, id := range previousMembers {
			if seenMembers[id] {
				continue
			}
			if old, ok := next.members[id]; ok && old.TenantID == tenantID {
				delete(next.members, id)
			}
		}
		next.membersByTenant[tenantID] = memberIDs

		// A role-filtered fetch is a partial view; replacing the resident
		// projection from it would drop residents outside the filter.
		if roleFilter == "" || roleFilter == string(domain.RoleResident) {
			for _, id := range previousResidents {
				if seenResidents[id] {
					continue
				}
				if old, ok := next.residents[id]; ok && old.TenantID == tenantID {
					delete(next.residents, id)
				}
			}
			next.residentsByTenant[tenantID] = residentIDs
		}

		next.membersLoading = false
		next.lastSyncAt = s.nowFn()
		return nil
	})
	s.logger.Info("members loaded",
		zap.String("tenant_id", tenantID),
		zap.String("role_filter", roleFilter),
		zap.Int("count", len(fetched)),
	)
	return nil
}
