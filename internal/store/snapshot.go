package store

import (
	"time"

	"pgease-sync/internal/domain"
)

// Snapshot is one complete, immutable view of every entity map, per-tenant
// index and transient flag. The store publishes a brand-new Snapshot for each
// state transition; readers keep whatever pointer they obtained and never see
// a half-applied change.
type Snapshot struct {
	rooms             map[string]domain.Room
	roomsByTenant     map[string][]string
	residents         map[string]domain.Resident
	residentsByTenant map[string][]string
	members           map[string]domain.Member
	membersByTenant   map[string][]string

	roomsLoading   bool
	membersLoading bool
	roomsError     string
	residentsError string
	membersError   string
	lastSyncAt     time.Time
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		rooms:             map[string]domain.Room{},
		roomsByTenant:     map[string][]string{},
		residents:         map[string]domain.Resident{},
		residentsByTenant: map[string][]string{},
		members:           map[string]domain.Member{},
		membersByTenant:   map[string][]string{},
	}
}

// clone deep-copies the snapshot so the next state can be edited without the
// published one ever changing underneath a reader.
func (s *Snapshot) clone() *Snapshot {
	next := &Snapshot{
		rooms:             make(map[string]domain.Room, len(s.rooms)),
		roomsByTenant:     make(map[string][]string, len(s.roomsByTenant)),
		residents:         make(map[string]domain.Resident, len(s.residents)),
		residentsByTenant: make(map[string][]string, len(s.residentsByTenant)),
		members:           make(map[string]domain.Member, len(s.members)),
		membersByTenant:   make(map[string][]string, len(s.membersByTenant)),
		roomsLoading:      s.roomsLoading,
		membersLoading:    s.membersLoading,
		roomsError:        s.roomsError,
		residentsError:    s.residentsError,
		membersError:      s.membersError,
		lastSyncAt:        s.lastSyncAt,
	}
	for id, r := range s.rooms {
		next.rooms[id] = r.Clone()
	}
	for tid, ids := range s.roomsByTenant {
		next.roomsByTenant[tid] = append([]string(nil), ids...)
	}
	for id, r := range s.residents {
		next.residents[id] = r.Clone()
	}
	for tid, ids := range s.residentsByTenant {
		next.residentsByTenant[tid] = append([]string(nil), ids...)
	}
	for id, m := range s.members {
		next.members[id] = m.Clone()
	}
	for tid, ids := range s.membersByTenant {
		next.membersByTenant[tid] = append([]string(nil), ids...)
	}
	return next
}

// Room returns the room by id, cloned so callers cannot alias snapshot state.
func (s *Snapshot) Room(id string) (domain.Room, bool) {
	r, ok := s.rooms[id]
	if !ok {
		return domain.Room{}, false
	}
	return r.Clone(), true
}

// RoomsByTenant returns the tenant's rooms in index order.
func (s *Snapshot) RoomsByTenant(tenantID string) []domain.Room {
	ids := s.roomsByTenant[tenantID]
	out := make([]domain.Room, 0, len(ids))
	for _, id := range ids {
		if r, ok := s.rooms[id]; ok {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Resident returns the resident by id.
func (s *Snapshot) Resident(id string) (domain.Resident, bool) {
	r, ok := s.residents[id]
	if !ok {
		return domain.Resident{}, false
	}
	return r.Clone(), true
}

// ResidentsByTenant returns the tenant's residents in index order.
func (s *Snapshot) ResidentsByTenant(tenantID string) []domain.Resident {
	ids := s.residentsByTenant[tenantID]
	out := make([]domain.Resident, 0, len(ids))
	for _, id := range ids {
		if r, ok := s.residents[id]; ok {
			out = append(out, r.Clone())
		}
	}
	return out
}

// Member returns the member by id.
func (s *Snapshot) Member(id string) (domain.Member, bool) {
	m, ok := s.members[id]
	if !ok {
		return domain.Member{}, false
	}
	return m.Clone(), true
}

// MembersByTenant returns the tenant's members in index order.
func (s *Snapshot) MembersByTenant(tenantID string) []domain.Member {
	ids := s.membersByTenant[tenantID]
	out := make([]domain.Member, 0, len(ids))
	for _, id := range ids {
		if m, ok := s.members[id]; ok {
			out = append(out, m.Clone())
		}
	}
	return out
}

func (s *Snapshot) RoomsLoading() bool    { return s.roomsLoading }
func (s *Snapshot) MembersLoading() bool  { return s.membersLoading }
func (s *Snapshot) RoomsError() string    { return s.roomsError }
func (s *Snapshot) ResidentsError() string { return s.residentsError }
func (s *Snapshot) MembersError() string  { return s.membersError }
func (s *Snapshot) LastSyncAt() time.Time { return s.lastSyncAt }

// --- index helpers (edit the snapshot being built, never a published one) ---

func appendID(index map[string][]string, tenantID, id string) {
	for _, existing := range index[tenantID] {
		if existing == id {
			return
		}
	}
	index[tenantID] = append(index[tenantID], id)
}

func removeID(index map[string][]string, tenantID, id string) {
	ids := index[tenantID]
	for i, existing := range ids {
		if existing == id {
			index[tenantID] = append(ids[:i:i], ids[i+1:]...)
			return
		}
	}
}

// replaceID swaps oldID for newID keeping the position oldID occupied, so a
// reconciled entity stays where its speculative row was displayed.
func replaceID(index map[string][]string, tenantID, oldID, newID string) {
	ids := index[tenantID]
	for i, existing := range ids {
		if existing == oldID {
			next := append([]string(nil), ids...)
			next[i] = newID
			index[tenantID] = next
			return
		}
	}
	appendID(index, tenantID, newID)
}
