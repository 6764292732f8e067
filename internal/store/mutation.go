package store

import (
	"strings"

	"github.com/google/uuid"

	"pgease-sync/internal/domain"
)

// tempIDPrefix marks ids generated for speculative creates. A temp id must
// never reach the remote API and must be gone after reconciliation.
const tempIDPrefix = "tmp-"

func newTempID() string {
	return tempIDPrefix + uuid.NewString()
}

// IsTempID reports whether id was locally generated and not yet reconciled.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, tempIDPrefix)
}

// backup records the full prior value of every key a speculative change
// touches. Rollback restores these exact values into the then-latest
// snapshot: full-value restoration, not an "undo the new fields" diff, so a
// failed mutation cannot resurrect stale denormalized data.
//
// A nil map value means the key did not exist before the mutation and must be
// deleted on rollback. Each key is captured at most once, so capturing before
// and after an edit inside the same speculation is safe.
type backup struct {
	rooms         map[string]*domain.Room
	residents     map[string]*domain.Resident
	members       map[string]*domain.Member
	roomIndex     map[string][]string
	residentIndex map[string][]string
	memberIndex   map[string][]string
}

func newBackup() *backup {
	return &backup{
		rooms:         map[string]*domain.Room{},
		residents:     map[string]*domain.Resident{},
		members:       map[string]*domain.Member{},
		roomIndex:     map[string][]string{},
		residentIndex: map[string][]string{},
		memberIndex:   map[string][]string{},
	}
}

func (b *backup) room(snap *Snapshot, id string) {
	if _, done := b.rooms[id]; done {
		return
	}
	if r, ok := snap.rooms[id]; ok {
		cp := r.Clone()
		b.rooms[id] = &cp
	} else {
		b.rooms[id] = nil
	}
}

func (b *backup) resident(snap *Snapshot, id string) {
	if _, done := b.residents[id]; done {
		return
	}
	if r, ok := snap.residents[id]; ok {
		cp := r.Clone()
		b.residents[id] = &cp
	} else {
		b.residents[id] = nil
	}
}

func (b *backup) member(snap *Snapshot, id string) {
	if _, done := b.members[id]; done {
		return
	}
	if m, ok := snap.members[id]; ok {
		cp := m.Clone()
		b.members[id] = &cp
	} else {
		b.members[id] = nil
	}
}

func (b *backup) roomIndexFor(snap *Snapshot, tenantID string) {
	if _, done := b.roomIndex[tenantID]; done {
		return
	}
	b.roomIndex[tenantID] = append([]string(nil), snap.roomsByTenant[tenantID]...)
}

func (b *backup) residentIndexFor(snap *Snapshot, tenantID string) {
	if _, done := b.residentIndex[tenantID]; done {
		return
	}
	b.residentIndex[tenantID] = append([]string(nil), snap.residentsByTenant[tenantID]...)
}

func (b *backup) memberIndexFor(snap *Snapshot, tenantID string) {
	if _, done := b.memberIndex[tenantID]; done {
		return
	}
	b.memberIndex[tenantID] = append([]string(nil), snap.membersByTenant[tenantID]...)
}

// restore writes every captured value back into next. Applied to the latest
// snapshot at rollback time, which makes concurrent mutations on other keys
// survive: only the keys this mutation touched are rewound.
func (b *backup) restore(next *Snapshot) {
	for id, prior := range b.rooms {
		if prior == nil {
			delete(next.rooms, id)
			continue
		}
		next.rooms[id] = prior.Clone()
	}
	for id, prior := range b.residents {
		if prior == nil {
			delete(next.residents, id)
			continue
		}
		next.residents[id] = prior.Clone()
	}
	for id, prior := range b.members {
		if prior == nil {
			delete(next.members, id)
			continue
		}
		next.members[id] = prior.Clone()
	}
	for tid, ids := range b.roomIndex {
		next.roomsByTenant[tid] = append([]string(nil), ids...)
	}
	for tid, ids := range b.residentIndex {
		next.residentsByTenant[tid] = append([]string(nil), ids...)
	}
	for tid, ids := range b.memberIndex {
		next.membersByTenant[tid] = append([]string(nil), ids...)
	}
}
