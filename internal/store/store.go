package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"pgease-sync/internal/domain"
)

// Remote is the injected remote collaborator. Implementations translate
// these calls into whatever transport the platform uses; the store only
// sees well-formed entities or a typed error.
type Remote interface {
	FetchRooms(ctx context.Context, tenantID string) ([]domain.Room, error)
	CreateRoom(ctx context.Context, tenantID string, req CreateRoomRequest) (domain.Room, error)
	UpdateRoom(ctx context.Context, tenantID, roomID string, patch RoomPatch) (domain.Room, error)
	FetchMembers(ctx context.Context, tenantID, roleFilter string) ([]domain.Member, error)
	CreateMember(ctx context.Context, tenantID string, req CreateMemberRequest) (string, error)
	UpdateResidentRoom(ctx context.Context, tenantID, residentID, roomID string) error
	SwapResidentRooms(ctx context.Context, tenantID, residentAID, residentBID string) error
}

// CreateRoomRequest carries the fields of an optimistic room create.
type CreateRoomRequest struct {
	RoomNumber string
	RoomType   domain.RoomType
	TotalBeds  int
	Details    string
}

// RoomPatch is a field-level patch for UpdateRoom; nil means "leave as is".
type RoomPatch struct {
	RoomNumber *string
	RoomType   *domain.RoomType
	TotalBeds  *int
	Details    *string
}

// CreateMemberRequest carries the fields of an optimistic member create.
type CreateMemberRequest struct {
	Name      string
	Email     string
	Phone     string
	Role      domain.MemberRole
	CreatedBy string
}

// Store keeps the client-side representation of rooms, residents and members
// for any number of tenants, applies optimistic mutations against the remote
// API and hands out immutable snapshots to readers.
//
// Constructed once per authenticated session; Clear tears it down on logout.
type Store struct {
	mu         sync.Mutex
	snap       *Snapshot
	refreshing bool

	remote  Remote
	logger  *zap.Logger
	nowFn   func() time.Time
	changes chan struct{}
}

// New constructs a store around the given remote collaborator.
func New(remote Remote, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		snap:    newSnapshot(),
		remote:  remote,
		logger:  logger,
		nowFn:   func() time.Time { return time.Now().UTC() },
		changes: make(chan struct{}, 1),
	}
}

// Snapshot returns the most recently published snapshot. Never blocks.
func (s *Store) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Changes returns a coalesced notification channel: at least one receive is
// guaranteed after any publish, duplicates are dropped.
func (s *Store) Changes() <-chan struct{} {
	return s.changes
}

// RefreshInProgress reports whether a full refresh is currently in flight.
func (s *Store) RefreshInProgress() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshing
}

// update is the single critical section of the store: read the latest
// snapshot, clone it, let fn edit the clone, publish. If fn returns an error
// nothing is published. Every phase of every mutation goes through here, so
// two mutations computing from the same stale snapshot cannot lose updates.
func (s *Store) update(fn func(next *Snapshot) error) error {
	s.mu.Lock()
	next := s.snap.clone()
	if err := fn(next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.snap = next
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// Clear drops all state, e.g. on logout. Flags and errors reset too.
func (s *Store) Clear() {
	s.mu.Lock()
	s.snap = newSnapshot()
	s.mu.Unlock()
	s.notify()
	s.logger.Info("store cleared")
}

// ClearErrors resets every kind-specific error field. Error fields never
// expire on their own; the presentation layer calls this after showing them.
func (s *Store) ClearErrors() {
	_ = s.update(func(next *Snapshot) error {
		next.roomsError = ""
		next.residentsError = ""
		next.membersError = ""
		return nil
	})
}
