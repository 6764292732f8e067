package store_test

import (
	"context"
	"sync"

	"pgease-sync/internal/domain"
	"pgease-sync/internal/store"
)

// fakeRemote is an in-memory stand-in for the platform API. Error fields
// inject failures; gate channels make a call block until the test releases
// it, which is how in-flight phases are observed.
type fakeRemote struct {
	mu sync.Mutex

	rooms   map[string][]domain.Room
	members map[string][]domain.Member

	fetchRoomsCalls   int
	fetchMembersCalls int
	createRoomCalls   int
	updateRoomCalls   int
	assignCalls       int
	swapCalls         int

	fetchRoomsErr   error
	fetchMembersErr error
	createRoomErr   error
	updateRoomErr   error
	assignErr       error
	swapErr         error

	createRoomResult domain.Room
	updateRoomResult domain.Room
	createMemberID   string
	createMemberErr  error

	fetchRoomsGate chan struct{}
	createRoomGate chan struct{}
	assignGate     chan struct{}
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		rooms:   map[string][]domain.Room{},
		members: map[string][]domain.Member{},
	}
}

func (f *fakeRemote) FetchRooms(_ context.Context, tenantID string) ([]domain.Room, error) {
	f.mu.Lock()
	f.fetchRoomsCalls++
	gate := f.fetchRoomsGate
	err := f.fetchRoomsErr
	out := append([]domain.Room(nil), f.rooms[tenantID]...)
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeRemote) CreateRoom(_ context.Context, tenantID string, req store.CreateRoomRequest) (domain.Room, error) {
	f.mu.Lock()
	f.createRoomCalls++
	gate := f.createRoomGate
	err := f.createRoomErr
	out := f.createRoomResult
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return domain.Room{}, err
	}
	if out.RoomID == "" {
		out = domain.Room{
			RoomID:     "srv-" + req.RoomNumber,
			TenantID:   tenantID,
			RoomNumber: req.RoomNumber,
			RoomType:   req.RoomType,
			TotalBeds:  req.TotalBeds,
			Details:    req.Details,
		}
	}
	return out, nil
}

func (f *fakeRemote) UpdateRoom(_ context.Context, tenantID, roomID string, patch store.RoomPatch) (domain.Room, error) {
	f.mu.Lock()
	f.updateRoomCalls++
	err := f.updateRoomErr
	out := f.updateRoomResult
	f.mu.Unlock()
	if err != nil {
		return domain.Room{}, err
	}
	return out, nil
}

func (f *fakeRemote) FetchMembers(_ context.Context, tenantID, roleFilter string) ([]domain.Member, error) {
	f.mu.Lock()
	f.fetchMembersCalls++
	err := f.fetchMembersErr
	all := append([]domain.Member(nil), f.members[tenantID]...)
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if roleFilter == "" {
		return all, nil
	}
	out := make([]domain.Member, 0, len(all))
	for _, m := range all {
		if string(m.Role) == roleFilter {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRemote) CreateMember(_ context.Context, tenantID string, req store.CreateMemberRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createMemberErr != nil {
		return "", f.createMemberErr
	}
	if f.createMemberID != "" {
		return f.createMemberID, nil
	}
	return "srv-member-1", nil
}

func (f *fakeRemote) UpdateResidentRoom(_ context.Context, tenantID, residentID, roomID string) error {
	f.mu.Lock()
	f.assignCalls++
	gate := f.assignGate
	err := f.assignErr
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeRemote) SwapResidentRooms(_ context.Context, tenantID, residentAID, residentBID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.swapCalls++
	return f.swapErr
}

func (f *fakeRemote) calls() (fetchRooms, fetchMembers int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchRoomsCalls, f.fetchMembersCalls
}
