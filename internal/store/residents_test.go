package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pgease-sync/internal/domain"
	"pgease-sync/internal/store"
)

// twoRoomFixture returns a store with rooms 101/102 and residents s1 (in
// 101) and s2 (in 102) for tenant pg1.
func twoRoomFixture(t *testing.T) (*store.Store, *fakeRemote) {
	t.Helper()
	remote := newFakeRemote()
	remote.rooms["pg1"] = []domain.Room{
		{
			RoomID: "r1", TenantID: "pg1", RoomNumber: "101", TotalBeds: 2, OccupiedBeds: 1,
			Students: []domain.ResidentSummary{{ResidentID: "s1", Name: "Asha"}},
		},
		{
			RoomID: "r2", TenantID: "pg1", RoomNumber: "102", TotalBeds: 3, OccupiedBeds: 1,
			Students: []domain.ResidentSummary{{ResidentID: "s2", Name: "Meera"}},
		},
	}
	remote.members["pg1"] = []domain.Member{
		{MemberID: "m1", TenantID: "pg1", Name: "Asha", Role: domain.RoleResident, ResidentID: "s1", RoomID: "r1"},
		{MemberID: "m2", TenantID: "pg1", Name: "Meera", Role: domain.RoleResident, ResidentID: "s2", RoomID: "r2"},
	}
	return seedStore(t, remote, "pg1"), remote
}

func TestAssignResident_MovesBetweenRooms(t *testing.T) {
	remote := newFakeRemote()
	remote.rooms["pg1"] = []domain.Room{
		{
			RoomID: "r1", TenantID: "pg1", RoomNumber: "101", TotalBeds: 2, OccupiedBeds: 1,
			Students: []domain.ResidentSummary{{ResidentID: "s1", Name: "Asha"}},
		},
		{RoomID: "r2", TenantID: "pg1", RoomNumber: "102", TotalBeds: 3, OccupiedBeds: 0},
	}
	remote.members["pg1"] = []domain.Member{
		{MemberID: "m1", TenantID: "pg1", Name: "Asha", Role: domain.RoleResident, ResidentID: "s1", RoomID: "r1"},
	}
	st := seedStore(t, remote, "pg1")

	require.NoError(t, st.AssignResidentToRoom(context.Background(), "pg1", "s1", "r2"))

	snap := st.Snapshot()
	resident, ok := snap.Resident("s1")
	require.True(t, ok)
	require.Equal(t, "r2", resident.RoomID)

	r1, _ := snap.Room("r1")
	require.False(t, r1.HasStudent("s1"))
	require.Equal(t, 0, r1.OccupiedBeds)

	r2, _ := snap.Room("r2")
	require.True(t, r2.HasStudent("s1"))
	require.Equal(t, 1, r2.OccupiedBeds)
}

func TestAssignResident_Unassign(t *testing.T) {
	st, _ := twoRoomFixture(t)

	require.NoError(t, st.AssignResidentToRoom(context.Background(), "pg1", "s1", ""))

	snap := st.Snapshot()
	resident, _ := snap.Resident("s1")
	require.Empty(t, resident.RoomID)
	r1, _ := snap.Room("r1")
	require.False(t, r1.HasStudent("s1"))
}

func TestAssignResident_RollbackRevertsResidentAndBothRooms(t *testing.T) {
	st, remote := twoRoomFixture(t)
	remote.assignErr = &store.RemoteError{Op: "assign", Err: context.DeadlineExceeded}

	err := st.AssignResidentToRoom(context.Background(), "pg1", "s1", "r2")
	require.Error(t, err)
	require.True(t, store.IsRemoteFailure(err))

	snap := st.Snapshot()
	resident, _ := snap.Resident("s1")
	require.Equal(t, "r1", resident.RoomID)

	r1, _ := snap.Room("r1")
	require.True(t, r1.HasStudent("s1"))
	require.Equal(t, 1, r1.OccupiedBeds)

	r2, _ := snap.Room("r2")
	require.False(t, r2.HasStudent("s1"))
	require.Equal(t, 1, r2.OccupiedBeds)
	require.NotEmpty(t, snap.ResidentsError())
}

func TestAssignResident_UnloadedRoomStillMovesResident(t *testing.T) {
	st, _ := twoRoomFixture(t)

	// r9 is not loaded locally: the resident moves, the unknown room's
	// list is skipped, and the old room is still cleaned up.
	require.NoError(t, st.AssignResidentToRoom(context.Background(), "pg1", "s1", "r9"))

	snap := st.Snapshot()
	resident, _ := snap.Resident("s1")
	require.Equal(t, "r9", resident.RoomID)
	r1, _ := snap.Room("r1")
	require.False(t, r1.HasStudent("s1"))
	_, ok := snap.Room("r9")
	require.False(t, ok)
}

func TestAssignResident_NotFoundFailsFast(t *testing.T) {
	st, remote := twoRoomFixture(t)

	err := st.AssignResidentToRoom(context.Background(), "pg1", "ghost", "r2")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.Equal(t, 0, remote.assignCalls)
}

func TestSwapResidents_Success(t *testing.T) {
	st, _ := twoRoomFixture(t)

	require.NoError(t, st.SwapResidents(context.Background(), "pg1", "s1", "s2"))

	snap := st.Snapshot()
	s1, _ := snap.Resident("s1")
	s2, _ := snap.Resident("s2")
	require.Equal(t, "r2", s1.RoomID)
	require.Equal(t, "r1", s2.RoomID)

	r1, _ := snap.Room("r1")
	require.False(t, r1.HasStudent("s1"))
	require.True(t, r1.HasStudent("s2"))
	require.Equal(t, 1, r1.OccupiedBeds)

	r2, _ := snap.Room("r2")
	require.False(t, r2.HasStudent("s2"))
	require.True(t, r2.HasStudent("s1"))
	require.Equal(t, 1, r2.OccupiedBeds)
}

func TestSwapResidents_RollbackIsCombined(t *testing.T) {
	st, remote := twoRoomFixture(t)
	remote.swapErr = &store.RemoteError{Op: "swap", Err: context.DeadlineExceeded}

	err := st.SwapResidents(context.Background(), "pg1", "s1", "s2")
	require.Error(t, err)

	// Never "A moved but B didn't": everything is back exactly.
	snap := st.Snapshot()
	s1, _ := snap.Resident("s1")
	s2, _ := snap.Resident("s2")
	require.Equal(t, "r1", s1.RoomID)
	require.Equal(t, "r2", s2.RoomID)

	r1, _ := snap.Room("r1")
	require.True(t, r1.HasStudent("s1"))
	require.False(t, r1.HasStudent("s2"))
	require.Equal(t, 1, r1.OccupiedBeds)

	r2, _ := snap.Room("r2")
	require.True(t, r2.HasStudent("s2"))
	require.False(t, r2.HasStudent("s1"))
	require.Equal(t, 1, r2.OccupiedBeds)
}

func TestSwapResidents_MissingResidentFailsFast(t *testing.T) {
	st, remote := twoRoomFixture(t)

	err := st.SwapResidents(context.Background(), "pg1", "s1", "ghost")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.Equal(t, 0, remote.swapCalls)

	// The precondition failure must not have moved s1.
	s1, _ := st.Snapshot().Resident("s1")
	require.Equal(t, "r1", s1.RoomID)
}

func TestConcurrentAssigns_BothApply(t *testing.T) {
	remote := newFakeRemote()
	remote.rooms["pg1"] = []domain.Room{
		{RoomID: "r1", TenantID: "pg1", RoomNumber: "101", TotalBeds: 4, OccupiedBeds: 0},
	}
	remote.members["pg1"] = []domain.Member{
		{MemberID: "m1", TenantID: "pg1", Name: "Asha", Role: domain.RoleResident, ResidentID: "s1"},
		{MemberID: "m2", TenantID: "pg1", Name: "Meera", Role: domain.RoleResident, ResidentID: "s2"},
	}
	st := seedStore(t, remote, "pg1")

	// Hold both remote calls in flight so the two phase-3 transitions race.
	gate := make(chan struct{})
	remote.assignGate = gate

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{"s1", "s2"} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			errs[i] = st.AssignResidentToRoom(context.Background(), "pg1", id, "r1")
		}(i, id)
	}

	require.Eventually(t, func() bool {
		remote.mu.Lock()
		defer remote.mu.Unlock()
		return remote.assignCalls == 2
	}, 2*time.Second, time.Millisecond)

	close(gate)
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	// Read-then-replace at publish time: neither assignment is lost.
	snap := st.Snapshot()
	r1, _ := snap.Room("r1")
	require.True(t, r1.HasStudent("s1"))
	require.True(t, r1.HasStudent("s2"))
	require.Equal(t, 2, r1.OccupiedBeds)
}
