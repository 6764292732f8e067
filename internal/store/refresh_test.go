package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pgease-sync/internal/domain"
	"pgease-sync/internal/store"
)

func TestRefresh_LoadsRoomsAndMembers(t *testing.T) {
	remote := newFakeRemote()
	remote.rooms["pg1"] = []domain.Room{{RoomID: "r1", TenantID: "pg1", RoomNumber: "101", TotalBeds: 2}}
	remote.members["pg1"] = []domain.Member{
		{MemberID: "m1", TenantID: "pg1", Name: "Asha", Role: domain.RoleResident, ResidentID: "s1"},
	}
	st := store.New(remote, zap.NewNop())

	st.Refresh(context.Background(), "pg1")

	snap := st.Snapshot()
	require.Len(t, snap.RoomsByTenant("pg1"), 1)
	require.Len(t, snap.MembersByTenant("pg1"), 1)
	require.Len(t, snap.ResidentsByTenant("pg1"), 1)
	require.False(t, st.RefreshInProgress())
}

func TestRefresh_SingleFlight(t *testing.T) {
	remote := newFakeRemote()
	gate := make(chan struct{})
	remote.fetchRoomsGate = gate
	st := store.New(remote, zap.NewNop())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		st.Refresh(context.Background(), "pg1")
	}()

	require.Eventually(t, st.RefreshInProgress, time.Second, time.Millisecond)

	// Overlapping calls return without issuing a second set of loads.
	st.Refresh(context.Background(), "pg1")
	st.Refresh(context.Background(), "pg1")

	close(gate)
	wg.Wait()

	fetchRooms, fetchMembers := remote.calls()
	require.Equal(t, 1, fetchRooms)
	require.Equal(t, 1, fetchMembers)
	require.False(t, st.RefreshInProgress())
}

func TestRefresh_LoaderErrorsDoNotAbortRemainingLoads(t *testing.T) {
	remote := newFakeRemote()
	remote.fetchRoomsErr = &store.RemoteError{Op: "fetch rooms", Err: context.DeadlineExceeded}
	remote.members["pg1"] = []domain.Member{
		{MemberID: "m1", TenantID: "pg1", Name: "Asha", Role: domain.RoleResident, ResidentID: "s1"},
	}
	st := store.New(remote, zap.NewNop())

	st.Refresh(context.Background(), "pg1")

	snap := st.Snapshot()
	require.NotEmpty(t, snap.RoomsError(), "the room failure lands on its error field")
	require.Len(t, snap.MembersByTenant("pg1"), 1, "the member load still runs")
	require.False(t, st.RefreshInProgress(), "the in-flight flag is cleared even on failure")
}

func TestRefresh_FlagClearedAfterCompletion(t *testing.T) {
	remote := newFakeRemote()
	st := store.New(remote, zap.NewNop())

	st.Refresh(context.Background(), "pg1")
	require.False(t, st.RefreshInProgress())

	// A later refresh is not blocked by the earlier one.
	st.Refresh(context.Background(), "pg1")
	fetchRooms, _ := remote.calls()
	require.Equal(t, 2, fetchRooms)
}
