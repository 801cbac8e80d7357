package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Dospalko/roomsplit/internal/models"
	"github.com/Dospalko/roomsplit/internal/storage"
	"github.com/Dospalko/roomsplit/internal/storage/sqlite"
)

// env wires the full service stack over a throwaway SQLite file.
type env struct {
	store     storage.Store
	access    *AccessControl
	rooms     *RoomService
	bills     *BillService
	payments  *PaymentTracker
	summaries *SummaryAggregator
	invites   *InviteService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	access := NewAccessControl(store)
	rooms := NewRoomService(store, access)
	bills := NewBillService(store, access)
	return &env{
		store:     store,
		access:    access,
		rooms:     rooms,
		bills:     bills,
		payments:  NewPaymentTracker(store, access),
		summaries: NewSummaryAggregator(bills, rooms, access),
		invites:   NewInviteService(store, access),
	}
}

func (e *env) user(t *testing.T, email string) *models.User {
	t.Helper()
	user := models.NewUser(email, "Test User", "not-a-real-hash")
	require.NoError(t, e.store.CreateUser(context.Background(), user))
	return user
}

func (e *env) room(t *testing.T, owner *models.User) *models.Room {
	t.Helper()
	room, err := e.rooms.CreateRoom(context.Background(), owner.ID, "Flat 12")
	require.NoError(t, err)
	return room
}

func (e *env) member(t *testing.T, owner *models.User, roomID, name string) *models.Member {
	t.Helper()
	member, err := e.rooms.AddMember(context.Background(), owner.ID, roomID, name)
	require.NoError(t, err)
	return member
}
