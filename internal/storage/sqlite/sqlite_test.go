package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dospalko/roomsplit/internal/models"
	"github.com/Dospalko/roomsplit/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedRoom(t *testing.T, store *SQLiteStore) (*models.User, *models.Room) {
	t.Helper()
	ctx := context.Background()
	user := models.NewUser("owner@example.com", "Owner", "hash")
	require.NoError(t, store.CreateUser(ctx, user))
	room := models.NewRoom("Flat 12", user.ID)
	require.NoError(t, store.CreateRoom(ctx, room))
	return user, room
}

func seedBill(t *testing.T, store *SQLiteStore, roomID string, members ...*models.Member) *models.Bill {
	t.Helper()
	bill := models.NewBill(roomID, "Rent", 9000, "2026-08", models.RuleEqual, nil)
	for _, m := range members {
		bill.Shares = append(bill.Shares, models.Share{
			MemberID:    m.ID,
			AmountCents: 9000 / int64(len(members)),
		})
	}
	require.NoError(t, store.CreateBill(context.Background(), bill))
	return bill
}

func TestUserEmailUnique(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("ana@example.com", "Ana", "hash")
	require.NoError(t, store.CreateUser(ctx, user))

	dup := models.NewUser("ana@example.com", "Other Ana", "hash")
	err := store.CreateUser(ctx, dup)
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	missing, err := store.GetUserByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemberNameUniquePerRoom(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user, room := seedRoom(t, store)

	require.NoError(t, store.AddMember(ctx, models.NewMember(room.ID, "ana")))
	err := store.AddMember(ctx, models.NewMember(room.ID, "ana"))
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	// The same name is free in another room.
	other := models.NewRoom("Ski Trip", user.ID)
	require.NoError(t, store.CreateRoom(ctx, other))
	assert.NoError(t, store.AddMember(ctx, models.NewMember(other.ID, "ana")))
}

func TestBillRoundTripWithShares(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, room := seedRoom(t, store)

	a := models.NewMember(room.ID, "ana")
	b := models.NewMember(room.ID, "bob")
	require.NoError(t, store.AddMember(ctx, a))
	require.NoError(t, store.AddMember(ctx, b))

	bill := seedBill(t, store, room.ID, a, b)

	got, err := store.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.Title, got.Title)
	assert.Equal(t, bill.AmountCents, got.AmountCents)
	require.Len(t, got.Shares, 2)
	for _, share := range got.Shares {
		assert.NotEmpty(t, share.ID)
		assert.Equal(t, bill.ID, share.BillID)
		assert.False(t, share.Paid)
	}
}

func TestDeleteBillCascadesShares(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, room := seedRoom(t, store)

	a := models.NewMember(room.ID, "ana")
	require.NoError(t, store.AddMember(ctx, a))
	bill := seedBill(t, store, room.ID, a)
	shareID := bill.Shares[0].ID

	require.NoError(t, store.DeleteBill(ctx, bill.ID))

	_, err := store.GetBill(ctx, bill.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.GetShare(ctx, shareID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteMemberCascadesOwnSharesOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, room := seedRoom(t, store)

	a := models.NewMember(room.ID, "ana")
	b := models.NewMember(room.ID, "bob")
	require.NoError(t, store.AddMember(ctx, a))
	require.NoError(t, store.AddMember(ctx, b))
	bill := seedBill(t, store, room.ID, a, b)

	require.NoError(t, store.DeleteMember(ctx, a.ID))

	got, err := store.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	require.Len(t, got.Shares, 1)
	assert.Equal(t, b.ID, got.Shares[0].MemberID)
}

func TestListBillsPeriodFilter(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, room := seedRoom(t, store)

	for _, period := range []string{"2026-07", "2026-08"} {
		bill := models.NewBill(room.ID, "Utilities", 1000, period, models.RuleEqual, nil)
		require.NoError(t, store.CreateBill(ctx, bill))
	}

	july, err := store.ListBills(ctx, room.ID, "2026-07")
	require.NoError(t, err)
	assert.Len(t, july, 1)

	all, err := store.ListBills(ctx, room.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRedeemInviteLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, room := seedRoom(t, store)
	now := time.Now()

	guest := models.NewUser("guest@example.com", "Guest", "hash")
	require.NoError(t, store.CreateUser(ctx, guest))

	one := int64(1)
	invite := &models.Invite{
		ID:        "inv-1",
		RoomID:    room.ID,
		Code:      "code-1",
		ExpiresAt: now.Add(time.Hour).Unix(),
		MaxUses:   &one,
		IsActive:  true,
		CreatedAt: now.Unix(),
	}
	require.NoError(t, store.CreateInvite(ctx, invite))

	redeemed, err := store.RedeemInvite(ctx, "code-1", guest.ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), redeemed.UsedCount)

	member, err := store.IsRoomMember(ctx, room.ID, guest.ID)
	require.NoError(t, err)
	assert.True(t, member)

	// Same user again: no-op success, still one use.
	again, err := store.RedeemInvite(ctx, "code-1", guest.ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), again.UsedCount)

	// A different user finds the invite exhausted.
	other := models.NewUser("other@example.com", "Other", "hash")
	require.NoError(t, store.CreateUser(ctx, other))
	_, err = store.RedeemInvite(ctx, "code-1", other.ID, now)
	assert.ErrorIs(t, err, storage.ErrInviteExhausted)
}

func TestRedeemInviteExpiredAndInactive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, room := seedRoom(t, store)
	now := time.Now()

	guest := models.NewUser("guest@example.com", "Guest", "hash")
	require.NoError(t, store.CreateUser(ctx, guest))

	invite := &models.Invite{
		ID:        "inv-1",
		RoomID:    room.ID,
		Code:      "code-1",
		ExpiresAt: now.Add(time.Hour).Unix(),
		IsActive:  true,
		CreatedAt: now.Unix(),
	}
	require.NoError(t, store.CreateInvite(ctx, invite))

	_, err := store.RedeemInvite(ctx, "code-1", guest.ID, now.Add(2*time.Hour))
	assert.ErrorIs(t, err, storage.ErrInviteExpired)

	require.NoError(t, store.DeactivateInvite(ctx, invite.ID))
	_, err = store.RedeemInvite(ctx, "code-1", guest.ID, now)
	assert.ErrorIs(t, err, storage.ErrInviteInactive)
}

func TestRuleParamsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	_, room := seedRoom(t, store)

	a := models.NewMember(room.ID, "ana")
	require.NoError(t, store.AddMember(ctx, a))

	params := map[string]decimal.Decimal{a.ID: decimal.RequireFromString("100")}
	bill := models.NewBill(room.ID, "Internet", 3000, "2026-08", models.RulePercent, params)
	require.NoError(t, store.CreateBill(ctx, bill))

	got, err := store.GetBill(ctx, bill.ID)
	require.NoError(t, err)
	require.Contains(t, got.RuleParams, a.ID)
	assert.True(t, got.RuleParams[a.ID].Equal(bill.RuleParams[a.ID]))
}
