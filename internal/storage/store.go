// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/Dospalko/roomsplit/internal/models"
)

// Sentinel errors returned by Store implementations. The service layer maps
// these onto its public error taxonomy.
var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint (room member name, category name, tag name, email).
	ErrDuplicate = errors.New("already exists")

	// ErrInviteInactive is returned when redeeming a deactivated invite.
	ErrInviteInactive = errors.New("invite deactivated")

	// ErrInviteExpired is returned when redeeming past the deadline.
	ErrInviteExpired = errors.New("invite expired")

	// ErrInviteExhausted is returned when the use cap is reached,
	// including when a concurrent redemption wins the last use.
	ErrInviteExhausted = errors.New("invite exhausted")
)

// Store defines the persistence operations for the ledger. This abstraction
// allows swapping storage backends (SQLite, PostgreSQL, ...) without
// changing the service layer.
//
// Two operations are transactional by contract: CreateBill writes the bill
// and all its shares atomically, and RedeemInvite performs the
// exhaustion-guarded increment plus the membership insert in one
// transaction.
type Store interface {
	// Users.
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail returns (nil, nil) when no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Rooms and room membership.
	CreateRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	// ListRoomsForUser returns rooms the user owns or has joined.
	ListRoomsForUser(ctx context.Context, userID string) ([]*models.Room, error)
	IsRoomMember(ctx context.Context, roomID, userID string) (bool, error)

	// Ledger members.
	AddMember(ctx context.Context, member *models.Member) error
	GetMember(ctx context.Context, id string) (*models.Member, error)
	// ListMembers returns the room's members in ascending-ID order.
	ListMembers(ctx context.Context, roomID string) ([]*models.Member, error)
	RenameMember(ctx context.Context, id, name string) error
	// DeleteMember cascades to that member's shares only.
	DeleteMember(ctx context.Context, id string) error

	// Bills and shares.
	// CreateBill persists the bill and all attached shares atomically; a
	// failure partway leaves zero rows.
	CreateBill(ctx context.Context, bill *models.Bill) error
	GetBill(ctx context.Context, id string) (*models.Bill, error)
	// ListBills returns the room's bills newest-first with shares
	// attached; period "" means all periods.
	ListBills(ctx context.Context, roomID, period string) ([]*models.Bill, error)
	// DeleteBill cascades share deletion.
	DeleteBill(ctx context.Context, id string) error
	GetShare(ctx context.Context, id string) (*models.Share, error)
	SetSharePaid(ctx context.Context, id string, paid bool) error

	// Invites.
	CreateInvite(ctx context.Context, invite *models.Invite) error
	GetInvite(ctx context.Context, id string) (*models.Invite, error)
	GetInviteByCode(ctx context.Context, code string) (*models.Invite, error)
	ListInvites(ctx context.Context, roomID string) ([]*models.Invite, error)
	DeactivateInvite(ctx context.Context, id string) error
	// RedeemInvite validates the invite, increments used_count behind a
	// conditional update and inserts the room membership, all in one
	// transaction. Redemption by an existing room member is a no-op
	// success that consumes no use.
	RedeemInvite(ctx context.Context, code, userID string, now time.Time) (*models.Invite, error)

	// Categories (owner-gated at the service layer) and tags.
	// Deletes are room-scoped so the caller's authorization check and
	// the delete target cannot disagree.
	CreateCategory(ctx context.Context, category *models.Category) error
	ListCategories(ctx context.Context, roomID string) ([]*models.Category, error)
	DeleteCategory(ctx context.Context, roomID, id string) error
	CreateTag(ctx context.Context, tag *models.Tag) error
	ListTags(ctx context.Context, roomID string) ([]*models.Tag, error)
	DeleteTag(ctx context.Context, roomID, id string) error

	// Close releases any resources held by the store.
	Close() error
}
