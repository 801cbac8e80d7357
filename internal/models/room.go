package models

import (
	"time"

	"github.com/google/uuid"
)

// Room represents a shared-expense group. It owns members, bills, invites,
// categories and tags; the owner is the user who created it.
type Room struct {
	// ID is the unique identifier for the room (UUID format).
	ID string

	// Name is the display name of the room (e.g. "Flat 12", "Ski Trip").
	Name string

	// OwnerUserID is the user who created the room. Ownership gates
	// invite creation and category mutation.
	OwnerUserID string

	// CreatedAt is the Unix timestamp when the room was created.
	CreatedAt int64
}

// NewRoom creates a room owned by the given user.
func NewRoom(name, ownerUserID string) *Room {
	return &Room{
		ID:          uuid.New().String(),
		Name:        name,
		OwnerUserID: ownerUserID,
		CreatedAt:   time.Now().Unix(),
	}
}

// Member is a named ledger participant in a room. Members are plain rows,
// not accounts: a room can track people who never log in.
type Member struct {
	ID        string
	RoomID    string
	Name      string
	CreatedAt int64
}

// NewMember creates a member of the given room.
func NewMember(roomID, name string) *Member {
	return &Member{
		ID:        uuid.New().String(),
		RoomID:    roomID,
		Name:      name,
		CreatedAt: time.Now().Unix(),
	}
}

// RoomMember joins a registered user to a room. Created when an invite is
// redeemed. The owner has no RoomMember row; ownership implies membership.
type RoomMember struct {
	RoomID   string
	UserID   string
	JoinedAt int64
}

// Category labels bills for reporting. Mutating categories requires room
// ownership.
type Category struct {
	ID     string
	RoomID string
	Name   string
}

// Tag is a free-form label on a room. Unlike categories, any room member
// may mutate tags.
type Tag struct {
	ID     string
	RoomID string
	Name   string
}
