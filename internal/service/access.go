package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dospalko/roomsplit/internal/storage"
)

// AccessControl answers the two authorization predicates every room-scoped
// operation is gated on. Policy:
//
//   - every room-scoped read requires membership
//   - category mutation requires ownership
//   - bill, member and tag mutation require only membership
type AccessControl struct {
	store storage.Store
}

// NewAccessControl creates the authorization guard.
func NewAccessControl(store storage.Store) *AccessControl {
	return &AccessControl{store: store}
}

// IsOwner reports whether the user owns the room.
func (a *AccessControl) IsOwner(ctx context.Context, roomID, userID string) (bool, error) {
	room, err := a.store.GetRoom(ctx, roomID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to resolve room owner: %w", err)
	}
	return room.OwnerUserID == userID, nil
}

// IsMember reports whether the user owns the room or has joined it.
func (a *AccessControl) IsMember(ctx context.Context, roomID, userID string) (bool, error) {
	owner, err := a.IsOwner(ctx, roomID, userID)
	if err != nil {
		return false, err
	}
	if owner {
		return true, nil
	}
	return a.store.IsRoomMember(ctx, roomID, userID)
}

// RequireMember returns ErrAccessDenied unless the user is a member. A
// missing room also yields ErrAccessDenied so read paths never confirm
// existence to outsiders.
func (a *AccessControl) RequireMember(ctx context.Context, roomID, userID string) error {
	member, err := a.IsMember(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if !member {
		return ErrAccessDenied
	}
	return nil
}

// RequireOwner returns ErrNotFound for a missing room and ErrAccessDenied
// for a non-owner. Owner-gated operations are write paths where revealing
// existence to the resolved caller is acceptable.
func (a *AccessControl) RequireOwner(ctx context.Context, roomID, userID string) error {
	room, err := a.store.GetRoom(ctx, roomID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if room.OwnerUserID != userID {
		return ErrAccessDenied
	}
	return nil
}
