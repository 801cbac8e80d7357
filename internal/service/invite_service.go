package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Dospalko/roomsplit/internal/models"
	"github.com/Dospalko/roomsplit/internal/storage"
)

const (
	defaultInviteTTLDays = 7
	maxInviteTTLDays     = 90
	maxInviteUses        = 1000
	codeCreateAttempts   = 5
)

// InviteService manages the invite lifecycle: owners mint codes, anyone with
// a valid code joins the room. Invites are deactivated, never deleted, so a
// redeemed code's history stays auditable.
type InviteService struct {
	store  storage.Store
	access *AccessControl
	now    func() time.Time
}

// NewInviteService creates a new InviteService.
func NewInviteService(store storage.Store, access *AccessControl) *InviteService {
	return &InviteService{store: store, access: access, now: time.Now}
}

// CreateInviteInput carries the optional limits on a new invite. Zero
// ExpiresInDays means the default of 7; a nil MaxUses means unlimited.
type CreateInviteInput struct {
	ExpiresInDays int64
	MaxUses       *int64
}

// Create mints a new invite code for the room. Owner only.
func (s *InviteService) Create(ctx context.Context, userID, roomID string, in CreateInviteInput) (*models.Invite, error) {
	if err := s.access.RequireOwner(ctx, roomID, userID); err != nil {
		return nil, err
	}

	v := validation{}
	days := in.ExpiresInDays
	if days == 0 {
		days = defaultInviteTTLDays
	}
	if days < 0 || days > maxInviteTTLDays {
		v.add("expires_in_days", "expiry must be between 1 and 90 days")
	}
	if in.MaxUses != nil && (*in.MaxUses < 1 || *in.MaxUses > maxInviteUses) {
		v.add("max_uses", "max uses must be between 1 and 1000")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	now := s.now()
	invite := &models.Invite{
		ID:        uuid.New().String(),
		RoomID:    roomID,
		ExpiresAt: now.AddDate(0, 0, int(days)).Unix(),
		MaxUses:   in.MaxUses,
		IsActive:  true,
		CreatedAt: now.Unix(),
	}

	// Codes are random enough that collisions are rare; retry a few times
	// on the unique-code constraint rather than coordinate generation.
	for attempt := 0; attempt < codeCreateAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return nil, err
		}
		invite.Code = code

		err = s.store.CreateInvite(ctx, invite)
		if errors.Is(err, storage.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, err
		}

		slog.Info("invite created", "invite_id", invite.ID, "room_id", roomID, "expires_at", invite.ExpiresAt)
		return invite, nil
	}
	return nil, fmt.Errorf("failed to generate a unique invite code")
}

// generateCode returns a 16-character hex code.
func generateCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invite code: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Redeem joins the calling user to the invite's room. Redeeming a room the
// user already belongs to succeeds without consuming a use; the owner's own
// codes are rejected.
func (s *InviteService) Redeem(ctx context.Context, userID, code string) (*models.Room, error) {
	invite, err := s.store.GetInviteByCode(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	// Invite state takes precedence over the ownership conflict: an owner
	// redeeming a dead code learns the code is dead, not that they own it.
	now := s.now()
	switch {
	case !invite.IsActive:
		return nil, conflict("invite has been deactivated")
	case invite.Expired(now):
		return nil, conflict("invite has expired")
	case invite.Exhausted():
		return nil, conflict("invite has no uses left")
	}

	room, err := s.store.GetRoom(ctx, invite.RoomID)
	if err != nil {
		return nil, err
	}
	if room.OwnerUserID == userID {
		return nil, conflict("you already own this room")
	}

	redeemed, err := s.store.RedeemInvite(ctx, code, userID, now)
	switch {
	case errors.Is(err, storage.ErrInviteInactive):
		return nil, conflict("invite has been deactivated")
	case errors.Is(err, storage.ErrInviteExpired):
		return nil, conflict("invite has expired")
	case errors.Is(err, storage.ErrInviteExhausted):
		return nil, conflict("invite has no uses left")
	case err != nil:
		return nil, err
	}

	slog.Info("invite redeemed",
		"invite_id", redeemed.ID,
		"room_id", room.ID,
		"user_id", userID,
		"used_count", redeemed.UsedCount,
	)
	return room, nil
}

// List returns the room's invites, active or not. Owner only.
func (s *InviteService) List(ctx context.Context, userID, roomID string) ([]*models.Invite, error) {
	if err := s.access.RequireOwner(ctx, roomID, userID); err != nil {
		return nil, err
	}
	return s.store.ListInvites(ctx, roomID)
}

// Deactivate retires an invite so it can no longer be redeemed. Owner only
// and idempotent.
func (s *InviteService) Deactivate(ctx context.Context, userID, roomID, inviteID string) error {
	if err := s.access.RequireOwner(ctx, roomID, userID); err != nil {
		return err
	}

	invite, err := s.store.GetInvite(ctx, inviteID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if invite.RoomID != roomID {
		return ErrNotFound
	}

	if err := s.store.DeactivateInvite(ctx, inviteID); err != nil {
		return err
	}
	slog.Info("invite deactivated", "invite_id", inviteID, "room_id", roomID)
	return nil
}
