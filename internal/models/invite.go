package models

import "time"

// Invite is a time/use-limited token that admits a user into a room when
// redeemed. Invites are only ever mutated by incrementing UsedCount on
// redemption or by clearing IsActive; they are never hard-deleted.
type Invite struct {
	ID     string
	RoomID string

	// Code is the opaque token embedded in join URLs. Unique.
	Code string

	// ExpiresAt is the Unix timestamp after which the invite is unusable.
	ExpiresAt int64

	// MaxUses caps redemptions when set; nil means unlimited.
	// Invariant: UsedCount <= *MaxUses.
	MaxUses *int64

	// UsedCount is the number of successful redemptions so far.
	UsedCount int64

	// IsActive is the only persisted lifecycle flag. Expiry and
	// exhaustion are derived at read time, never stored.
	IsActive bool

	CreatedAt int64
}

// Expired reports whether the invite's deadline has passed.
func (i *Invite) Expired(now time.Time) bool {
	return now.Unix() >= i.ExpiresAt
}

// Exhausted reports whether the invite's use cap has been reached.
func (i *Invite) Exhausted() bool {
	return i.MaxUses != nil && i.UsedCount >= *i.MaxUses
}

// Usable reports whether the invite can still be redeemed.
func (i *Invite) Usable(now time.Time) bool {
	return i.IsActive && !i.Expired(now) && !i.Exhausted()
}
