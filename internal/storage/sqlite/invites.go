package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dospalko/roomsplit/internal/models"
	"github.com/Dospalko/roomsplit/internal/storage"
)

const inviteColumns = "id, room_id, code, expires_at, max_uses, used_count, is_active, created_at"

// CreateInvite inserts a new invite.
func (s *SQLiteStore) CreateInvite(ctx context.Context, invite *models.Invite) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO invites (id, room_id, code, expires_at, max_uses, used_count, is_active, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		invite.ID, invite.RoomID, invite.Code, invite.ExpiresAt, nullableInt(invite.MaxUses), invite.UsedCount, invite.IsActive, invite.CreatedAt,
	)
	if isUniqueViolation(err) {
		// The code column is unique; a collision in practice means the
		// caller should mint a new code and retry.
		return fmt.Errorf("invite code: %w", storage.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}
	return nil
}

// GetInvite retrieves an invite by ID.
func (s *SQLiteStore) GetInvite(ctx context.Context, id string) (*models.Invite, error) {
	invite, err := scanInvite(s.db.QueryRowContext(ctx,
		"SELECT "+inviteColumns+" FROM invites WHERE id = ?", id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invite %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return invite, nil
}

// GetInviteByCode retrieves an invite by its opaque code.
func (s *SQLiteStore) GetInviteByCode(ctx context.Context, code string) (*models.Invite, error) {
	invite, err := scanInvite(s.db.QueryRowContext(ctx,
		"SELECT "+inviteColumns+" FROM invites WHERE code = ?", code,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invite code: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite by code: %w", err)
	}
	return invite, nil
}

// ListInvites returns the room's invites newest-first.
func (s *SQLiteStore) ListInvites(ctx context.Context, roomID string) ([]*models.Invite, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+inviteColumns+" FROM invites WHERE room_id = ? ORDER BY created_at DESC, id DESC",
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	var invites []*models.Invite
	for rows.Next() {
		invite, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		invites = append(invites, invite)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invites: %w", err)
	}
	return invites, nil
}

// DeactivateInvite soft-disables an invite. Invites are never hard-deleted.
func (s *SQLiteStore) DeactivateInvite(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE invites SET is_active = 0 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to deactivate invite: %w", err)
	}
	return requireRow(res, "invite", id)
}

// RedeemInvite admits the user in a single transaction. The exhaustion
// check and the used_count increment are one conditional UPDATE, not a
// read-then-write, so two redemptions racing for the last use cannot both
// win; the loser sees zero rows affected and fails with ErrInviteExhausted.
// Redemption by an existing room member commits nothing and consumes no use.
func (s *SQLiteStore) RedeemInvite(ctx context.Context, code, userID string, now time.Time) (*models.Invite, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	invite, err := scanInvite(tx.QueryRowContext(ctx,
		"SELECT "+inviteColumns+" FROM invites WHERE code = ?", code,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invite code: %w", storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}

	switch {
	case !invite.IsActive:
		return nil, storage.ErrInviteInactive
	case invite.Expired(now):
		return nil, storage.ErrInviteExpired
	case invite.Exhausted():
		return nil, storage.ErrInviteExhausted
	}

	var alreadyMember bool
	err = tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM room_members WHERE room_id = ? AND user_id = ?)",
		invite.RoomID, userID,
	).Scan(&alreadyMember)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing membership: %w", err)
	}
	if alreadyMember {
		return invite, nil
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE invites
		 SET used_count = used_count + 1
		 WHERE id = ? AND is_active = 1 AND expires_at > ?
		   AND (max_uses IS NULL OR used_count < max_uses)`,
		invite.ID, now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to redeem invite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return nil, storage.ErrInviteExhausted
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO room_members (room_id, user_id, joined_at) VALUES (?, ?, ?)",
		invite.RoomID, userID, now.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert room member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit redemption: %w", err)
	}

	invite.UsedCount++
	return invite, nil
}

func scanInvite(row rowScanner) (*models.Invite, error) {
	invite := &models.Invite{}
	var maxUses sql.NullInt64
	if err := row.Scan(&invite.ID, &invite.RoomID, &invite.Code, &invite.ExpiresAt, &maxUses, &invite.UsedCount, &invite.IsActive, &invite.CreatedAt); err != nil {
		return nil, err
	}
	if maxUses.Valid {
		invite.MaxUses = &maxUses.Int64
	}
	return invite, nil
}

func nullableInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
