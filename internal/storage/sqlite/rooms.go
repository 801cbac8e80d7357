package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dospalko/roomsplit/internal/models"
	"github.com/Dospalko/roomsplit/internal/storage"
)

// CreateRoom inserts a new room.
func (s *SQLiteStore) CreateRoom(ctx context.Context, room *models.Room) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO rooms (id, name, owner_user_id, created_at) VALUES (?, ?, ?, ?)",
		room.ID, room.Name, room.OwnerUserID, room.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

// GetRoom retrieves a room by ID.
func (s *SQLiteStore) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	room := &models.Room{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, owner_user_id, created_at FROM rooms WHERE id = ?",
		id,
	).Scan(&room.ID, &room.Name, &room.OwnerUserID, &room.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("room %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return room, nil
}

// ListRoomsForUser returns rooms the user owns or has joined, newest first.
func (s *SQLiteStore) ListRoomsForUser(ctx context.Context, userID string) ([]*models.Room, error) {
	query := `
		SELECT DISTINCT r.id, r.name, r.owner_user_id, r.created_at
		FROM rooms r
		LEFT JOIN room_members rm ON rm.room_id = r.id
		WHERE r.owner_user_id = ? OR rm.user_id = ?
		ORDER BY r.created_at DESC, r.id
	`
	rows, err := s.db.QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*models.Room
	for rows.Next() {
		room := &models.Room{}
		if err := rows.Scan(&room.ID, &room.Name, &room.OwnerUserID, &room.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rooms: %w", err)
	}
	return rooms, nil
}

// IsRoomMember reports whether a room_members row exists for the pair.
// Ownership is not consulted here; the access layer treats owners as
// members on its own.
func (s *SQLiteStore) IsRoomMember(ctx context.Context, roomID, userID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM room_members WHERE room_id = ? AND user_id = ?)",
		roomID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check room membership: %w", err)
	}
	return exists, nil
}

// AddMember inserts a ledger member into a room.
func (s *SQLiteStore) AddMember(ctx context.Context, member *models.Member) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO members (id, room_id, name, created_at) VALUES (?, ?, ?, ?)",
		member.ID, member.RoomID, member.Name, member.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("member %q: %w", member.Name, storage.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// GetMember retrieves a member by ID.
func (s *SQLiteStore) GetMember(ctx context.Context, id string) (*models.Member, error) {
	member := &models.Member{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, room_id, name, created_at FROM members WHERE id = ?",
		id,
	).Scan(&member.ID, &member.RoomID, &member.Name, &member.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return member, nil
}

// ListMembers returns the room's members in ascending-ID order, the same
// order the allocator uses.
func (s *SQLiteStore) ListMembers(ctx context.Context, roomID string) ([]*models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, room_id, name, created_at FROM members WHERE room_id = ? ORDER BY id",
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member := &models.Member{}
		if err := rows.Scan(&member.ID, &member.RoomID, &member.Name, &member.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// RenameMember updates a member's display name.
func (s *SQLiteStore) RenameMember(ctx context.Context, id, name string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE members SET name = ? WHERE id = ?", name, id)
	if isUniqueViolation(err) {
		return fmt.Errorf("member %q: %w", name, storage.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to rename member: %w", err)
	}
	return requireRow(res, "member", id)
}

// DeleteMember removes a member; the member's shares cascade via the
// shares.member_id foreign key.
func (s *SQLiteStore) DeleteMember(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM members WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return requireRow(res, "member", id)
}

// CreateCategory inserts a category.
func (s *SQLiteStore) CreateCategory(ctx context.Context, category *models.Category) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (id, room_id, name) VALUES (?, ?, ?)",
		category.ID, category.RoomID, category.Name,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("category %q: %w", category.Name, storage.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// ListCategories returns the room's categories by name.
func (s *SQLiteStore) ListCategories(ctx context.Context, roomID string) ([]*models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, room_id, name FROM categories WHERE room_id = ? ORDER BY name",
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.RoomID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

// DeleteCategory removes a category by ID within the given room.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, roomID, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ? AND room_id = ?", id, roomID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return requireRow(res, "category", id)
}

// CreateTag inserts a tag.
func (s *SQLiteStore) CreateTag(ctx context.Context, tag *models.Tag) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tags (id, room_id, name) VALUES (?, ?, ?)",
		tag.ID, tag.RoomID, tag.Name,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("tag %q: %w", tag.Name, storage.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}
	return nil
}

// ListTags returns the room's tags by name.
func (s *SQLiteStore) ListTags(ctx context.Context, roomID string) ([]*models.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, room_id, name FROM tags WHERE room_id = ? ORDER BY name",
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []*models.Tag
	for rows.Next() {
		tag := &models.Tag{}
		if err := rows.Scan(&tag.ID, &tag.RoomID, &tag.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return tags, nil
}

// DeleteTag removes a tag by ID within the given room.
func (s *SQLiteStore) DeleteTag(ctx context.Context, roomID, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tags WHERE id = ? AND room_id = ?", id, roomID)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	return requireRow(res, "tag", id)
}

// requireRow converts a zero-row update or delete into ErrNotFound.
func requireRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}
