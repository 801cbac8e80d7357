package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Dospalko/roomsplit/internal/models"
	"github.com/Dospalko/roomsplit/internal/storage"
)

// RoomService manages rooms, their ledger members, categories and tags.
type RoomService struct {
	store  storage.Store
	access *AccessControl
}

// NewRoomService creates a new RoomService.
func NewRoomService(store storage.Store, access *AccessControl) *RoomService {
	return &RoomService{store: store, access: access}
}

// CreateRoom creates a room owned by the calling user.
func (s *RoomService) CreateRoom(ctx context.Context, userID, name string) (*models.Room, error) {
	name = strings.TrimSpace(name)
	v := validation{}
	if n := utf8.RuneCountInString(name); n < 2 || n > 80 {
		v.add("name", "room name must be 2-80 characters")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	room := models.NewRoom(name, userID)
	if err := s.store.CreateRoom(ctx, room); err != nil {
		return nil, err
	}

	slog.Info("room created", "room_id", room.ID, "owner", userID)
	return room, nil
}

// ListRooms returns the rooms the user owns or has joined.
func (s *RoomService) ListRooms(ctx context.Context, userID string) ([]*models.Room, error) {
	return s.store.ListRoomsForUser(ctx, userID)
}

// GetRoom returns a room the user is a member of. Non-members get the same
// generic denial whether or not the room exists.
func (s *RoomService) GetRoom(ctx context.Context, userID, roomID string) (*models.Room, error) {
	if err := s.access.RequireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}
	room, err := s.store.GetRoom(ctx, roomID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	return room, err
}

// AddMember adds a ledger member to the room. Member mutation requires only
// membership, not ownership.
func (s *RoomService) AddMember(ctx context.Context, userID, roomID, name string) (*models.Member, error) {
	if err := s.access.RequireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	v := validation{}
	if n := utf8.RuneCountInString(name); n < 1 || n > 60 {
		v.add("name", "member name must be 1-60 characters")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	member := models.NewMember(roomID, name)
	if err := s.store.AddMember(ctx, member); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, conflict("member name already taken")
		}
		return nil, err
	}

	slog.Info("member added", "room_id", roomID, "member_id", member.ID)
	return member, nil
}

// ListMembers returns the room's ledger members in ascending-ID order.
func (s *RoomService) ListMembers(ctx context.Context, userID, roomID string) ([]*models.Member, error) {
	if err := s.access.RequireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}
	return s.store.ListMembers(ctx, roomID)
}

// RenameMember changes a member's display name.
func (s *RoomService) RenameMember(ctx context.Context, userID, memberID, name string) (*models.Member, error) {
	member, err := s.store.GetMember(ctx, memberID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.access.RequireMember(ctx, member.RoomID, userID); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	v := validation{}
	if n := utf8.RuneCountInString(name); n < 1 || n > 60 {
		v.add("name", "member name must be 1-60 characters")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	if err := s.store.RenameMember(ctx, memberID, name); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, conflict("member name already taken")
		}
		return nil, err
	}
	member.Name = name
	return member, nil
}

// RemoveMember deletes a member. Only that member's own shares cascade;
// other members' shares and the bills themselves stay.
func (s *RoomService) RemoveMember(ctx context.Context, userID, memberID string) error {
	member, err := s.store.GetMember(ctx, memberID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := s.access.RequireMember(ctx, member.RoomID, userID); err != nil {
		return err
	}

	if err := s.store.DeleteMember(ctx, memberID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	slog.Info("member removed", "room_id", member.RoomID, "member_id", memberID)
	return nil
}

// AddCategory creates a category. Category mutation is owner-only, unlike
// tags which any member may mutate.
func (s *RoomService) AddCategory(ctx context.Context, userID, roomID, name string) (*models.Category, error) {
	if err := s.access.RequireOwner(ctx, roomID, userID); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	v := validation{}
	if n := utf8.RuneCountInString(name); n < 1 || n > 40 {
		v.add("name", "category name must be 1-40 characters")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	category := &models.Category{ID: uuid.New().String(), RoomID: roomID, Name: name}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, conflict("category already exists")
		}
		return nil, err
	}
	return category, nil
}

// ListCategories returns the room's categories.
func (s *RoomService) ListCategories(ctx context.Context, userID, roomID string) ([]*models.Category, error) {
	if err := s.access.RequireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}
	return s.store.ListCategories(ctx, roomID)
}

// DeleteCategory removes a category; owner-only.
func (s *RoomService) DeleteCategory(ctx context.Context, userID, roomID, categoryID string) error {
	if err := s.access.RequireOwner(ctx, roomID, userID); err != nil {
		return err
	}
	if err := s.store.DeleteCategory(ctx, roomID, categoryID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// AddTag creates a tag. Unlike categories, any member may mutate tags.
func (s *RoomService) AddTag(ctx context.Context, userID, roomID, name string) (*models.Tag, error) {
	if err := s.access.RequireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	v := validation{}
	if n := utf8.RuneCountInString(name); n < 1 || n > 40 {
		v.add("name", "tag name must be 1-40 characters")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	tag := &models.Tag{ID: uuid.New().String(), RoomID: roomID, Name: name}
	if err := s.store.CreateTag(ctx, tag); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, conflict("tag already exists")
		}
		return nil, err
	}
	return tag, nil
}

// ListTags returns the room's tags.
func (s *RoomService) ListTags(ctx context.Context, userID, roomID string) ([]*models.Tag, error) {
	if err := s.access.RequireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}
	return s.store.ListTags(ctx, roomID)
}

// DeleteTag removes a tag; member gate only.
func (s *RoomService) DeleteTag(ctx context.Context, userID, roomID, tagID string) error {
	if err := s.access.RequireMember(ctx, roomID, userID); err != nil {
		return err
	}
	if err := s.store.DeleteTag(ctx, roomID, tagID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
