package httpapi

import (
	"net/http"

	"github.com/Dospalko/roomsplit/internal/middleware"
	"github.com/Dospalko/roomsplit/internal/service"
)

// RoomHandler serves rooms, members, categories, tags and summaries.
type RoomHandler struct {
	rooms     *service.RoomService
	summaries *service.SummaryAggregator
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(rooms *service.RoomService, summaries *service.SummaryAggregator) *RoomHandler {
	return &RoomHandler{rooms: rooms, summaries: summaries}
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req nameRequest
	if err := decode(r, &req); err != nil {
		respondError(w, err)
		return
	}

	room, err := h.rooms.CreateRoom(r.Context(), userID, req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewRoom(room))
}

func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	rooms, err := h.rooms.ListRooms(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewRooms(rooms))
}

func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	room, err := h.rooms.GetRoom(r.Context(), userID, r.PathValue("roomID"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewRoom(room))
}

func (h *RoomHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req nameRequest
	if err := decode(r, &req); err != nil {
		respondError(w, err)
		return
	}

	member, err := h.rooms.AddMember(r.Context(), userID, r.PathValue("roomID"), req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewMember(member))
}

func (h *RoomHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	members, err := h.rooms.ListMembers(r.Context(), userID, r.PathValue("roomID"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewMembers(members))
}

func (h *RoomHandler) RenameMember(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req nameRequest
	if err := decode(r, &req); err != nil {
		respondError(w, err)
		return
	}

	member, err := h.rooms.RenameMember(r.Context(), userID, r.PathValue("memberID"), req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewMember(member))
}

func (h *RoomHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	if err := h.rooms.RemoveMember(r.Context(), userID, r.PathValue("memberID")); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *RoomHandler) AddCategory(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req nameRequest
	if err := decode(r, &req); err != nil {
		respondError(w, err)
		return
	}

	category, err := h.rooms.AddCategory(r.Context(), userID, r.PathValue("roomID"), req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewCategory(category))
}

func (h *RoomHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	categories, err := h.rooms.ListCategories(r.Context(), userID, r.PathValue("roomID"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewCategories(categories))
}

func (h *RoomHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	err := h.rooms.DeleteCategory(r.Context(), userID, r.PathValue("roomID"), r.PathValue("categoryID"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *RoomHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req nameRequest
	if err := decode(r, &req); err != nil {
		respondError(w, err)
		return
	}

	tag, err := h.rooms.AddTag(r.Context(), userID, r.PathValue("roomID"), req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewTag(tag))
}

func (h *RoomHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	tags, err := h.rooms.ListTags(r.Context(), userID, r.PathValue("roomID"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewTags(tags))
}

func (h *RoomHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	err := h.rooms.DeleteTag(r.Context(), userID, r.PathValue("roomID"), r.PathValue("tagID"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *RoomHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	summary, err := h.summaries.Summarize(r.Context(), userID, r.PathValue("roomID"), r.URL.Query().Get("period"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
