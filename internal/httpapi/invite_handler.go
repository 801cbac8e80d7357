package httpapi

import (
	"net/http"

	"github.com/Dospalko/roomsplit/internal/middleware"
	"github.com/Dospalko/roomsplit/internal/service"
)

// InviteHandler serves the invite lifecycle and the join endpoint.
type InviteHandler struct {
	invites *service.InviteService
}

// NewInviteHandler creates a new InviteHandler.
func NewInviteHandler(invites *service.InviteService) *InviteHandler {
	return &InviteHandler{invites: invites}
}

type createInviteRequest struct {
	ExpiresInDays int64  `json:"expires_in_days,omitempty"`
	MaxUses       *int64 `json:"max_uses,omitempty"`
}

func (h *InviteHandler) CreateInvite(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	var req createInviteRequest
	if err := decode(r, &req); err != nil {
		respondError(w, err)
		return
	}

	invite, err := h.invites.Create(r.Context(), userID, r.PathValue("roomID"), service.CreateInviteInput{
		ExpiresInDays: req.ExpiresInDays,
		MaxUses:       req.MaxUses,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewInvite(invite))
}

func (h *InviteHandler) ListInvites(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	invites, err := h.invites.List(r.Context(), userID, r.PathValue("roomID"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewInvites(invites))
}

func (h *InviteHandler) DeactivateInvite(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	err := h.invites.Deactivate(r.Context(), userID, r.PathValue("roomID"), r.PathValue("inviteID"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *InviteHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r.Context())

	room, err := h.invites.Redeem(r.Context(), userID, r.PathValue("code"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewRoom(room))
}
