package httpapi

import (
	"github.com/shopspring/decimal"

	"github.com/Dospalko/roomsplit/internal/models"
	"github.com/Dospalko/roomsplit/internal/service"
)

// Wire representations. Money goes out both as integer cents and as a
// formatted decimal string so clients never re-derive one from the other.

type userView struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

func viewUser(u *models.User) userView {
	return userView{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

type roomView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	OwnerUserID string `json:"owner_user_id"`
	CreatedAt   int64  `json:"created_at"`
}

func viewRoom(r *models.Room) roomView {
	return roomView{ID: r.ID, Name: r.Name, OwnerUserID: r.OwnerUserID, CreatedAt: r.CreatedAt}
}

func viewRooms(rooms []*models.Room) []roomView {
	out := make([]roomView, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, viewRoom(r))
	}
	return out
}

type memberView struct {
	ID        string `json:"id"`
	RoomID    string `json:"room_id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

func viewMember(m *models.Member) memberView {
	return memberView{ID: m.ID, RoomID: m.RoomID, Name: m.Name, CreatedAt: m.CreatedAt}
}

func viewMembers(members []*models.Member) []memberView {
	out := make([]memberView, 0, len(members))
	for _, m := range members {
		out = append(out, viewMember(m))
	}
	return out
}

type shareView struct {
	ID          string `json:"id"`
	MemberID    string `json:"member_id"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Paid        bool   `json:"paid"`
}

func viewShare(s models.Share) shareView {
	return shareView{
		ID:          s.ID,
		MemberID:    s.MemberID,
		AmountCents: s.AmountCents,
		Amount:      formatCents(s.AmountCents),
		Paid:        s.Paid,
	}
}

type billView struct {
	ID          string      `json:"id"`
	RoomID      string      `json:"room_id"`
	Title       string      `json:"title"`
	AmountCents int64       `json:"amount_cents"`
	Amount      string      `json:"amount"`
	Period      string      `json:"period"`
	Rule        string      `json:"rule"`
	Shares      []shareView `json:"shares"`
	CreatedAt   int64       `json:"created_at"`
}

func viewBill(b *models.Bill) billView {
	shares := make([]shareView, 0, len(b.Shares))
	for _, s := range b.Shares {
		shares = append(shares, viewShare(s))
	}
	return billView{
		ID:          b.ID,
		RoomID:      b.RoomID,
		Title:       b.Title,
		AmountCents: b.AmountCents,
		Amount:      formatCents(b.AmountCents),
		Period:      b.Period,
		Rule:        string(b.Rule),
		Shares:      shares,
		CreatedAt:   b.CreatedAt,
	}
}

func viewBills(bills []*models.Bill) []billView {
	out := make([]billView, 0, len(bills))
	for _, b := range bills {
		out = append(out, viewBill(b))
	}
	return out
}

type labelView struct {
	ID     string `json:"id"`
	RoomID string `json:"room_id"`
	Name   string `json:"name"`
}

func viewCategory(c *models.Category) labelView {
	return labelView{ID: c.ID, RoomID: c.RoomID, Name: c.Name}
}

func viewCategories(categories []*models.Category) []labelView {
	out := make([]labelView, 0, len(categories))
	for _, c := range categories {
		out = append(out, viewCategory(c))
	}
	return out
}

func viewTag(t *models.Tag) labelView {
	return labelView{ID: t.ID, RoomID: t.RoomID, Name: t.Name}
}

func viewTags(tags []*models.Tag) []labelView {
	out := make([]labelView, 0, len(tags))
	for _, t := range tags {
		out = append(out, viewTag(t))
	}
	return out
}

type inviteView struct {
	ID        string `json:"id"`
	RoomID    string `json:"room_id"`
	Code      string `json:"code"`
	ExpiresAt int64  `json:"expires_at"`
	MaxUses   *int64 `json:"max_uses"`
	UsedCount int64  `json:"used_count"`
	IsActive  bool   `json:"is_active"`
	CreatedAt int64  `json:"created_at"`
}

func viewInvite(i *models.Invite) inviteView {
	return inviteView{
		ID:        i.ID,
		RoomID:    i.RoomID,
		Code:      i.Code,
		ExpiresAt: i.ExpiresAt,
		MaxUses:   i.MaxUses,
		UsedCount: i.UsedCount,
		IsActive:  i.IsActive,
		CreatedAt: i.CreatedAt,
	}
}

func viewInvites(invites []*models.Invite) []inviteView {
	out := make([]inviteView, 0, len(invites))
	for _, i := range invites {
		out = append(out, viewInvite(i))
	}
	return out
}

// formatCents renders integer cents as a two-decimal string, e.g. "123.40".
func formatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

// parseAmount converts a decimal amount into integer cents, rejecting more
// than two decimal places and cent values that do not fit in int64.
func parseAmount(amount decimal.Decimal) (int64, error) {
	if !amount.Sub(amount.Round(2)).IsZero() {
		return 0, &service.ValidationError{FieldErrors: map[string]string{
			"amount": "amount allows at most two decimal places",
		}}
	}

	// IntPart truncates out-of-range values instead of failing, so an
	// absurd amount could wrap into a small plausible one. Round-trip the
	// conversion and reject on mismatch.
	cents := amount.Shift(2)
	n := cents.IntPart()
	if !cents.Equal(decimal.NewFromInt(n)) {
		return 0, &service.ValidationError{FieldErrors: map[string]string{
			"amount": "amount is out of range",
		}}
	}
	return n, nil
}
