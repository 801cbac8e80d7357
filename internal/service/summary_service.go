package service

import (
	"context"
)

// Summary is a read-time aggregate of one room and period. It is derived
// from the stored shares on every call and never persisted.
type Summary struct {
	RoomID     string          `json:"room_id"`
	Period     string          `json:"period"`
	TotalCents int64           `json:"total_cents"`
	PerMember  []MemberSummary `json:"per_member"`
}

// MemberSummary is one member's slice of a period.
type MemberSummary struct {
	MemberID       string `json:"member_id"`
	Name           string `json:"name"`
	AllocatedCents int64  `json:"allocated_cents"`
	PaidCents      int64  `json:"paid_cents"`
}

// SummaryAggregator computes per-period room summaries.
type SummaryAggregator struct {
	bills  *BillService
	rooms  *RoomService
	access *AccessControl
}

// NewSummaryAggregator creates a new SummaryAggregator.
func NewSummaryAggregator(bills *BillService, rooms *RoomService, access *AccessControl) *SummaryAggregator {
	return &SummaryAggregator{bills: bills, rooms: rooms, access: access}
}

// Summarize totals a room's bills for one period and breaks the amounts down
// per member. Every current member appears in the result, with zeros if
// nothing was allocated to them; a period with no bills yields a zero total.
func (a *SummaryAggregator) Summarize(ctx context.Context, userID, roomID, period string) (*Summary, error) {
	if err := a.access.RequireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}
	if !periodPattern.MatchString(period) {
		return nil, &ValidationError{FieldErrors: map[string]string{"period": "period must be formatted as YYYY-MM"}}
	}

	members, err := a.rooms.store.ListMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}
	bills, err := a.bills.store.ListBills(ctx, roomID, period)
	if err != nil {
		return nil, err
	}

	summary := &Summary{RoomID: roomID, Period: period}
	index := make(map[string]*MemberSummary, len(members))
	for _, m := range members {
		summary.PerMember = append(summary.PerMember, MemberSummary{MemberID: m.ID, Name: m.Name})
		index[m.ID] = &summary.PerMember[len(summary.PerMember)-1]
	}

	for _, bill := range bills {
		summary.TotalCents += bill.AmountCents
		for _, share := range bill.Shares {
			ms, ok := index[share.MemberID]
			if !ok {
				// Removed members lose their shares via cascade, so
				// every stored share resolves to a current member.
				continue
			}
			ms.AllocatedCents += share.AmountCents
			if share.Paid {
				ms.PaidCents += share.AmountCents
			}
		}
	}

	return summary, nil
}
