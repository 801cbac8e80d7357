package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/Dospalko/roomsplit/internal/allocator"
	"github.com/Dospalko/roomsplit/internal/models"
	"github.com/Dospalko/roomsplit/internal/storage"
)

// maxBillAmountCents caps a single bill at 999,999.00 in the room currency.
const maxBillAmountCents = 99_999_900

var periodPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// BillService creates and reads bills. A bill's amount is allocated to the
// room's current members at creation time and the resulting shares are
// persisted atomically with the bill.
type BillService struct {
	store  storage.Store
	access *AccessControl
}

// NewBillService creates a new BillService.
func NewBillService(store storage.Store, access *AccessControl) *BillService {
	return &BillService{store: store, access: access}
}

// CreateBillInput carries the caller-supplied fields of a new bill.
// RuleParams holds percentages for PERCENT and weights for WEIGHT, keyed by
// member ID; it must be empty for EQUAL.
type CreateBillInput struct {
	Title       string
	AmountCents int64
	Period      string
	Rule        models.SplitRule
	RuleParams  map[string]decimal.Decimal
}

// Create validates the input, allocates the amount over the room's current
// members and persists bill plus shares in one transaction. Validation runs
// before allocation and before any write, so a rejected bill leaves zero rows.
func (s *BillService) Create(ctx context.Context, userID, roomID string, in CreateBillInput) (*models.Bill, error) {
	if err := s.access.RequireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}

	v := validation{}
	if n := utf8.RuneCountInString(in.Title); n < 2 || n > 120 {
		v.add("title", "title must be 2-120 characters")
	}
	if in.AmountCents <= 0 {
		v.add("amount", "amount must be positive")
	} else if in.AmountCents > maxBillAmountCents {
		v.add("amount", "amount exceeds the maximum of 999999.00")
	}
	if !periodPattern.MatchString(in.Period) {
		v.add("period", "period must be formatted as YYYY-MM")
	}
	if !in.Rule.Valid() {
		v.add("rule", "rule must be one of EQUAL, PERCENT, WEIGHT")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	members, err := s.store.ListMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, &ValidationError{FieldErrors: map[string]string{"room": "no members in room"}}
	}

	memberIDs := make([]string, len(members))
	for i, m := range members {
		memberIDs[i] = m.ID
	}

	params, err := s.buildParams(in, memberIDs)
	if err != nil {
		return nil, err
	}

	allocated, err := allocator.Allocate(in.AmountCents, memberIDs, params)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate bill: %w", err)
	}

	bill := models.NewBill(roomID, in.Title, in.AmountCents, in.Period, in.Rule, in.RuleParams)
	for _, a := range allocated {
		bill.Shares = append(bill.Shares, models.Share{
			BillID:      bill.ID,
			MemberID:    a.MemberID,
			AmountCents: a.AmountCents,
		})
	}

	if err := s.store.CreateBill(ctx, bill); err != nil {
		return nil, err
	}

	slog.Info("bill created",
		"bill_id", bill.ID,
		"room_id", roomID,
		"amount_cents", bill.AmountCents,
		"rule", bill.Rule,
		"shares", len(bill.Shares),
	)
	return bill, nil
}

// buildParams validates rule parameters against the room's member set and
// converts them into allocator params.
func (s *BillService) buildParams(in CreateBillInput, memberIDs []string) (allocator.Params, error) {
	known := make(map[string]bool, len(memberIDs))
	for _, id := range memberIDs {
		known[id] = true
	}

	v := validation{}
	switch in.Rule {
	case models.RuleEqual:
		if len(in.RuleParams) != 0 {
			v.add("rule_params", "rule params must be empty for EQUAL")
		}
		return allocator.Equal(), v.err()

	case models.RulePercent:
		for id := range in.RuleParams {
			if !known[id] {
				v.add("rule_params", "rule params reference a member not in the room")
				break
			}
		}
		entries := make([]allocator.Entry, 0, len(memberIDs))
		total := decimal.Zero
		for _, id := range memberIDs {
			p, ok := in.RuleParams[id]
			if !ok {
				v.add("rule_params", "every member needs a percentage")
				break
			}
			if p.IsNegative() || p.GreaterThan(decimal.NewFromInt(100)) {
				v.add("rule_params", "percentages must be between 0 and 100")
				break
			}
			if !p.Sub(p.Round(2)).IsZero() {
				v.add("rule_params", "percentages allow at most two decimal places")
				break
			}
			total = total.Add(p)
			entries = append(entries, allocator.Entry{MemberID: id, Value: p})
		}
		if len(v) == 0 && len(memberIDs) > 0 {
			if total.Sub(decimal.NewFromInt(100)).Abs().GreaterThan(decimal.NewFromFloat(0.01)) {
				v.add("rule_params", "percentages must sum to 100")
			}
		}
		return allocator.Percent(entries), v.err()

	case models.RuleWeight:
		for id := range in.RuleParams {
			if !known[id] {
				v.add("rule_params", "rule params reference a member not in the room")
				break
			}
		}
		entries := make([]allocator.Entry, 0, len(memberIDs))
		total := int64(0)
		for _, id := range memberIDs {
			w, ok := in.RuleParams[id]
			if !ok {
				v.add("rule_params", "every member needs a weight")
				break
			}
			if !w.IsInteger() {
				v.add("rule_params", "weights must be whole numbers")
				break
			}
			if w.IsNegative() || w.GreaterThan(decimal.NewFromInt(1000)) {
				v.add("rule_params", "weights must be between 0 and 1000")
				break
			}
			total += w.IntPart()
			entries = append(entries, allocator.Entry{MemberID: id, Value: w})
		}
		if len(v) == 0 && len(memberIDs) > 0 && total <= 0 {
			v.add("rule_params", "at least one weight must be positive")
		}
		return allocator.Weight(entries), v.err()

	default:
		v.add("rule", "rule must be one of EQUAL, PERCENT, WEIGHT")
		return allocator.Params{}, v.err()
	}
}

// Get returns a bill with its shares.
func (s *BillService) Get(ctx context.Context, userID, billID string) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.access.RequireMember(ctx, bill.RoomID, userID); err != nil {
		return nil, err
	}
	return bill, nil
}

// List returns a room's bills newest first, optionally filtered to one
// YYYY-MM period. An empty period means all periods.
func (s *BillService) List(ctx context.Context, userID, roomID, period string) ([]*models.Bill, error) {
	if err := s.access.RequireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}
	if period != "" && !periodPattern.MatchString(period) {
		return nil, &ValidationError{FieldErrors: map[string]string{"period": "period must be formatted as YYYY-MM"}}
	}
	return s.store.ListBills(ctx, roomID, period)
}

// Delete removes a bill and, via cascade, all of its shares.
func (s *BillService) Delete(ctx context.Context, userID, billID string) error {
	bill, err := s.store.GetBill(ctx, billID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := s.access.RequireMember(ctx, bill.RoomID, userID); err != nil {
		return err
	}

	if err := s.store.DeleteBill(ctx, billID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	slog.Info("bill deleted", "bill_id", billID, "room_id", bill.RoomID)
	return nil
}
