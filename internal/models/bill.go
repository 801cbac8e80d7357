package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SplitRule selects how a bill's amount is divided among members.
type SplitRule string

const (
	// RuleEqual splits the amount evenly, extra cents going to the
	// members first in ascending-ID order.
	RuleEqual SplitRule = "EQUAL"

	// RulePercent splits by per-member percentages summing to 100.
	RulePercent SplitRule = "PERCENT"

	// RuleWeight splits proportionally to per-member integer weights.
	RuleWeight SplitRule = "WEIGHT"
)

// Valid reports whether the rule is one of the three known rules.
func (r SplitRule) Valid() bool {
	switch r {
	case RuleEqual, RulePercent, RuleWeight:
		return true
	}
	return false
}

// Bill represents one dated expense split among a room's members.
// A bill and its shares are written atomically and never change afterwards,
// except for each share's Paid flag.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// RoomID is the room this bill belongs to.
	RoomID string

	// Title is the human-readable description, 2-120 characters.
	Title string

	// AmountCents is the full bill amount in integer minor units.
	// The sum of the shares' AmountCents always equals this exactly.
	AmountCents int64

	// Period is the "YYYY-MM" billing cycle used to group bills.
	Period string

	// Rule is the allocation rule used when the bill was created.
	Rule SplitRule

	// RuleParams holds the per-member percent or weight values, keyed by
	// member ID. Empty for EQUAL bills.
	RuleParams map[string]decimal.Decimal

	// Shares are the per-member obligations, one per room member at the
	// time of creation.
	Shares []Share

	// CreatedAt is the Unix timestamp when the bill was created.
	CreatedAt int64
}

// NewBill creates a bill with a generated ID. Shares are attached by the
// allocation step before the bill is persisted.
func NewBill(roomID, title string, amountCents int64, period string, rule SplitRule, ruleParams map[string]decimal.Decimal) *Bill {
	return &Bill{
		ID:          uuid.New().String(),
		RoomID:      roomID,
		Title:       title,
		AmountCents: amountCents,
		Period:      period,
		Rule:        rule,
		RuleParams:  ruleParams,
		CreatedAt:   time.Now().Unix(),
	}
}

// Share is one member's monetary obligation for one bill.
type Share struct {
	ID          string
	BillID      string
	MemberID    string
	AmountCents int64

	// Paid marks whether the member has settled this share. It is the
	// only mutable field on a persisted bill.
	Paid bool
}
