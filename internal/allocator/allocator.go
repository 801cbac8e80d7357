// Package allocator converts an integer bill amount into exact-cent
// per-member shares. All arithmetic is integer or decimal based; the sum of
// the returned shares always equals the input amount exactly.
package allocator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Dospalko/roomsplit/internal/models"
)

// Entry is one member's percent or weight value.
type Entry struct {
	MemberID string
	Value    decimal.Decimal
}

// Params is a tagged variant over the three split rules. EQUAL carries no
// values; PERCENT and WEIGHT carry per-member entries. Using a variant
// instead of a loose rule+map pair removes rule-conditional presence checks
// from callers.
type Params struct {
	rule    models.SplitRule
	entries []Entry
}

// Equal returns params for an even split.
func Equal() Params {
	return Params{rule: models.RuleEqual}
}

// Percent returns params for a percentage split. The caller guarantees the
// percents sum to 100 within ±0.01; that precondition is validated by the
// bill service before allocation.
func Percent(entries []Entry) Params {
	return Params{rule: models.RulePercent, entries: entries}
}

// Weight returns params for a weighted split.
func Weight(entries []Entry) Params {
	return Params{rule: models.RuleWeight, entries: entries}
}

// Rule returns the rule this variant carries.
func (p Params) Rule() models.SplitRule {
	return p.rule
}

// Share is one member's allocated amount in integer cents.
type Share struct {
	MemberID    string
	AmountCents int64
}

var hundred = decimal.NewFromInt(100)

// Allocate splits amountCents among the participants under the given rule.
// Participants are processed in ascending-ID order regardless of input
// order, so remainder cents land deterministically. The returned shares are
// in that same order, are never negative, and sum to amountCents exactly.
func Allocate(amountCents int64, participantIDs []string, params Params) ([]Share, error) {
	if len(participantIDs) == 0 {
		return nil, fmt.Errorf("must have at least one participant")
	}
	if amountCents <= 0 {
		return nil, fmt.Errorf("amount must be a positive number of cents, got %d", amountCents)
	}

	// Explicit stable order: sorted copy, never caller or map order.
	ids := make([]string, len(participantIDs))
	copy(ids, participantIDs)
	sort.Strings(ids)
	for i := 1; i < len(ids); i++ {
		if ids[i] == ids[i-1] {
			return nil, fmt.Errorf("duplicate participant %q", ids[i])
		}
	}

	switch params.rule {
	case models.RuleEqual:
		return allocateEqual(amountCents, ids), nil
	case models.RulePercent:
		return allocatePercent(amountCents, ids, params.entries)
	case models.RuleWeight:
		return allocateWeight(amountCents, ids, params.entries)
	default:
		return nil, fmt.Errorf("unknown split rule %q", params.rule)
	}
}

func allocateEqual(amountCents int64, ids []string) []Share {
	n := int64(len(ids))
	base := amountCents / n
	remainder := amountCents - base*n

	shares := make([]Share, len(ids))
	for i, id := range ids {
		cents := base
		if int64(i) < remainder {
			cents++
		}
		shares[i] = Share{MemberID: id, AmountCents: cents}
	}
	return shares
}

func allocatePercent(amountCents int64, ids []string, entries []Entry) ([]Share, error) {
	values, err := valuesByMember(ids, entries)
	if err != nil {
		return nil, err
	}

	amount := decimal.NewFromInt(amountCents)
	shares := make([]Share, len(ids))
	var allocated int64
	for i, id := range ids {
		// floor(amount * percent / 100); IntPart truncates, and all
		// inputs are non-negative.
		cents := amount.Mul(values[id]).Shift(-2).IntPart()
		shares[i] = Share{MemberID: id, AmountCents: cents}
		allocated += cents
	}

	leftover := amountCents - allocated
	if leftover < 0 {
		return nil, fmt.Errorf("percents allocate %d cents over the bill amount", -leftover)
	}
	distribute(shares, leftover)
	return shares, nil
}

func allocateWeight(amountCents int64, ids []string, entries []Entry) ([]Share, error) {
	values, err := valuesByMember(ids, entries)
	if err != nil {
		return nil, err
	}

	var totalWeight int64
	weights := make(map[string]int64, len(ids))
	for id, v := range values {
		w := v.IntPart()
		weights[id] = w
		totalWeight += w
	}
	if totalWeight <= 0 {
		return nil, fmt.Errorf("total weight must be positive, got %d", totalWeight)
	}

	shares := make([]Share, len(ids))
	var allocated int64
	for i, id := range ids {
		cents := amountCents * weights[id] / totalWeight
		shares[i] = Share{MemberID: id, AmountCents: cents}
		allocated += cents
	}

	distribute(shares, amountCents-allocated)
	return shares, nil
}

// valuesByMember indexes entries by member. Every participant must have a
// non-negative value.
func valuesByMember(ids []string, entries []Entry) (map[string]decimal.Decimal, error) {
	values := make(map[string]decimal.Decimal, len(entries))
	for _, e := range entries {
		if e.Value.IsNegative() {
			return nil, fmt.Errorf("negative value for member %q", e.MemberID)
		}
		values[e.MemberID] = e.Value
	}
	for _, id := range ids {
		if _, ok := values[id]; !ok {
			return nil, fmt.Errorf("missing value for member %q", id)
		}
	}
	return values, nil
}

// distribute hands out leftover cents one at a time in stable order until
// exhausted.
func distribute(shares []Share, leftover int64) {
	for i := 0; leftover > 0; i = (i + 1) % len(shares) {
		shares[i].AmountCents++
		leftover--
	}
}
