package allocator

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

func pct(memberID, value string) Entry {
	return Entry{MemberID: memberID, Value: decimal.RequireFromString(value)}
}

func sum(shares []Share) int64 {
	var total int64
	for _, s := range shares {
		total += s.AmountCents
	}
	return total
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name         string
		amountCents  int64
		participants []string
		params       Params
		wantErr      bool
		want         []int64 // per participant, ascending-ID order
	}{
		{
			name:         "equal 10000 over 3, lowest ID gets the extra cent",
			amountCents:  10000,
			participants: []string{"c", "a", "b"},
			params:       Equal(),
			want:         []int64{3334, 3333, 3333},
		},
		{
			name:         "equal 9999 over 3 divides evenly",
			amountCents:  9999,
			participants: []string{"a", "b", "c"},
			params:       Equal(),
			want:         []int64{3333, 3333, 3333},
		},
		{
			name:         "equal single participant",
			amountCents:  1,
			participants: []string{"a"},
			params:       Equal(),
			want:         []int64{1},
		},
		{
			name:         "percent 33.33/33.33/33.34",
			amountCents:  10000,
			participants: []string{"a", "b", "c"},
			params:       Percent([]Entry{pct("a", "33.33"), pct("b", "33.33"), pct("c", "33.34")}),
			want:         []int64{3333, 3333, 3334},
		},
		{
			name:         "percent leftover cents go to stable order",
			amountCents:  100,
			participants: []string{"b", "a", "c"},
			params:       Percent([]Entry{pct("a", "33.33"), pct("b", "33.33"), pct("c", "33.33")}),
			// raw floors are 33/33/33, the tolerated 0.01 shortfall
			// leaves one cent for the first ID.
			want: []int64{34, 33, 33},
		},
		{
			name:         "percent 100 to one member",
			amountCents:  555,
			participants: []string{"a", "b"},
			params:       Percent([]Entry{pct("a", "100"), pct("b", "0")}),
			want:         []int64{555, 0},
		},
		{
			name:         "weight 1/2/3",
			amountCents:  600,
			participants: []string{"a", "b", "c"},
			params:       Weight([]Entry{pct("a", "1"), pct("b", "2"), pct("c", "3")}),
			want:         []int64{100, 200, 300},
		},
		{
			name:         "weight with remainder",
			amountCents:  100,
			participants: []string{"a", "b", "c"},
			params:       Weight([]Entry{pct("a", "1"), pct("b", "1"), pct("c", "1")}),
			want:         []int64{34, 33, 33},
		},
		{
			name:         "zero participants rejected",
			amountCents:  100,
			participants: nil,
			params:       Equal(),
			wantErr:      true,
		},
		{
			name:         "non-positive amount rejected",
			amountCents:  0,
			participants: []string{"a"},
			params:       Equal(),
			wantErr:      true,
		},
		{
			name:         "zero total weight rejected",
			amountCents:  100,
			participants: []string{"a", "b"},
			params:       Weight([]Entry{pct("a", "0"), pct("b", "0")}),
			wantErr:      true,
		},
		{
			name:         "missing percent entry rejected",
			amountCents:  100,
			participants: []string{"a", "b"},
			params:       Percent([]Entry{pct("a", "100")}),
			wantErr:      true,
		},
		{
			name:         "negative weight rejected",
			amountCents:  100,
			participants: []string{"a", "b"},
			params:       Weight([]Entry{pct("a", "-1"), pct("b", "2")}),
			wantErr:      true,
		},
		{
			name:         "duplicate participant rejected",
			amountCents:  100,
			participants: []string{"a", "a"},
			params:       Equal(),
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := Allocate(tt.amountCents, tt.participants, tt.params)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Allocate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if got := sum(shares); got != tt.amountCents {
				t.Errorf("shares sum = %d, want %d", got, tt.amountCents)
			}
			if len(shares) != len(tt.want) {
				t.Fatalf("got %d shares, want %d", len(shares), len(tt.want))
			}
			for i, w := range tt.want {
				if shares[i].AmountCents != w {
					t.Errorf("share[%d] (%s) = %d, want %d", i, shares[i].MemberID, shares[i].AmountCents, w)
				}
			}
		})
	}
}

// TestAllocateEqualProperties sweeps a grid of amounts and group sizes and
// checks the two equal-split invariants: exact sum, and share spread of at
// most one cent.
func TestAllocateEqualProperties(t *testing.T) {
	for n := 1; n <= 7; n++ {
		ids := make([]string, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("m%02d", i)
		}
		for amount := int64(1); amount <= 250; amount++ {
			shares, err := Allocate(amount, ids, Equal())
			if err != nil {
				t.Fatalf("Allocate(%d, n=%d) failed: %v", amount, n, err)
			}
			if got := sum(shares); got != amount {
				t.Fatalf("Allocate(%d, n=%d) sum = %d", amount, n, got)
			}
			min, max := shares[0].AmountCents, shares[0].AmountCents
			for _, s := range shares {
				if s.AmountCents < min {
					min = s.AmountCents
				}
				if s.AmountCents > max {
					max = s.AmountCents
				}
			}
			if max-min > 1 {
				t.Fatalf("Allocate(%d, n=%d) spread = %d, want <= 1", amount, n, max-min)
			}
		}
	}
}

// TestAllocatePercentWithinOneCent checks that each percent share stays
// within one cent of its exact proportional value.
func TestAllocatePercentWithinOneCent(t *testing.T) {
	entries := []Entry{pct("a", "12.5"), pct("b", "37.5"), pct("c", "25"), pct("d", "25")}
	ids := []string{"a", "b", "c", "d"}

	for _, amount := range []int64{1, 99, 101, 9999, 10000, 99999900} {
		shares, err := Allocate(amount, ids, Percent(entries))
		if err != nil {
			t.Fatalf("Allocate(%d) failed: %v", amount, err)
		}
		if got := sum(shares); got != amount {
			t.Fatalf("Allocate(%d) sum = %d", amount, got)
		}
		for i, s := range shares {
			exact := decimal.NewFromInt(amount).Mul(entries[i].Value).Shift(-2)
			diff := decimal.NewFromInt(s.AmountCents).Sub(exact).Abs()
			if diff.GreaterThan(decimal.NewFromInt(1)) {
				t.Errorf("amount %d member %s: share %d is %s cents from exact",
					amount, s.MemberID, s.AmountCents, diff)
			}
		}
	}
}

// TestAllocateWeightWithinOneCent checks the analogous property for
// weighted splits.
func TestAllocateWeightWithinOneCent(t *testing.T) {
	entries := []Entry{pct("a", "1"), pct("b", "3"), pct("c", "996")}
	ids := []string{"a", "b", "c"}

	for _, amount := range []int64{1, 17, 1000, 12345, 99999900} {
		shares, err := Allocate(amount, ids, Weight(entries))
		if err != nil {
			t.Fatalf("Allocate(%d) failed: %v", amount, err)
		}
		if got := sum(shares); got != amount {
			t.Fatalf("Allocate(%d) sum = %d", amount, got)
		}
		for i, s := range shares {
			exact := decimal.NewFromInt(amount).Mul(entries[i].Value).Div(decimal.NewFromInt(1000))
			diff := decimal.NewFromInt(s.AmountCents).Sub(exact).Abs()
			if diff.GreaterThan(decimal.NewFromInt(1)) {
				t.Errorf("amount %d member %s: share %d is %s cents from exact",
					amount, s.MemberID, s.AmountCents, diff)
			}
		}
	}
}
