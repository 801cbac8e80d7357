package httpapi

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dospalko/roomsplit/internal/service"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		cents  int64
		ok     bool
	}{
		{"whole units", "100", 10000, true},
		{"two decimals", "80.50", 8050, true},
		{"single cent", "0.01", 1, true},
		{"zero", "0", 0, true},
		{"three decimals", "100.001", 0, false},
		{"cents exceed int64", "184467440737095566.16", 0, false},
		{"far beyond int64", "999999999999999999999999.00", 0, false},
		{"negative beyond int64", "-184467440737095566.16", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cents, err := parseAmount(decimal.RequireFromString(tt.amount))
			if !tt.ok {
				var verr *service.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Contains(t, verr.FieldErrors, "amount")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cents, cents)
		})
	}
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "0.00", formatCents(0))
	assert.Equal(t, "0.07", formatCents(7))
	assert.Equal(t, "123.40", formatCents(12340))
}
