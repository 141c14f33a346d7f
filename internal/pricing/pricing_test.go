package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"packbooker-backend/internal/domain"
)

func fptr(v float64) *float64 { return &v }

func TestBasePackPrice(t *testing.T) {
	start := time.Date(2026, 6, 20, 14, 0, 0, 0, time.UTC)

	t.Run("single day tariffs", func(t *testing.T) {
		end := start.Add(8 * time.Hour)

		tests := []struct {
			pack domain.PackKey
			want float64
		}{
			{domain.PackConference, 300},
			{domain.PackSoiree, 350},
			{domain.PackMariage, 450},
		}
		for _, tc := range tests {
			got, err := BasePackPrice(tc.pack, start, end)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got, "pack %s", tc.pack)
		}
	})

	t.Run("extra day surcharge", func(t *testing.T) {
		end := start.Add(30 * time.Hour) // spills into a second day
		got, err := BasePackPrice(domain.PackMariage, start, end)
		assert.NoError(t, err)
		assert.Equal(t, 562.50, got) // 450 + 450*0.25
	})

	t.Run("deterministic for identical inputs", func(t *testing.T) {
		end := start.Add(50 * time.Hour)
		a, err := BasePackPrice(domain.PackSoiree, start, end)
		assert.NoError(t, err)
		b, err := BasePackPrice(domain.PackSoiree, start, end)
		assert.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("unknown pack", func(t *testing.T) {
		_, err := BasePackPrice("weekend", start, start.Add(time.Hour))
		assert.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("end before start", func(t *testing.T) {
		_, err := BasePackPrice(domain.PackSoiree, start, start.Add(-time.Hour))
		assert.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})
}

func TestExtrasTotal(t *testing.T) {
	t.Run("only priced extras count", func(t *testing.T) {
		items := []domain.FinalItem{
			{Label: "Sono pack", Qty: 1, IsExtra: false},
			{Label: "Lumiere LED", Qty: 2, UnitPrice: fptr(20), IsExtra: true},
			{Label: "Micro HF", Qty: 3, UnitPrice: fptr(15.5), IsExtra: true},
			{Label: "Pied enceinte", Qty: 4, IsExtra: true}, // no price attached
		}
		got, err := ExtrasTotal(items)
		assert.NoError(t, err)
		assert.Equal(t, 86.5, got)
	})

	t.Run("empty list", func(t *testing.T) {
		got, err := ExtrasTotal(nil)
		assert.NoError(t, err)
		assert.Equal(t, 0.0, got)
	})

	t.Run("negative quantity rejected", func(t *testing.T) {
		_, err := ExtrasTotal([]domain.FinalItem{{Label: "x", Qty: -1, UnitPrice: fptr(10), IsExtra: true}})
		assert.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("negative unit price rejected", func(t *testing.T) {
		_, err := ExtrasTotal([]domain.FinalItem{{Label: "x", Qty: 1, UnitPrice: fptr(-10), IsExtra: true}})
		assert.Error(t, err)
		assert.True(t, domain.IsValidation(err))
	})
}

func TestTotalsInvariants(t *testing.T) {
	t.Run("price total is rounded sum", func(t *testing.T) {
		assert.Equal(t, 490.00, PriceTotal(450, 40))
		assert.Equal(t, 350.10, PriceTotal(300.055, 50.045))
	})

	t.Run("deposit is thirty percent rounded", func(t *testing.T) {
		assert.Equal(t, 147.00, DepositAmount(490))
		assert.Equal(t, 0.0, DepositAmount(0))
		assert.Equal(t, 30.0, DepositAmount(99.99)) // 29.997 rounds up
	})

	t.Run("balance never negative", func(t *testing.T) {
		assert.Equal(t, 343.00, BalanceAmount(490, 147))
		assert.Equal(t, 0.0, BalanceAmount(100, 150))
		assert.Equal(t, 0.0, BalanceAmount(0, 0))
	})
}

// Reference scenario: mariage pack, base 450, extras 2 x 20.
func TestMariageScenario(t *testing.T) {
	items := []domain.FinalItem{
		{Label: "Pack mariage", Qty: 1, IsExtra: false},
		{Label: "Machine a fumee", Qty: 2, UnitPrice: fptr(20), IsExtra: true},
	}

	extras, err := ExtrasTotal(items)
	assert.NoError(t, err)
	assert.Equal(t, 40.0, extras)

	total := PriceTotal(450, extras)
	assert.Equal(t, 490.00, total)

	deposit := DepositAmount(total)
	assert.Equal(t, 147.00, deposit)

	balance := BalanceAmount(total, deposit)
	assert.Equal(t, 343.00, balance)
}

func TestRefund(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		daysOut    int
		wantPct    int
		wantPolicy string
	}{
		{"eight days out", 8, 100, RefundPolicyFull},
		{"seven days out", 7, 50, RefundPolicyPartial},
		{"three days out", 3, 50, RefundPolicyPartial},
		{"two days out", 2, 0, RefundPolicyNone},
		{"same day", 0, 0, RefundPolicyNone},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			eventStart := now.Add(time.Duration(tc.daysOut) * 24 * time.Hour)
			est := Refund(eventStart, now)
			assert.Equal(t, tc.wantPct, est.RefundPercentage)
			assert.Equal(t, tc.wantPolicy, est.Policy)
			assert.Equal(t, tc.daysOut, est.DaysUntilEvent)
		})
	}

	t.Run("partial days floor down", func(t *testing.T) {
		// 7 days and 23 hours out is still the 50% tier
		eventStart := now.Add(7*24*time.Hour + 23*time.Hour)
		est := Refund(eventStart, now)
		assert.Equal(t, 7, est.DaysUntilEvent)
		assert.Equal(t, 50, est.RefundPercentage)
	})
}
