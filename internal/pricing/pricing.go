package pricing

import (
	"fmt"
	"math"
	"time"

	"packbooker-backend/internal/domain"
)

// DefaultDepositRate is the share of the total collected up front
const DefaultDepositRate = 0.30

// Flat base tariffs per pack, in EUR. Multi-day events add a surcharge
// per started extra day so the output stays reproducible for identical
// inputs.
var baseTariffs = map[domain.PackKey]float64{
	domain.PackConference: 300,
	domain.PackSoiree:     350,
	domain.PackMariage:    450,
}

// extraDayRate is the fraction of the base tariff charged per started
// day beyond the first.
const extraDayRate = 0.25

// Round2 rounds a EUR amount to two decimals
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// BasePackPrice returns the flat tariff for a pack over the event
// window. Identical inputs always produce identical outputs.
func BasePackPrice(key domain.PackKey, start, end time.Time) (float64, error) {
	tariff, ok := baseTariffs[key]
	if !ok {
		return 0, &domain.ValidationError{Field: "pack_key", Reason: fmt.Sprintf("unknown pack %q", key)}
	}
	if !end.After(start) {
		return 0, &domain.ValidationError{Field: "end_at", Reason: "event end must be after start"}
	}

	days := int(math.Ceil(end.Sub(start).Hours() / 24))
	if days < 1 {
		days = 1
	}

	return Round2(tariff + float64(days-1)*tariff*extraDayRate), nil
}

// ExtrasTotal sums qty * unitPrice over priced add-ons. Pack-default
// inclusions (is_extra false) never contribute.
func ExtrasTotal(items []domain.FinalItem) (float64, error) {
	var total float64
	for _, it := range items {
		if it.Qty < 0 {
			return 0, &domain.ValidationError{Field: "qty", Reason: fmt.Sprintf("negative quantity on %q", it.Label)}
		}
		if !it.IsExtra {
			continue
		}
		if it.UnitPrice == nil {
			continue
		}
		if *it.UnitPrice < 0 {
			return 0, &domain.ValidationError{Field: "unit_price", Reason: fmt.Sprintf("negative unit price on %q", it.Label)}
		}
		total += float64(it.Qty) * *it.UnitPrice
	}
	return Round2(total), nil
}

// PriceTotal combines the base tariff and the extras total
func PriceTotal(base, extras float64) float64 {
	return Round2(base + extras)
}

// DepositAmount returns the deposit due at the default 30% rate
func DepositAmount(total float64) float64 {
	return DepositAmountAt(total, DefaultDepositRate)
}

// DepositAmountAt returns the deposit due at an explicit rate
func DepositAmountAt(total, rate float64) float64 {
	return Round2(total * rate)
}

// BalanceAmount returns the remainder due after the deposit payment,
// never negative.
func BalanceAmount(total, depositPaid float64) float64 {
	return math.Max(0, Round2(total-depositPaid))
}
