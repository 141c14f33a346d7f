package pricing

import (
	"math"
	"time"
)

const (
	RefundPolicyFull    = "full_refund"
	RefundPolicyPartial = "partial_refund"
	RefundPolicyNone    = "no_refund"
)

// RefundEstimate describes the refund tier applicable at
// cancellation-request time. Money movement itself happens outside
// this system.
type RefundEstimate struct {
	Policy           string `json:"policy"`
	DaysUntilEvent   int    `json:"days_until_event"`
	RefundPercentage int    `json:"refund_percentage"`
}

// Refund maps the number of whole days until the event start to a
// refund tier. Boundaries are inclusive: exactly 7 days out is still
// the 50% tier, exactly 3 days out as well.
func Refund(eventStart, now time.Time) RefundEstimate {
	days := int(math.Floor(eventStart.Sub(now).Hours() / 24))

	switch {
	case days > 7:
		return RefundEstimate{Policy: RefundPolicyFull, DaysUntilEvent: days, RefundPercentage: 100}
	case days >= 3:
		return RefundEstimate{Policy: RefundPolicyPartial, DaysUntilEvent: days, RefundPercentage: 50}
	default:
		return RefundEstimate{Policy: RefundPolicyNone, DaysUntilEvent: days, RefundPercentage: 0}
	}
}
