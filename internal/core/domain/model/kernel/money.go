package kernel

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// prepayPercent is the share of the order total charged as a prepayment.
const prepayPercent = 30

// Kopeks is a money amount in minor currency units. All arithmetic is
// integer arithmetic; amounts never go negative.
type Kopeks int64

// NewKopeks creates an amount, rejecting negative values.
func NewKopeks(value int64) (Kopeks, error) {
	if value < 0 {
		return 0, errs.NewValueIsInvalidError("kopeks")
	}
	return Kopeks(value), nil
}

// Add returns the sum of two amounts.
func (k Kopeks) Add(other Kopeks) Kopeks {
	return k + other
}

// PrepayShare returns the prepayment part of the amount: 30 percent,
// rounded up to a whole ruble so the gateway never sees fractional kopeks
// from the percentage split.
func (k Kopeks) PrepayShare() Kopeks {
	share := (int64(k)*prepayPercent + 99) / 100
	const kopeksPerRuble = 100
	rounded := ((share + kopeksPerRuble - 1) / kopeksPerRuble) * kopeksPerRuble
	if rounded > int64(k) {
		rounded = int64(k)
	}
	return Kopeks(rounded)
}

// Remainder returns what is left to pay after the prepayment share.
func (k Kopeks) Remainder() Kopeks {
	return k - k.PrepayShare()
}

// Rubles renders the amount as a decimal ruble string, e.g. "1234.50".
func (k Kopeks) Rubles() string {
	return fmt.Sprintf("%d.%02d", int64(k)/100, int64(k)%100)
}
