package order

import "fulfillment/internal/pkg/errs"

// PaymentKind tells how an order is being paid: in full up front, a
// prepayment first, or the remainder after a prepayment.
type PaymentKind string

const (
	PaymentKindFull      PaymentKind = "full"
	PaymentKindPrepay    PaymentKind = "prepay"
	PaymentKindRemainder PaymentKind = "remainder"
)

// NewPaymentKind parses a payment kind from its wire form.
func NewPaymentKind(value string) (PaymentKind, error) {
	switch kind := PaymentKind(value); kind {
	case PaymentKindFull, PaymentKindPrepay, PaymentKindRemainder:
		return kind, nil
	default:
		return "", errs.NewValueIsInvalidError("paymentKind")
	}
}

// TargetStatus is the status a confirmed payment of this kind moves the
// order into. A remainder completes the order's payment, so it lands on
// paid_full just like a full payment.
func (k PaymentKind) TargetStatus() Status {
	if k == PaymentKindPrepay {
		return StatusPaidPartially
	}
	return StatusPaidFull
}

// ExpectedFrom lists the statuses a confirmation of this kind may be
// applied from. The set feeds the conditional status update: the order
// only moves when it is still in one of these.
func (k PaymentKind) ExpectedFrom() []Status {
	if k == PaymentKindRemainder {
		return []Status{StatusAssembled}
	}
	return []Status{StatusPendingPayment}
}

func (k PaymentKind) String() string {
	return string(k)
}
