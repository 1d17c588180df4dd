package order

// Status is the lifecycle state of an order. Transitions are only legal
// when the transition table below allows them; every persisted status
// change goes through a conditional update keyed on the expected prior
// statuses, so a lost race surfaces as a stale-state error instead of a
// silent overwrite.
type Status string

const (
	// StatusNew is a freshly created order with no payment started.
	StatusNew Status = "new"
	// StatusPendingPayment has an open payment attempt awaiting the gateway.
	StatusPendingPayment Status = "pending_payment"
	// StatusPaidPartially has a confirmed prepayment; the remainder is due.
	StatusPaidPartially Status = "paid_partially"
	// StatusPaidFull is fully paid and ready for assembly.
	StatusPaidFull Status = "paid_full"
	// StatusAssembled is packed and waiting for a carrier shipment.
	StatusAssembled Status = "assembled"
	// StatusShipped is handed to the carrier.
	StatusShipped Status = "shipped"
	// StatusArchived is a completed order. Terminal.
	StatusArchived Status = "archived"
	// StatusAbandoned is a payment that timed out or failed. Terminal.
	StatusAbandoned Status = "abandoned"
)

// validNext is the single source of truth for legal status transitions.
// pending_payment loops onto itself so a buyer can restart a payment
// attempt before the previous one resolves.
var validNext = map[Status][]Status{
	StatusNew:            {StatusPendingPayment, StatusAbandoned},
	StatusPendingPayment: {StatusPendingPayment, StatusPaidPartially, StatusPaidFull, StatusAbandoned},
	StatusPaidPartially:  {StatusAssembled},
	StatusPaidFull:       {StatusAssembled},
	StatusAssembled:      {StatusPaidFull, StatusShipped},
	StatusShipped:        {StatusArchived},
	StatusArchived:       {},
	StatusAbandoned:      {},
}

// paymentTerminal holds the statuses at or past which an incoming payment
// confirmation is a duplicate and must be ignored.
var paymentTerminal = map[Status]struct{}{
	StatusPaidFull: {},
	StatusShipped:  {},
	StatusArchived: {},
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := validNext[s]
	return ok
}

// IsTerminal reports whether no further transition is possible from s.
func (s Status) IsTerminal() bool {
	next, ok := validNext[s]
	return ok && len(next) == 0
}

// IsPaymentTerminal reports whether a payment confirmation arriving for an
// order in this status is a replay that must not be applied again.
func (s Status) IsPaymentTerminal() bool {
	_, ok := paymentTerminal[s]
	return ok
}

// CanTransitionTo reports whether the move from s to target is legal.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range validNext[s] {
		if next == target {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
