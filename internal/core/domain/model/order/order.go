package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// placeholderTrackPrefix marks carrier order numbers we generate ourselves.
// Until the carrier assigns a real tracking number, the order carries either
// such a number or the carrier's entity uuid.
const placeholderTrackPrefix = "BOX"

// Order is the aggregate root of the fulfillment flow. It owns its status
// and refuses illegal transitions; persistence applies the resulting status
// conditionally so concurrent writers cannot clobber each other.
type Order struct {
	id               uuid.UUID
	ownerID          int64
	totalPrice       kernel.Kopeks
	deliveryCost     kernel.Kopeks
	paymentKind      PaymentKind
	status           Status
	amountPaid       kernel.Kopeks
	track            *string
	extension        map[string]string
	paymentStartedAt *time.Time
}

// NewOrder creates an order in the new status.
func NewOrder(id uuid.UUID, ownerID int64, totalPrice kernel.Kopeks,
	deliveryCost kernel.Kopeks, paymentKind PaymentKind) (*Order, error) {
	if id == uuid.Nil {
		return nil, errs.NewValueIsRequiredError("orderId")
	}
	if ownerID == 0 {
		return nil, errs.NewValueIsRequiredError("ownerId")
	}
	if totalPrice <= 0 {
		return nil, errs.NewValueIsInvalidError("totalPrice")
	}
	if _, err := NewPaymentKind(paymentKind.String()); err != nil {
		return nil, err
	}

	return &Order{
		id:           id,
		ownerID:      ownerID,
		totalPrice:   totalPrice,
		deliveryCost: deliveryCost,
		paymentKind:  paymentKind,
		status:       StatusNew,
		extension:    map[string]string{},
	}, nil
}

// RestoreOrder reconstructs an order from persistence without validation.
func RestoreOrder(id uuid.UUID, ownerID int64, totalPrice kernel.Kopeks,
	deliveryCost kernel.Kopeks, paymentKind PaymentKind, status Status,
	amountPaid kernel.Kopeks, track *string, extension map[string]string,
	paymentStartedAt *time.Time) *Order {
	if extension == nil {
		extension = map[string]string{}
	}
	return &Order{
		id:               id,
		ownerID:          ownerID,
		totalPrice:       totalPrice,
		deliveryCost:     deliveryCost,
		paymentKind:      paymentKind,
		status:           status,
		amountPaid:       amountPaid,
		track:            track,
		extension:        extension,
		paymentStartedAt: paymentStartedAt,
	}
}

func (o *Order) ID() uuid.UUID                { return o.id }
func (o *Order) OwnerID() int64               { return o.ownerID }
func (o *Order) TotalPrice() kernel.Kopeks    { return o.totalPrice }
func (o *Order) DeliveryCost() kernel.Kopeks  { return o.deliveryCost }
func (o *Order) PaymentKind() PaymentKind     { return o.paymentKind }
func (o *Order) Status() Status               { return o.status }
func (o *Order) AmountPaid() kernel.Kopeks    { return o.amountPaid }
func (o *Order) Track() *string               { return o.track }
func (o *Order) PaymentStartedAt() *time.Time { return o.paymentStartedAt }

// Total is the full amount due: goods plus delivery.
func (o *Order) Total() kernel.Kopeks {
	return o.totalPrice.Add(o.deliveryCost)
}

// FullyPaid reports whether confirmed payments cover the full amount due.
func (o *Order) FullyPaid() bool {
	return o.amountPaid >= o.Total()
}

// Extension returns the free-form key/value attachments of the order,
// such as gateway payment ids.
func (o *Order) Extension() map[string]string {
	return o.extension
}

// SetExtension attaches a key/value pair to the order.
func (o *Order) SetExtension(key, value string) {
	o.extension[key] = value
}

// StartPayment moves the order into pending_payment and stamps the moment
// the payment clock started. Restarting an already pending payment is legal
// and resets the clock.
func (o *Order) StartPayment(now time.Time) error {
	if err := o.changeStatus(StatusPendingPayment); err != nil {
		return err
	}
	o.paymentStartedAt = &now
	return nil
}

// MarkPaid applies a confirmed payment of the given kind and amount.
// A confirmation arriving after the order already passed the payment
// terminal statuses, or already sits at the kind's target status, is a
// replay and is rejected as stale.
func (o *Order) MarkPaid(kind PaymentKind, amount kernel.Kopeks) error {
	if o.status.IsPaymentTerminal() || o.status == kind.TargetStatus() {
		return errs.NewStaleStateError("order", o.id.String())
	}
	if err := o.changeStatus(kind.TargetStatus()); err != nil {
		return err
	}
	o.amountPaid = o.amountPaid.Add(amount)
	return nil
}

// MarkAssembled records that the order is packed and ready to ship.
func (o *Order) MarkAssembled() error {
	return o.changeStatus(StatusAssembled)
}

// MarkShipped records the carrier handoff with its tracking reference.
// The reference may still be a placeholder at this point.
func (o *Order) MarkShipped(track string) error {
	if track == "" {
		return errs.NewValueIsRequiredError("track")
	}
	if err := o.changeStatus(StatusShipped); err != nil {
		return err
	}
	o.track = &track
	return nil
}

// SetTrack replaces the tracking reference, used when the carrier swaps a
// placeholder for a real number.
func (o *Order) SetTrack(track string) error {
	if track == "" {
		return errs.NewValueIsRequiredError("track")
	}
	o.track = &track
	return nil
}

// Archive closes a shipped order.
func (o *Order) Archive() error {
	return o.changeStatus(StatusArchived)
}

// Abandon closes an order whose payment never arrived.
func (o *Order) Abandon() error {
	return o.changeStatus(StatusAbandoned)
}

// HasRealTrack reports whether the tracking reference is an actual carrier
// tracking number rather than our own placeholder or the carrier's
// internal entity uuid.
func (o *Order) HasRealTrack() bool {
	if o.track == nil || *o.track == "" {
		return false
	}
	if strings.HasPrefix(*o.track, placeholderTrackPrefix) {
		return false
	}
	if _, err := uuid.Parse(*o.track); err == nil {
		return false
	}
	return true
}

func (o *Order) changeStatus(target Status) error {
	if !o.status.CanTransitionTo(target) {
		return errs.NewValueIsInvalidErrorWithCause("status",
			fmt.Errorf("transition from %s to %s is not allowed", o.status, target))
	}
	o.status = target
	return nil
}
