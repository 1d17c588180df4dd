package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/outbox"
	"fulfillment/internal/core/ports"
)

// DispatchOutboxCommandHandler delivers committed outbox messages to their
// channels. Each message is marked sent in its own transaction after the
// channel accepted it, so a crash between delivery and the mark means one
// duplicate message, never a lost one.
type DispatchOutboxCommandHandler struct {
	uowFactory OutboxUoWFactory
	notifier   ports.Notifier
	publisher  ports.EventPublisher
}

// NewDispatchOutboxCommandHandler creates the dispatch handler.
func NewDispatchOutboxCommandHandler(uowFactory OutboxUoWFactory,
	notifier ports.Notifier, publisher ports.EventPublisher) DispatchOutboxCommandHandler {
	return DispatchOutboxCommandHandler{
		uowFactory: uowFactory,
		notifier:   notifier,
		publisher:  publisher,
	}
}

// Handle runs one dispatch pass. A message that fails to deliver stays
// unsent and blocks nothing else; it is retried on the next pass. The
// returned error is the first one encountered, after the full pass.
func (h *DispatchOutboxCommandHandler) Handle(ctx context.Context,
	cmd DispatchOutboxCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	unsent, err := h.unsentMessages(ctx, cmd.BatchSize())
	if err != nil {
		return err
	}

	var firstErr error
	for _, message := range unsent {
		if err := h.dispatchOne(ctx, message); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func (h *DispatchOutboxCommandHandler) unsentMessages(ctx context.Context,
	limit int) ([]*outbox.Message, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	unsent, err := uow.OutboxRepository().GetUnsent(ctx, limit)
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return unsent, nil
}

func (h *DispatchOutboxCommandHandler) dispatchOne(ctx context.Context,
	message *outbox.Message) error {
	if err := h.deliver(ctx, message); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := message.MarkSent(time.Now().UTC()); err != nil {
		return err
	}
	if err := uow.OutboxRepository().Update(ctx, message); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

func (h *DispatchOutboxCommandHandler) deliver(ctx context.Context,
	message *outbox.Message) error {
	switch message.Kind() {
	case outbox.KindUserNotification:
		var notification outbox.UserNotification
		if err := json.Unmarshal(message.Payload(), &notification); err != nil {
			return err
		}
		return h.notifier.Notify(ctx, notification.ChatID, notification.Text)

	case outbox.KindStatusEvent:
		var event outbox.StatusEvent
		if err := json.Unmarshal(message.Payload(), &event); err != nil {
			return err
		}
		return h.publisher.Publish(ctx, event.OrderID, message.Payload())

	default:
		return fmt.Errorf("unknown outbox message kind %q", message.Kind())
	}
}
