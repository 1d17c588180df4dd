package commands_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/outbox"
	"fulfillment/internal/core/domain/model/payment"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/core/ports"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAllInStatus(ctx context.Context, status order.Status) ([]*order.Order, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetPendingPaymentOlderThan(ctx context.Context, cutoff time.Time) ([]*order.Order, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) AttemptTransition(ctx context.Context, o *order.Order, expectedFrom []order.Status) error {
	args := m.Called(ctx, o, expectedFrom)
	return args.Error(0)
}

type MockPaymentRepository struct{ mock.Mock }

func (m *MockPaymentRepository) Add(ctx context.Context, attempt *payment.Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockPaymentRepository) Update(ctx context.Context, attempt *payment.Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockPaymentRepository) Get(ctx context.Context, id uuid.UUID) (*payment.Attempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Attempt), args.Error(1)
}

func (m *MockPaymentRepository) GetOpenByOrderAndKind(ctx context.Context, orderID uuid.UUID, kind order.PaymentKind) (*payment.Attempt, error) {
	args := m.Called(ctx, orderID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Attempt), args.Error(1)
}

func (m *MockPaymentRepository) GetByGatewayID(ctx context.Context, gatewayID string) (*payment.Attempt, error) {
	args := m.Called(ctx, gatewayID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Attempt), args.Error(1)
}

type MockShipmentRepository struct{ mock.Mock }

func (m *MockShipmentRepository) Add(ctx context.Context, request *shipment.Request) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockShipmentRepository) Update(ctx context.Context, request *shipment.Request) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockShipmentRepository) GetByOrder(ctx context.Context, orderID uuid.UUID) (*shipment.Request, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipment.Request), args.Error(1)
}

type MockOutboxRepository struct{ mock.Mock }

func (m *MockOutboxRepository) Add(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepository) Update(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepository) GetUnsent(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

type MockPaymentGateway struct{ mock.Mock }

func (m *MockPaymentGateway) CreateIntent(ctx context.Context, request ports.IntentRequest) (ports.Intent, error) {
	args := m.Called(ctx, request)
	return args.Get(0).(ports.Intent), args.Error(1)
}

func (m *MockPaymentGateway) QueryStatus(ctx context.Context, gatewayID string) (payment.GatewayStatus, error) {
	args := m.Called(ctx, gatewayID)
	return args.Get(0).(payment.GatewayStatus), args.Error(1)
}

type MockShippingCarrier struct{ mock.Mock }

func (m *MockShippingCarrier) CreateShipment(ctx context.Context, snapshot shipment.Snapshot) (ports.CarrierShipment, error) {
	args := m.Called(ctx, snapshot)
	return args.Get(0).(ports.CarrierShipment), args.Error(1)
}

func (m *MockShippingCarrier) GetShipment(ctx context.Context, entityUUID string) (ports.CarrierTracking, error) {
	args := m.Called(ctx, entityUUID)
	return args.Get(0).(ports.CarrierTracking), args.Error(1)
}

type MockStatusCache struct{ mock.Mock }

func (m *MockStatusCache) GetLastStatus(ctx context.Context, orderID string) (string, error) {
	args := m.Called(ctx, orderID)
	return args.String(0), args.Error(1)
}

func (m *MockStatusCache) SetLastStatus(ctx context.Context, orderID string, status string) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

// MockUoW serves all unit of work shapes used by the handlers.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) PaymentRepository() ports.PaymentRepository {
	args := m.Called()
	return args.Get(0).(ports.PaymentRepository)
}

func (m *MockUoW) ShipmentRepository() ports.ShipmentRepository {
	args := m.Called()
	return args.Get(0).(ports.ShipmentRepository)
}

func (m *MockUoW) OutboxRepository() ports.OutboxRepository {
	args := m.Called()
	return args.Get(0).(ports.OutboxRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockPaymentUoWFactory struct{ mock.Mock }

func (m *MockPaymentUoWFactory) Create() commands.PaymentUoW {
	args := m.Called()
	return args.Get(0).(commands.PaymentUoW)
}

type MockShipmentUoWFactory struct{ mock.Mock }

func (m *MockShipmentUoWFactory) Create() commands.ShipmentUoW {
	args := m.Called()
	return args.Get(0).(commands.ShipmentUoW)
}

type MockOutboxUoWFactory struct{ mock.Mock }

func (m *MockOutboxUoWFactory) Create() commands.OutboxUoW {
	args := m.Called()
	return args.Get(0).(commands.OutboxUoW)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, chatID int64, text string) error {
	args := m.Called(ctx, chatID, text)
	return args.Error(0)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, key string, payload []byte) error {
	args := m.Called(ctx, key, payload)
	return args.Error(0)
}

// noopLocker satisfies OrderLocker without real locking in unit tests.
type noopLocker struct{}

func (noopLocker) Lock(string) func() { return func() {} }
