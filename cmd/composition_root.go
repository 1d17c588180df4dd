package cmd

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"fulfillment/internal/adapters/out/cdek"
	"fulfillment/internal/adapters/out/kafkaout"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/rediscache"
	"fulfillment/internal/adapters/out/telegram"
	"fulfillment/internal/adapters/out/yookassa"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/locks"
)

const lockShardCount = 256

type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory

	gateway     ports.PaymentGateway
	carrier     ports.ShippingCarrier
	notifier    ports.Notifier
	publisher   *kafkaout.Producer
	statusCache ports.StatusCache

	planner services.ShipmentPlanner
	locker  *locks.Registry
	logger  *slog.Logger
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (CompositionRoot, error) {
	gateway, err := yookassa.NewClient(config.GatewayShopID, config.GatewaySecretKey)
	if err != nil {
		return CompositionRoot{}, err
	}

	carrier, err := cdek.NewClient(config.CarrierAccount, config.CarrierPassword)
	if err != nil {
		return CompositionRoot{}, err
	}
	carrier = carrier.WithSender(config.CarrierSenderCompany,
		config.CarrierSenderName, config.CarrierSenderPhone)

	notifier, err := telegram.NewNotifier(config.TelegramBotToken)
	if err != nil {
		return CompositionRoot{}, err
	}

	publisher, err := kafkaout.NewProducer([]string{config.KafkaHost}, config.KafkaStatusEventTopic)
	if err != nil {
		return CompositionRoot{}, err
	}

	statusCache, err := rediscache.NewStatusCache(redis.NewClient(&redis.Options{
		Addr: config.RedisAddr,
	}))
	if err != nil {
		return CompositionRoot{}, err
	}

	return CompositionRoot{
		config:      config,
		gormDB:      gormDB,
		uowFactory:  *postgres.NewGormUnitOfWorkFactory(gormDB),
		gateway:     gateway,
		carrier:     carrier,
		notifier:    notifier,
		publisher:   publisher,
		statusCache: statusCache,
		planner:     services.NewShipmentPlanner(),
		locker:      locks.NewRegistry(lockShardCount),
		logger:      logger,
	}, nil
}

func (c *CompositionRoot) Logger() *slog.Logger {
	return c.logger
}

// Close flushes and releases outbound resources.
func (c *CompositionRoot) Close() error {
	return c.publisher.Close()
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f)
}

func (c *CompositionRoot) CreateStartPaymentCommandHandler() commands.StartPaymentCommandHandler {
	var f commands.PaymentUoWFactory = FuncPaymentUoWFactory(func() commands.PaymentUoW {
		return c.uowFactory.Create()
	})
	return commands.NewStartPaymentCommandHandler(f, c.gateway, c.locker, c.config.GatewayReturnURL)
}

func (c *CompositionRoot) CreateConfirmPaymentCommandHandler() commands.ConfirmPaymentCommandHandler {
	var f commands.PaymentUoWFactory = FuncPaymentUoWFactory(func() commands.PaymentUoW {
		return c.uowFactory.Create()
	})
	return commands.NewConfirmPaymentCommandHandler(f, c.locker)
}

func (c *CompositionRoot) CreateSweepPendingPaymentsCommandHandler() commands.SweepPendingPaymentsCommandHandler {
	var f commands.PaymentUoWFactory = FuncPaymentUoWFactory(func() commands.PaymentUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSweepPendingPaymentsCommandHandler(f, c.gateway,
		c.CreateConfirmPaymentCommandHandler(), c.locker)
}

func (c *CompositionRoot) CreateAssembleOrderCommandHandler() commands.AssembleOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewAssembleOrderCommandHandler(f, c.locker)
}

func (c *CompositionRoot) CreateArchiveOrderCommandHandler() commands.ArchiveOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewArchiveOrderCommandHandler(f, c.locker)
}

func (c *CompositionRoot) CreateRequestShipmentCommandHandler() commands.RequestShipmentCommandHandler {
	var f commands.ShipmentUoWFactory = FuncShipmentUoWFactory(func() commands.ShipmentUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRequestShipmentCommandHandler(f, c.carrier, c.planner, c.locker)
}

func (c *CompositionRoot) CreatePollShipmentsCommandHandler() commands.PollShipmentsCommandHandler {
	var f commands.ShipmentUoWFactory = FuncShipmentUoWFactory(func() commands.ShipmentUoW {
		return c.uowFactory.Create()
	})
	return commands.NewPollShipmentsCommandHandler(f, c.carrier, c.statusCache, c.locker)
}

func (c *CompositionRoot) CreateDispatchOutboxCommandHandler() commands.DispatchOutboxCommandHandler {
	var f commands.OutboxUoWFactory = FuncOutboxUoWFactory(func() commands.OutboxUoW {
		return c.uowFactory.Create()
	})
	return commands.NewDispatchOutboxCommandHandler(f, c.notifier, c.publisher)
}

func (c *CompositionRoot) CreateGetOrderStatusQueryHandler() queries.GetOrderStatusQueryHandler {
	return queries.NewGetOrderStatusQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrdersByStatusQueryHandler() queries.GetOrdersByStatusQueryHandler {
	return queries.NewGetOrdersByStatusQueryHandler(c.gormDB)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncPaymentUoWFactory func() commands.PaymentUoW

func (f FuncPaymentUoWFactory) Create() commands.PaymentUoW {
	return f()
}

type FuncShipmentUoWFactory func() commands.ShipmentUoW

func (f FuncShipmentUoWFactory) Create() commands.ShipmentUoW {
	return f()
}

type FuncOutboxUoWFactory func() commands.OutboxUoW

func (f FuncOutboxUoWFactory) Create() commands.OutboxUoW {
	return f()
}
