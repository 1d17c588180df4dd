// Package http exposes the fulfillment API and the payment gateway webhook.
package http

import (
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/pkg/errs"
)

// gatewayNetworks are the official networks the payment gateway sends
// webhooks from. Anything else gets a 403 before the body is even read.
var gatewayNetworks = []string{
	"185.71.76.0/27",
	"185.71.77.0/27",
	"77.75.153.0/25",
	"77.75.156.11/32",
	"77.75.156.35/32",
	"77.75.154.128/25",
	"2a02:5180::/32",
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createOrderHandler     commands.CreateOrderCommandHandler
	startPaymentHandler    commands.StartPaymentCommandHandler
	confirmPaymentHandler  commands.ConfirmPaymentCommandHandler
	assembleOrderHandler   commands.AssembleOrderCommandHandler
	requestShipmentHandler commands.RequestShipmentCommandHandler
	archiveOrderHandler    commands.ArchiveOrderCommandHandler

	// Query handlers
	getOrderStatusHandler    queries.GetOrderStatusQueryHandler
	getOrdersByStatusHandler queries.GetOrdersByStatusQueryHandler

	webhookNetworks []*net.IPNet
	logger          *slog.Logger
}

// NewServer creates the HTTP server with the required command and query handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	startPaymentHandler commands.StartPaymentCommandHandler,
	confirmPaymentHandler commands.ConfirmPaymentCommandHandler,
	assembleOrderHandler commands.AssembleOrderCommandHandler,
	requestShipmentHandler commands.RequestShipmentCommandHandler,
	archiveOrderHandler commands.ArchiveOrderCommandHandler,
	getOrderStatusHandler queries.GetOrderStatusQueryHandler,
	getOrdersByStatusHandler queries.GetOrdersByStatusQueryHandler,
	logger *slog.Logger,
) *Server {
	networks := make([]*net.IPNet, 0, len(gatewayNetworks))
	for _, cidr := range gatewayNetworks {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		networks = append(networks, network)
	}

	return &Server{
		createOrderHandler:       createOrderHandler,
		startPaymentHandler:      startPaymentHandler,
		confirmPaymentHandler:    confirmPaymentHandler,
		assembleOrderHandler:     assembleOrderHandler,
		requestShipmentHandler:   requestShipmentHandler,
		archiveOrderHandler:      archiveOrderHandler,
		getOrderStatusHandler:    getOrderStatusHandler,
		getOrdersByStatusHandler: getOrdersByStatusHandler,
		webhookNetworks:          networks,
		logger:                   logger.With("component", "http_server"),
	}
}

// RegisterRoutes attaches all endpoints to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	api := e.Group("/api/v1")
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.GetOrdersByStatus)
	api.GET("/orders/:id", s.GetOrderStatus)
	api.POST("/orders/:id/payment", s.StartPayment)
	api.POST("/orders/:id/assemble", s.AssembleOrder)
	api.POST("/orders/:id/shipment", s.RequestShipment)
	api.POST("/orders/:id/archive", s.ArchiveOrder)

	e.POST("/webhook/payment", s.PaymentWebhook)
}

// Error is the JSON error body returned by all endpoints.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewOrder is the request body for order creation.
type NewOrder struct {
	ID                 string `json:"id"`
	OwnerID            int64  `json:"owner_id"`
	TotalPriceKopeks   int64  `json:"total_price_kopeks"`
	DeliveryCostKopeks int64  `json:"delivery_cost_kopeks"`
	PaymentKind        string `json:"payment_kind"`
	RecipientName      string `json:"recipient_name"`
	RecipientPhone     string `json:"recipient_phone"`
	ShipmentPoint      string `json:"shipment_point"`
}

// NewPayment is the request body for starting a payment.
type NewPayment struct {
	Kind string `json:"kind"`
}

// Payment is the response body of a started payment.
type Payment struct {
	AttemptID       string `json:"attempt_id"`
	ConfirmationURL string `json:"confirmation_url"`
}

// Order is the read model returned by order queries.
type Order struct {
	ID                 string  `json:"id"`
	OwnerID            int64   `json:"owner_id"`
	Status             string  `json:"status"`
	PaymentKind        string  `json:"payment_kind,omitempty"`
	TotalPriceKopeks   int64   `json:"total_price_kopeks"`
	DeliveryCostKopeks int64   `json:"delivery_cost_kopeks,omitempty"`
	AmountPaidKopeks   int64   `json:"amount_paid_kopeks"`
	Track              *string `json:"track,omitempty"`
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Healthy")
}

// CreateOrder handles POST /api/v1/orders - registers a new order.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var body NewOrder
	if err := ctx.Bind(&body); err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, "Invalid request body")
	}

	orderID := uuid.Nil
	if body.ID != "" {
		parsed, err := uuid.Parse(body.ID)
		if err != nil {
			return s.errorResponse(ctx, http.StatusBadRequest, "Invalid order id")
		}
		orderID = parsed
	} else {
		orderID = uuid.New()
	}

	cmd, err := commands.NewCreateOrderCommand(orderID, body.OwnerID,
		body.TotalPriceKopeks, body.DeliveryCostKopeks, body.PaymentKind,
		body.RecipientName, body.RecipientPhone, body.ShipmentPoint)
	if err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, "Invalid order data: "+err.Error())
	}

	if err := s.createOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.commandError(ctx, err, "Failed to create order")
	}

	return ctx.JSON(http.StatusCreated, map[string]string{"id": orderID.String()})
}

// StartPayment handles POST /api/v1/orders/:id/payment - opens a payment
// intent and returns the confirmation link.
func (s *Server) StartPayment(ctx echo.Context) error {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, "Invalid order id")
	}

	var body NewPayment
	if err := ctx.Bind(&body); err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, "Invalid request body")
	}

	cmd, err := commands.NewStartPaymentCommand(orderID, body.Kind)
	if err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, "Invalid payment data: "+err.Error())
	}

	result, err := s.startPaymentHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.commandError(ctx, err, "Failed to start payment")
	}

	return ctx.JSON(http.StatusOK, Payment{
		AttemptID:       result.AttemptID.String(),
		ConfirmationURL: result.ConfirmationURL,
	})
}

// AssembleOrder handles POST /api/v1/orders/:id/assemble.
func (s *Server) AssembleOrder(ctx echo.Context) error {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, "Invalid order id")
	}

	cmd, err := commands.NewAssembleOrderCommand(orderID)
	if err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, err.Error())
	}

	if err := s.assembleOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.commandError(ctx, err, "Failed to assemble order")
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RequestShipment handles POST /api/v1/orders/:id/shipment.
func (s *Server) RequestShipment(ctx echo.Context) error {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, "Invalid order id")
	}

	cmd, err := commands.NewRequestShipmentCommand(orderID)
	if err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, err.Error())
	}

	if err := s.requestShipmentHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.commandError(ctx, err, "Failed to request shipment")
	}

	return ctx.NoContent(http.StatusNoContent)
}

// ArchiveOrder handles POST /api/v1/orders/:id/archive.
func (s *Server) ArchiveOrder(ctx echo.Context) error {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, "Invalid order id")
	}

	cmd, err := commands.NewArchiveOrderCommand(orderID)
	if err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, err.Error())
	}

	if err := s.archiveOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.commandError(ctx, err, "Failed to archive order")
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetOrderStatus handles GET /api/v1/orders/:id.
func (s *Server) GetOrderStatus(ctx echo.Context) error {
	orderID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, "Invalid order id")
	}

	query, err := queries.NewGetOrderStatusQuery(orderID)
	if err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, err.Error())
	}

	response, err := s.getOrderStatusHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		var notFoundErr *errs.ObjectNotFoundError
		if errors.As(err, &notFoundErr) {
			return s.errorResponse(ctx, http.StatusNotFound, "Order not found")
		}
		return s.errorResponse(ctx, http.StatusInternalServerError, "Failed to retrieve order")
	}

	return ctx.JSON(http.StatusOK, Order{
		ID:                 response.ID.String(),
		OwnerID:            response.OwnerID,
		Status:             response.Status,
		PaymentKind:        response.PaymentKind,
		TotalPriceKopeks:   response.TotalPriceKopeks,
		DeliveryCostKopeks: response.DeliveryCostKopeks,
		AmountPaidKopeks:   response.AmountPaidKopeks,
		Track:              response.Track,
	})
}

// GetOrdersByStatus handles GET /api/v1/orders?status=... - the operator's
// work queue listing.
func (s *Server) GetOrdersByStatus(ctx echo.Context) error {
	query, err := queries.NewGetOrdersByStatusQuery(ctx.QueryParam("status"))
	if err != nil {
		return s.errorResponse(ctx, http.StatusBadRequest, "Invalid status")
	}

	orders, err := s.getOrdersByStatusHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.errorResponse(ctx, http.StatusInternalServerError, "Failed to retrieve orders")
	}

	response := make([]Order, len(orders))
	for i, o := range orders {
		response[i] = Order{
			ID:               o.ID.String(),
			OwnerID:          o.OwnerID,
			Status:           query.Status().String(),
			TotalPriceKopeks: o.TotalPriceKopeks,
			AmountPaidKopeks: o.AmountPaidKopeks,
			Track:            o.Track,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// webhookBody is the gateway's payment notification.
type webhookBody struct {
	Event  string `json:"event"`
	Object struct {
		ID       string            `json:"id"`
		Status   string            `json:"status"`
		Metadata map[string]string `json:"metadata"`
	} `json:"object"`
}

// PaymentWebhook handles POST /webhook/payment. Requests from outside the
// gateway's networks get a 403. Everything else gets a 200, even when
// processing fails: the gateway retries on non-200, and a broken
// notification will never become processable. The pending payment sweeper
// picks up anything missed here.
func (s *Server) PaymentWebhook(ctx echo.Context) error {
	if !s.fromGateway(ctx.RealIP()) {
		s.logger.WarnContext(ctx.Request().Context(),
			"Webhook from unknown address rejected", "ip", ctx.RealIP())
		return ctx.JSON(http.StatusForbidden, map[string]bool{"ok": false})
	}

	var body webhookBody
	if err := ctx.Bind(&body); err != nil {
		s.logger.ErrorContext(ctx.Request().Context(),
			"Webhook body is not parseable", "error", err)
		return ctx.JSON(http.StatusOK, map[string]bool{"ok": true})
	}

	if err := s.processWebhook(ctx, body); err != nil {
		s.logger.ErrorContext(ctx.Request().Context(),
			"Webhook processing failed",
			"gateway_id", body.Object.ID, "event", body.Event, "error", err)
	}

	return ctx.JSON(http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) processWebhook(ctx echo.Context, body webhookBody) error {
	orderID, err := uuid.Parse(body.Object.Metadata["order_id"])
	if err != nil {
		return err
	}

	status, err := mapWebhookStatus(body.Object.Status)
	if err != nil {
		return err
	}

	cmd, err := commands.NewConfirmPaymentCommand(orderID,
		body.Object.Metadata["payment_kind"], body.Object.ID, status)
	if err != nil {
		return err
	}

	return s.confirmPaymentHandler.Handle(ctx.Request().Context(), cmd)
}

// mapWebhookStatus translates the gateway's payment status into the wire
// form the confirm command accepts.
func mapWebhookStatus(status string) (string, error) {
	switch status {
	case "pending", "waiting_for_capture":
		return "pending", nil
	case "succeeded":
		return "succeeded", nil
	case "canceled":
		return "canceled", nil
	default:
		return "", errors.New("unknown webhook payment status " + status)
	}
}

// fromGateway reports whether the address belongs to the gateway's networks.
func (s *Server) fromGateway(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, network := range s.webhookNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// commandError maps application errors to HTTP statuses. A lost transition
// race is a conflict; a missing order is a 404.
func (s *Server) commandError(ctx echo.Context, err error, fallback string) error {
	var notFoundErr *errs.ObjectNotFoundError
	var staleErr *errs.StaleStateError
	var invalidErr *errs.ValueIsInvalidError
	var requiredErr *errs.ValueIsRequiredError
	var gatewayErr *errs.GatewayError
	var carrierErr *errs.CarrierError

	switch {
	case errors.As(err, &notFoundErr):
		return s.errorResponse(ctx, http.StatusNotFound, "Order not found")
	case errors.As(err, &staleErr):
		return s.errorResponse(ctx, http.StatusConflict, "Order state changed, retry with fresh data")
	case errors.As(err, &invalidErr), errors.As(err, &requiredErr):
		return s.errorResponse(ctx, http.StatusBadRequest, err.Error())
	case errors.As(err, &gatewayErr), errors.As(err, &carrierErr):
		return s.errorResponse(ctx, http.StatusBadGateway, fallback)
	default:
		return s.errorResponse(ctx, http.StatusInternalServerError, fallback)
	}
}

func (s *Server) errorResponse(ctx echo.Context, code int, message string) error {
	return ctx.JSON(code, Error{Code: code, Message: message})
}
