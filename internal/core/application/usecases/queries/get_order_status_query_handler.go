package queries

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"fulfillment/internal/pkg/errs"
)

// GetOrderStatusQueryHandler reads one order's state from the database.
type GetOrderStatusQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderStatusQueryHandler creates a handler for order status reads.
func NewGetOrderStatusQueryHandler(db *gorm.DB) GetOrderStatusQueryHandler {
	return GetOrderStatusQueryHandler{db: db}
}

// Handle executes the query. A missing order returns ObjectNotFoundError.
func (h GetOrderStatusQueryHandler) Handle(
	ctx context.Context,
	query GetOrderStatusQuery,
) (GetOrderStatusQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderStatusQueryResponse{}, err
	}

	var response GetOrderStatusQueryResponse
	row := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			owner_id,
			status,
			payment_kind,
			total_price,
			delivery_cost,
			amount_paid,
			track
		FROM orders
		WHERE id = ?
	`, query.OrderID()).Row()

	err := row.Scan(
		&response.ID,
		&response.OwnerID,
		&response.Status,
		&response.PaymentKind,
		&response.TotalPriceKopeks,
		&response.DeliveryCostKopeks,
		&response.AmountPaidKopeks,
		&response.Track,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return GetOrderStatusQueryResponse{},
				errs.NewObjectNotFoundError("orderId", query.OrderID())
		}
		return GetOrderStatusQueryResponse{}, err
	}

	return response, nil
}
