package queries

import (
	"context"

	"gorm.io/gorm"
)

// GetOrdersByStatusQueryHandler lists orders in a status from the database.
type GetOrdersByStatusQueryHandler struct {
	db *gorm.DB
}

// NewGetOrdersByStatusQueryHandler creates a handler for status listings.
func NewGetOrdersByStatusQueryHandler(db *gorm.DB) GetOrdersByStatusQueryHandler {
	return GetOrdersByStatusQueryHandler{db: db}
}

// Handle executes the query. Results come back oldest first.
func (h GetOrdersByStatusQueryHandler) Handle(
	ctx context.Context,
	query GetOrdersByStatusQuery,
) ([]GetOrdersByStatusQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	orders := make([]GetOrdersByStatusQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			owner_id,
			total_price,
			amount_paid,
			track
		FROM orders
		WHERE status = ?
		ORDER BY created_at
	`, query.Status()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var response GetOrdersByStatusQueryResponse
		err = rows.Scan(
			&response.ID,
			&response.OwnerID,
			&response.TotalPriceKopeks,
			&response.AmountPaidKopeks,
			&response.Track,
		)
		if err != nil {
			return nil, err
		}
		orders = append(orders, response)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
