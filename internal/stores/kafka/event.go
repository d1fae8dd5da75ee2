package kafka

import (
	"time"

	"github.com/shopspring/decimal"
)

const Topic = `coffeeshop.order-confirmed`

// OrderConfirmedEvent is the record published when the devserver confirms
// an order.
type OrderConfirmedEvent struct {
	OrderID   string          `json:"order_id"`
	UserEmail string          `json:"user_email"`
	Lines     []EventLine     `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"` // Timestamp of confirmation
}

type EventLine struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}
