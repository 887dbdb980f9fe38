package models

import "time"

const (
	EventOrderCreated   = "order.created"
	EventOrderFulfilled = "order.fulfilled"
)

// OrderEvent is the payload published to Kafka (and optionally SNS) after
// an order changes state. Delivery is best-effort and never blocks the
// request that triggered it.
type OrderEvent struct {
	Event     string    `json:"event"`
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	Amount    int       `json:"amount"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
