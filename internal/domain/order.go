package domain

import "time"

// Order statuses. Transitions are enforced in the order service:
// pending -> in_progress -> delivered -> completed; cancelled is reachable
// from any non-terminal state.
const (
	OrderPending    = "pending"
	OrderInProgress = "in_progress"
	OrderDelivered  = "delivered"
	OrderCompleted  = "completed"
	OrderCancelled  = "cancelled"
)

type Order struct {
	OrderID      string    `json:"id" dynamodbav:"order_id"`
	ProjectID    string    `json:"project_id" dynamodbav:"project_id"`
	BuyerID      string    `json:"buyer_id" dynamodbav:"buyer_id"`
	SellerID     string    `json:"seller_id" dynamodbav:"seller_id"`
	PriceCents   int64     `json:"price_cents" dynamodbav:"price_cents"`
	Status       string    `json:"status" dynamodbav:"status"`
	Requirements string    `json:"requirements,omitempty" dynamodbav:"requirements"`
	CreatedAt    time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateOrderRequest struct {
	ProjectID    string `json:"project_id" validate:"required"`
	Requirements string `json:"requirements"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=in_progress delivered completed cancelled"`
}

// OrderTerminal reports whether status admits no further transitions.
func OrderTerminal(status string) bool {
	return status == OrderCompleted || status == OrderCancelled
}
