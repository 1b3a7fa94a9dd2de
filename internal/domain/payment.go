package domain

import "time"

// Payment statuses. The webhook handler only ever moves a payment forward
// via conditional updates, so a replayed provider event cannot regress one.
const (
	PaymentPending    = "pending"
	PaymentProcessing = "processing"
	PaymentCompleted  = "completed"
	PaymentFailed     = "failed"
	PaymentRefunded   = "refunded"
)

type Payment struct {
	PaymentID   string    `json:"id" dynamodbav:"payment_id"`
	OrderID     string    `json:"order_id" dynamodbav:"order_id"`
	PayerID     string    `json:"payer_id" dynamodbav:"payer_id"`
	PayeeID     string    `json:"payee_id" dynamodbav:"payee_id"`
	AmountCents int64     `json:"amount_cents" dynamodbav:"amount_cents"`
	Currency    string    `json:"currency" dynamodbav:"currency"`
	Status      string    `json:"status" dynamodbav:"status"`
	ProviderRef string    `json:"provider_ref,omitempty" dynamodbav:"provider_ref"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreatePaymentRequest struct {
	OrderID  string `json:"order_id" validate:"required"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
}

// ProviderEvent is the payload the payment provider posts to the webhook.
type ProviderEvent struct {
	PaymentID   string `json:"payment_id" validate:"required"`
	ProviderRef string `json:"provider_ref"`
	Status      string `json:"status" validate:"required,oneof=completed failed refunded"`
}
