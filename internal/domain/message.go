package domain

import "time"

type Message struct {
	MessageID   string    `json:"id" dynamodbav:"message_id"`
	SenderID    string    `json:"sender_id" dynamodbav:"sender_id"`
	RecipientID string    `json:"recipient_id" dynamodbav:"recipient_id"`
	OrderID     *string   `json:"order_id,omitempty" dynamodbav:"order_id"`
	Body        string    `json:"body" dynamodbav:"body"`
	Read        int       `json:"read" dynamodbav:"read"` // 0 = unread, 1 = read
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

type SendMessageRequest struct {
	RecipientID string  `json:"recipient_id" validate:"required"`
	OrderID     *string `json:"order_id"`
	Body        string  `json:"body" validate:"required,max=4000"`
}
