package domain

import "time"

type Review struct {
	ReviewID   string    `json:"id" dynamodbav:"review_id"`
	ProjectID  string    `json:"project_id" dynamodbav:"project_id"`
	OrderID    string    `json:"order_id" dynamodbav:"order_id"`
	ReviewerID string    `json:"reviewer_id" dynamodbav:"reviewer_id"`
	Rating     int       `json:"rating" dynamodbav:"rating"`
	Comment    string    `json:"comment,omitempty" dynamodbav:"comment"`
	Enable     int       `json:"enable" dynamodbav:"enable"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateReviewRequest struct {
	OrderID string `json:"order_id" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}
