package domain

import "time"

// Project is a catalog listing (a "gig") offered by a student creator.
type Project struct {
	ProjectID    string     `json:"id" dynamodbav:"project_id"`
	CreatorID    string     `json:"creator_id" dynamodbav:"creator_id"`
	CategoryID   string     `json:"category_id" dynamodbav:"category_id"`
	Title        string     `json:"title" dynamodbav:"title"`
	Description  string     `json:"description" dynamodbav:"description"`
	PriceCents   int64      `json:"price_cents" dynamodbav:"price_cents"`
	DeliveryDays int        `json:"delivery_days" dynamodbav:"delivery_days"`
	Tags         []string   `json:"tags,omitempty" dynamodbav:"tags"`
	Enable       int        `json:"enable" dynamodbav:"enable"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt    time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt    time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type CreateProjectRequest struct {
	CategoryID   string   `json:"category_id" validate:"required"`
	Title        string   `json:"title" validate:"required,max=120"`
	Description  string   `json:"description" validate:"required"`
	PriceCents   int64    `json:"price_cents" validate:"required,gt=0"`
	DeliveryDays int      `json:"delivery_days" validate:"required,gt=0"`
	Tags         []string `json:"tags"`
}

type UpdateProjectRequest struct {
	CategoryID   *string   `json:"category_id"`
	Title        *string   `json:"title"`
	Description  *string   `json:"description"`
	PriceCents   *int64    `json:"price_cents" validate:"omitempty,gt=0"`
	DeliveryDays *int      `json:"delivery_days" validate:"omitempty,gt=0"`
	Tags         *[]string `json:"tags"`
	Enable       *int      `json:"enable"`
}
