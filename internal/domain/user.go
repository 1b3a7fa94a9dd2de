package domain

import "time"

type User struct {
	UserID         string     `json:"id" dynamodbav:"user_id"`
	Username       string     `json:"username" dynamodbav:"username"`
	Email          string     `json:"email" dynamodbav:"email"`
	PasswordHash   string     `json:"-" dynamodbav:"password_hash"`
	Role           string     `json:"role" dynamodbav:"role"`
	DisplayName    string     `json:"display_name" dynamodbav:"display_name"`
	University     string     `json:"university,omitempty" dynamodbav:"university"`
	Bio            string     `json:"bio,omitempty" dynamodbav:"bio"`
	Skills         []string   `json:"skills,omitempty" dynamodbav:"skills"`
	HourlyRate     int64      `json:"hourly_rate_cents,omitempty" dynamodbav:"hourly_rate_cents"`
	EmailConfirmed bool       `json:"email_confirmed" dynamodbav:"email_confirmed"`
	Verified       bool       `json:"verified" dynamodbav:"verified"`
	Enable         int        `json:"enable" dynamodbav:"enable"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt      time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type CreateUserRequest struct {
	Username    string   `json:"username" validate:"required,min=3,max=30"`
	Password    string   `json:"password" validate:"required,min=8,max=72"`
	Email       string   `json:"email" validate:"required,email"`
	DisplayName string   `json:"display_name" validate:"required"`
	Role        string   `json:"role" validate:"omitempty,oneof=student client"`
	University  string   `json:"university"`
	Skills      []string `json:"skills"`
}

type UpdateUserRequest struct {
	Username    *string   `json:"username"`
	DisplayName *string   `json:"display_name"`
	University  *string   `json:"university"`
	Bio         *string   `json:"bio"`
	Skills      *[]string `json:"skills"`
	HourlyRate  *int64    `json:"hourly_rate_cents"`
	Role        *string   `json:"role" validate:"omitempty,oneof=student client admin"`
	Enable      *int      `json:"enable"` // 1 = enabled, 0 = disabled
}
