package domain

type Category struct {
	CategoryID  string `json:"id" dynamodbav:"category_id"`
	Name        string `json:"name" dynamodbav:"name"`
	Description string `json:"description,omitempty" dynamodbav:"description"`
}

type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=60"`
	Description string `json:"description"`
}
