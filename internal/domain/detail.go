package domain

import "time"

// UserDetail is the profile record associated with a user.
// PK: user_id, SK: role — a user can carry one detail record per role.
type UserDetail struct {
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Role      string    `json:"role" dynamodbav:"role"`
	Name      string    `json:"name" dynamodbav:"name"`
	Avatar    *string   `json:"avatar" dynamodbav:"avatar"` // S3 object key
	Address   []Address `json:"address" dynamodbav:"address"`
	Birthdate *string   `json:"birthdate" dynamodbav:"birthdate"` // YYYY-MM-DD
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type Address struct {
	Label   string `json:"label" dynamodbav:"label"`
	Street  string `json:"street" dynamodbav:"street"`
	City    string `json:"city" dynamodbav:"city"`
	Country string `json:"country" dynamodbav:"country"`
}

type UpdateDetailRequest struct {
	Name      *string    `json:"name"`
	Address   *[]Address `json:"address"`
	Birthdate *string    `json:"birthdate"` // YYYY-MM-DD
}
