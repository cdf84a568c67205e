package domain

// EmailOTP is a one-time code bound to an email address.
// PK: email — at most one live code per address; storing a new code
// supersedes the previous one. ExpiresAt doubles as the DynamoDB TTL.
type EmailOTP struct {
	Email     string `json:"email" dynamodbav:"email"`
	Code      string `json:"code" dynamodbav:"code"`
	CreatedAt int64  `json:"created_at" dynamodbav:"created_at"`   // Unix seconds
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"`   // Unix seconds, TTL attribute
}
