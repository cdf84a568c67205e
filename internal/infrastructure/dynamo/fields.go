package dynamo

// DynamoDB attribute names the repos reference directly in update expressions.
const (
	fieldRefreshToken = "refresh_token"
	fieldLastLogin    = "last_login"
	fieldIsRead       = "is_read"
	fieldUpdatedAt    = "updated_at"
)
