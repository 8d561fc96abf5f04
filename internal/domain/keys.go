package domain

// ContextKey is the type used for request-scoped context values to avoid
// collisions with other packages.
type ContextKey string

const (
	KeyUserID    ContextKey = "userID"
	KeyRequestID ContextKey = "RequestID"
)
