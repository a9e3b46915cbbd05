package middleware

import "context"

// Context key type to avoid collisions
type contextKey string

const (
	// OperatorKey is the context key for operator claims
	OperatorKey contextKey = "operator"
)

// OperatorClaims identifies the operator that authorized a mutating request.
type OperatorClaims struct {
	Subject string
}

// WithOperator adds operator claims to the context
func WithOperator(ctx context.Context, claims *OperatorClaims) context.Context {
	return context.WithValue(ctx, OperatorKey, claims)
}

// GetOperatorFromContext retrieves operator claims from context
func GetOperatorFromContext(ctx context.Context) *OperatorClaims {
	if val := ctx.Value(OperatorKey); val != nil {
		if claims, ok := val.(*OperatorClaims); ok {
			return claims
		}
	}
	return nil
}
