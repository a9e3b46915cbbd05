package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/kushwahaamar-dev/sentinel/utils"
)

// AuthMiddleware guards the trigger endpoints with an operator token.
// Tokens are HS256-signed JWTs issued out of band; there is no login
// flow, the shared secret comes from deployment config.
type AuthMiddleware struct {
	secret []byte
	logger *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(secret string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		secret: []byte(secret),
		logger: logger,
	}
}

// RequireOperator is a middleware that requires a valid operator token
func (m *AuthMiddleware) RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := chimw.GetReqID(ctx)

		if len(m.secret) == 0 {
			m.logger.Error("operator secret not configured",
				zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, "Operator access not configured")
			return
		}

		tokenString := extractToken(r)
		if tokenString == "" {
			m.logger.Warn("missing operator token",
				zap.String("request_id", requestID),
				zap.String("path", r.URL.Path))
			_ = utils.WriteUnauthorized(w, "Missing or invalid authorization")
			return
		}

		claims, err := m.validateToken(tokenString)
		if err != nil {
			m.logger.Warn("operator token validation failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			if errors.Is(err, jwt.ErrTokenExpired) {
				_ = utils.WriteUnauthorized(w, "Token expired")
				return
			}
			_ = utils.WriteUnauthorized(w, "Invalid or expired token")
			return
		}

		m.logger.Debug("operator authenticated",
			zap.String("request_id", requestID),
			zap.String("sub", claims.Subject))

		next.ServeHTTP(w, r.WithContext(WithOperator(ctx, claims)))
	})
}

func (m *AuthMiddleware) validateToken(tokenString string) (*OperatorClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	subject, _ := token.Claims.GetSubject()
	return &OperatorClaims{Subject: subject}, nil
}

// extractToken pulls the bearer token from the Authorization header
func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
