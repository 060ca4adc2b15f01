package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/pkg/auth"
	"github.com/segyhp/xp-lending/pkg/logger"
	"github.com/segyhp/xp-lending/pkg/response"
)

type contextKey string

const userContextKey contextKey = "user"

// WithUser stores the authenticated user on ctx.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// CurrentUser returns the authenticated user, or nil outside RequireAuth.
func CurrentUser(ctx context.Context) *domain.User {
	user, _ := ctx.Value(userContextKey).(*domain.User)
	return user
}

type AuthMiddleware struct {
	tokens TokenValidator
	users  UserService
}

func NewAuthMiddleware(tokens TokenValidator, users UserService) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		users:  users,
	}
}

// RequireAuth validates the bearer token and loads the caller, creating the user row on first sight.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(w, "Authorization header with Bearer token required")
			return
		}

		identity, err := m.tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			message := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				message = "Token expired"
			}
			response.Unauthorized(w, message)
			return
		}

		user, err := m.users.EnsureUser(r.Context(), &domain.UpsertUserRequest{
			ID:        identity.UserID,
			Email:     identity.Email,
			FirstName: identity.FirstName,
			LastName:  identity.LastName,
		})
		if err != nil {
			response.BusinessError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r.Context())
		if user == nil {
			response.Unauthorized(w, "Authentication required")
			return
		}
		if !user.IsAdmin {
			logger.Warn("Admin route refused", logger.String("user_id", user.ID), logger.String("path", r.URL.Path))
			response.Forbidden(w, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
