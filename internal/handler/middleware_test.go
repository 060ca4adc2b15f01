package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/internal/mocks"
	"github.com/segyhp/xp-lending/pkg/auth"
	customError "github.com/segyhp/xp-lending/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func protectedRouter(tokens *mocks.MockTokenValidator, users *mocks.MockUserService) *mux.Router {
	m := NewAuthMiddleware(tokens, users)
	whoami := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-User", CurrentUser(r.Context()).ID)
		w.WriteHeader(http.StatusNoContent)
	}

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	api.Use(m.RequireAuth)
	api.HandleFunc("/me", whoami)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(m.RequireAdmin)
	admin.HandleFunc("/ping", whoami)

	return router
}

func TestAuthMiddleware(t *testing.T) {
	email := "ana@example.com"

	tests := []struct {
		name           string
		path           string
		header         string
		setupMocks     func(tokens *mocks.MockTokenValidator, users *mocks.MockUserService)
		expectedStatus int
		expectedUser   string
	}{
		{
			name:           "missing header",
			path:           "/api/me",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "not a bearer token",
			path:           "/api/me",
			header:         "Basic abc",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "expired token",
			path:   "/api/me",
			header: "Bearer old",
			setupMocks: func(tokens *mocks.MockTokenValidator, users *mocks.MockUserService) {
				tokens.On("ValidateToken", "old").Return(nil, auth.ErrExpiredToken)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "first login creates the user",
			path:   "/api/me",
			header: "Bearer good",
			setupMocks: func(tokens *mocks.MockTokenValidator, users *mocks.MockUserService) {
				tokens.On("ValidateToken", "good").Return(&auth.Identity{UserID: "user-1", Email: &email}, nil)
				users.On("EnsureUser", mock.Anything, mock.MatchedBy(func(req *domain.UpsertUserRequest) bool {
					return req.ID == "user-1" && req.Email != nil && *req.Email == email
				})).Return(&domain.User{ID: "user-1", Level: 1}, nil)
			},
			expectedStatus: http.StatusNoContent,
			expectedUser:   "user-1",
		},
		{
			name:   "user store down",
			path:   "/api/me",
			header: "Bearer good",
			setupMocks: func(tokens *mocks.MockTokenValidator, users *mocks.MockUserService) {
				tokens.On("ValidateToken", "good").Return(&auth.Identity{UserID: "user-1"}, nil)
				users.On("EnsureUser", mock.Anything, mock.Anything).Return(nil, customError.WrapDatabaseError(errors.New("down")))
			},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:   "admin route refused for regular user",
			path:   "/api/admin/ping",
			header: "Bearer good",
			setupMocks: func(tokens *mocks.MockTokenValidator, users *mocks.MockUserService) {
				tokens.On("ValidateToken", "good").Return(&auth.Identity{UserID: "user-1"}, nil)
				users.On("EnsureUser", mock.Anything, mock.Anything).Return(&domain.User{ID: "user-1"}, nil)
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:   "admin route allowed for admin",
			path:   "/api/admin/ping",
			header: "Bearer root",
			setupMocks: func(tokens *mocks.MockTokenValidator, users *mocks.MockUserService) {
				tokens.On("ValidateToken", "root").Return(&auth.Identity{UserID: "admin-1"}, nil)
				users.On("EnsureUser", mock.Anything, mock.Anything).Return(&domain.User{ID: "admin-1", IsAdmin: true}, nil)
			},
			expectedStatus: http.StatusNoContent,
			expectedUser:   "admin-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := &mocks.MockTokenValidator{}
			users := &mocks.MockUserService{}
			if tt.setupMocks != nil {
				tt.setupMocks(tokens, users)
			}

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			protectedRouter(tokens, users).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedUser, w.Header().Get("X-User"))
			tokens.AssertExpectations(t)
			users.AssertExpectations(t)
		})
	}
}
