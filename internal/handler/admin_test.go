package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/internal/mocks"
	customError "github.com/segyhp/xp-lending/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func adminRouter(users *mocks.MockUserService, settings *mocks.MockSettingsService) *mux.Router {
	h := NewAdminHandler(users, settings)
	router := mux.NewRouter()
	router.Use(asUser(&domain.User{ID: "admin-1", IsAdmin: true}))
	router.HandleFunc("/admin/users", h.ListUsers).Methods(http.MethodGet)
	router.HandleFunc("/admin/users/{userId}/ban", h.SetBanned).Methods(http.MethodPatch)
	router.HandleFunc("/admin/users/{userId}/membership", h.SetMembership).Methods(http.MethodPatch)
	router.HandleFunc("/admin/users/{userId}/xp", h.AdjustXP).Methods(http.MethodPatch)
	router.HandleFunc("/admin/settings", h.ListSettings).Methods(http.MethodGet)
	router.HandleFunc("/admin/settings", h.UpdateSetting).Methods(http.MethodPut)
	router.HandleFunc("/admin/settings/{key}", h.GetSetting).Methods(http.MethodGet)
	return router
}

func TestAdminHandler(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		setupMocks     func(users *mocks.MockUserService, settings *mocks.MockSettingsService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:   "list users paginates",
			method: http.MethodGet,
			path:   "/admin/users?limit=500&offset=-4",
			setupMocks: func(users *mocks.MockUserService, settings *mocks.MockSettingsService) {
				users.On("ListUsers", mock.Anything, maxPageSize, 0).Return([]*domain.User{{ID: "user-1"}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "ban",
			method: http.MethodPatch,
			path:   "/admin/users/user-1/ban",
			body:   `{"banned":true}`,
			setupMocks: func(users *mocks.MockUserService, settings *mocks.MockSettingsService) {
				users.On("SetBanned", mock.Anything, "admin-1", "user-1", true).Return(&domain.User{ID: "user-1", IsBanned: true}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "membership for unknown user",
			method: http.MethodPatch,
			path:   "/admin/users/ghost/membership",
			body:   `{"paid":true}`,
			setupMocks: func(users *mocks.MockUserService, settings *mocks.MockSettingsService) {
				users.On("SetMembership", mock.Anything, "admin-1", "ghost", true).Return(nil, customError.WrapUserNotFound("ghost"))
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   customError.ErrCodeUserNotFound,
		},
		{
			name:   "adjust xp",
			method: http.MethodPatch,
			path:   "/admin/users/user-1/xp",
			body:   `{"xp_change":-25}`,
			setupMocks: func(users *mocks.MockUserService, settings *mocks.MockSettingsService) {
				users.On("AdjustXP", mock.Anything, "admin-1", "user-1", int64(-25)).Return(&domain.User{ID: "user-1", XP: 75}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "adjust xp by zero",
			method:         http.MethodPatch,
			path:           "/admin/users/user-1/xp",
			body:           `{"xp_change":0}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   customError.ErrCodeValidation,
		},
		{
			name:   "update setting",
			method: http.MethodPut,
			path:   "/admin/settings",
			body:   `{"key":"interest_rate_level_1","value":"4.5"}`,
			setupMocks: func(users *mocks.MockUserService, settings *mocks.MockSettingsService) {
				settings.On("Set", mock.Anything, "interest_rate_level_1", "4.5", "admin-1").
					Return(&domain.EffectiveSetting{Key: "interest_rate_level_1", Value: "4.5", Overridden: true}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "update setting with wrong type",
			method: http.MethodPut,
			path:   "/admin/settings",
			body:   `{"key":"xp_post_cost","value":"lots"}`,
			setupMocks: func(users *mocks.MockUserService, settings *mocks.MockSettingsService) {
				settings.On("Set", mock.Anything, "xp_post_cost", "lots", "admin-1").
					Return(nil, customError.WrapSettingTypeMismatch("xp_post_cost", "number", "lots"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   customError.ErrCodeValidation,
		},
		{
			name:   "get setting",
			method: http.MethodGet,
			path:   "/admin/settings/max_active_loans",
			setupMocks: func(users *mocks.MockUserService, settings *mocks.MockSettingsService) {
				settings.On("Get", mock.Anything, "max_active_loans").Return(&domain.EffectiveSetting{Key: "max_active_loans", Value: "3"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &mocks.MockUserService{}
			settings := &mocks.MockSettingsService{}
			if tt.setupMocks != nil {
				tt.setupMocks(users, settings)
			}

			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.path, jsonBody(t, tt.body))
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}
			w := httptest.NewRecorder()

			adminRouter(users, settings).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeEnvelope(t, w).Error)
			}
			users.AssertExpectations(t)
			settings.AssertExpectations(t)
		})
	}
}

func TestAdminHandler_ListSettings(t *testing.T) {
	settings := &mocks.MockSettingsService{}
	settings.On("List", mock.Anything).Return([]*domain.EffectiveSetting{
		{Key: "interest_rate_level_1", Value: "5", Default: "5"},
		{Key: "xp_post_cost", Value: "8", Default: "5", Overridden: true},
	}, nil)

	w := httptest.NewRecorder()
	adminRouter(&mocks.MockUserService{}, settings).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/settings", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var list []domain.EffectiveSetting
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &list))
	assert.Len(t, list, 2)
	assert.True(t, list[1].Overridden)
}
