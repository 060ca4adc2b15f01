package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/internal/mocks"
	customError "github.com/segyhp/xp-lending/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// asUser stands in for RequireAuth in handler tests.
func asUser(user *domain.User) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	if s, ok := v.(string); ok {
		return bytes.NewBufferString(s)
	}
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func lendingRouter(svc *mocks.MockLendingService, user *domain.User) *mux.Router {
	h := NewLendingHandler(svc)
	router := mux.NewRouter()
	router.Use(asUser(user))
	router.HandleFunc("/users/me", h.Me).Methods(http.MethodGet)
	router.HandleFunc("/loans/terms", h.CalculateTerms).Methods(http.MethodPost)
	router.HandleFunc("/loans", h.CreateLoan).Methods(http.MethodPost)
	router.HandleFunc("/loans/{loanId}", h.GetLoan).Methods(http.MethodGet)
	router.HandleFunc("/loans/{loanId}/repay", h.RepayLoan).Methods(http.MethodPost)
	router.HandleFunc("/admin/loans/{loanId}/approve", h.ApproveLoan).Methods(http.MethodPost)
	router.HandleFunc("/admin/loans/{loanId}/reject", h.RejectLoan).Methods(http.MethodPost)
	return router
}

func TestLendingHandler_CreateLoan(t *testing.T) {
	user := &domain.User{ID: "user-1", Level: 1}

	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(svc *mocks.MockLendingService)
		expectedStatus int
		expectedCode   string
		checkResponse  func(t *testing.T, body envelope)
	}{
		{
			name:        "loan requested",
			requestBody: `{"amount":"5000","loan_term_days":30,"loan_purpose":"rent"}`,
			setupMock: func(svc *mocks.MockLendingService) {
				svc.On("RequestLoan", mock.Anything, "user-1", mock.MatchedBy(func(req *domain.CreateLoanRequest) bool {
					return req.Amount.Equal(decimal.NewFromInt(5000)) && req.LoanTermDays == 30 && req.LoanPurpose == "rent"
				})).Return(&domain.Loan{
					ID:          uuid.New(),
					UserID:      "user-1",
					Amount:      decimal.NewFromInt(5000),
					TotalAmount: decimal.NewFromInt(5250),
					Status:      domain.LoanStatusPending,
				}, nil).Once()
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, body envelope) {
				var loan domain.Loan
				require.NoError(t, json.Unmarshal(body.Data, &loan))
				assert.Equal(t, domain.LoanStatusPending, loan.Status)
				assert.True(t, loan.TotalAmount.Equal(decimal.NewFromInt(5250)))
			},
		},
		{
			name:           "numeric amount accepted",
			requestBody:    `{"amount":150.5}`,
			expectedStatus: http.StatusCreated,
			setupMock: func(svc *mocks.MockLendingService) {
				svc.On("RequestLoan", mock.Anything, "user-1", mock.MatchedBy(func(req *domain.CreateLoanRequest) bool {
					return req.Amount.Equal(decimal.RequireFromString("150.5")) && req.LoanTermDays == 0
				})).Return(&domain.Loan{ID: uuid.New()}, nil).Once()
			},
		},
		{
			name:           "zero amount",
			requestBody:    `{"amount":"0"}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   customError.ErrCodeValidation,
		},
		{
			name:           "negative term",
			requestBody:    `{"amount":"100","loan_term_days":-1}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   customError.ErrCodeValidation,
		},
		{
			name:           "malformed json",
			requestBody:    `{"amount":`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   customError.ErrCodeValidation,
		},
		{
			name:        "over the limit",
			requestBody: `{"amount":"20000"}`,
			setupMock: func(svc *mocks.MockLendingService) {
				svc.On("RequestLoan", mock.Anything, "user-1", mock.Anything).
					Return(nil, customError.WrapLoanLimitExceeded(decimal.NewFromInt(10000))).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   customError.ErrCodeLoanLimitExceeded,
			checkResponse: func(t *testing.T, body envelope) {
				assert.Contains(t, body.Message, "10000.00")
			},
		},
		{
			name:        "membership unpaid",
			requestBody: `{"amount":"100"}`,
			setupMock: func(svc *mocks.MockLendingService) {
				svc.On("RequestLoan", mock.Anything, "user-1", mock.Anything).
					Return(nil, customError.WrapMembershipRequired("user-1")).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   customError.ErrCodeMembershipRequired,
		},
		{
			name:        "banned borrower",
			requestBody: `{"amount":"100"}`,
			setupMock: func(svc *mocks.MockLendingService) {
				svc.On("RequestLoan", mock.Anything, "user-1", mock.Anything).
					Return(nil, customError.WrapUserBanned("user-1")).Once()
			},
			expectedStatus: http.StatusForbidden,
			expectedCode:   customError.ErrCodeUserBanned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mocks.MockLendingService{}
			if tt.setupMock != nil {
				tt.setupMock(svc)
			}

			req := httptest.NewRequest(http.MethodPost, "/loans", jsonBody(t, tt.requestBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			lendingRouter(svc, user).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			body := decodeEnvelope(t, w)
			if tt.expectedCode != "" {
				assert.False(t, body.Success)
				assert.Equal(t, tt.expectedCode, body.Error)
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, body)
			}
			if tt.setupMock == nil {
				svc.AssertNotCalled(t, "RequestLoan", mock.Anything, mock.Anything, mock.Anything)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestLendingHandler_CalculateTerms(t *testing.T) {
	svc := &mocks.MockLendingService{}
	svc.On("CalculateTerms", mock.Anything, "user-1", mock.MatchedBy(func(req *domain.CalculateTermsRequest) bool {
		return req.Amount.Equal(decimal.NewFromInt(1000)) && req.TermDays == 120
	})).Return(&domain.LoanTerms{
		InterestRate: decimal.NewFromInt(5),
		TotalAmount:  decimal.NewFromInt(1050),
		MaxAmount:    decimal.NewFromInt(10000),
		TermDays:     90,
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/loans/terms", jsonBody(t, `{"amount":"1000","term_days":120}`))
	w := httptest.NewRecorder()

	lendingRouter(svc, &domain.User{ID: "user-1"}).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var terms domain.LoanTerms
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &terms))
	assert.Equal(t, 90, terms.TermDays)
	assert.True(t, terms.TotalAmount.Equal(decimal.NewFromInt(1050)))
}

func TestLendingHandler_Me(t *testing.T) {
	user := &domain.User{ID: "user-1", XP: 450, Level: 1}
	svc := &mocks.MockLendingService{}
	svc.On("CreditSnapshot", mock.Anything, "user-1").Return(&domain.UserWithCredit{
		User: user,
		Credit: domain.CreditSnapshot{
			AvailableCredit: decimal.NewFromInt(10000),
			OutstandingDebt: decimal.Zero,
			MaxCredit:       decimal.NewFromInt(10000),
			InterestRate:    decimal.NewFromInt(5),
		},
	}, nil)

	w := httptest.NewRecorder()
	lendingRouter(svc, user).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/me", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"available_credit":"10000"`)
	assert.Contains(t, w.Body.String(), `"xp":450`)
}

func TestLendingHandler_LoanByID(t *testing.T) {
	loanID := uuid.New()
	user := &domain.User{ID: "user-1"}
	now := time.Now()

	tests := []struct {
		name           string
		method         string
		path           string
		setupMock      func(svc *mocks.MockLendingService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "invalid id",
			method:         http.MethodGet,
			path:           "/loans/not-a-uuid",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   customError.ErrCodeValidation,
		},
		{
			name:   "someone else's loan",
			method: http.MethodGet,
			path:   "/loans/" + loanID.String(),
			setupMock: func(svc *mocks.MockLendingService) {
				svc.On("GetLoan", mock.Anything, loanID, "user-1", false).Return(nil, customError.WrapLoanNotFound(loanID.String()))
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   customError.ErrCodeLoanNotFound,
		},
		{
			name:   "repay",
			method: http.MethodPost,
			path:   "/loans/" + loanID.String() + "/repay",
			setupMock: func(svc *mocks.MockLendingService) {
				svc.On("RepayLoan", mock.Anything, "user-1", loanID).Return(&domain.Loan{ID: loanID, Status: domain.LoanStatusRepaid, PaidAt: &now}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "repay twice",
			method: http.MethodPost,
			path:   "/loans/" + loanID.String() + "/repay",
			setupMock: func(svc *mocks.MockLendingService) {
				svc.On("RepayLoan", mock.Anything, "user-1", loanID).
					Return(nil, customError.WrapInvalidLoanStatus(loanID.String(), domain.LoanStatusRepaid, domain.LoanStatusRepaid))
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   customError.ErrCodeInvalidLoanStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mocks.MockLendingService{}
			if tt.setupMock != nil {
				tt.setupMock(svc)
			}

			w := httptest.NewRecorder()
			lendingRouter(svc, user).ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeEnvelope(t, w).Error)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestLendingHandler_Review(t *testing.T) {
	loanID := uuid.New()
	admin := &domain.User{ID: "admin-1", IsAdmin: true}

	t.Run("approve with notes", func(t *testing.T) {
		svc := &mocks.MockLendingService{}
		svc.On("ApproveLoan", mock.Anything, loanID, "admin-1", mock.MatchedBy(func(notes *string) bool {
			return notes != nil && *notes == "verified"
		})).Return(&domain.Loan{ID: loanID, Status: domain.LoanStatusApproved}, nil)

		req := httptest.NewRequest(http.MethodPost, "/admin/loans/"+loanID.String()+"/approve", jsonBody(t, `{"notes":" verified "}`))
		w := httptest.NewRecorder()
		lendingRouter(svc, admin).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("approve without body", func(t *testing.T) {
		svc := &mocks.MockLendingService{}
		svc.On("ApproveLoan", mock.Anything, loanID, "admin-1", (*string)(nil)).
			Return(&domain.Loan{ID: loanID, Status: domain.LoanStatusApproved}, nil)

		w := httptest.NewRecorder()
		lendingRouter(svc, admin).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/loans/"+loanID.String()+"/approve", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		svc := &mocks.MockLendingService{}

		req := httptest.NewRequest(http.MethodPost, "/admin/loans/"+loanID.String()+"/reject", jsonBody(t, `{}`))
		w := httptest.NewRecorder()
		lendingRouter(svc, admin).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "RejectLoan", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reject", func(t *testing.T) {
		svc := &mocks.MockLendingService{}
		svc.On("RejectLoan", mock.Anything, loanID, "admin-1", "income not verified").
			Return(&domain.Loan{ID: loanID, Status: domain.LoanStatusRejected}, nil)

		req := httptest.NewRequest(http.MethodPost, "/admin/loans/"+loanID.String()+"/reject", jsonBody(t, `{"reason":"income not verified"}`))
		w := httptest.NewRecorder()
		lendingRouter(svc, admin).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})
}
