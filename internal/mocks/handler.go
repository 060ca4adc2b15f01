package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/pkg/auth"
	"github.com/stretchr/testify/mock"
)

type MockTokenValidator struct {
	mock.Mock
}

func (m *MockTokenValidator) ValidateToken(token string) (*auth.Identity, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Identity), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) EnsureUser(ctx context.Context, request *domain.UpsertUserRequest) (*domain.User, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserService) SetBanned(ctx context.Context, adminID, userID string, banned bool) (*domain.User, error) {
	args := m.Called(ctx, adminID, userID, banned)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) SetMembership(ctx context.Context, adminID, userID string, paid bool) (*domain.User, error) {
	args := m.Called(ctx, adminID, userID, paid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) AdjustXP(ctx context.Context, adminID, userID string, delta int64) (*domain.User, error) {
	args := m.Called(ctx, adminID, userID, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockLendingService struct {
	mock.Mock
}

func (m *MockLendingService) CreditSnapshot(ctx context.Context, userID string) (*domain.UserWithCredit, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserWithCredit), args.Error(1)
}

func (m *MockLendingService) CalculateTerms(ctx context.Context, userID string, request *domain.CalculateTermsRequest) (*domain.LoanTerms, error) {
	args := m.Called(ctx, userID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanTerms), args.Error(1)
}

func (m *MockLendingService) RequestLoan(ctx context.Context, userID string, request *domain.CreateLoanRequest) (*domain.Loan, error) {
	args := m.Called(ctx, userID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLendingService) ApproveLoan(ctx context.Context, loanID uuid.UUID, adminID string, notes *string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID, adminID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLendingService) RejectLoan(ctx context.Context, loanID uuid.UUID, adminID, reason string) (*domain.Loan, error) {
	args := m.Called(ctx, loanID, adminID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLendingService) RepayLoan(ctx context.Context, userID string, loanID uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, userID, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLendingService) ListLoans(ctx context.Context, userID string) ([]*domain.Loan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLendingService) ListAllLoans(ctx context.Context, limit, offset int) ([]*domain.Loan, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLendingService) GetLoan(ctx context.Context, loanID uuid.UUID, requesterID string, isAdmin bool) (*domain.Loan, error) {
	args := m.Called(ctx, loanID, requesterID, isAdmin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

type MockFeedService struct {
	mock.Mock
}

func (m *MockFeedService) CreatePost(ctx context.Context, userID string, request *domain.CreatePostRequest) (*domain.Post, error) {
	args := m.Called(ctx, userID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *MockFeedService) DeletePost(ctx context.Context, userID string, postID uuid.UUID) error {
	args := m.Called(ctx, userID, postID)
	return args.Error(0)
}

func (m *MockFeedService) ListPosts(ctx context.Context, limit, offset int) ([]*domain.Post, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Post), args.Error(1)
}

func (m *MockFeedService) ToggleReaction(ctx context.Context, userID string, postID uuid.UUID, reactionType string) (*domain.ReactResponse, error) {
	args := m.Called(ctx, userID, postID, reactionType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReactResponse), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) List(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkRead(ctx context.Context, userID string, notificationID uuid.UUID) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}

type MockSettingsService struct {
	mock.Mock
}

func (m *MockSettingsService) Get(ctx context.Context, key string) (*domain.EffectiveSetting, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EffectiveSetting), args.Error(1)
}

func (m *MockSettingsService) List(ctx context.Context) ([]*domain.EffectiveSetting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.EffectiveSetting), args.Error(1)
}

func (m *MockSettingsService) Set(ctx context.Context, key, value, adminID string) (*domain.EffectiveSetting, error) {
	args := m.Called(ctx, key, value, adminID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EffectiveSetting), args.Error(1)
}
