package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Upsert(ctx context.Context, request *domain.UpsertUserRequest) (*domain.User, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserRepository) AddXP(ctx context.Context, userID string, delta int64) (*domain.User, error) {
	args := m.Called(ctx, userID, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) PromoteLevel(ctx context.Context, userID string, level int) (bool, error) {
	args := m.Called(ctx, userID, level)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) SetBanned(ctx context.Context, userID string, banned bool) (*domain.User, error) {
	args := m.Called(ctx, userID, banned)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) SetMembershipPaid(ctx context.Context, userID string, paid bool) (*domain.User, error) {
	args := m.Called(ctx, userID, paid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) RecordPayment(ctx context.Context, userID string, onTime bool) error {
	args := m.Called(ctx, userID, onTime)
	return args.Error(0)
}

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Loan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListAll(ctx context.Context, limit, offset int) ([]*domain.Loan, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListApprovedDueBefore(ctx context.Context, cutoff time.Time) ([]*domain.Loan, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) Approve(ctx context.Context, loanID uuid.UUID, adminID string, notes *string, at time.Time) (*domain.Loan, error) {
	args := m.Called(ctx, loanID, adminID, notes, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) Reject(ctx context.Context, loanID uuid.UUID, adminID, reason string, at time.Time) (*domain.Loan, error) {
	args := m.Called(ctx, loanID, adminID, reason, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) MarkRepaid(ctx context.Context, loanID uuid.UUID, paidAt time.Time) (*domain.Loan, error) {
	args := m.Called(ctx, loanID, paidAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, post *domain.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, postID uuid.UUID) (*domain.Post, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, limit, offset int) ([]*domain.Post, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Post), args.Error(1)
}

func (m *MockPostRepository) Delete(ctx context.Context, postID uuid.UUID, userID string) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) GetReaction(ctx context.Context, userID string, postID uuid.UUID) (*domain.PostReaction, error) {
	args := m.Called(ctx, userID, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PostReaction), args.Error(1)
}

func (m *MockPostRepository) SaveReaction(ctx context.Context, change *repository.ReactionChange) (*domain.Post, error) {
	args := m.Called(ctx, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

type MockSettingRepository struct {
	mock.Mock
}

func (m *MockSettingRepository) GetAll(ctx context.Context) ([]*domain.SystemSetting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SystemSetting), args.Error(1)
}

func (m *MockSettingRepository) Get(ctx context.Context, key string) (*domain.SystemSetting, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SystemSetting), args.Error(1)
}

func (m *MockSettingRepository) Upsert(ctx context.Context, setting *domain.SystemSetting) error {
	args := m.Called(ctx, setting)
	return args.Error(0)
}

type MockSettingsCache struct {
	mock.Mock
}

func (m *MockSettingsCache) Load(ctx context.Context) (map[string]string, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(map[string]string), args.Bool(1), args.Error(2)
}

func (m *MockSettingsCache) Store(ctx context.Context, values map[string]string) error {
	args := m.Called(ctx, values)
	return args.Error(0)
}

func (m *MockSettingsCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, notificationID uuid.UUID, userID string) (bool, error) {
	args := m.Called(ctx, notificationID, userID)
	return args.Bool(0), args.Error(1)
}
