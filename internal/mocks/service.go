package mocks

import (
	"context"

	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/internal/settings"
	"github.com/stretchr/testify/mock"
)

type MockSettingsProvider struct {
	mock.Mock
}

func (m *MockSettingsProvider) Snapshot(ctx context.Context) (settings.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(settings.Snapshot), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, notification *domain.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, notification *domain.Notification) {
	m.Called(ctx, notification)
}

type MockXPApplier struct {
	mock.Mock
}

func (m *MockXPApplier) Apply(ctx context.Context, userID string, delta int64, reason string) (*domain.User, error) {
	args := m.Called(ctx, userID, delta, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
