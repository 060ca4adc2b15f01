package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/internal/repository"
	customError "github.com/segyhp/xp-lending/pkg/errors"
	"github.com/segyhp/xp-lending/pkg/logger"
	"github.com/segyhp/xp-lending/pkg/metrics"
)

const (
	DefaultNotificationLimit = 50
	MaxNotificationLimit     = 200
)

type NotificationService struct {
	repo      repository.NotificationRepository
	publisher Publisher
}

// NewNotificationService builds the notifier; publisher may be nil.
func NewNotificationService(repo repository.NotificationRepository, publisher Publisher) *NotificationService {
	return &NotificationService{
		repo:      repo,
		publisher: publisher,
	}
}

// Notify appends the notification and publishes it. Failures are logged and counted only.
func (s *NotificationService) Notify(ctx context.Context, notification *domain.Notification) {
	if err := s.repo.Create(ctx, notification); err != nil {
		metrics.RecordNotification("persist", "error")
		logger.Error("Failed to store notification",
			logger.String("user_id", notification.UserID),
			logger.String("type", notification.Type),
			logger.ErrorField(err),
		)
		return
	}
	metrics.RecordNotification("persist", "ok")

	if s.publisher == nil {
		return
	}

	if err := s.publisher.Publish(ctx, notification); err != nil {
		metrics.RecordNotification("publish", "error")
		logger.Warn("Notification not delivered",
			logger.String("user_id", notification.UserID),
			logger.String("type", notification.Type),
			logger.ErrorField(err),
		)
		return
	}
	metrics.RecordNotification("publish", "ok")
}

func (s *NotificationService) List(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = DefaultNotificationLimit
	}
	if limit > MaxNotificationLimit {
		limit = MaxNotificationLimit
	}

	notifications, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if notifications == nil {
		notifications = []*domain.Notification{}
	}
	return notifications, nil
}

// MarkRead flags a notification as read; other users' notifications are reported as not found.
func (s *NotificationService) MarkRead(ctx context.Context, userID string, notificationID uuid.UUID) error {
	ok, err := s.repo.MarkRead(ctx, notificationID, userID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	if !ok {
		return customError.WrapNotificationNotFound(notificationID.String())
	}
	return nil
}
