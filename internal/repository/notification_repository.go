package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/segyhp/xp-lending/internal/domain"

	"github.com/jmoiron/sqlx"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, title, message, data, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var data interface{}
	if len(notification.Data) > 0 {
		data = []byte(notification.Data)
	}

	_, err := r.db.ExecContext(ctx, query,
		notification.ID,
		notification.UserID,
		notification.Type,
		notification.Title,
		notification.Message,
		data,
		notification.Read,
		notification.CreatedAt,
	)

	return err
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	query := `
		SELECT id, user_id, type, title, message, data, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	var notifications []*domain.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, userID, limit); err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, notificationID uuid.UUID, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`,
		notificationID, userID,
	)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}
