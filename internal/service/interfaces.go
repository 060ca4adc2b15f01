package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/internal/settings"
)

// SettingsProvider returns the override snapshot a request is evaluated against.
type SettingsProvider interface {
	Snapshot(ctx context.Context) (settings.Snapshot, error)
}

// Publisher delivers a stored notification to connected clients.
type Publisher interface {
	Publish(ctx context.Context, notification *domain.Notification) error
}

// Notifier records a notification. It never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, notification *domain.Notification)
}

// XPApplier applies an XP delta and any promotion it triggers.
type XPApplier interface {
	Apply(ctx context.Context, userID string, delta int64, reason string) (*domain.User, error)
}

// XP change reasons
const (
	ReasonPost        = "post"
	ReasonReaction    = "reaction"
	ReasonRepayOnTime = "repay_ontime"
	ReasonRepayLate   = "repay_late"
	ReasonAdmin       = "admin"
)

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
