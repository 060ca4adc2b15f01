package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/internal/engine"
	"github.com/segyhp/xp-lending/internal/repository"
	customError "github.com/segyhp/xp-lending/pkg/errors"
	"github.com/segyhp/xp-lending/pkg/logger"
	"github.com/segyhp/xp-lending/pkg/metrics"
)

// XPService owns every XP mutation and the level promotions that follow it.
type XPService struct {
	users    repository.UserRepository
	settings SettingsProvider
	notifier Notifier
}

func NewXPService(users repository.UserRepository, settings SettingsProvider, notifier Notifier) *XPService {
	return &XPService{
		users:    users,
		settings: settings,
		notifier: notifier,
	}
}

// Apply adds delta to the user's XP, then promotes them if a higher level is now due.
func (s *XPService) Apply(ctx context.Context, userID string, delta int64, reason string) (*domain.User, error) {
	var (
		user *domain.User
		err  error
	)

	if delta == 0 {
		user, err = s.users.GetByID(ctx, userID)
	} else {
		user, err = s.users.AddXP(ctx, userID, delta)
	}
	if err != nil {
		if isNoRows(err) {
			return nil, customError.WrapUserNotFound(userID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	if delta != 0 {
		metrics.RecordXPChange(reason, delta)
		logger.Debug("XP applied",
			logger.String("user_id", userID),
			logger.Int64("delta", delta),
			logger.Int64("xp", user.XP),
			logger.String("reason", reason),
		)
	}

	return s.Recompute(ctx, user)
}

// Recompute promotes user to the level their XP qualifies for. Levels never go down,
// and a promotion already applied by a concurrent request is not reported twice.
func (s *XPService) Recompute(ctx context.Context, user *domain.User) (*domain.User, error) {
	snap, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	table, err := engine.NewLevelTable(snap)
	if err != nil {
		return nil, err
	}

	newLevel, changed := table.NextLevel(user.Level, user.XP)
	if !changed {
		return user, nil
	}

	promoted, err := s.users.PromoteLevel(ctx, user.ID, newLevel)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if !promoted {
		return user, nil
	}

	oldLevel := user.Level
	user.Level = newLevel

	metrics.RecordLevelUp(strconv.Itoa(newLevel))
	logger.Info("User levelled up",
		logger.String("user_id", user.ID),
		logger.Int("old_level", oldLevel),
		logger.Int("new_level", newLevel),
		logger.Int64("xp", user.XP),
	)

	s.notifier.Notify(ctx, domain.NewNotification(
		user.ID,
		domain.NotificationLevelUp,
		"Level up!",
		fmt.Sprintf("You reached level %d", newLevel),
		domain.LevelUpData{OldLevel: oldLevel, NewLevel: newLevel},
	))

	return user, nil
}
