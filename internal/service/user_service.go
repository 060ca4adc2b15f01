package service

import (
	"context"
	"fmt"

	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/internal/repository"
	customError "github.com/segyhp/xp-lending/pkg/errors"
	"github.com/segyhp/xp-lending/pkg/logger"
)

type UserService struct {
	users    repository.UserRepository
	xp       XPApplier
	notifier Notifier
}

func NewUserService(users repository.UserRepository, xp XPApplier, notifier Notifier) *UserService {
	return &UserService{
		users:    users,
		xp:       xp,
		notifier: notifier,
	}
}

// EnsureUser creates the user on first login and refreshes profile fields afterwards.
func (s *UserService) EnsureUser(ctx context.Context, request *domain.UpsertUserRequest) (*domain.User, error) {
	if request.ID == "" {
		return nil, customError.WrapValidation("User ID is required")
	}

	user, err := s.users.Upsert(ctx, request)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if isNoRows(err) {
			return nil, customError.WrapUserNotFound(userID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

func (s *UserService) SetBanned(ctx context.Context, adminID, userID string, banned bool) (*domain.User, error) {
	user, err := s.users.SetBanned(ctx, userID, banned)
	if err != nil {
		if isNoRows(err) {
			return nil, customError.WrapUserNotFound(userID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	logger.Info("User ban updated",
		logger.String("user_id", userID),
		logger.Bool("banned", banned),
		logger.String("admin_id", adminID),
	)
	return user, nil
}

func (s *UserService) SetMembership(ctx context.Context, adminID, userID string, paid bool) (*domain.User, error) {
	user, err := s.users.SetMembershipPaid(ctx, userID, paid)
	if err != nil {
		if isNoRows(err) {
			return nil, customError.WrapUserNotFound(userID)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	logger.Info("User membership updated",
		logger.String("user_id", userID),
		logger.Bool("paid", paid),
		logger.String("admin_id", adminID),
	)
	return user, nil
}

// AdjustXP applies an admin XP correction and tells the user about it.
func (s *UserService) AdjustXP(ctx context.Context, adminID, userID string, delta int64) (*domain.User, error) {
	if delta == 0 {
		return nil, customError.WrapValidation("XP change must not be zero")
	}

	user, err := s.xp.Apply(ctx, userID, delta, ReasonAdmin)
	if err != nil {
		return nil, err
	}

	logger.Info("Admin adjusted XP",
		logger.String("user_id", userID),
		logger.Int64("delta", delta),
		logger.String("admin_id", adminID),
	)

	s.notifier.Notify(ctx, domain.NewNotification(
		userID,
		domain.NotificationAdminXP,
		"XP adjusted",
		fmt.Sprintf("An administrator changed your XP by %+d", delta),
		map[string]interface{}{"xpChange": delta, "xp": user.XP},
	))

	return user, nil
}
