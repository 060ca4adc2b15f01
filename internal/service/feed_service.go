package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/internal/engine"
	"github.com/segyhp/xp-lending/internal/repository"
	"github.com/segyhp/xp-lending/internal/settings"
	customError "github.com/segyhp/xp-lending/pkg/errors"
	"github.com/segyhp/xp-lending/pkg/logger"
	"github.com/segyhp/xp-lending/pkg/metrics"
)

// maxReactionAttempts bounds retries when a concurrent request changes the
// caller's reaction between read and write.
const maxReactionAttempts = 3

type FeedService struct {
	posts    repository.PostRepository
	users    repository.UserRepository
	settings SettingsProvider
	xp       XPApplier
	notifier Notifier
	now      func() time.Time
}

func NewFeedService(
	posts repository.PostRepository,
	users repository.UserRepository,
	settings SettingsProvider,
	xp XPApplier,
	notifier Notifier,
) *FeedService {
	return &FeedService{
		posts:    posts,
		users:    users,
		settings: settings,
		xp:       xp,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *FeedService) activeUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if isNoRows(err) {
			return nil, customError.WrapUserNotFound(userID)
		}
		return nil, customError.WrapDatabaseError(err)
	}
	if user.IsBanned {
		return nil, customError.WrapUserBanned(userID)
	}
	return user, nil
}

// CreatePost publishes a post and charges the author the configured XP cost.
func (s *FeedService) CreatePost(ctx context.Context, userID string, request *domain.CreatePostRequest) (*domain.Post, error) {
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	snap, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	cost, err := snap.XP(settings.KeyXPPostCost)
	if err != nil {
		return nil, err
	}
	if user.XP < cost {
		return nil, customError.WrapInsufficientXP(user.XP, cost)
	}

	post := &domain.Post{
		ID:        uuid.New(),
		UserID:    userID,
		Content:   strings.TrimSpace(request.Content),
		ImageURL:  request.ImageURL,
		CreatedAt: s.now(),
	}

	if err = s.posts.Create(ctx, post); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	if cost != 0 {
		if _, err = s.xp.Apply(ctx, userID, -cost, ReasonPost); err != nil {
			logger.Error("Failed to charge post XP", logger.String("user_id", userID), logger.ErrorField(err))
		}
	}

	logger.Info("Post created", logger.String("post_id", post.ID.String()), logger.String("user_id", userID))

	s.notifier.Notify(ctx, domain.NewNotification(
		userID,
		domain.NotificationPostCreated,
		"Post published",
		"Your post is live",
		map[string]interface{}{"postId": post.ID.String(), "xpCost": cost},
	))

	return post, nil
}

// DeletePost removes a post owned by userID along with its reactions.
func (s *FeedService) DeletePost(ctx context.Context, userID string, postID uuid.UUID) error {
	deleted, err := s.posts.Delete(ctx, postID, userID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}
	if !deleted {
		return customError.WrapPostNotFound(postID.String())
	}

	logger.Info("Post deleted", logger.String("post_id", postID.String()), logger.String("user_id", userID))
	return nil
}

func (s *FeedService) ListPosts(ctx context.Context, limit, offset int) ([]*domain.Post, error) {
	posts, err := s.posts.List(ctx, limit, offset)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if posts == nil {
		posts = []*domain.Post{}
	}
	return posts, nil
}

// ToggleReaction adds, removes or switches the caller's reaction on a post and
// settles the XP transfer between reactor and owner.
func (s *FeedService) ToggleReaction(ctx context.Context, userID string, postID uuid.UUID, reactionType string) (*domain.ReactResponse, error) {
	if _, err := s.activeUser(ctx, userID); err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		if isNoRows(err) {
			return nil, customError.WrapPostNotFound(postID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}

	snap, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	rules, err := engine.NewReactionRules(snap)
	if err != nil {
		return nil, err
	}

	self := post.UserID == userID

	var (
		outcome engine.ReactionOutcome
		updated *domain.Post
	)
	for attempt := 1; ; attempt++ {
		current, err := s.posts.GetReaction(ctx, userID, postID)
		if err != nil {
			if !isNoRows(err) {
				return nil, customError.WrapDatabaseError(err)
			}
			current = nil
		}

		outcome, err = engine.ToggleReaction(rules, current, reactionType, self)
		if err != nil {
			return nil, err
		}

		change := &repository.ReactionChange{
			UserID:        userID,
			PostID:        postID,
			Next:          outcome.Current,
			ReactorXP:     outcome.GrantedReactorXP,
			OwnerXP:       outcome.GrantedOwnerXP,
			LikesDelta:    outcome.LikesDelta,
			DislikesDelta: outcome.DislikesDelta,
		}
		if current != nil {
			change.Previous = current.Type
		}

		updated, err = s.posts.SaveReaction(ctx, change)
		if err == nil {
			break
		}
		if isNoRows(err) {
			return nil, customError.WrapPostNotFound(postID.String())
		}
		if !errors.Is(err, repository.ErrReactionChanged) || attempt == maxReactionAttempts {
			return nil, customError.WrapDatabaseError(err)
		}
		logger.Debug("Reaction changed concurrently, retrying",
			logger.String("user_id", userID),
			logger.String("post_id", postID.String()),
			logger.Int("attempt", attempt),
		)
	}

	s.applyReactionXP(ctx, userID, outcome.ReactorXP)
	if !self {
		s.applyReactionXP(ctx, post.UserID, outcome.OwnerXP)
	}

	result := "removed"
	if outcome.Added {
		result = "added"
	}
	metrics.RecordReaction(reactionType, result)

	if outcome.Added && !self {
		kind, title := domain.NotificationPostLike, "New like"
		if outcome.Current == domain.ReactionDislike {
			kind, title = domain.NotificationPostDislike, "New dislike"
		}
		s.notifier.Notify(ctx, domain.NewNotification(
			post.UserID,
			kind,
			title,
			"Someone reacted to your post",
			map[string]interface{}{"postId": postID.String(), "xpChange": outcome.OwnerXP},
		))
	}

	return &domain.ReactResponse{
		Added:    outcome.Added,
		Reaction: outcome.Current,
		Likes:    updated.Likes,
		Dislikes: updated.Dislikes,
	}, nil
}

func (s *FeedService) applyReactionXP(ctx context.Context, userID string, delta int64) {
	if delta == 0 {
		return
	}
	if _, err := s.xp.Apply(ctx, userID, delta, ReasonReaction); err != nil {
		logger.Error("Failed to apply reaction XP",
			logger.String("user_id", userID),
			logger.Int64("delta", delta),
			logger.ErrorField(err),
		)
	}
}
