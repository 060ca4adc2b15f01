package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/internal/mocks"
	"github.com/segyhp/xp-lending/internal/repository"
	"github.com/segyhp/xp-lending/internal/settings"
	customError "github.com/segyhp/xp-lending/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type feedMocks struct {
	posts    *mocks.MockPostRepository
	users    *mocks.MockUserRepository
	settings *mocks.MockSettingsProvider
	xp       *mocks.MockXPApplier
	notifier *mocks.MockNotifier
}

func newFeedService() (*FeedService, *feedMocks) {
	m := &feedMocks{
		posts:    &mocks.MockPostRepository{},
		users:    &mocks.MockUserRepository{},
		settings: &mocks.MockSettingsProvider{},
		xp:       &mocks.MockXPApplier{},
		notifier: &mocks.MockNotifier{},
	}
	svc := NewFeedService(m.posts, m.users, m.settings, m.xp, m.notifier)
	return svc, m
}

func (m *feedMocks) assertExpectations(t *testing.T) {
	m.posts.AssertExpectations(t)
	m.users.AssertExpectations(t)
	m.xp.AssertExpectations(t)
	m.notifier.AssertExpectations(t)
}

func TestToggleReaction(t *testing.T) {
	postID := uuid.New()
	reactor := &domain.User{ID: "reactor", XP: 100, Level: 1}
	change := func(previous, next string, reactorXP, ownerXP int64, likes, dislikes int) *repository.ReactionChange {
		return &repository.ReactionChange{
			UserID: "reactor", PostID: postID, Previous: previous, Next: next,
			ReactorXP: reactorXP, OwnerXP: ownerXP, LikesDelta: likes, DislikesDelta: dislikes,
		}
	}

	tests := []struct {
		name          string
		current       *domain.PostReaction
		requested     string
		ownerID       string
		snap          settings.Snapshot
		setupMocks    func(m *feedMocks)
		expectedAdded bool
		expectedLikes int
	}{
		{
			name:      "like transfers xp to owner",
			requested: domain.ReactionLike,
			ownerID:   "owner",
			setupMocks: func(m *feedMocks) {
				m.posts.On("SaveReaction", mock.Anything, change("", domain.ReactionLike, -1, 1, 1, 0)).
					Return(&domain.Post{ID: postID, UserID: "owner", Likes: 4}, nil)
				m.xp.On("Apply", mock.Anything, "reactor", int64(-1), ReasonReaction).Return(reactor, nil)
				m.xp.On("Apply", mock.Anything, "owner", int64(1), ReasonReaction).Return(&domain.User{ID: "owner"}, nil)
				m.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
					return n.Type == domain.NotificationPostLike && n.UserID == "owner"
				})).Return()
			},
			expectedAdded: true,
			expectedLikes: 4,
		},
		{
			name:      "unlike restores counter and reverses xp",
			current:   &domain.PostReaction{Type: domain.ReactionLike, ReactorXP: -1, OwnerXP: 1},
			requested: domain.ReactionLike,
			ownerID:   "owner",
			setupMocks: func(m *feedMocks) {
				m.posts.On("SaveReaction", mock.Anything, change(domain.ReactionLike, "", 0, 0, -1, 0)).
					Return(&domain.Post{ID: postID, UserID: "owner", Likes: 3}, nil)
				m.xp.On("Apply", mock.Anything, "reactor", int64(1), ReasonReaction).Return(reactor, nil)
				m.xp.On("Apply", mock.Anything, "owner", int64(-1), ReasonReaction).Return(&domain.User{ID: "owner"}, nil)
			},
			expectedLikes: 3,
		},
		{
			name:      "unlike after rule change reverses the stored grant",
			current:   &domain.PostReaction{Type: domain.ReactionLike, ReactorXP: -1, OwnerXP: 1},
			requested: domain.ReactionLike,
			ownerID:   "owner",
			snap:      settings.Snapshot{"xp_like_reactor": "-50", "xp_like_owner": "100"},
			setupMocks: func(m *feedMocks) {
				m.posts.On("SaveReaction", mock.Anything, change(domain.ReactionLike, "", 0, 0, -1, 0)).
					Return(&domain.Post{ID: postID, UserID: "owner", Likes: 3}, nil)
				m.xp.On("Apply", mock.Anything, "reactor", int64(1), ReasonReaction).Return(reactor, nil)
				m.xp.On("Apply", mock.Anything, "owner", int64(-1), ReasonReaction).Return(&domain.User{ID: "owner"}, nil)
			},
			expectedLikes: 3,
		},
		{
			name:      "unlike under legacy policy leaves xp alone",
			current:   &domain.PostReaction{Type: domain.ReactionLike, ReactorXP: -1, OwnerXP: 1},
			requested: domain.ReactionLike,
			ownerID:   "owner",
			snap:      settings.Snapshot{"reaction_xp_reversal": "none"},
			setupMocks: func(m *feedMocks) {
				m.posts.On("SaveReaction", mock.Anything, change(domain.ReactionLike, "", 0, 0, -1, 0)).
					Return(&domain.Post{ID: postID, UserID: "owner", Likes: 3}, nil)
			},
			expectedLikes: 3,
		},
		{
			name:      "dislike own post skips owner side",
			requested: domain.ReactionDislike,
			ownerID:   "reactor",
			setupMocks: func(m *feedMocks) {
				m.posts.On("SaveReaction", mock.Anything, change("", domain.ReactionDislike, -2, 0, 0, 1)).
					Return(&domain.Post{ID: postID, UserID: "reactor", Dislikes: 1}, nil)
				m.xp.On("Apply", mock.Anything, "reactor", int64(-2), ReasonReaction).Return(reactor, nil)
			},
			expectedAdded: true,
		},
		{
			name:      "switch dislike to like",
			current:   &domain.PostReaction{Type: domain.ReactionDislike, ReactorXP: -2, OwnerXP: -5},
			requested: domain.ReactionLike,
			ownerID:   "owner",
			setupMocks: func(m *feedMocks) {
				m.posts.On("SaveReaction", mock.Anything, change(domain.ReactionDislike, domain.ReactionLike, -1, 1, 1, -1)).
					Return(&domain.Post{ID: postID, UserID: "owner", Likes: 1}, nil)
				m.xp.On("Apply", mock.Anything, "reactor", int64(2-1), ReasonReaction).Return(reactor, nil)
				m.xp.On("Apply", mock.Anything, "owner", int64(5+1), ReasonReaction).Return(&domain.User{ID: "owner"}, nil)
				m.notifier.On("Notify", mock.Anything, mock.Anything).Return()
			},
			expectedAdded: true,
			expectedLikes: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newFeedService()

			snap := tt.snap
			if snap == nil {
				snap = settings.Snapshot{}
			}

			m.users.On("GetByID", mock.Anything, "reactor").Return(reactor, nil)
			m.posts.On("GetByID", mock.Anything, postID).Return(&domain.Post{ID: postID, UserID: tt.ownerID}, nil)
			if tt.current == nil {
				m.posts.On("GetReaction", mock.Anything, "reactor", postID).Return(nil, sql.ErrNoRows)
			} else {
				m.posts.On("GetReaction", mock.Anything, "reactor", postID).Return(tt.current, nil)
			}
			m.settings.On("Snapshot", mock.Anything).Return(snap, nil)
			tt.setupMocks(m)

			result, err := svc.ToggleReaction(context.Background(), "reactor", postID, tt.requested)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedAdded, result.Added)
			assert.Equal(t, tt.expectedLikes, result.Likes)
			m.assertExpectations(t)
			if !tt.expectedAdded {
				m.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestToggleReaction_ConcurrentChange(t *testing.T) {
	postID := uuid.New()
	reactor := &domain.User{ID: "reactor", XP: 100, Level: 1}
	liked := &domain.PostReaction{Type: domain.ReactionLike, ReactorXP: -1, OwnerXP: 1}

	tests := []struct {
		name          string
		setupMocks    func(m *feedMocks)
		expectError   bool
		expectedAdded bool
	}{
		{
			name: "reloads the reaction and counts a double like once",
			setupMocks: func(m *feedMocks) {
				m.posts.On("GetReaction", mock.Anything, "reactor", postID).Return(nil, sql.ErrNoRows).Once()
				m.posts.On("GetReaction", mock.Anything, "reactor", postID).Return(liked, nil).Once()
				m.posts.On("SaveReaction", mock.Anything, mock.MatchedBy(func(c *repository.ReactionChange) bool {
					return c.Previous == ""
				})).Return(nil, repository.ErrReactionChanged).Once()
				m.posts.On("SaveReaction", mock.Anything, mock.MatchedBy(func(c *repository.ReactionChange) bool {
					return c.Previous == domain.ReactionLike && c.Next == "" && c.LikesDelta == -1
				})).Return(&domain.Post{ID: postID, UserID: "owner"}, nil).Once()
				m.xp.On("Apply", mock.Anything, "reactor", int64(1), ReasonReaction).Return(reactor, nil)
				m.xp.On("Apply", mock.Anything, "owner", int64(-1), ReasonReaction).Return(&domain.User{ID: "owner"}, nil)
			},
		},
		{
			name: "gives up after repeated conflicts",
			setupMocks: func(m *feedMocks) {
				m.posts.On("GetReaction", mock.Anything, "reactor", postID).Return(nil, sql.ErrNoRows).Times(maxReactionAttempts)
				m.posts.On("SaveReaction", mock.Anything, mock.Anything).Return(nil, repository.ErrReactionChanged).Times(maxReactionAttempts)
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newFeedService()
			m.users.On("GetByID", mock.Anything, "reactor").Return(reactor, nil)
			m.posts.On("GetByID", mock.Anything, postID).Return(&domain.Post{ID: postID, UserID: "owner"}, nil)
			m.settings.On("Snapshot", mock.Anything).Return(settings.Snapshot{}, nil)
			tt.setupMocks(m)

			result, err := svc.ToggleReaction(context.Background(), "reactor", postID, domain.ReactionLike)

			if tt.expectError {
				require.Error(t, err)
				assert.Equal(t, customError.ErrCodeDatabaseError, customError.Code(err))
				m.xp.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedAdded, result.Added)
			}
			m.assertExpectations(t)
		})
	}
}

func TestToggleReaction_Refusals(t *testing.T) {
	postID := uuid.New()

	t.Run("banned reactor", func(t *testing.T) {
		svc, m := newFeedService()
		m.users.On("GetByID", mock.Anything, "reactor").Return(&domain.User{ID: "reactor", IsBanned: true}, nil)

		_, err := svc.ToggleReaction(context.Background(), "reactor", postID, domain.ReactionLike)

		require.Error(t, err)
		assert.Equal(t, customError.ErrCodeUserBanned, customError.Code(err))
	})

	t.Run("missing post", func(t *testing.T) {
		svc, m := newFeedService()
		m.users.On("GetByID", mock.Anything, "reactor").Return(&domain.User{ID: "reactor"}, nil)
		m.posts.On("GetByID", mock.Anything, postID).Return(nil, sql.ErrNoRows)

		_, err := svc.ToggleReaction(context.Background(), "reactor", postID, domain.ReactionLike)

		require.Error(t, err)
		assert.Equal(t, customError.ErrCodePostNotFound, customError.Code(err))
	})

	t.Run("unknown reaction type", func(t *testing.T) {
		svc, m := newFeedService()
		m.users.On("GetByID", mock.Anything, "reactor").Return(&domain.User{ID: "reactor"}, nil)
		m.posts.On("GetByID", mock.Anything, postID).Return(&domain.Post{ID: postID, UserID: "owner"}, nil)
		m.posts.On("GetReaction", mock.Anything, "reactor", postID).Return(nil, sql.ErrNoRows)
		m.settings.On("Snapshot", mock.Anything).Return(settings.Snapshot{}, nil)

		_, err := svc.ToggleReaction(context.Background(), "reactor", postID, "love")

		require.Error(t, err)
		assert.Equal(t, customError.ErrCodeValidation, customError.Code(err))
		m.posts.AssertNotCalled(t, "SaveReaction", mock.Anything, mock.Anything)
	})
}

func TestCreatePost(t *testing.T) {
	tests := []struct {
		name       string
		user       *domain.User
		snap       settings.Snapshot
		setupMocks func(m *feedMocks)
		errorCode  string
	}{
		{
			name: "charges the post cost",
			user: &domain.User{ID: "user-1", XP: 20},
			setupMocks: func(m *feedMocks) {
				m.posts.On("Create", mock.Anything, mock.MatchedBy(func(p *domain.Post) bool {
					return p.UserID == "user-1" && p.Content == "hello"
				})).Return(nil)
				m.xp.On("Apply", mock.Anything, "user-1", int64(-5), ReasonPost).Return(&domain.User{ID: "user-1", XP: 15}, nil)
				m.notifier.On("Notify", mock.Anything, notificationOfType(domain.NotificationPostCreated)).Return()
			},
		},
		{
			name: "free posting skips xp",
			user: &domain.User{ID: "user-1", XP: 0},
			snap: settings.Snapshot{"xp_post_cost": "0"},
			setupMocks: func(m *feedMocks) {
				m.posts.On("Create", mock.Anything, mock.Anything).Return(nil)
				m.notifier.On("Notify", mock.Anything, mock.Anything).Return()
			},
		},
		{
			name:      "insufficient xp",
			user:      &domain.User{ID: "user-1", XP: 4},
			errorCode: customError.ErrCodeInsufficientXP,
		},
		{
			name:      "banned author",
			user:      &domain.User{ID: "user-1", XP: 100, IsBanned: true},
			errorCode: customError.ErrCodeUserBanned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newFeedService()

			snap := tt.snap
			if snap == nil {
				snap = settings.Snapshot{}
			}
			m.users.On("GetByID", mock.Anything, "user-1").Return(tt.user, nil)
			m.settings.On("Snapshot", mock.Anything).Return(snap, nil).Maybe()
			if tt.setupMocks != nil {
				tt.setupMocks(m)
			}

			post, err := svc.CreatePost(context.Background(), "user-1", &domain.CreatePostRequest{Content: "  hello "})

			if tt.errorCode != "" {
				require.Error(t, err)
				assert.Nil(t, post)
				assert.Equal(t, tt.errorCode, customError.Code(err))
				m.posts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "hello", post.Content)
			}
			m.assertExpectations(t)
		})
	}
}

func TestDeletePost(t *testing.T) {
	postID := uuid.New()

	t.Run("owner deletes", func(t *testing.T) {
		svc, m := newFeedService()
		m.posts.On("Delete", mock.Anything, postID, "user-1").Return(true, nil)

		assert.NoError(t, svc.DeletePost(context.Background(), "user-1", postID))
		m.assertExpectations(t)
	})

	t.Run("not owner or missing", func(t *testing.T) {
		svc, m := newFeedService()
		m.posts.On("Delete", mock.Anything, postID, "user-2").Return(false, nil)

		err := svc.DeletePost(context.Background(), "user-2", postID)

		require.Error(t, err)
		assert.ErrorIs(t, err, customError.ErrPostNotFound)
	})
}
