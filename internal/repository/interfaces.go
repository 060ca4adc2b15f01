package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/xp-lending/internal/domain"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Upsert creates the user on first login or refreshes profile fields
	Upsert(ctx context.Context, request *domain.UpsertUserRequest) (*domain.User, error)

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, userID string) (*domain.User, error)

	// List returns users ordered by creation time
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)

	// AddXP atomically applies delta to the user's XP and returns the updated row
	AddXP(ctx context.Context, userID string, delta int64) (*domain.User, error)

	// PromoteLevel raises the stored level to level if it is currently lower.
	// It reports whether a row was changed.
	PromoteLevel(ctx context.Context, userID string, level int) (bool, error)

	// SetBanned updates the ban flag
	SetBanned(ctx context.Context, userID string, banned bool) (*domain.User, error)

	// SetMembershipPaid updates the membership flag
	SetMembershipPaid(ctx context.Context, userID string, paid bool) (*domain.User, error)

	// RecordPayment increments the repayment counters
	RecordPayment(ctx context.Context, userID string, onTime bool) error
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	// Create creates a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan by its ID
	GetByID(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error)

	// ListByUser retrieves every loan of a user, newest first
	ListByUser(ctx context.Context, userID string) ([]*domain.Loan, error)

	// ListAll retrieves loans across all users, newest first
	ListAll(ctx context.Context, limit, offset int) ([]*domain.Loan, error)

	// ListApprovedDueBefore retrieves approved loans whose due date is before the cutoff
	ListApprovedDueBefore(ctx context.Context, cutoff time.Time) ([]*domain.Loan, error)

	// Approve moves a pending loan to approved. Returns sql.ErrNoRows if the loan is not pending.
	Approve(ctx context.Context, loanID uuid.UUID, adminID string, notes *string, at time.Time) (*domain.Loan, error)

	// Reject moves a pending loan to rejected. Returns sql.ErrNoRows if the loan is not pending.
	Reject(ctx context.Context, loanID uuid.UUID, adminID, reason string, at time.Time) (*domain.Loan, error)

	// MarkRepaid moves an approved loan to repaid. Returns sql.ErrNoRows if the loan is not approved.
	MarkRepaid(ctx context.Context, loanID uuid.UUID, paidAt time.Time) (*domain.Loan, error)
}

// PostRepository defines the interface for posts and their reactions
type PostRepository interface {
	// Create creates a new post
	Create(ctx context.Context, post *domain.Post) error

	// GetByID retrieves a post by ID
	GetByID(ctx context.Context, postID uuid.UUID) (*domain.Post, error)

	// List returns the newest posts
	List(ctx context.Context, limit, offset int) ([]*domain.Post, error)

	// Delete removes a post owned by userID and reports whether it existed
	Delete(ctx context.Context, postID uuid.UUID, userID string) (bool, error)

	// GetReaction returns the user's reaction on a post, or sql.ErrNoRows
	GetReaction(ctx context.Context, userID string, postID uuid.UUID) (*domain.PostReaction, error)

	// SaveReaction applies change in one transaction holding the post row lock.
	// It returns ErrReactionChanged when the stored reaction is no longer
	// change.Previous, and sql.ErrNoRows when the post is gone.
	SaveReaction(ctx context.Context, change *ReactionChange) (*domain.Post, error)
}

// ErrReactionChanged reports that another request replaced the reaction
// between read and write.
var ErrReactionChanged = errors.New("reaction changed concurrently")

// ReactionChange moves a (user, post) reaction from Previous to Next.
// An empty type means no reaction.
type ReactionChange struct {
	UserID   string
	PostID   uuid.UUID
	Previous string
	Next     string
	// XP granted by Next, kept for reversal
	ReactorXP     int64
	OwnerXP       int64
	LikesDelta    int
	DislikesDelta int
}

// SettingRepository defines the interface for the admin override store
type SettingRepository interface {
	// GetAll returns every stored override
	GetAll(ctx context.Context) ([]*domain.SystemSetting, error)

	// Get returns one override, or sql.ErrNoRows
	Get(ctx context.Context, key string) (*domain.SystemSetting, error)

	// Upsert stores an override
	Upsert(ctx context.Context, setting *domain.SystemSetting) error
}

// SettingsCache caches the flattened override store
type SettingsCache interface {
	// Load returns the cached overrides; found is false on a cache miss
	Load(ctx context.Context) (values map[string]string, found bool, err error)

	// Store replaces the cached overrides
	Store(ctx context.Context, values map[string]string) error

	// Invalidate drops the cached overrides
	Invalidate(ctx context.Context) error
}

// NotificationRepository defines the interface for the per-user event log
type NotificationRepository interface {
	// Create appends a notification
	Create(ctx context.Context, notification *domain.Notification) error

	// ListByUser returns the newest notifications of a user
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)

	// MarkRead flags a notification owned by userID as read and reports whether it existed
	MarkRead(ctx context.Context, notificationID uuid.UUID, userID string) (bool, error)
}
