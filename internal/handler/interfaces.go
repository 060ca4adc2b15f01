package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/pkg/auth"
)

type TokenValidator interface {
	ValidateToken(token string) (*auth.Identity, error)
}

type UserService interface {
	EnsureUser(ctx context.Context, request *domain.UpsertUserRequest) (*domain.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error)
	SetBanned(ctx context.Context, adminID, userID string, banned bool) (*domain.User, error)
	SetMembership(ctx context.Context, adminID, userID string, paid bool) (*domain.User, error)
	AdjustXP(ctx context.Context, adminID, userID string, delta int64) (*domain.User, error)
}

type LendingService interface {
	CreditSnapshot(ctx context.Context, userID string) (*domain.UserWithCredit, error)
	CalculateTerms(ctx context.Context, userID string, request *domain.CalculateTermsRequest) (*domain.LoanTerms, error)
	RequestLoan(ctx context.Context, userID string, request *domain.CreateLoanRequest) (*domain.Loan, error)
	ApproveLoan(ctx context.Context, loanID uuid.UUID, adminID string, notes *string) (*domain.Loan, error)
	RejectLoan(ctx context.Context, loanID uuid.UUID, adminID, reason string) (*domain.Loan, error)
	RepayLoan(ctx context.Context, userID string, loanID uuid.UUID) (*domain.Loan, error)
	ListLoans(ctx context.Context, userID string) ([]*domain.Loan, error)
	ListAllLoans(ctx context.Context, limit, offset int) ([]*domain.Loan, error)
	GetLoan(ctx context.Context, loanID uuid.UUID, requesterID string, isAdmin bool) (*domain.Loan, error)
}

type FeedService interface {
	CreatePost(ctx context.Context, userID string, request *domain.CreatePostRequest) (*domain.Post, error)
	DeletePost(ctx context.Context, userID string, postID uuid.UUID) error
	ListPosts(ctx context.Context, limit, offset int) ([]*domain.Post, error)
	ToggleReaction(ctx context.Context, userID string, postID uuid.UUID, reactionType string) (*domain.ReactResponse, error)
}

type NotificationService interface {
	List(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, userID string, notificationID uuid.UUID) error
}

type SettingsService interface {
	Get(ctx context.Context, key string) (*domain.EffectiveSetting, error)
	List(ctx context.Context) ([]*domain.EffectiveSetting, error)
	Set(ctx context.Context, key, value, adminID string) (*domain.EffectiveSetting, error)
}
