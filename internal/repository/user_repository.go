package repository

import (
	"context"

	"github.com/segyhp/xp-lending/internal/domain"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, email, first_name, last_name, xp, level, is_admin, is_banned, membership_paid,
	on_time_payments, total_payments, created_at, updated_at`

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Upsert(ctx context.Context, request *domain.UpsertUserRequest) (*domain.User, error) {
	query := `
		INSERT INTO users (id, email, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET email = COALESCE(EXCLUDED.email, users.email),
			first_name = COALESCE(EXCLUDED.first_name, users.first_name),
			last_name = COALESCE(EXCLUDED.last_name, users.last_name),
			updated_at = NOW()
		RETURNING ` + userColumns

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, request.ID, request.Email, request.FirstName, request.LastName); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, userID); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	var users []*domain.User
	if err := r.db.SelectContext(ctx, &users, query, limit, offset); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepository) AddXP(ctx context.Context, userID string, delta int64) (*domain.User, error) {
	// Column-level arithmetic so concurrent deltas never lose an update.
	query := `
		UPDATE users
		SET xp = xp + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, userID, delta); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) PromoteLevel(ctx context.Context, userID string, level int) (bool, error) {
	query := `
		UPDATE users
		SET level = $2, updated_at = NOW()
		WHERE id = $1 AND level < $2
	`

	result, err := r.db.ExecContext(ctx, query, userID, level)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *userRepository) SetBanned(ctx context.Context, userID string, banned bool) (*domain.User, error) {
	query := `
		UPDATE users
		SET is_banned = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, userID, banned); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) SetMembershipPaid(ctx context.Context, userID string, paid bool) (*domain.User, error) {
	query := `
		UPDATE users
		SET membership_paid = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, userID, paid); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) RecordPayment(ctx context.Context, userID string, onTime bool) error {
	query := `
		UPDATE users
		SET total_payments = total_payments + 1,
			on_time_payments = on_time_payments + CASE WHEN $2::boolean THEN 1 ELSE 0 END,
			updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, userID, onTime)
	return err
}
