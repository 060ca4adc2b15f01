package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/xp-lending/internal/domain"

	"github.com/jmoiron/sqlx"
)

const loanColumns = `id, user_id, amount, interest_rate, total_amount, status, loan_purpose, loan_term_days,
	due_date, paid_at, approved_at, approved_by, rejected_at, rejected_by, rejection_reason, admin_notes, created_at`

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (id, user_id, amount, interest_rate, total_amount, status, loan_purpose, loan_term_days, due_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.UserID,
		loan.Amount,
		loan.InterestRate,
		loan.TotalAmount,
		loan.Status,
		loan.LoanPurpose,
		loan.LoanTermDays,
		loan.DueDate,
		loan.CreatedAt,
	)

	return err
}

func (r *loanRepository) GetByID(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, loanID); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE user_id = $1 ORDER BY created_at DESC`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, userID); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) ListAll(ctx context.Context, limit, offset int) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, limit, offset); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) ListApprovedDueBefore(ctx context.Context, cutoff time.Time) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE status = 'approved' AND due_date < $1 ORDER BY due_date`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, cutoff); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) Approve(ctx context.Context, loanID uuid.UUID, adminID string, notes *string, at time.Time) (*domain.Loan, error) {
	query := `
		UPDATE loans
		SET status = 'approved', approved_at = $2, approved_by = $3, admin_notes = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + loanColumns

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, loanID, at, adminID, notes); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) Reject(ctx context.Context, loanID uuid.UUID, adminID, reason string, at time.Time) (*domain.Loan, error) {
	query := `
		UPDATE loans
		SET status = 'rejected', rejected_at = $2, rejected_by = $3, rejection_reason = $4
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + loanColumns

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, loanID, at, adminID, reason); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) MarkRepaid(ctx context.Context, loanID uuid.UUID, paidAt time.Time) (*domain.Loan, error) {
	query := `
		UPDATE loans
		SET status = 'repaid', paid_at = $2
		WHERE id = $1 AND status = 'approved'
		RETURNING ` + loanColumns

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, loanID, paidAt); err != nil {
		return nil, err
	}

	return &loan, nil
}
