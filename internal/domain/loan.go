package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LoanStatusPending  = "pending"
	LoanStatusApproved = "approved"
	LoanStatusRejected = "rejected"
	LoanStatusRepaid   = "repaid"
)

// Loan represents a loan entity
type Loan struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	UserID          string          `json:"user_id" db:"user_id"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	InterestRate    decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	Status          string          `json:"status" db:"status"`
	LoanPurpose     string          `json:"loan_purpose" db:"loan_purpose"`
	LoanTermDays    int             `json:"loan_term_days" db:"loan_term_days"`
	DueDate         time.Time       `json:"due_date" db:"due_date"`
	PaidAt          *time.Time      `json:"paid_at,omitempty" db:"paid_at"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty" db:"approved_at"`
	ApprovedBy      *string         `json:"approved_by,omitempty" db:"approved_by"`
	RejectedAt      *time.Time      `json:"rejected_at,omitempty" db:"rejected_at"`
	RejectedBy      *string         `json:"rejected_by,omitempty" db:"rejected_by"`
	RejectionReason *string         `json:"rejection_reason,omitempty" db:"rejection_reason"`
	AdminNotes      *string         `json:"admin_notes,omitempty" db:"admin_notes"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// IsOutstanding reports whether the loan counts towards the borrower's debt.
func (l *Loan) IsOutstanding() bool {
	return l.Status == LoanStatusApproved
}

// LoanTerms is the output of the terms calculator.
type LoanTerms struct {
	InterestRate decimal.Decimal `json:"interest_rate"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	MaxAmount    decimal.Decimal `json:"max_amount"`
	TermDays     int             `json:"term_days"`
}

// CreditSnapshot is derived from a user's level and approved loans on every read.
type CreditSnapshot struct {
	AvailableCredit decimal.Decimal `json:"available_credit"`
	OutstandingDebt decimal.Decimal `json:"outstanding_debt"`
	MaxCredit       decimal.Decimal `json:"max_credit"`
	InterestRate    decimal.Decimal `json:"interest_rate"`
}

// DTOs for requests and responses

type CalculateTermsRequest struct {
	Amount   decimal.Decimal `json:"amount" validate:"decimal_gt=0"`
	TermDays int             `json:"term_days" validate:"gte=0"`
}

type CreateLoanRequest struct {
	Amount       decimal.Decimal `json:"amount" validate:"decimal_gt=0"`
	LoanTermDays int             `json:"loan_term_days" validate:"gte=0"`
	LoanPurpose  string          `json:"loan_purpose" validate:"max=500"`
}

type ApproveLoanRequest struct {
	Notes string `json:"notes" validate:"max=500"`
}

type RejectLoanRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}
