package engine

import (
	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/internal/settings"

	"github.com/shopspring/decimal"
)

// CreditSnapshot derives the borrower's credit position from their level and loans.
func (c *Calculator) CreditSnapshot(user *domain.User, loans []*domain.Loan) (domain.CreditSnapshot, error) {
	level := settings.ClampLevel(user.Level)

	rate, err := c.Settings.InterestRate(level)
	if err != nil {
		return domain.CreditSnapshot{}, err
	}

	debt := OutstandingDebt(loans)
	maxCredit := c.BaseCreditLimit.Mul(decimal.NewFromInt(int64(level)))

	available := maxCredit.Sub(debt)
	if available.IsNegative() {
		available = decimal.Zero
	}

	return domain.CreditSnapshot{
		AvailableCredit: available,
		OutstandingDebt: debt,
		MaxCredit:       maxCredit,
		InterestRate:    rate,
	}, nil
}

// ComputeCreditSnapshot evaluates CreditSnapshot with the built-in defaults.
func ComputeCreditSnapshot(snap settings.Snapshot, user *domain.User, loans []*domain.Loan) (domain.CreditSnapshot, error) {
	return NewCalculator(snap).CreditSnapshot(user, loans)
}

// OutstandingDebt sums the total amount of approved, unpaid loans.
func OutstandingDebt(loans []*domain.Loan) decimal.Decimal {
	debt := decimal.Zero
	for _, loan := range loans {
		if loan.IsOutstanding() {
			debt = debt.Add(loan.TotalAmount)
		}
	}
	return debt
}

// CountActiveLoans counts approved, unpaid loans.
func CountActiveLoans(loans []*domain.Loan) int {
	n := 0
	for _, loan := range loans {
		if loan.IsOutstanding() {
			n++
		}
	}
	return n
}
