package engine

import (
	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/internal/settings"
	customError "github.com/segyhp/xp-lending/pkg/errors"

	"github.com/shopspring/decimal"
)

// LoanTerms prices a loan request. termDays <= 0 selects the default term; any
// other value is clamped into the configured bounds. It never mutates state.
func (c *Calculator) LoanTerms(user *domain.User, credit domain.CreditSnapshot, amount decimal.Decimal, termDays int) (*domain.LoanTerms, error) {
	if !amount.IsPositive() {
		return nil, customError.WrapValidation("Loan amount must be greater than zero")
	}

	level := settings.ClampLevel(user.Level)

	maxAmount, ok, err := c.Settings.MaxLoan(level)
	if err != nil {
		return nil, err
	}
	if !ok {
		maxAmount = credit.AvailableCredit
	}

	rate, err := c.Settings.InterestRate(level)
	if err != nil {
		return nil, err
	}

	minDays, maxDays, err := c.Settings.TermBounds()
	if err != nil {
		return nil, err
	}

	if termDays <= 0 {
		termDays = c.DefaultTermDays
	}
	termDays = clamp(termDays, minDays, maxDays)

	if amount.GreaterThan(maxAmount) {
		return nil, customError.WrapLoanLimitExceeded(maxAmount)
	}

	return &domain.LoanTerms{
		InterestRate: rate,
		TotalAmount:  TotalRepayment(amount, rate),
		MaxAmount:    maxAmount,
		TermDays:     termDays,
	}, nil
}

// CalculateLoanTerms evaluates LoanTerms with the built-in defaults.
func CalculateLoanTerms(snap settings.Snapshot, user *domain.User, credit domain.CreditSnapshot, amount decimal.Decimal, termDays int) (*domain.LoanTerms, error) {
	return NewCalculator(snap).LoanTerms(user, credit, amount, termDays)
}

// TotalRepayment returns amount * (1 + rate/100).
func TotalRepayment(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(1).Add(rate.Div(hundred)))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
