package engine

import (
	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/internal/settings"
	customError "github.com/segyhp/xp-lending/pkg/errors"

	"github.com/shopspring/decimal"
)

// CheckEligibility applies the borrowing gates in order: ban, membership,
// available credit, then the active loan limit.
func (c *Calculator) CheckEligibility(user *domain.User, credit domain.CreditSnapshot, loans []*domain.Loan, amount decimal.Decimal) error {
	if user.IsBanned {
		return customError.WrapUserBanned(user.ID)
	}

	if !user.MembershipPaid {
		return customError.WrapMembershipRequired(user.ID)
	}

	if amount.GreaterThan(credit.AvailableCredit) {
		return customError.WrapLoanLimitExceeded(credit.AvailableCredit)
	}

	return c.CheckActiveLoanLimit(loans)
}

// CheckActiveLoanLimit fails when the user already holds max_active_loans approved loans.
func (c *Calculator) CheckActiveLoanLimit(loans []*domain.Loan) error {
	limit, err := c.Settings.MaxActiveLoans()
	if err != nil {
		return err
	}

	if CountActiveLoans(loans) >= limit {
		return customError.WrapActiveLoanLimit(limit)
	}

	return nil
}

// CheckEligibility evaluates Calculator.CheckEligibility with the built-in defaults.
func CheckEligibility(snap settings.Snapshot, user *domain.User, credit domain.CreditSnapshot, loans []*domain.Loan, amount decimal.Decimal) error {
	return NewCalculator(snap).CheckEligibility(user, credit, loans, amount)
}
