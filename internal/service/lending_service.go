package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segyhp/xp-lending/internal/config"
	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/internal/engine"
	"github.com/segyhp/xp-lending/internal/repository"
	"github.com/segyhp/xp-lending/internal/settings"
	customError "github.com/segyhp/xp-lending/pkg/errors"
	"github.com/segyhp/xp-lending/pkg/logger"
	"github.com/segyhp/xp-lending/pkg/metrics"
	"github.com/segyhp/xp-lending/pkg/utils"

	"github.com/shopspring/decimal"
)

type LendingService struct {
	users    repository.UserRepository
	loans    repository.LoanRepository
	settings SettingsProvider
	xp       XPApplier
	notifier Notifier
	business config.BusinessConfig
	now      func() time.Time
}

func NewLendingService(
	users repository.UserRepository,
	loans repository.LoanRepository,
	settings SettingsProvider,
	xp XPApplier,
	notifier Notifier,
	business config.BusinessConfig,
) *LendingService {
	return &LendingService{
		users:    users,
		loans:    loans,
		settings: settings,
		xp:       xp,
		notifier: notifier,
		business: business,
		now:      time.Now,
	}
}

func (s *LendingService) calculator(ctx context.Context) (*engine.Calculator, error) {
	snap, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	base, _ := decimal.NewFromString(s.business.BaseCreditLimit)
	return engine.NewCalculator(snap).WithDefaults(base, s.business.DefaultTermDays), nil
}

// borrower loads a user together with every loan they hold.
func (s *LendingService) borrower(ctx context.Context, userID string) (*domain.User, []*domain.Loan, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if isNoRows(err) {
			return nil, nil, customError.WrapUserNotFound(userID)
		}
		return nil, nil, customError.WrapDatabaseError(err)
	}

	loans, err := s.loans.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	return user, loans, nil
}

func (s *LendingService) getLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		if isNoRows(err) {
			return nil, customError.WrapLoanNotFound(loanID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return loan, nil
}

// CreditSnapshot returns the user's profile with a freshly derived credit position.
func (s *LendingService) CreditSnapshot(ctx context.Context, userID string) (*domain.UserWithCredit, error) {
	calc, err := s.calculator(ctx)
	if err != nil {
		return nil, err
	}

	user, loans, err := s.borrower(ctx, userID)
	if err != nil {
		return nil, err
	}

	credit, err := calc.CreditSnapshot(user, loans)
	if err != nil {
		return nil, err
	}

	return &domain.UserWithCredit{User: user, Credit: credit}, nil
}

// CalculateTerms previews the terms of a loan request without persisting anything.
func (s *LendingService) CalculateTerms(ctx context.Context, userID string, request *domain.CalculateTermsRequest) (*domain.LoanTerms, error) {
	calc, err := s.calculator(ctx)
	if err != nil {
		return nil, err
	}

	user, loans, err := s.borrower(ctx, userID)
	if err != nil {
		return nil, err
	}

	credit, err := calc.CreditSnapshot(user, loans)
	if err != nil {
		return nil, err
	}

	return calc.LoanTerms(user, credit, request.Amount, request.TermDays)
}

// RequestLoan checks eligibility, prices the loan and stores it as pending.
func (s *LendingService) RequestLoan(ctx context.Context, userID string, request *domain.CreateLoanRequest) (*domain.Loan, error) {
	calc, err := s.calculator(ctx)
	if err != nil {
		return nil, err
	}

	user, loans, err := s.borrower(ctx, userID)
	if err != nil {
		return nil, err
	}

	credit, err := calc.CreditSnapshot(user, loans)
	if err != nil {
		return nil, err
	}

	if err = calc.CheckEligibility(user, credit, loans, request.Amount); err != nil {
		metrics.RecordLoan("refused")
		return nil, err
	}

	terms, err := calc.LoanTerms(user, credit, request.Amount, request.LoanTermDays)
	if err != nil {
		metrics.RecordLoan("refused")
		return nil, err
	}

	createdAt := s.now()
	loan := &domain.Loan{
		ID:           uuid.New(),
		UserID:       user.ID,
		Amount:       request.Amount,
		InterestRate: terms.InterestRate,
		TotalAmount:  terms.TotalAmount,
		Status:       domain.LoanStatusPending,
		LoanPurpose:  strings.TrimSpace(request.LoanPurpose),
		LoanTermDays: terms.TermDays,
		DueDate:      utils.CalculateDueDate(createdAt, terms.TermDays),
		CreatedAt:    createdAt,
	}

	if err = s.loans.Create(ctx, loan); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	metrics.RecordLoan(domain.LoanStatusPending)
	metrics.ObserveLoanAmount(loan.Amount.InexactFloat64())
	logger.Info("Loan requested",
		logger.String("loan_id", loan.ID.String()),
		logger.String("user_id", user.ID),
		logger.String("amount", utils.FormatAmount(loan.Amount)),
		logger.String("interest_rate", loan.InterestRate.String()),
		logger.Int("term_days", loan.LoanTermDays),
	)

	s.notifier.Notify(ctx, domain.NewNotification(
		user.ID,
		domain.NotificationLoanRequest,
		"Loan requested",
		fmt.Sprintf("Your loan request of %s is awaiting review", utils.FormatAmount(loan.Amount)),
		loanData(loan),
	))

	return loan, nil
}

// ApproveLoan moves a pending loan to approved, re-checking the active loan limit.
func (s *LendingService) ApproveLoan(ctx context.Context, loanID uuid.UUID, adminID string, notes *string) (*domain.Loan, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusPending {
		return nil, customError.WrapInvalidLoanStatus(loanID.String(), loan.Status, domain.LoanStatusApproved)
	}

	calc, err := s.calculator(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.loans.ListByUser(ctx, loan.UserID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if err = calc.CheckActiveLoanLimit(existing); err != nil {
		return nil, err
	}

	approved, err := s.loans.Approve(ctx, loanID, adminID, notes, s.now())
	if err != nil {
		if isNoRows(err) {
			return nil, customError.WrapInvalidLoanStatus(loanID.String(), loan.Status, domain.LoanStatusApproved)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	metrics.RecordLoan(domain.LoanStatusApproved)
	logger.Info("Loan approved",
		logger.String("loan_id", loanID.String()),
		logger.String("user_id", approved.UserID),
		logger.String("admin_id", adminID),
	)

	s.notifier.Notify(ctx, domain.NewNotification(
		approved.UserID,
		domain.NotificationLoanApproved,
		"Loan approved",
		fmt.Sprintf("Your loan of %s was approved. Repay %s by %s",
			utils.FormatAmount(approved.Amount),
			utils.FormatAmount(approved.TotalAmount),
			approved.DueDate.Format("2006-01-02"),
		),
		loanData(approved),
	))

	return approved, nil
}

// RejectLoan moves a pending loan to rejected.
func (s *LendingService) RejectLoan(ctx context.Context, loanID uuid.UUID, adminID, reason string) (*domain.Loan, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, customError.WrapValidation("Rejection reason is required")
	}

	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.Status != domain.LoanStatusPending {
		return nil, customError.WrapInvalidLoanStatus(loanID.String(), loan.Status, domain.LoanStatusRejected)
	}

	rejected, err := s.loans.Reject(ctx, loanID, adminID, reason, s.now())
	if err != nil {
		if isNoRows(err) {
			return nil, customError.WrapInvalidLoanStatus(loanID.String(), loan.Status, domain.LoanStatusRejected)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	metrics.RecordLoan(domain.LoanStatusRejected)
	logger.Info("Loan rejected",
		logger.String("loan_id", loanID.String()),
		logger.String("user_id", rejected.UserID),
		logger.String("admin_id", adminID),
	)

	s.notifier.Notify(ctx, domain.NewNotification(
		rejected.UserID,
		domain.NotificationLoanRejected,
		"Loan rejected",
		fmt.Sprintf("Your loan request was rejected: %s", reason),
		loanData(rejected),
	))

	return rejected, nil
}

// RepayLoan settles an approved loan owned by userID and applies the repayment XP.
func (s *LendingService) RepayLoan(ctx context.Context, userID string, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan.UserID != userID {
		return nil, customError.WrapLoanNotFound(loanID.String())
	}
	if loan.Status != domain.LoanStatusApproved {
		return nil, customError.WrapInvalidLoanStatus(loanID.String(), loan.Status, domain.LoanStatusRepaid)
	}

	paidAt := s.now()
	repaid, err := s.loans.MarkRepaid(ctx, loanID, paidAt)
	if err != nil {
		if isNoRows(err) {
			return nil, customError.WrapInvalidLoanStatus(loanID.String(), loan.Status, domain.LoanStatusRepaid)
		}
		return nil, customError.WrapDatabaseError(err)
	}

	onTime := !utils.IsDateOverdue(repaid.DueDate, paidAt)
	metrics.RecordLoan(domain.LoanStatusRepaid)
	logger.Info("Loan repaid",
		logger.String("loan_id", loanID.String()),
		logger.String("user_id", userID),
		logger.Bool("on_time", onTime),
	)

	if err = s.users.RecordPayment(ctx, userID, onTime); err != nil {
		logger.Error("Failed to record payment counters", logger.String("user_id", userID), logger.ErrorField(err))
	}

	key, reason := settings.KeyXPLoanRepayOnTime, ReasonRepayOnTime
	if !onTime {
		key, reason = settings.KeyXPLoanRepayLate, ReasonRepayLate
	}
	if err = s.applyRepaymentXP(ctx, userID, key, reason); err != nil {
		logger.Error("Failed to apply repayment XP",
			logger.String("user_id", userID),
			logger.String("loan_id", loanID.String()),
			logger.ErrorField(err),
		)
	}

	message := fmt.Sprintf("You repaid %s on time", utils.FormatAmount(repaid.TotalAmount))
	if !onTime {
		message = fmt.Sprintf("You repaid %s after the due date", utils.FormatAmount(repaid.TotalAmount))
	}
	s.notifier.Notify(ctx, domain.NewNotification(userID, domain.NotificationLoanRepaid, "Loan repaid", message, loanData(repaid)))

	return repaid, nil
}

func (s *LendingService) applyRepaymentXP(ctx context.Context, userID, key, reason string) error {
	snap, err := s.settings.Snapshot(ctx)
	if err != nil {
		return err
	}

	delta, err := snap.XP(key)
	if err != nil {
		return err
	}

	_, err = s.xp.Apply(ctx, userID, delta, reason)
	return err
}

func (s *LendingService) ListLoans(ctx context.Context, userID string) ([]*domain.Loan, error) {
	loans, err := s.loans.ListByUser(ctx, userID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if loans == nil {
		loans = []*domain.Loan{}
	}
	return loans, nil
}

func (s *LendingService) ListAllLoans(ctx context.Context, limit, offset int) ([]*domain.Loan, error) {
	loans, err := s.loans.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	if loans == nil {
		loans = []*domain.Loan{}
	}
	return loans, nil
}

// GetLoan returns a loan visible to the requester: their own, or any loan for admins.
func (s *LendingService) GetLoan(ctx context.Context, loanID uuid.UUID, requesterID string, isAdmin bool) (*domain.Loan, error) {
	loan, err := s.getLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && loan.UserID != requesterID {
		return nil, customError.WrapLoanNotFound(loanID.String())
	}
	return loan, nil
}

// SendDueReminders notifies borrowers whose approved loans fall due within window
// or are already overdue. It returns how many reminders were sent.
func (s *LendingService) SendDueReminders(ctx context.Context, window time.Duration) (int, error) {
	now := s.now()

	loans, err := s.loans.ListApprovedDueBefore(ctx, now.Add(window))
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	sent := 0
	for _, loan := range loans {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		var notification *domain.Notification
		if utils.IsDateOverdue(loan.DueDate, now) {
			notification = domain.NewNotification(
				loan.UserID,
				domain.NotificationLoanOverdue,
				"Loan overdue",
				fmt.Sprintf("Your loan of %s was due on %s", utils.FormatAmount(loan.TotalAmount), loan.DueDate.Format("2006-01-02")),
				loanData(loan),
			)
		} else {
			notification = domain.NewNotification(
				loan.UserID,
				domain.NotificationLoanDueSoon,
				"Loan due soon",
				fmt.Sprintf("Your loan of %s is due in %d day(s)", utils.FormatAmount(loan.TotalAmount), utils.DaysUntil(loan.DueDate, now)),
				loanData(loan),
			)
		}

		s.notifier.Notify(ctx, notification)
		sent++
	}

	logger.Info("Due reminders sent", logger.Int("count", sent), logger.Duration("window", window))
	return sent, nil
}

func loanData(loan *domain.Loan) map[string]interface{} {
	return map[string]interface{}{
		"loanId":      loan.ID.String(),
		"amount":      loan.Amount.String(),
		"totalAmount": loan.TotalAmount.String(),
		"status":      loan.Status,
		"dueDate":     loan.DueDate,
	}
}
