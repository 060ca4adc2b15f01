package errors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrValidation           = errors.New("validation failed")
	ErrLoanLimitExceeded    = errors.New("loan amount exceeds limit")
	ErrMembershipRequired   = errors.New("membership payment required")
	ErrActiveLoanLimit      = errors.New("active loan limit reached")
	ErrUserNotFound         = errors.New("user not found")
	ErrLoanNotFound         = errors.New("loan not found")
	ErrPostNotFound         = errors.New("post not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrConfigParse          = errors.New("malformed setting value")
	ErrInvalidLoanStatus    = errors.New("invalid loan status transition")
	ErrUserBanned           = errors.New("user is banned")
	ErrInsufficientXP       = errors.New("insufficient xp")
	ErrUnknownSetting       = errors.New("unknown setting")
	ErrSettingTypeMismatch  = errors.New("setting value does not match its data type")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeLoanLimitExceeded    = "LOAN_LIMIT_EXCEEDED"
	ErrCodeMembershipRequired   = "MEMBERSHIP_REQUIRED"
	ErrCodeActiveLoanLimit      = "ACTIVE_LOAN_LIMIT_EXCEEDED"
	ErrCodeUserNotFound         = "USER_NOT_FOUND"
	ErrCodeLoanNotFound         = "LOAN_NOT_FOUND"
	ErrCodePostNotFound         = "POST_NOT_FOUND"
	ErrCodeNotificationNotFound = "NOTIFICATION_NOT_FOUND"
	ErrCodeConfigParse          = "CONFIG_PARSE_ERROR"
	ErrCodeInvalidLoanStatus    = "INVALID_LOAN_STATUS"
	ErrCodeUserBanned           = "USER_BANNED"
	ErrCodeInsufficientXP       = "INSUFFICIENT_XP"
	ErrCodeForbidden            = "FORBIDDEN"
	ErrCodeDatabaseError        = "DATABASE_ERROR"
	ErrCodeCacheError           = "CACHE_ERROR"
)

// Code extracts the business error code from err, or "" when err is not a BusinessError.
func Code(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

func WrapValidation(message string) *BusinessError {
	return NewBusinessError(ErrCodeValidation, message, ErrValidation)
}

func WrapLoanLimitExceeded(ceiling decimal.Decimal) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanLimitExceeded,
		fmt.Sprintf("Requested amount exceeds the maximum loan amount of %s", ceiling.StringFixed(2)),
		ErrLoanLimitExceeded,
	)
}

func WrapMembershipRequired(userID string) *BusinessError {
	return NewBusinessError(
		ErrCodeMembershipRequired,
		fmt.Sprintf("User %s must pay the membership fee before requesting a loan", userID),
		ErrMembershipRequired,
	)
}

func WrapActiveLoanLimit(limit int) *BusinessError {
	return NewBusinessError(
		ErrCodeActiveLoanLimit,
		fmt.Sprintf("User already has %d unpaid approved loans", limit),
		ErrActiveLoanLimit,
	)
}

func WrapUserNotFound(userID string) *BusinessError {
	return NewBusinessError(
		ErrCodeUserNotFound,
		fmt.Sprintf("User with ID %s not found", userID),
		ErrUserNotFound,
	)
}

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapPostNotFound(postID string) *BusinessError {
	return NewBusinessError(
		ErrCodePostNotFound,
		fmt.Sprintf("Post with ID %s not found", postID),
		ErrPostNotFound,
	)
}

func WrapNotificationNotFound(id string) *BusinessError {
	return NewBusinessError(
		ErrCodeNotificationNotFound,
		fmt.Sprintf("Notification with ID %s not found", id),
		ErrNotificationNotFound,
	)
}

func WrapConfigParse(key, raw string, err error) *BusinessError {
	return NewBusinessError(
		ErrCodeConfigParse,
		fmt.Sprintf("Setting %s has malformed value %q", key, raw),
		fmt.Errorf("%w: %v", ErrConfigParse, err),
	)
}

func WrapUnknownSetting(key string) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		fmt.Sprintf("Setting %s is not a known setting", key),
		ErrUnknownSetting,
	)
}

func WrapSettingTypeMismatch(key, dataType, raw string) *BusinessError {
	return NewBusinessError(
		ErrCodeValidation,
		fmt.Sprintf("Setting %s expects a %s value, got %q", key, dataType, raw),
		ErrSettingTypeMismatch,
	)
}

// WrapSettingRejected reports a value that parses but breaks a rule reading it.
func WrapSettingRejected(key, raw string, err error) *BusinessError {
	reason := err.Error()
	var be *BusinessError
	if errors.As(err, &be) {
		reason = be.Message
	}
	return NewBusinessError(
		ErrCodeValidation,
		fmt.Sprintf("Setting %s cannot be set to %q: %s", key, raw, reason),
		fmt.Errorf("%w: %v", ErrSettingTypeMismatch, err),
	)
}

func WrapInvalidLoanStatus(loanID, from, to string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidLoanStatus,
		fmt.Sprintf("Loan %s cannot move from %s to %s", loanID, from, to),
		ErrInvalidLoanStatus,
	)
}

func WrapUserBanned(userID string) *BusinessError {
	return NewBusinessError(
		ErrCodeUserBanned,
		fmt.Sprintf("User %s is banned", userID),
		ErrUserBanned,
	)
}

func WrapInsufficientXP(have, need int64) *BusinessError {
	return NewBusinessError(
		ErrCodeInsufficientXP,
		fmt.Sprintf("Action requires %d XP, user has %d", need, have),
		ErrInsufficientXP,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
