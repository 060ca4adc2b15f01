package utils

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// CalculateDueDate returns the due date of a loan taken out at start for termDays days
func CalculateDueDate(start time.Time, termDays int) time.Time {
	return start.AddDate(0, 0, termDays)
}

// IsDateOverdue checks if dueDate has passed at now
func IsDateOverdue(dueDate, now time.Time) bool {
	return now.After(dueDate)
}

// DaysUntil returns the whole days from now until dueDate, rounded up; negative when overdue
func DaysUntil(dueDate, now time.Time) int {
	return int(math.Ceil(dueDate.Sub(now).Hours() / 24))
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// FormatAmount renders an amount with two decimal places
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Pagination clamps limit into [1, max] and offset to >= 0
func Pagination(limit, offset, def, max int) (int, int) {
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
