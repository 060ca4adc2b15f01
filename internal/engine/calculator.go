package engine

import (
	"github.com/segyhp/xp-lending/internal/settings"

	"github.com/shopspring/decimal"
)

const DefaultTermDays = 30

var (
	// BaseCreditLimit is the credit granted per level.
	BaseCreditLimit = decimal.NewFromInt(10000)

	hundred = decimal.NewFromInt(100)
)

// Calculator evaluates the lending rules against one settings snapshot.
// It holds no other state, so the same inputs always give the same result.
type Calculator struct {
	Settings        settings.Snapshot
	BaseCreditLimit decimal.Decimal
	DefaultTermDays int
}

func NewCalculator(snap settings.Snapshot) *Calculator {
	return &Calculator{
		Settings:        snap,
		BaseCreditLimit: BaseCreditLimit,
		DefaultTermDays: DefaultTermDays,
	}
}

// WithDefaults overrides the process-level fallbacks; zero values keep the built-in ones.
func (c *Calculator) WithDefaults(baseCreditLimit decimal.Decimal, defaultTermDays int) *Calculator {
	if baseCreditLimit.IsPositive() {
		c.BaseCreditLimit = baseCreditLimit
	}
	if defaultTermDays > 0 {
		c.DefaultTermDays = defaultTermDays
	}
	return c
}
