package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/segyhp/xp-lending/internal/domain"
	customError "github.com/segyhp/xp-lending/pkg/errors"

	"github.com/shopspring/decimal"
)

// Snapshot is a point-in-time copy of the override store. It is read-only once built,
// so every rule evaluated against it in one request sees the same values.
type Snapshot map[string]string

// Resolve returns the stored override for key, or def when none exists.
func (s Snapshot) Resolve(key, def string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return def
}

func (s Snapshot) lookup(key string) (string, bool) {
	v, ok := s[key]
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// Number parses the override for key as a decimal.
func (s Snapshot) Number(key string, def decimal.Decimal) (decimal.Decimal, error) {
	raw, ok := s.lookup(key)
	if !ok {
		return def, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, customError.WrapConfigParse(key, raw, err)
	}
	return d, nil
}

// Int parses the override for key as a whole number. "3.0" is accepted, "3.5" is not.
func (s Snapshot) Int(key string, def int) (int, error) {
	raw, ok := s.lookup(key)
	if !ok {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err == nil {
		return n, nil
	}
	if errors.Is(err, strconv.ErrRange) {
		return 0, customError.WrapConfigParse(key, raw, err)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, customError.WrapConfigParse(key, raw, err)
	}
	if !d.IsInteger() {
		return 0, customError.WrapConfigParse(key, raw, fmt.Errorf("not a whole number"))
	}
	// "3.0" and "1e3" normalize to plain digits; out-of-range values fail here
	n, err = strconv.Atoi(d.String())
	if err != nil {
		return 0, customError.WrapConfigParse(key, raw, err)
	}
	return n, nil
}

// String returns the trimmed override for key, or def when none is set.
func (s Snapshot) String(key, def string) string {
	if v, ok := s.lookup(key); ok {
		return v
	}
	return def
}

// Bool parses the override for key with strconv.ParseBool rules.
func (s Snapshot) Bool(key string, def bool) (bool, error) {
	raw, ok := s.lookup(key)
	if !ok {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, customError.WrapConfigParse(key, raw, err)
	}
	return b, nil
}

// schemaDefault returns the built-in default for a known key.
func schemaDefault(key string) string {
	d, _ := Lookup(key)
	return d.Default
}

func (s Snapshot) schemaNumber(key string) (decimal.Decimal, error) {
	def, err := decimal.NewFromString(schemaDefault(key))
	if err != nil {
		return decimal.Zero, customError.WrapConfigParse(key, schemaDefault(key), err)
	}
	return s.Number(key, def)
}

func (s Snapshot) schemaInt(key string) (int, error) {
	def, err := strconv.Atoi(schemaDefault(key))
	if err != nil {
		return 0, customError.WrapConfigParse(key, schemaDefault(key), err)
	}
	return s.Int(key, def)
}

// ClampLevel maps out-of-range levels onto the nearest valid tier.
func ClampLevel(level int) int {
	if level < domain.MinLevel {
		return domain.MinLevel
	}
	if level > domain.MaxLevel {
		return domain.MaxLevel
	}
	return level
}

// InterestRate returns the percentage rate for level.
func (s Snapshot) InterestRate(level int) (decimal.Decimal, error) {
	return s.schemaNumber(InterestRateKey(ClampLevel(level)))
}

// LevelThreshold returns the XP lower bound for level. Level 1 always starts at 0.
func (s Snapshot) LevelThreshold(level int) (int64, error) {
	if level <= domain.MinLevel {
		return 0, nil
	}
	n, err := s.schemaInt(LevelThresholdKey(ClampLevel(level)))
	return int64(n), err
}

// LevelThresholds returns the XP lower bound of every level from MinLevel up.
// Thresholds must not decrease from one level to the next.
func (s Snapshot) LevelThresholds() ([]int64, error) {
	out := make([]int64, 0, domain.MaxLevel)
	var prev int64
	for level := domain.MinLevel; level <= domain.MaxLevel; level++ {
		threshold, err := s.LevelThreshold(level)
		if err != nil {
			return nil, err
		}
		if threshold < prev {
			return nil, customError.WrapConfigParse(
				LevelThresholdKey(level),
				strconv.FormatInt(threshold, 10),
				fmt.Errorf("threshold below level %d (%d)", level-1, prev),
			)
		}
		out = append(out, threshold)
		prev = threshold
	}
	return out, nil
}

// MaxLoan returns the admin ceiling for level; ok is false when no override exists.
func (s Snapshot) MaxLoan(level int) (decimal.Decimal, bool, error) {
	key := MaxLoanKey(ClampLevel(level))
	if _, ok := s.lookup(key); !ok {
		return decimal.Zero, false, nil
	}
	d, err := s.Number(key, decimal.Zero)
	return d, err == nil, err
}

// TermBounds returns the [min, max] loan term in days.
func (s Snapshot) TermBounds() (int, int, error) {
	minDays, err := s.schemaInt(KeyMinLoanTermDays)
	if err != nil {
		return 0, 0, err
	}
	maxDays, err := s.schemaInt(KeyMaxLoanTermDays)
	if err != nil {
		return 0, 0, err
	}
	if minDays <= 0 || minDays > maxDays {
		return 0, 0, customError.WrapConfigParse(
			KeyMinLoanTermDays,
			fmt.Sprintf("%d..%d", minDays, maxDays),
			fmt.Errorf("term bounds must satisfy 0 < min <= max"),
		)
	}
	return minDays, maxDays, nil
}

// MaxActiveLoans returns how many approved unpaid loans a user may hold.
func (s Snapshot) MaxActiveLoans() (int, error) {
	return s.schemaInt(KeyMaxActiveLoans)
}

// XP returns an XP delta setting such as KeyXPLikeOwner.
func (s Snapshot) XP(key string) (int64, error) {
	n, err := s.schemaInt(key)
	return int64(n), err
}

// ReactionReversal returns the configured reversal policy.
func (s Snapshot) ReactionReversal() (string, error) {
	v := strings.ToLower(s.String(KeyReactionXPReversal, ReversalSymmetric))
	if v != ReversalSymmetric && v != ReversalNone {
		return "", customError.WrapConfigParse(KeyReactionXPReversal, v, fmt.Errorf("unknown policy"))
	}
	return v, nil
}

// Check runs the rule that reads key against s and returns its error, if any.
func (s Snapshot) Check(key string) error {
	def, ok := Lookup(key)
	if !ok {
		return nil
	}

	var err error
	switch {
	case key == KeyMinLoanTermDays || key == KeyMaxLoanTermDays:
		_, _, err = s.TermBounds()
	case key == KeyMaxActiveLoans:
		var n int
		if n, err = s.MaxActiveLoans(); err == nil && n < 0 {
			err = customError.WrapConfigParse(key, strconv.Itoa(n), fmt.Errorf("must not be negative"))
		}
	case key == KeyReactionXPReversal:
		_, err = s.ReactionReversal()
	case def.Category == CategoryLevels:
		_, err = s.LevelThresholds()
	case def.Integer:
		_, err = s.schemaInt(key)
	case def.DataType == domain.SettingTypeNumber:
		_, err = s.Number(key, decimal.Zero)
	}
	return err
}

// ValidateValue checks raw against the data type and allowed values of def.
func ValidateValue(def Definition, raw string) error {
	value := strings.TrimSpace(raw)
	switch def.DataType {
	case domain.SettingTypeNumber:
		if _, err := decimal.NewFromString(value); err != nil {
			return customError.WrapSettingTypeMismatch(def.Key, def.DataType, raw)
		}
		if def.Integer {
			if _, err := (Snapshot{def.Key: value}).Int(def.Key, 0); err != nil {
				return customError.WrapSettingTypeMismatch(def.Key, "integer", raw)
			}
		}
	case domain.SettingTypeBoolean:
		if _, err := strconv.ParseBool(value); err != nil {
			return customError.WrapSettingTypeMismatch(def.Key, def.DataType, raw)
		}
	case domain.SettingTypeJSON:
		if !json.Valid([]byte(value)) {
			return customError.WrapSettingTypeMismatch(def.Key, def.DataType, raw)
		}
	}
	if len(def.Allowed) > 0 {
		for _, a := range def.Allowed {
			if strings.EqualFold(a, value) {
				return nil
			}
		}
		return customError.WrapSettingTypeMismatch(def.Key, strings.Join(def.Allowed, "|"), raw)
	}
	return nil
}
