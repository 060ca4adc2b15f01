package engine

import (
	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/internal/settings"
)

// LevelTier is the XP lower bound of one level.
type LevelTier struct {
	Level int
	MinXP int64
}

// LevelTable is ordered by level ascending; thresholds never decrease.
type LevelTable []LevelTier

// DefaultLevelTable is the table with no overrides applied.
func DefaultLevelTable() LevelTable {
	table, _ := NewLevelTable(nil)
	return table
}

// NewLevelTable builds the level table from snap.
func NewLevelTable(snap settings.Snapshot) (LevelTable, error) {
	thresholds, err := snap.LevelThresholds()
	if err != nil {
		return nil, err
	}
	table := make(LevelTable, 0, len(thresholds))
	for i, threshold := range thresholds {
		table = append(table, LevelTier{Level: domain.MinLevel + i, MinXP: threshold})
	}
	return table, nil
}

// LevelFor returns the highest level whose threshold is at most xp.
func (t LevelTable) LevelFor(xp int64) int {
	level := domain.MinLevel
	for _, tier := range t {
		if xp >= tier.MinXP {
			level = tier.Level
		}
	}
	return level
}

// Threshold returns the XP lower bound of level.
func (t LevelTable) Threshold(level int) int64 {
	for _, tier := range t {
		if tier.Level == level {
			return tier.MinXP
		}
	}
	return 0
}

// NextLevel returns the level a user with the stored level and xp should hold.
// Levels only ratchet upwards; changed is false when no promotion is due.
func (t LevelTable) NextLevel(stored int, xp int64) (int, bool) {
	computed := t.LevelFor(xp)
	if computed > stored {
		return computed, true
	}
	return stored, false
}
