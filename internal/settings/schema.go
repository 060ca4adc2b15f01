package settings

import (
	"fmt"
	"sort"

	"github.com/segyhp/xp-lending/internal/domain"
)

// Setting keys
const (
	KeyMinLoanTermDays    = "min_loan_term_days"
	KeyMaxLoanTermDays    = "max_loan_term_days"
	KeyMaxActiveLoans     = "max_active_loans"
	KeyXPPostCost         = "xp_post_cost"
	KeyXPLikeReactor      = "xp_like_reactor"
	KeyXPLikeOwner        = "xp_like_owner"
	KeyXPDislikeReactor   = "xp_dislike_reactor"
	KeyXPDislikeOwner     = "xp_dislike_owner"
	KeyXPLoanRepayOnTime  = "xp_loan_repay_ontime"
	KeyXPLoanRepayLate    = "xp_loan_repay_late"
	KeyReactionXPReversal = "reaction_xp_reversal"
	KeyMembershipFee      = "membership_fee"
)

// Reaction reversal policies
const (
	ReversalSymmetric = "symmetric"
	ReversalNone      = "none"
)

const (
	CategoryGeneral = "general"
	CategoryLending = "lending"
	CategoryXP      = "xp"
	CategoryLevels  = "levels"
)

// Definition describes one admin-overridable setting and its built-in default.
type Definition struct {
	Key         string
	Default     string
	DataType    string
	Category    string
	Description string
	Allowed     []string
	// Integer marks number settings that must be whole
	Integer bool
}

var (
	levelThresholdDefaults = map[int]string{2: "500", 3: "1500", 4: "3000"}
	interestRateDefaults   = map[int]string{1: "5", 2: "3", 3: "2", 4: "1"}
)

var definitions = buildDefinitions()

func LevelThresholdKey(level int) string { return fmt.Sprintf("level_%d_required_xp", level) }

func InterestRateKey(level int) string { return fmt.Sprintf("interest_rate_level_%d", level) }

func MaxLoanKey(level int) string { return fmt.Sprintf("max_loan_level_%d", level) }

func buildDefinitions() map[string]Definition {
	defs := []Definition{
		{Key: KeyMinLoanTermDays, Default: "7", DataType: domain.SettingTypeNumber, Category: CategoryLending, Description: "Minimum loan term in days", Integer: true},
		{Key: KeyMaxLoanTermDays, Default: "90", DataType: domain.SettingTypeNumber, Category: CategoryLending, Description: "Maximum loan term in days", Integer: true},
		{Key: KeyMaxActiveLoans, Default: "3", DataType: domain.SettingTypeNumber, Category: CategoryGeneral, Description: "Maximum unpaid approved loans per user", Integer: true},
		{Key: KeyMembershipFee, Default: "100", DataType: domain.SettingTypeNumber, Category: CategoryGeneral, Description: "Membership fee"},
		{Key: KeyXPPostCost, Default: "5", DataType: domain.SettingTypeNumber, Category: CategoryXP, Description: "XP spent to publish a post", Integer: true},
		{Key: KeyXPLikeReactor, Default: "-1", DataType: domain.SettingTypeNumber, Category: CategoryXP, Description: "XP change for the user who likes a post", Integer: true},
		{Key: KeyXPLikeOwner, Default: "1", DataType: domain.SettingTypeNumber, Category: CategoryXP, Description: "XP change for the owner of a liked post", Integer: true},
		{Key: KeyXPDislikeReactor, Default: "-2", DataType: domain.SettingTypeNumber, Category: CategoryXP, Description: "XP change for the user who dislikes a post", Integer: true},
		{Key: KeyXPDislikeOwner, Default: "-5", DataType: domain.SettingTypeNumber, Category: CategoryXP, Description: "XP change for the owner of a disliked post", Integer: true},
		{Key: KeyXPLoanRepayOnTime, Default: "50", DataType: domain.SettingTypeNumber, Category: CategoryXP, Description: "XP awarded for repaying a loan on time", Integer: true},
		{Key: KeyXPLoanRepayLate, Default: "-100", DataType: domain.SettingTypeNumber, Category: CategoryXP, Description: "XP change for repaying a loan late", Integer: true},
		{
			Key:         KeyReactionXPReversal,
			Default:     ReversalSymmetric,
			DataType:    domain.SettingTypeString,
			Category:    CategoryXP,
			Description: "Whether removing a reaction reverses the XP it granted",
			Allowed:     []string{ReversalSymmetric, ReversalNone},
		},
	}

	for level := domain.MinLevel; level <= domain.MaxLevel; level++ {
		defs = append(defs,
			Definition{
				Key:         InterestRateKey(level),
				Default:     interestRateDefaults[level],
				DataType:    domain.SettingTypeNumber,
				Category:    CategoryLending,
				Description: fmt.Sprintf("Interest rate (%%) for level %d", level),
			},
			// An empty default means the ceiling falls back to the user's available credit.
			Definition{
				Key:         MaxLoanKey(level),
				DataType:    domain.SettingTypeNumber,
				Category:    CategoryLending,
				Description: fmt.Sprintf("Maximum loan amount for level %d", level),
			},
		)
		if level > domain.MinLevel {
			defs = append(defs, Definition{
				Key:         LevelThresholdKey(level),
				Default:     levelThresholdDefaults[level],
				DataType:    domain.SettingTypeNumber,
				Category:    CategoryLevels,
				Description: fmt.Sprintf("XP required for level %d", level),
				Integer:     true,
			})
		}
	}

	m := make(map[string]Definition, len(defs))
	for _, d := range defs {
		m[d.Key] = d
	}
	return m
}

// Lookup returns the definition for key.
func Lookup(key string) (Definition, bool) {
	d, ok := definitions[key]
	return d, ok
}

// Definitions returns every known setting sorted by category then key.
func Definitions() []Definition {
	out := make([]Definition, 0, len(definitions))
	for _, d := range definitions {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Key < out[j].Key
	})
	return out
}
