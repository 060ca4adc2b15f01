package engine

import (
	"github.com/segyhp/xp-lending/internal/domain"
	"github.com/segyhp/xp-lending/internal/settings"
	customError "github.com/segyhp/xp-lending/pkg/errors"
)

// ReactionRules holds the XP transfers of each reaction type and the removal policy.
type ReactionRules struct {
	LikeReactor    int64
	LikeOwner      int64
	DislikeReactor int64
	DislikeOwner   int64
	Reversal       string
}

func NewReactionRules(snap settings.Snapshot) (ReactionRules, error) {
	var (
		rules ReactionRules
		err   error
	)
	if rules.LikeReactor, err = snap.XP(settings.KeyXPLikeReactor); err != nil {
		return rules, err
	}
	if rules.LikeOwner, err = snap.XP(settings.KeyXPLikeOwner); err != nil {
		return rules, err
	}
	if rules.DislikeReactor, err = snap.XP(settings.KeyXPDislikeReactor); err != nil {
		return rules, err
	}
	if rules.DislikeOwner, err = snap.XP(settings.KeyXPDislikeOwner); err != nil {
		return rules, err
	}
	if rules.Reversal, err = snap.ReactionReversal(); err != nil {
		return rules, err
	}
	return rules, nil
}

func (r ReactionRules) deltas(kind string) (reactor, owner int64) {
	if kind == domain.ReactionDislike {
		return r.DislikeReactor, r.DislikeOwner
	}
	return r.LikeReactor, r.LikeOwner
}

// ReactionOutcome is the effect of one toggle on a (user, post) pair.
// GrantedReactorXP and GrantedOwnerXP are what the new reaction itself granted;
// they are stored with it so a later removal can reverse exactly that amount.
type ReactionOutcome struct {
	Previous         string
	Current          string
	Added            bool
	LikesDelta       int
	DislikesDelta    int
	ReactorXP        int64
	OwnerXP          int64
	GrantedReactorXP int64
	GrantedOwnerXP   int64
}

func (o *ReactionOutcome) counter(kind string, delta int) {
	if kind == domain.ReactionDislike {
		o.DislikesDelta += delta
	} else {
		o.LikesDelta += delta
	}
}

// ToggleReaction moves the pair from current (nil for none) given the requested reaction.
// Reacting with the current type removes it; another type replaces it.
// self suppresses the owner side when the reactor owns the post.
func ToggleReaction(rules ReactionRules, current *domain.PostReaction, requested string, self bool) (ReactionOutcome, error) {
	if requested != domain.ReactionLike && requested != domain.ReactionDislike {
		return ReactionOutcome{}, customError.WrapValidation("Reaction type must be like or dislike")
	}

	var out ReactionOutcome

	if current != nil {
		out.Previous = current.Type
		out.counter(current.Type, -1)
		if rules.Reversal == settings.ReversalSymmetric {
			out.ReactorXP -= current.ReactorXP
			out.OwnerXP -= current.OwnerXP
		}
		if current.Type == requested {
			return out, nil
		}
	}

	out.counter(requested, 1)
	reactor, owner := rules.deltas(requested)
	if self {
		owner = 0
	}
	out.ReactorXP += reactor
	out.OwnerXP += owner
	out.GrantedReactorXP = reactor
	out.GrantedOwnerXP = owner
	out.Current = requested
	out.Added = true

	return out, nil
}
