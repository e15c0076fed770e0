package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/streakline/schema"
)

// ErrInvalidTiers is returned by ValidateTiers.
var ErrInvalidTiers = errors.New("invalid motivation tiers")

// SelectMessage returns the message of the highest tier whose threshold the streak reaches.
// Tiers must be sorted by ascending MinStreak and start at zero; see ValidateTiers.
// Negative streaks fall into the first tier.
func SelectMessage(streak int, tiers []schema.MotivationTier) string {
	if len(tiers) == 0 {
		return ""
	}
	msg := tiers[0].Message
	for _, tier := range tiers[1:] {
		if streak < tier.MinStreak {
			break
		}
		msg = tier.Message
	}
	return msg
}

// ValidateTiers checks that a message table is usable by SelectMessage.
func ValidateTiers(tiers []schema.MotivationTier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("%w: at least one tier is required", ErrInvalidTiers)
	}
	if tiers[0].MinStreak != 0 {
		return fmt.Errorf("%w: the first tier must start at 0, got %d", ErrInvalidTiers, tiers[0].MinStreak)
	}
	for i, tier := range tiers {
		if strings.TrimSpace(tier.Message) == "" {
			return fmt.Errorf("%w: tier %d (min %d) has an empty message", ErrInvalidTiers, i, tier.MinStreak)
		}
		if i > 0 && tier.MinStreak <= tiers[i-1].MinStreak {
			return fmt.Errorf("%w: thresholds must be strictly ascending, %d follows %d", ErrInvalidTiers, tier.MinStreak, tiers[i-1].MinStreak)
		}
	}
	return nil
}
