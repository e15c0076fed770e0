package schema

// defaultMotivationTiers is ordered by ascending MinStreak and always starts at zero.
var defaultMotivationTiers = []MotivationTier{
	{MinStreak: 0, Message: "Start your reflection journey today!"},
	{MinStreak: 1, Message: "Great start! One day at a time."},
	{MinStreak: 2, Message: "Building momentum. Keep writing!"},
	{MinStreak: 7, Message: "A full week of reflection. Impressive!"},
	{MinStreak: 14, Message: "Two weeks strong. Reflection is becoming a habit."},
	{MinStreak: 30, Message: "Legendary reflection streak! You're unstoppable."},
}

// DefaultMotivationTiers returns a copy of the built-in message table.
func DefaultMotivationTiers() []MotivationTier {
	tiers := make([]MotivationTier, len(defaultMotivationTiers))
	copy(tiers, defaultMotivationTiers)
	return tiers
}
