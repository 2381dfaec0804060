// services/achievement_rules.go - Tier threshold tables.
//
// Thresholds are data, not code: the compiled-in defaults can be replaced by
// a JSON file (ACHIEVEMENT_RULES_PATH) since tiers get revised over time.
package services

import (
	"encoding/json"
	"fmt"
	"os"
)

// StatKind names one aggregate from AchievementStats.
type StatKind string

const (
	StatTotalBeers      StatKind = "total_beers"
	StatFastest         StatKind = "fastest"
	StatConnections     StatKind = "connections"
	StatStreak          StatKind = "streak"
	StatPersonalBests   StatKind = "personal_bests"
	StatChallenges      StatKind = "challenges"
	StatWeekPosts       StatKind = "week_posts"
	StatCompetitionWins StatKind = "competition_wins"
)

// Tier is one threshold within a category, keyed by the definition slug it
// awards.
type Tier struct {
	Threshold float64 `json:"threshold"`
	Slug      string  `json:"slug"`
}

// TierRule maps one stat to its ascending tiers. Below flips the comparison
// for timing stats: the tier is met when the value is strictly under the
// threshold instead of at or above it.
type TierRule struct {
	Stat  StatKind `json:"stat"`
	Below bool     `json:"below,omitempty"`
	Tiers []Tier   `json:"tiers"`
}

// DefaultTierRules mirrors the seeded achievement set. Tiers are listed
// low-to-high in award order; for Below rules "low" means the loosest bound.
func DefaultTierRules() []TierRule {
	return []TierRule{
		{Stat: StatTotalBeers, Tiers: []Tier{
			{1, "bier_1"}, {10, "bier_10"}, {100, "bier_100"},
			{500, "bier_500"}, {1000, "bier_1000"}, {2000, "bier_2000"},
		}},
		{Stat: StatFastest, Below: true, Tiers: []Tier{
			{5, "speed_5"}, {3, "speed_3"}, {2, "speed_2"}, {1.5, "speed_1.5"},
		}},
		{Stat: StatConnections, Tiers: []Tier{
			{1, "social_1"}, {5, "social_5"}, {10, "social_10"}, {25, "social_25"},
		}},
		{Stat: StatStreak, Tiers: []Tier{
			{3, "streak_3"}, {7, "streak_7"}, {14, "streak_14"}, {30, "streak_30"},
		}},
		{Stat: StatPersonalBests, Tiers: []Tier{
			{1, "pb_1"}, {5, "pb_5"}, {10, "pb_10"}, {25, "pb_25"},
		}},
		{Stat: StatChallenges, Tiers: []Tier{
			{1, "challenge_1"}, {5, "challenge_5"}, {10, "challenge_10"}, {25, "challenge_25"},
		}},
		{Stat: StatWeekPosts, Tiers: []Tier{
			{5, "weekly_5"}, {10, "weekly_10"}, {20, "weekly_20"},
		}},
		{Stat: StatCompetitionWins, Tiers: []Tier{
			{1, "comp_win_1"}, {3, "comp_win_3"}, {10, "comp_win_10"},
		}},
	}
}

// LoadTierRules reads a rule table from a JSON file.
func LoadTierRules(path string) ([]TierRule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tier rules: %w", err)
	}

	var rules []TierRule
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse tier rules: %w", err)
	}
	return rules, nil
}

// TierRulesFromEnv returns the configured rule table, falling back to the
// compiled-in defaults when ACHIEVEMENT_RULES_PATH is unset.
func TierRulesFromEnv() ([]TierRule, error) {
	path := os.Getenv("ACHIEVEMENT_RULES_PATH")
	if path == "" {
		return DefaultTierRules(), nil
	}
	return LoadTierRules(path)
}

// statValue picks the rule's stat out of the aggregate record. ok is false
// when the stat has no value to compare (no recorded timing yet).
func statValue(stats *AchievementStats, kind StatKind) (float64, bool) {
	switch kind {
	case StatTotalBeers:
		return float64(stats.TotalBeers), true
	case StatFastest:
		if stats.Fastest == nil {
			return 0, false
		}
		return *stats.Fastest, true
	case StatConnections:
		return float64(stats.Connections), true
	case StatStreak:
		return float64(stats.MaxStreak), true
	case StatPersonalBests:
		return float64(stats.PersonalBests), true
	case StatChallenges:
		return float64(stats.ChallengeCount), true
	case StatWeekPosts:
		return float64(stats.WeekPosts), true
	case StatCompetitionWins:
		return float64(stats.CompetitionWins), true
	}
	return 0, false
}
