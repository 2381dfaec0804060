// services/achievement_service.go - Tiered achievement evaluation and seeding.
package services

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"proost/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementService struct {
	db    *gorm.DB
	stats *StatsService
	rules []TierRule
}

func NewAchievementService(db *gorm.DB, rules []TierRule) *AchievementService {
	if rules == nil {
		rules = DefaultTierRules()
	}
	return &AchievementService{
		db:    db,
		stats: NewStatsService(db),
		rules: rules,
	}
}

// Evaluate checks every tier against fresh stats and unlocks the ones that
// are met and not yet held. Unlocks are insert-ignore on the (user, slug)
// unique index, so concurrent evaluations for the same user cannot produce
// duplicates: the losing insert is a no-op, not an error. Returns the newly
// unlocked definitions in evaluation order.
//
// A failure partway through leaves earlier awards in place; the next
// evaluation completes the rest, so callers need no rollback handling.
func (s *AchievementService) Evaluate(userID uint) ([]models.Achievement, error) {
	stats, err := s.stats.AchievementStats(userID)
	if err != nil {
		return nil, err
	}

	defs, err := s.definitionsBySlug()
	if err != nil {
		return nil, err
	}

	var unlockedSlugs []string
	err = s.db.Model(&models.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_slug", &unlockedSlugs).Error
	if err != nil {
		return nil, err
	}

	held := make(map[string]bool, len(unlockedSlugs))
	for _, slug := range unlockedSlugs {
		held[slug] = true
	}

	newly := []models.Achievement{}
	for _, rule := range s.rules {
		value, ok := statValue(stats, rule.Stat)
		if !ok {
			continue
		}

		for _, tier := range rule.Tiers {
			met := value >= tier.Threshold
			if rule.Below {
				met = value < tier.Threshold
			}
			if !met || held[tier.Slug] {
				continue
			}

			// Unlocks must reference a live definition; a slug missing from
			// the table (retired between rule reload and now) is skipped.
			def, exists := defs[tier.Slug]
			if !exists {
				continue
			}

			awarded, err := s.award(userID, tier.Slug)
			if err != nil {
				return newly, err
			}
			if awarded {
				newly = append(newly, def)
			}
		}
	}

	return newly, nil
}

// award does the insert-if-absent unlock. Returns false when another
// evaluation got there first.
func (s *AchievementService) award(userID uint, slug string) (bool, error) {
	ua := models.UserAchievement{
		UserID:          userID,
		AchievementSlug: slug,
		UnlockedAt:      time.Now().UTC(),
	}

	res := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&ua)
	if res.Error != nil {
		if res.Error == gorm.ErrDuplicatedKey {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *AchievementService) definitionsBySlug() (map[string]models.Achievement, error) {
	var defs []models.Achievement
	if err := s.db.Find(&defs).Error; err != nil {
		return nil, err
	}

	bySlug := make(map[string]models.Achievement, len(defs))
	for _, def := range defs {
		bySlug[def.Slug] = def
	}
	return bySlug, nil
}

// AchievementDef is one entry of the seedable definition list.
type AchievementDef struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

// Seed upserts the definition set: existing slugs get their name, icon and
// description refreshed, new slugs are created, and slugs missing from defs
// are retired: the definition and every unlock of it are deleted, and the
// slug is never awarded again.
func (s *AchievementService) Seed(defs []AchievementDef) error {
	keep := make(map[string]bool, len(defs))
	for _, def := range defs {
		keep[def.Slug] = true
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing []models.Achievement
		if err := tx.Find(&existing).Error; err != nil {
			return err
		}

		for _, old := range existing {
			if keep[old.Slug] {
				continue
			}
			if err := tx.Where("achievement_slug = ?", old.Slug).
				Delete(&models.UserAchievement{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&old).Error; err != nil {
				return err
			}
		}

		for _, def := range defs {
			ach := models.Achievement{
				Slug:        def.Slug,
				Name:        def.Name,
				Icon:        def.Icon,
				Description: def.Description,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "slug"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "icon", "description", "updated_at"}),
			}).Create(&ach).Error
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// DefaultAchievementDefs is the stock definition list the seeder ships with.
func DefaultAchievementDefs() []AchievementDef {
	return []AchievementDef{
		// Bier tiers (total beers posted)
		{"bier_1", "Eerste Bier", "🍺", "Post je eerste bier"},
		{"bier_10", "10 Bieren", "🍺", "Post 10 bieren"},
		{"bier_100", "Centurion", "🍺", "Post 100 bieren"},
		{"bier_500", "Legende", "🍺", "Post 500 bieren"},
		{"bier_1000", "Machine", "🍺", "Post 1000 bieren"},
		{"bier_2000", "GOAT", "🍺", "Post 2000 bieren"},
		// Speed tiers (fastest single time)
		{"speed_5", "Vlugge Slok", "🏃", "Onder 5 seconden"},
		{"speed_3", "Snelheidsduivel", "🏃", "Onder 3 seconden"},
		{"speed_2", "Bliksem", "🏃", "Onder 2 seconden"},
		{"speed_1.5", "Onmenselijk", "🏃", "Onder 1.5 seconden"},
		// Social tiers (connections)
		{"social_1", "Eerste Maat", "🫂", "Verbind met 1 persoon"},
		{"social_5", "Sociaal", "🫂", "Verbind met 5 mensen"},
		{"social_10", "Populair", "🫂", "Verbind met 10 mensen"},
		{"social_25", "Influencer", "🫂", "Verbind met 25 mensen"},
		// Streak tiers (consecutive days posting)
		{"streak_3", "Hat Trick", "🎯", "3 dagen op rij"},
		{"streak_7", "Volle Week", "🎯", "7 dagen op rij"},
		{"streak_14", "Twee Weken", "🎯", "14 dagen op rij"},
		{"streak_30", "IJzeren Wil", "🎯", "30 dagen op rij"},
		// PB tiers (personal bests beaten)
		{"pb_1", "Recordbreker", "🥇", "Versla je PR"},
		{"pb_5", "PR Jager", "🥇", "Versla je PR 5 keer"},
		{"pb_10", "PR Machine", "🥇", "Versla je PR 10 keer"},
		{"pb_25", "PR Legende", "🥇", "Versla je PR 25 keer"},
		// Challenge tiers
		{"challenge_1", "Uitdager", "🏆", "Voltooi een challenge"},
		{"challenge_5", "Veteraan", "🏆", "Voltooi 5 challenges"},
		{"challenge_10", "Kampioen", "🏆", "Voltooi 10 challenges"},
		{"challenge_25", "Meester", "🏆", "Voltooi 25 challenges"},
		// Weekly tiers (posts in one week)
		{"weekly_5", "On Fire", "🔥", "5 posts in één week"},
		{"weekly_10", "Vlammend", "🔥", "10 posts in één week"},
		{"weekly_20", "Inferno", "🔥", "20 posts in één week"},
		// Competition winner tiers
		{"comp_win_1", "Eerste Overwinning", "🏆", "Win je eerste competitie"},
		{"comp_win_3", "Competitiebeest", "🏆", "Win 3 competities"},
		{"comp_win_10", "Onverslaanbaar", "🏆", "Win 10 competities"},
	}
}

// LoadAchievementDefs reads a definition list from a JSON file.
func LoadAchievementDefs(path string) ([]AchievementDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read achievement defs: %w", err)
	}

	var defs []AchievementDef
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("parse achievement defs: %w", err)
	}
	return defs, nil
}
