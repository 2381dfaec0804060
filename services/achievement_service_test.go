package services

import (
	"testing"
	"time"

	"proost/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seededAchievementService(t *testing.T, db *gorm.DB) *AchievementService {
	t.Helper()

	svc := NewAchievementService(db, nil)
	require.NoError(t, svc.Seed(DefaultAchievementDefs()))
	return svc
}

func unlockedSlugs(t *testing.T, db *gorm.DB, userID uint) []string {
	t.Helper()

	var slugs []string
	require.NoError(t, db.Model(&models.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_slug", &slugs).Error)
	return slugs
}

func TestEvaluateUnlocksTiers(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")
	svc := seededAchievementService(t, db)

	now := time.Now().UTC()
	insertPost(t, db, user.ID, 10, floatPtr(4.0), now)

	newly, err := svc.Evaluate(user.ID)
	require.NoError(t, err)

	slugs := make([]string, 0, len(newly))
	for _, a := range newly {
		slugs = append(slugs, a.Slug)
	}
	assert.Contains(t, slugs, "bier_1")
	assert.Contains(t, slugs, "bier_10")
	assert.Contains(t, slugs, "speed_5")
	assert.NotContains(t, slugs, "bier_100")
	assert.NotContains(t, slugs, "speed_3")
}

func TestEvaluateBelowRule(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")
	svc := seededAchievementService(t, db)

	insertPost(t, db, user.ID, 1, floatPtr(1.2), time.Now().UTC())

	_, err := svc.Evaluate(user.ID)
	require.NoError(t, err)

	// 1.2s is under every speed threshold, so all four tiers unlock at once.
	slugs := unlockedSlugs(t, db, user.ID)
	assert.Contains(t, slugs, "speed_5")
	assert.Contains(t, slugs, "speed_3")
	assert.Contains(t, slugs, "speed_2")
	assert.Contains(t, slugs, "speed_1.5")
}

func TestEvaluateSkipsTimingWithoutValue(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")
	svc := seededAchievementService(t, db)

	// VDL posts carry no timing, so no speed tier may fire.
	insertPost(t, db, user.ID, 1, nil, time.Now().UTC())

	_, err := svc.Evaluate(user.ID)
	require.NoError(t, err)

	for _, slug := range unlockedSlugs(t, db, user.ID) {
		assert.NotContains(t, slug, "speed_")
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")
	svc := seededAchievementService(t, db)

	insertPost(t, db, user.ID, 5, nil, time.Now().UTC())

	first, err := svc.Evaluate(user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := svc.Evaluate(user.ID)
	require.NoError(t, err)
	assert.Empty(t, second)

	var count int64
	require.NoError(t, db.Model(&models.UserAchievement{}).
		Where("user_id = ? AND achievement_slug = ?", user.ID, "bier_1").
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSeedUpsertsExistingDefinitions(t *testing.T) {
	db := newTestDB(t)
	svc := seededAchievementService(t, db)

	defs := DefaultAchievementDefs()
	defs[0].Name = "Allereerste Bier"
	require.NoError(t, svc.Seed(defs))

	var def models.Achievement
	require.NoError(t, db.Where("slug = ?", "bier_1").First(&def).Error)
	assert.Equal(t, "Allereerste Bier", def.Name)

	var count int64
	require.NoError(t, db.Model(&models.Achievement{}).Count(&count).Error)
	assert.Equal(t, int64(len(defs)), count)
}

func TestSeedRetiresMissingSlugs(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")
	svc := seededAchievementService(t, db)

	insertPost(t, db, user.ID, 1, nil, time.Now().UTC())
	_, err := svc.Evaluate(user.ID)
	require.NoError(t, err)
	require.Contains(t, unlockedSlugs(t, db, user.ID), "bier_1")

	// Reseed without bier_1: the definition and its unlocks disappear.
	var kept []AchievementDef
	for _, def := range DefaultAchievementDefs() {
		if def.Slug != "bier_1" {
			kept = append(kept, def)
		}
	}
	require.NoError(t, svc.Seed(kept))

	assert.NotContains(t, unlockedSlugs(t, db, user.ID), "bier_1")

	// Later evaluations never resurrect a retired slug.
	_, err = svc.Evaluate(user.ID)
	require.NoError(t, err)
	assert.NotContains(t, unlockedSlugs(t, db, user.ID), "bier_1")
}

func TestCustomTierRules(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")

	svc := NewAchievementService(db, []TierRule{
		{Stat: StatTotalBeers, Tiers: []Tier{{Threshold: 2, Slug: "bier_1"}}},
	})
	require.NoError(t, svc.Seed(DefaultAchievementDefs()))

	insertPost(t, db, user.ID, 1, nil, time.Now().UTC())
	newly, err := svc.Evaluate(user.ID)
	require.NoError(t, err)
	assert.Empty(t, newly)

	insertPost(t, db, user.ID, 1, nil, time.Now().UTC())
	newly, err = svc.Evaluate(user.ID)
	require.NoError(t, err)
	require.Len(t, newly, 1)
	assert.Equal(t, "bier_1", newly[0].Slug)
}
