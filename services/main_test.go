package services

import (
	"testing"
	"time"

	"proost/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Connection{},
		&models.Group{},
		&models.GroupMember{},
		&models.GroupJoinRequest{},
		&models.Post{},
		&models.PostGroup{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Competition{},
		&models.CompetitionParticipant{},
		&models.CompetitionProgress{},
	)
	require.NoError(t, err)

	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) models.User {
	t.Helper()

	user := models.User{
		Username:    username,
		Password:    "hashed",
		DisplayName: username,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// insertPost writes a post directly, bypassing the service, for shaping
// fixtures with explicit timestamps.
func insertPost(t *testing.T, db *gorm.DB, userID uint, beers int, timing *float64, createdAt time.Time) models.Post {
	t.Helper()

	post := models.Post{
		UserID:           userID,
		BeerCount:        beers,
		DrinkTimeSeconds: timing,
		IsVDL:            timing == nil,
		IsPublic:         true,
		CreatedAt:        createdAt,
	}
	require.NoError(t, db.Create(&post).Error)
	return post
}

func floatPtr(v float64) *float64 {
	return &v
}

func connectUsers(t *testing.T, db *gorm.DB, a, b uint) {
	t.Helper()

	svc := NewConnectionService(db)
	require.NoError(t, svc.Request(a, b))
	require.NoError(t, svc.Accept(b, a))
}

func createGroupWith(t *testing.T, db *gorm.DB, creatorID uint, memberIDs ...uint) *models.Group {
	t.Helper()

	svc := NewGroupService(db)
	group, err := svc.Create(creatorID, "Stamtafel", "", false)
	require.NoError(t, err)
	for _, id := range memberIDs {
		_, err := svc.JoinByCode(id, group.InviteCode)
		require.NoError(t, err)
	}
	return group
}
