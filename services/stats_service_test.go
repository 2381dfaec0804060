package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2026, 8, d, 12, 0, 0, 0, time.UTC)
}

func TestMaxStreakGapResets(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")
	svc := NewStatsService(db)

	// Days 1, 2, 3 then a gap to day 5: longest run is 3.
	for _, d := range []int{1, 2, 3, 5} {
		insertPost(t, db, user.ID, 1, nil, day(d))
	}

	streak, err := svc.MaxStreak(user.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, streak)
}

func TestMaxStreakNoPosts(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")
	svc := NewStatsService(db)

	streak, err := svc.MaxStreak(user.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, streak)
}

func TestMaxStreakSingleDay(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")
	svc := NewStatsService(db)

	// Several posts on the same day still count as a one-day streak.
	insertPost(t, db, user.ID, 1, nil, day(10))
	insertPost(t, db, user.ID, 2, nil, day(10).Add(3*time.Hour))

	streak, err := svc.MaxStreak(user.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
}

func TestMaxStreakRespectsLookback(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")
	svc := NewStatsService(db)

	for d := 1; d <= 10; d++ {
		insertPost(t, db, user.ID, 1, nil, day(d))
	}

	// Only the newest 4 distinct dates are scanned.
	streak, err := svc.MaxStreak(user.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, streak)
}

func TestAchievementStatsAggregates(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")
	other := createUser(t, db, "willem")
	svc := NewStatsService(db)

	now := time.Now().UTC()
	insertPost(t, db, user.ID, 3, floatPtr(4.2), now.AddDate(0, 0, -1))
	insertPost(t, db, user.ID, 2, floatPtr(2.8), now.AddDate(0, 0, -10))
	insertPost(t, db, user.ID, 1, nil, now.AddDate(0, 0, -40))
	insertPost(t, db, other.ID, 24, floatPtr(1.0), now)

	connectUsers(t, db, user.ID, other.ID)

	stats, err := svc.AchievementStats(user.ID)
	require.NoError(t, err)

	assert.Equal(t, 6, stats.TotalBeers)
	require.NotNil(t, stats.Fastest)
	assert.Equal(t, 2.8, *stats.Fastest)
	assert.Equal(t, 1, stats.WeekPosts)
	assert.Equal(t, 2, stats.MonthPosts)
	assert.Equal(t, 1, stats.Connections)
	assert.Equal(t, 0, stats.CompetitionWins)
}

func TestAchievementStatsEmptyUser(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")
	svc := NewStatsService(db)

	stats, err := svc.AchievementStats(user.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, stats.TotalBeers)
	assert.Nil(t, stats.Fastest)
	assert.Equal(t, 0, stats.MaxStreak)
}

func TestPersonalBest(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")
	svc := NewStatsService(db)

	best, err := svc.PersonalBest(user.ID)
	require.NoError(t, err)
	assert.Nil(t, best)

	insertPost(t, db, user.ID, 1, floatPtr(5.0), time.Now().UTC())
	insertPost(t, db, user.ID, 1, floatPtr(3.5), time.Now().UTC())
	insertPost(t, db, user.ID, 1, nil, time.Now().UTC()) // VDL, no timing

	best, err = svc.PersonalBest(user.ID)
	require.NoError(t, err)
	require.NotNil(t, best)
	assert.Equal(t, 3.5, *best)
}
