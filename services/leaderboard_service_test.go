package services

import (
	"testing"
	"time"

	"proost/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGlobalFastestPutsMissingValuesLast(t *testing.T) {
	db := newTestDB(t)
	a := createUser(t, db, "anton")
	b := createUser(t, db, "bas")
	c := createUser(t, db, "coen")
	svc := NewLeaderboardService(db)

	now := time.Now().UTC()
	insertPost(t, db, a.ID, 1, floatPtr(5.0), now)
	insertPost(t, db, b.ID, 1, nil, now) // VDL only, no timing
	insertPost(t, db, c.ID, 1, floatPtr(3.0), now)

	rows, err := svc.GlobalRankings(MetricFastest, PeriodAll, 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, c.ID, rows[0].UserID)
	assert.Equal(t, a.ID, rows[1].UserID)
	assert.Equal(t, b.ID, rows[2].UserID)
	assert.Nil(t, rows[2].Value)

	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, 3, rows[2].Rank)
}

func TestGlobalTotalIgnoresNonPublicPosts(t *testing.T) {
	db := newTestDB(t)
	a := createUser(t, db, "anton")
	b := createUser(t, db, "bas")
	svc := NewLeaderboardService(db)

	now := time.Now().UTC()
	insertPost(t, db, a.ID, 2, nil, now)

	hidden := models.Post{UserID: b.ID, BeerCount: 10, IsVDL: true, IsPublic: false, CreatedAt: now}
	require.NoError(t, db.Create(&hidden).Error)

	rows, err := svc.GlobalRankings(MetricTotal, PeriodAll, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, a.ID, rows[0].UserID)
	require.NotNil(t, rows[0].Value)
	assert.Equal(t, 2.0, *rows[0].Value)

	// The non-public post contributes nothing, not even to its owner.
	require.NotNil(t, rows[1].Value)
	assert.Equal(t, 0.0, *rows[1].Value)
}

func TestGlobalTotalTiesBreakOnUserID(t *testing.T) {
	db := newTestDB(t)
	a := createUser(t, db, "anton")
	b := createUser(t, db, "bas")
	svc := NewLeaderboardService(db)

	now := time.Now().UTC()
	insertPost(t, db, b.ID, 3, nil, now)
	insertPost(t, db, a.ID, 3, nil, now)

	rows, err := svc.GlobalRankings(MetricTotal, PeriodAll, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, a.ID, rows[0].UserID)
	assert.Equal(t, b.ID, rows[1].UserID)
}

func TestPeriodWindowFiltersBeforeAggregation(t *testing.T) {
	db := newTestDB(t)
	a := createUser(t, db, "anton")
	svc := NewLeaderboardService(db)

	now := time.Now().UTC()
	insertPost(t, db, a.ID, 2, nil, now.AddDate(0, 0, -1))
	insertPost(t, db, a.ID, 10, nil, now.AddDate(0, 0, -20))

	rows, err := svc.GlobalRankings(MetricTotal, PeriodWeek, 10)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	require.NotNil(t, rows[0].Value)
	assert.Equal(t, 2.0, *rows[0].Value)
	assert.Equal(t, 1, rows[0].PostCount)
}

func TestGroupRankingsScopeToSharedPosts(t *testing.T) {
	db := newTestDB(t)
	a := createUser(t, db, "anton")
	b := createUser(t, db, "bas")
	outsider := createUser(t, db, "coen")
	group := createGroupWith(t, db, a.ID, b.ID)
	svc := NewLeaderboardService(db)

	now := time.Now().UTC()
	shared := insertPost(t, db, a.ID, 4, nil, now)
	require.NoError(t, db.Create(&models.PostGroup{PostID: shared.ID, GroupID: group.ID}).Error)

	// Public but not shared to the group: invisible to the group board.
	insertPost(t, db, a.ID, 6, nil, now)
	insertPost(t, db, outsider.ID, 9, nil, now)

	rows, err := svc.GroupRankings(group.ID, MetricTotal, PeriodAll, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2) // members only

	assert.Equal(t, a.ID, rows[0].UserID)
	require.NotNil(t, rows[0].Value)
	assert.Equal(t, 4.0, *rows[0].Value)
	assert.Equal(t, b.ID, rows[1].UserID)
}

func TestWinsMetricCountsCompletedCompetitions(t *testing.T) {
	db := newTestDB(t)
	a := createUser(t, db, "anton")
	b := createUser(t, db, "bas")
	group := createGroupWith(t, db, a.ID, b.ID)
	svc := NewLeaderboardService(db)

	now := time.Now().UTC()
	for i := 0; i < 2; i++ {
		comp := models.Competition{
			GroupID:     group.ID,
			CreatedByID: a.ID,
			Title:       "Sprint",
			TargetBeers: 5,
			Status:      models.CompetitionStatusCompleted,
			WinnerID:    &a.ID,
			CompletedAt: &now,
		}
		require.NoError(t, db.Create(&comp).Error)
	}

	// An active competition never counts as a win.
	active := models.Competition{
		GroupID:     group.ID,
		CreatedByID: b.ID,
		Title:       "Lopend",
		TargetBeers: 5,
		Status:      models.CompetitionStatusActive,
	}
	require.NoError(t, db.Create(&active).Error)

	rows, err := svc.GroupRankings(group.ID, MetricWins, PeriodAll, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, a.ID, rows[0].UserID)
	require.NotNil(t, rows[0].Value)
	assert.Equal(t, 2.0, *rows[0].Value)
	require.NotNil(t, rows[1].Value)
	assert.Equal(t, 0.0, *rows[1].Value)
}

func TestRankingsLimitIsCapped(t *testing.T) {
	db := newTestDB(t)
	svc := NewLeaderboardService(db)

	for i := 0; i < 3; i++ {
		createUser(t, db, string(rune('a'+i))+"user")
	}

	rows, err := svc.GlobalRankings(MetricTotal, PeriodAll, MaxPageSize+100)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(rows), MaxPageSize)
}

func TestParseMetricAndPeriodDefaults(t *testing.T) {
	assert.Equal(t, MetricTotal, ParseMetric(""))
	assert.Equal(t, MetricTotal, ParseMetric("bogus"))
	assert.Equal(t, MetricFastest, ParseMetric("fastest"))
	assert.Equal(t, PeriodAll, ParsePeriod(""))
	assert.Equal(t, PeriodWeek, ParsePeriod("week"))
}
