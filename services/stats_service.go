// services/stats_service.go - Shared statistics used by profiles, achievements
// and the leaderboard.
package services

import (
	"time"

	"proost/models"

	"gorm.io/gorm"
)

// DefaultStreakLookback bounds the streak scan to the most recent distinct
// posting dates.
const DefaultStreakLookback = 60

// ChallengeCategories are the post categories that count toward challenge
// achievements when the post carries a timing.
var ChallengeCategories = []string{
	"Kan", "Spies", "Golden Triangle", "Platinum Triangle", "1/2 Krat", "Krat",
}

// AchievementStats is the fixed-shape record achievement evaluation and
// profile pages run on.
type AchievementStats struct {
	TotalBeers      int
	Fastest         *float64
	WeekPosts       int
	MonthPosts      int
	PersonalBests   int
	ChallengeCount  int
	Connections     int
	CompetitionWins int
	MaxStreak       int
}

type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

// MaxStreak returns the longest run of consecutive calendar days (UTC) on
// which the user posted, scanning at most limit distinct dates. Recomputed
// from the posts table every time so it cannot go stale.
func (s *StatsService) MaxStreak(userID uint, limit int) (int, error) {
	if limit <= 0 {
		limit = DefaultStreakLookback
	}

	dayExpr := "to_char(created_at, 'YYYY-MM-DD')"
	if s.db.Dialector.Name() == "sqlite" {
		dayExpr = "strftime('%Y-%m-%d', created_at)"
	}

	var days []string
	err := s.db.Raw(
		"SELECT DISTINCT "+dayExpr+" AS day FROM posts WHERE user_id = ? ORDER BY day DESC LIMIT ?",
		userID, limit,
	).Scan(&days).Error
	if err != nil {
		return 0, err
	}

	dates := make([]time.Time, 0, len(days))
	for _, d := range days {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			continue
		}
		dates = append(dates, t)
	}

	if len(dates) == 0 {
		return 0, nil
	}

	// dates are newest-first; a one-day gap extends the run, anything larger
	// resets it to 1.
	maxStreak, streak := 1, 1
	for i := 1; i < len(dates); i++ {
		if dates[i-1].Sub(dates[i]) == 24*time.Hour {
			streak++
		} else {
			streak = 1
		}
		if streak > maxStreak {
			maxStreak = streak
		}
	}

	return maxStreak, nil
}

// AchievementStats gathers everything achievement evaluation needs in a
// bounded number of round-trips (one post aggregate, two counts, the streak
// scan), since it runs on every post creation.
func (s *StatsService) AchievementStats(userID uint) (*AchievementStats, error) {
	now := time.Now().UTC()
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)

	var row struct {
		TotalBeers     int
		Fastest        *float64
		WeekPosts      int
		MonthPosts     int
		PersonalBests  int
		ChallengeCount int
	}

	err := s.db.Raw(`
		SELECT
			COALESCE(SUM(beer_count), 0) AS total_beers,
			MIN(drink_time_seconds) AS fastest,
			COUNT(CASE WHEN created_at >= ? THEN 1 END) AS week_posts,
			COUNT(CASE WHEN created_at >= ? THEN 1 END) AS month_posts,
			COUNT(CASE WHEN is_personal_best THEN 1 END) AS personal_bests,
			COUNT(CASE WHEN category IN ? AND drink_time_seconds IS NOT NULL THEN 1 END) AS challenge_count
		FROM posts
		WHERE user_id = ?
	`, weekAgo, monthAgo, ChallengeCategories, userID).Scan(&row).Error
	if err != nil {
		return nil, err
	}

	// Outgoing accepted rows; the mirror-row invariant makes this the number
	// of distinct connected users.
	var connections int64
	err = s.db.Model(&models.Connection{}).
		Where("requester_id = ? AND status = ?", userID, models.ConnectionStatusAccepted).
		Count(&connections).Error
	if err != nil {
		return nil, err
	}

	var wins int64
	err = s.db.Model(&models.Competition{}).
		Where("winner_id = ? AND status = ?", userID, models.CompetitionStatusCompleted).
		Count(&wins).Error
	if err != nil {
		return nil, err
	}

	maxStreak, err := s.MaxStreak(userID, DefaultStreakLookback)
	if err != nil {
		return nil, err
	}

	return &AchievementStats{
		TotalBeers:      row.TotalBeers,
		Fastest:         row.Fastest,
		WeekPosts:       row.WeekPosts,
		MonthPosts:      row.MonthPosts,
		PersonalBests:   row.PersonalBests,
		ChallengeCount:  row.ChallengeCount,
		Connections:     int(connections),
		CompetitionWins: int(wins),
		MaxStreak:       maxStreak,
	}, nil
}

// PersonalBest returns the user's fastest recorded timing, nil if none.
func (s *StatsService) PersonalBest(userID uint) (*float64, error) {
	var best *float64
	err := s.db.Model(&models.Post{}).
		Where("user_id = ? AND drink_time_seconds IS NOT NULL", userID).
		Select("MIN(drink_time_seconds)").
		Scan(&best).Error
	if err != nil {
		return nil, err
	}
	return best, nil
}
