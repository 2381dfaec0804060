// services/leaderboard_service.go - Read-only rankings per metric, scope and
// period.
package services

import (
	"time"

	"proost/models"

	"gorm.io/gorm"
)

type Metric string

const (
	MetricFastest Metric = "fastest" // lowest single timing
	MetricTotal   Metric = "total"   // summed beer count
	MetricAverage Metric = "average" // mean timing
	MetricWins    Metric = "wins"    // competitions won
)

type Period string

const (
	PeriodAll   Period = "all"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// MaxPageSize caps every ranking query.
const MaxPageSize = 50

// RankingRow is one leaderboard entry. Value is nil when the user has no
// qualifying events for a timing metric; such rows sort after every row with
// a value.
type RankingRow struct {
	Rank        int      `json:"rank"`
	UserID      uint     `json:"user_id"`
	Username    string   `json:"username"`
	DisplayName string   `json:"display_name"`
	Value       *float64 `json:"value"`
	PostCount   int      `json:"post_count"`
}

type LeaderboardService struct {
	db *gorm.DB
}

func NewLeaderboardService(db *gorm.DB) *LeaderboardService {
	return &LeaderboardService{db: db}
}

// ParseMetric maps a query value onto a metric, defaulting to total.
func ParseMetric(s string) Metric {
	switch Metric(s) {
	case MetricFastest, MetricTotal, MetricAverage, MetricWins:
		return Metric(s)
	}
	return MetricTotal
}

// ParsePeriod maps a query value onto a period, defaulting to all-time.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodAll, PeriodWeek, PeriodMonth:
		return Period(s)
	}
	return PeriodAll
}

func periodStart(period Period) *time.Time {
	now := time.Now().UTC()
	switch period {
	case PeriodWeek:
		t := now.AddDate(0, 0, -7)
		return &t
	case PeriodMonth:
		t := now.AddDate(0, 0, -30)
		return &t
	}
	return nil
}

// GlobalRankings ranks over publicly flagged posts across all users.
func (s *LeaderboardService) GlobalRankings(metric Metric, period Period, limit int) ([]RankingRow, error) {
	return s.rankings(metric, period, nil, limit)
}

// GroupRankings ranks a group's members over posts shared to that group.
// Viewer membership is the caller's responsibility.
func (s *LeaderboardService) GroupRankings(groupID uint, metric Metric, period Period, limit int) ([]RankingRow, error) {
	return s.rankings(metric, period, &groupID, limit)
}

// rankings builds one aggregate query per call. Window periods restrict the
// event set before aggregating, never after. The two-key ORDER BY puts
// missing values last regardless of sort direction, with ascending user ID
// as the final tie-break for stable pagination.
func (s *LeaderboardService) rankings(metric Metric, period Period, groupID *uint, limit int) ([]RankingRow, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	since := periodStart(period)

	var (
		sql  string
		args []interface{}
	)

	if metric == MetricWins {
		sql, args = winsQuery(groupID, since)
	} else {
		sql, args = postQuery(metric, groupID, since)
	}
	args = append(args, limit)

	var rows []RankingRow
	if err := s.db.Raw(sql, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}

func postQuery(metric Metric, groupID *uint, since *time.Time) (string, []interface{}) {
	var args []interface{}

	join := "FROM users u\n"
	postCond := ""

	if groupID != nil {
		join += "JOIN group_members gm ON gm.user_id = u.id AND gm.group_id = ?\n"
		args = append(args, *groupID)
		postCond = " AND p.id IN (SELECT post_id FROM post_groups WHERE group_id = ?)"
	} else {
		postCond = " AND p.is_public = ?"
	}

	timingOnly := metric == MetricFastest || metric == MetricAverage
	if timingOnly {
		postCond += " AND p.drink_time_seconds IS NOT NULL"
	}
	if since != nil {
		postCond += " AND p.created_at >= ?"
	}

	join += "LEFT JOIN posts p ON p.user_id = u.id" + postCond + "\n"
	if groupID != nil {
		args = append(args, *groupID)
	} else {
		args = append(args, true)
	}
	if since != nil {
		args = append(args, *since)
	}

	var valueExpr, orderBy string
	switch metric {
	case MetricFastest:
		valueExpr = "MIN(p.drink_time_seconds)"
		orderBy = "CASE WHEN MIN(p.drink_time_seconds) IS NULL THEN 1 ELSE 0 END, value ASC, u.id ASC"
	case MetricAverage:
		valueExpr = "AVG(p.drink_time_seconds)"
		orderBy = "CASE WHEN AVG(p.drink_time_seconds) IS NULL THEN 1 ELSE 0 END, value ASC, u.id ASC"
	default: // MetricTotal
		valueExpr = "COALESCE(SUM(p.beer_count), 0)"
		orderBy = "value DESC, u.id ASC"
	}

	sql := "SELECT u.id AS user_id, u.username, u.display_name, " +
		valueExpr + " AS value, COUNT(p.id) AS post_count\n" +
		join +
		"GROUP BY u.id, u.username, u.display_name\n" +
		"ORDER BY " + orderBy + "\nLIMIT ?"

	return sql, args
}

func winsQuery(groupID *uint, since *time.Time) (string, []interface{}) {
	var args []interface{}

	join := "FROM users u\n"
	compCond := " AND c.status = ?"

	if groupID != nil {
		join += "JOIN group_members gm ON gm.user_id = u.id AND gm.group_id = ?\n"
		args = append(args, *groupID)
		compCond += " AND c.group_id = ?"
	}
	if since != nil {
		compCond += " AND c.completed_at >= ?"
	}

	join += "LEFT JOIN competitions c ON c.winner_id = u.id" + compCond + "\n"
	args = append(args, models.CompetitionStatusCompleted)
	if groupID != nil {
		args = append(args, *groupID)
	}
	if since != nil {
		args = append(args, *since)
	}

	sql := "SELECT u.id AS user_id, u.username, u.display_name, " +
		"COALESCE(COUNT(c.id), 0) AS value, COUNT(c.id) AS post_count\n" +
		join +
		"GROUP BY u.id, u.username, u.display_name\n" +
		"ORDER BY value DESC, u.id ASC\nLIMIT ?"

	return sql, args
}
