package model

// UserStats is the per-request statistics snapshot for one user. It is
// derived from activity rows on every request and never persisted.
// WeekOverWeekChange is a percentage, defined as 0 when last week has no
// hours (no baseline to compare against).
type UserStats struct {
	TodayHours         float64 `json:"todayHours"`
	ThisWeekHours      float64 `json:"thisWeekHours"`
	LastWeekHours      float64 `json:"lastWeekHours"`
	WeekOverWeekChange float64 `json:"weekOverWeekChange"`
}

// LeaderboardEntry is one row of the weekly leaderboard. Every user in
// the system appears, including those with zero hours this week. Rank is
// the 1-based position after sorting by TotalHours descending (ties
// broken by username ascending).
type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	UserID     string  `json:"userId"`
	Username   string  `json:"username"`
	TotalHours float64 `json:"totalHours"`
}
