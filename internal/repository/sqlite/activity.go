package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/time-tracker/internal/apperror"
	"github.com/sakif/time-tracker/internal/clock"
	"github.com/sakif/time-tracker/internal/model"
	"github.com/sakif/time-tracker/internal/repository"
)

// Compile-time check that *DB implements repository.ActivityRepository.
var _ repository.ActivityRepository = (*DB)(nil)

// Create inserts a new activity, generating its ID and timestamps.
func (db *DB) Create(ctx context.Context, activity *model.Activity) error {
	activity.ID = xid.New().String()

	now := time.Now()
	activity.CreatedAt = now
	activity.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO activities (id, user_id, name, description, date, start_time, end_time, duration, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		activity.ID,
		activity.UserID,
		activity.Name,
		activity.Description,
		clock.FormatDate(activity.Date),
		nullable(activity.StartTime),
		nullable(activity.EndTime),
		activity.Duration,
		activity.CreatedAt,
		activity.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating activity: %w", err)
	}

	return nil
}

// GetByID retrieves one activity, scoped to the owning user. A row owned
// by a different user is reported as not found — ownership is part of
// the lookup key, so handlers can't leak other users' records.
func (db *DB) GetByID(ctx context.Context, id, userID string) (*model.Activity, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, name, description, date, start_time, end_time, duration, created_at, updated_at
		 FROM activities
		 WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	activity, err := scanActivity(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("activity", id)
		}
		return nil, fmt.Errorf("sqlite: getting activity %s: %w", id, err)
	}

	return activity, nil
}

// ListByUser returns a user's activities, newest date first, then newest
// created first within a date. A limit <= 0 returns everything.
func (db *DB) ListByUser(ctx context.Context, userID string, limit int) ([]model.Activity, error) {
	query := `SELECT id, user_id, name, description, date, start_time, end_time, duration, created_at, updated_at
	          FROM activities
	          WHERE user_id = ?
	          ORDER BY date DESC, created_at DESC`
	args := []any{userID}

	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing activities: %w", err)
	}
	defer rows.Close()

	activities := make([]model.Activity, 0, 16)
	for rows.Next() {
		activity, err := scanActivity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning activity row: %w", err)
		}
		activities = append(activities, *activity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating activities: %w", err)
	}

	return activities, nil
}

// Update rewrites an activity's mutable fields, scoped to the owner.
func (db *DB) Update(ctx context.Context, activity *model.Activity) error {
	activity.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE activities
		 SET name = ?, description = ?, date = ?, start_time = ?, end_time = ?, duration = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		activity.Name,
		activity.Description,
		clock.FormatDate(activity.Date),
		nullable(activity.StartTime),
		nullable(activity.EndTime),
		activity.Duration,
		activity.UpdatedAt,
		activity.ID,
		activity.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating activity %s: %w", activity.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("activity", activity.ID)
	}

	return nil
}

// Delete removes an activity, scoped to the owner.
func (db *DB) Delete(ctx context.Context, id, userID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM activities WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting activity %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("activity", id)
	}

	return nil
}

// SumDurationByUserAndDateRange sums hours over an inclusive date range.
// COALESCE turns the no-rows case into 0 rather than NULL.
func (db *DB) SumDurationByUserAndDateRange(ctx context.Context, userID string, start, end time.Time) (float64, error) {
	var total float64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(duration), 0)
		 FROM activities
		 WHERE user_id = ? AND date >= ? AND date <= ?`,
		userID, clock.FormatDate(start), clock.FormatDate(end),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sqlite: summing durations for user %s: %w", userID, err)
	}

	return total, nil
}

// SumDurationGroupedByUserForRange returns, for EVERY user, the summed
// hours of their activities within the range. The LEFT JOIN keeps users
// with zero matching activities in the result at 0 hours — the
// leaderboard must list everyone.
func (db *DB) SumDurationGroupedByUserForRange(ctx context.Context, start, end time.Time) ([]repository.UserHours, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT u.id, u.username, COALESCE(SUM(a.duration), 0)
		 FROM users u
		 LEFT JOIN activities a
		   ON a.user_id = u.id AND a.date >= ? AND a.date <= ?
		 GROUP BY u.id, u.username`,
		clock.FormatDate(start), clock.FormatDate(end),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: grouping durations by user: %w", err)
	}
	defer rows.Close()

	totals := make([]repository.UserHours, 0, 16)
	for rows.Next() {
		var uh repository.UserHours
		if err := rows.Scan(&uh.UserID, &uh.Username, &uh.TotalHours); err != nil {
			return nil, fmt.Errorf("sqlite: scanning grouped duration row: %w", err)
		}
		totals = append(totals, uh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating grouped durations: %w", err)
	}

	return totals, nil
}

// scanActivity reads one activity row. It takes the Scan func so the
// same column handling serves both QueryRow and Rows iteration.
func scanActivity(scan func(dest ...any) error) (*model.Activity, error) {
	var (
		a        model.Activity
		dateStr  string
		startStr sql.NullString
		endStr   sql.NullString
	)

	err := scan(
		&a.ID,
		&a.UserID,
		&a.Name,
		&a.Description,
		&dateStr,
		&startStr,
		&endStr,
		&a.Duration,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	date, err := clock.ParseDate(dateStr)
	if err != nil {
		return nil, err
	}
	a.Date = date

	if startStr.Valid {
		a.StartTime = &startStr.String
	}
	if endStr.Valid {
		a.EndTime = &endStr.String
	}

	return &a, nil
}

// nullable maps a nil string pointer to SQL NULL.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
