package model

import "time"

// Activity is one logged unit of work.
//
// Date is the canonical bucketing key for daily and weekly aggregation —
// always a JST calendar day at midnight, no time-of-day component.
// StartTime/EndTime are "HH:MM" wall-clock strings and are either both
// present or both nil, depending on the input method the user chose.
// Duration (hours) is the authoritative value used by every aggregation,
// regardless of how it was derived.
type Activity struct {
	ID          string    `json:"id"          db:"id"`
	UserID      string    `json:"userId"      db:"user_id"`
	Name        string    `json:"name"        db:"name"`
	Description string    `json:"description" db:"description"`
	Date        time.Time `json:"date"        db:"date"`
	StartTime   *string   `json:"startTime"   db:"start_time"`
	EndTime     *string   `json:"endTime"     db:"end_time"`
	Duration    float64   `json:"duration"    db:"duration"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"   db:"updated_at"`
}
